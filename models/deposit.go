package models

import "time"

type DepositStatus string

const (
	DepositLocked    DepositStatus = "locked"
	DepositWithdrawn DepositStatus = "withdrawn"
)

type Deposit struct {
	ID         string        `json:"id"`
	Investor   string        `json:"investor"`
	Amount     string        `json:"amount"`
	CreatedAt  time.Time     `json:"created_at"`
	LockEndsAt time.Time     `json:"lock_ends_at"`
	Status     DepositStatus `json:"status"`
}

type InvestorShare struct {
	Investor     string `json:"investor" yaml:"investor"`
	SharePercent int    `json:"share_percent" yaml:"share_percent"` // basis points
}

type PoolStats struct {
	TotalPool      string          `json:"total_pool" yaml:"total_pool"`
	TotalInvested  string          `json:"total_invested" yaml:"total_invested"`
	YieldRate      int             `json:"yield_rate" yaml:"yield_rate"` // basis points
	InvestorShares []InvestorShare `json:"investor_shares" yaml:"investor_shares"`
}
