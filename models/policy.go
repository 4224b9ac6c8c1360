package models

import "time"

type PolicyStatus string

const (
	PolicyPending  PolicyStatus = "pending"
	PolicyActive   PolicyStatus = "active"
	PolicyArchived PolicyStatus = "archived"
	PolicyDeleted  PolicyStatus = "deleted"
)

// PolicyParams is fixed at creation. Amounts are integer strings in stroops.
type PolicyParams struct {
	MaxClaimAmount      string `json:"max_claim_amount" yaml:"max_claim_amount"`
	InterestRate        int    `json:"interest_rate" yaml:"interest_rate"` // basis points
	PremiumAmount       string `json:"premium_amount" yaml:"premium_amount"`
	PremiumCurrency     string `json:"premium_currency" yaml:"premium_currency"`
	ClaimCooldownDays   int    `json:"claim_cooldown_days" yaml:"claim_cooldown_days"`
	InvestorLockInDays  int    `json:"investor_lock_in_days" yaml:"investor_lock_in_days"`
	RequiresDaoApproval bool   `json:"requires_dao_approval" yaml:"requires_dao_approval"`
	CreditSlashOnReject int    `json:"credit_slash_on_reject" yaml:"credit_slash_on_reject"`
}

type Policy struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Params      PolicyParams `json:"params"`
	Status      PolicyStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	Creator     string       `json:"creator"`
}

// PolicyDraft is the caller-supplied part of a new policy.
type PolicyDraft struct {
	Title       string       `json:"title" binding:"required"`
	Description string       `json:"description"`
	Params      PolicyParams `json:"params"`
}
