package models

import "time"

const (
	MinCreditScore     = 300
	MaxCreditScore     = 900
	DefaultCreditScore = 600
	GuestName          = "Guest"
)

type UserStatus string

const (
	UserActive UserStatus = "active"
	UserBanned UserStatus = "banned"
)

type User struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	CreditScore int        `json:"credit_score"`
	Status      UserStatus `json:"status"`
	JoinDate    time.Time  `json:"join_date"`
	IsDaoMember bool       `json:"is_dao_member"`
}

// ClampCredit bounds a credit score to [MinCreditScore, MaxCreditScore].
func ClampCredit(score int) int {
	if score < MinCreditScore {
		return MinCreditScore
	}
	if score > MaxCreditScore {
		return MaxCreditScore
	}
	return score
}
