package models

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionForfeited SubscriptionStatus = "forfeited"
	SubscriptionEnded     SubscriptionStatus = "ended"
)

type Subscription struct {
	ID              string             `json:"id"`
	PolicyID        string             `json:"policy_id"`
	Subscriber      string             `json:"subscriber"`
	StartDate       time.Time          `json:"start_date"`
	Status          SubscriptionStatus `json:"status"`
	LastPaymentDate time.Time          `json:"last_payment_date"`
	NextPaymentDue  time.Time          `json:"next_payment_due"`
	GracePeriodDays int                `json:"grace_period_days"`
}
