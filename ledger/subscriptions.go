package ledger

import (
	"context"
	"fmt"

	"github.com/yourusername/insure-dao/models"
)

// GetSubscriptions returns all subscriptions, or only those of subscriber
// when it is non-empty.
func (s *Service) GetSubscriptions(ctx context.Context, subscriber string) ([]models.Subscription, error) {
	var out []models.Subscription
	err := s.read(ctx, "get_subscriptions", func(st *state) {
		out = copyAll(st.subscriptions, func(sub *models.Subscription) bool {
			return subscriber == "" || sub.Subscriber == subscriber
		})
	})
	return out, err
}

// SubscribeToPolicy enrolls the sender in an active policy. The first
// premium is due one interval after enrolment.
func (s *Service) SubscribeToPolicy(ctx context.Context, policyID string) (models.TxResult, error) {
	return s.write(ctx, "subscribe", true, func(tx *txn) error {
		if s.consumeFailNext() {
			tx.record(tx.sender, "error", fmt.Sprintf("Subscription failed for policy %s", policyID))
			return simulated("Transaction failed")
		}
		policy := tx.st.policy(policyID)
		if policy == nil {
			return notFound("Policy not found")
		}
		if policy.Status != models.PolicyActive {
			return violation("Policy not active")
		}

		sub := &models.Subscription{
			ID:              tx.st.nextID("sub"),
			PolicyID:        policyID,
			Subscriber:      tx.sender,
			StartDate:       tx.now,
			Status:          models.SubscriptionActive,
			LastPaymentDate: tx.now,
			NextPaymentDue:  tx.now.Add(PremiumInterval),
			GracePeriodDays: GracePeriodDays,
		}
		tx.st.subscriptions = prepend(tx.st.subscriptions, sub)

		tx.record(tx.sender, "subscription_created", fmt.Sprintf("Subscription %s created for policy %s", sub.ID, policyID))
		tx.touch(TopicSubscriptions)
		tx.result.ID = sub.ID
		return nil
	})
}

// PayPremium records a premium payment and pushes the next due date one
// interval past now.
func (s *Service) PayPremium(ctx context.Context, subscriptionID string) (models.TxResult, error) {
	return s.write(ctx, "pay_premium", true, func(tx *txn) error {
		if s.consumeFailNext() {
			tx.record(tx.sender, "error", fmt.Sprintf("Premium payment failed for subscription %s", subscriptionID))
			return simulated("Premium payment failed")
		}
		sub := tx.st.subscription(subscriptionID)
		if sub == nil {
			return notFound("Subscription not found")
		}
		sub.LastPaymentDate = tx.now
		sub.NextPaymentDue = tx.now.Add(PremiumInterval)

		tx.record(tx.sender, "premium_paid", fmt.Sprintf("Premium paid for subscription %s", subscriptionID))
		tx.touch(TopicSubscriptions)
		tx.result.ID = sub.ID
		return nil
	})
}

// Subscription returns a single subscription together with its policy.
func (s *Service) Subscription(ctx context.Context, id string) (models.Subscription, models.Policy, error) {
	var (
		sub    models.Subscription
		policy models.Policy
		found  bool
	)
	err := s.read(ctx, "get_subscription", func(st *state) {
		sp := st.subscription(id)
		if sp == nil {
			return
		}
		sub = *sp
		if p := st.policy(sp.PolicyID); p != nil {
			policy = *p
		}
		found = true
	})
	if err != nil {
		return sub, policy, err
	}
	if !found {
		return sub, policy, notFound("Subscription not found")
	}
	return sub, policy, nil
}
