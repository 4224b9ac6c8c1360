package ledger

import (
	"context"
	"fmt"

	"github.com/yourusername/insure-dao/models"
)

func (s *Service) GetPoolStats(ctx context.Context) (models.PoolStats, error) {
	var out models.PoolStats
	err := s.read(ctx, "get_pool_stats", func(st *state) {
		out = copyPool(st.pool)
	})
	return out, err
}

// GetDeposits returns all deposits, or only investor's when non-empty.
func (s *Service) GetDeposits(ctx context.Context, investor string) ([]models.Deposit, error) {
	var out []models.Deposit
	err := s.read(ctx, "get_deposits", func(st *state) {
		out = copyAll(st.deposits, func(d *models.Deposit) bool {
			return investor == "" || d.Investor == investor
		})
	})
	return out, err
}

// DepositInvestment locks amount in the pool for the lock-in period.
func (s *Service) DepositInvestment(ctx context.Context, amount string) (models.TxResult, error) {
	return s.write(ctx, "deposit", true, func(tx *txn) error {
		if s.consumeFailNext() {
			tx.record(tx.sender, "error", fmt.Sprintf("Deposit failed for amount %s", amount))
			return simulated("Deposit failed")
		}
		amt, err := parseAmount(amount)
		if err != nil {
			return err
		}

		dep := &models.Deposit{
			ID:         tx.st.nextID("dep"),
			Investor:   tx.sender,
			Amount:     amt.String(),
			CreatedAt:  tx.now,
			LockEndsAt: tx.now.Add(DepositLockIn),
			Status:     models.DepositLocked,
		}
		tx.st.deposits = prepend(tx.st.deposits, dep)
		tx.st.applyDeposit(amt)

		tx.record(tx.sender, "deposit_made", fmt.Sprintf("Deposit %s made for amount %s", dep.ID, dep.Amount))
		tx.touch(TopicDeposits, TopicPool)
		tx.result.ID = dep.ID
		return nil
	})
}

// WithdrawInvestment releases a deposit whose lock-in has ended.
func (s *Service) WithdrawInvestment(ctx context.Context, depositID string) (models.TxResult, error) {
	return s.write(ctx, "withdraw", true, func(tx *txn) error {
		dep := tx.st.deposit(depositID)
		if dep == nil {
			return notFound("Deposit not found")
		}
		if dep.Status == models.DepositWithdrawn {
			return violation("Deposit already withdrawn")
		}
		if tx.now.Before(dep.LockEndsAt) {
			return violation("Lock-in active")
		}
		amt, err := parseAmount(dep.Amount)
		if err != nil {
			return fmt.Errorf("deposit %s holds unparseable amount: %w", dep.ID, err)
		}

		dep.Status = models.DepositWithdrawn
		tx.st.applyDeposit(amt.Neg())

		tx.record(tx.sender, "withdrawal", fmt.Sprintf("Withdrawal from deposit %s", depositID))
		tx.touch(TopicDeposits, TopicPool)
		tx.result.ID = dep.ID
		return nil
	})
}
