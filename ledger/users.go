package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/yourusername/insure-dao/models"
)

// GetUser returns the user registered at addr. Unknown addresses get a
// transient Guest record (credit 600, active) that is not stored; its DAO
// flag still reflects the member list.
func (s *Service) GetUser(ctx context.Context, addr string) (models.User, error) {
	var u models.User
	err := s.read(ctx, "get_user", func(st *state) {
		if existing, ok := st.users[addr]; ok {
			u = *existing
			return
		}
		u = models.User{
			Address:     addr,
			Name:        models.GuestName,
			CreditScore: models.DefaultCreditScore,
			Status:      models.UserActive,
			JoinDate:    s.now(),
			IsDaoMember: st.isDaoMember(addr),
		}
	})
	return u, err
}

// IsDaoMember reports whether addr may vote.
func (s *Service) IsDaoMember(addr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.isDaoMember(addr)
}

func (s *Service) DaoMembers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.daoMembers)
}

// AdjustCredit adds delta to the user's credit score, clamped to [300, 900].
// Unknown addresses are ignored.
func (s *Service) AdjustCredit(ctx context.Context, addr string, delta int) error {
	_, err := s.write(ctx, "adjust_credit", false, func(tx *txn) error {
		adjustCredit(tx, addr, delta, fmt.Sprintf("Credit score adjusted by %d", delta))
		return nil
	})
	return err
}

func adjustCredit(tx *txn, addr string, delta int, details string) bool {
	u, ok := tx.st.users[addr]
	if !ok {
		return false
	}
	u.CreditScore = models.ClampCredit(u.CreditScore + delta)
	tx.record(addr, "credit_adjusted", details)
	tx.touch(TopicUsers)
	return true
}
