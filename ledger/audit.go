package ledger

import (
	"context"
	"slices"

	"github.com/yourusername/insure-dao/models"
)

// GetAuditTrail returns the audit log, most recent first.
func (s *Service) GetAuditTrail(ctx context.Context) ([]models.AuditEvent, error) {
	var out []models.AuditEvent
	err := s.read(ctx, "get_audit_trail", func(st *state) {
		out = slices.Clone(st.audit)
	})
	return out, err
}

// Summary reports collection sizes and pool totals.
func (s *Service) Summary(ctx context.Context) (models.Summary, error) {
	var out models.Summary
	err := s.read(ctx, "summary", func(st *state) {
		out = models.Summary{
			Users:         len(st.users),
			Policies:      len(st.policies),
			Subscriptions: len(st.subscriptions),
			Claims:        len(st.claims),
			Proposals:     len(st.proposals),
			Deposits:      len(st.deposits),
			AuditEvents:   len(st.audit),
			Pool:          copyPool(st.pool),
		}
	})
	return out, err
}
