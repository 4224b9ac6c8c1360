package ledger

import (
	"context"
	"fmt"

	"github.com/yourusername/insure-dao/models"
)

const summaryLength = 120

func (s *Service) GetPolicies(ctx context.Context) ([]models.Policy, error) {
	var out []models.Policy
	err := s.read(ctx, "get_policies", func(st *state) {
		out = copyAll(st.policies, nil)
	})
	return out, err
}

// CreatePolicy registers a pending policy created by the sender and opens
// the policy_create proposal that can activate it. The policy id is returned
// in TxResult.ID.
func (s *Service) CreatePolicy(ctx context.Context, draft models.PolicyDraft) (models.TxResult, error) {
	return s.write(ctx, "create_policy", true, func(tx *txn) error {
		policy := &models.Policy{
			ID:          tx.st.nextID("pol"),
			Title:       draft.Title,
			Description: draft.Description,
			Params:      draft.Params,
			Status:      models.PolicyPending,
			CreatedAt:   tx.now,
			Creator:     tx.sender,
		}
		tx.st.policies = prepend(tx.st.policies, policy)

		proposal := &models.Proposal{
			ID:        tx.st.nextID("prp"),
			Title:     fmt.Sprintf("Activate policy: %s", draft.Title),
			Summary:   truncate(draft.Description, summaryLength),
			Kind:      models.KindPolicyCreate,
			RefID:     policy.ID,
			CreatedAt: tx.now,
			EndsAt:    tx.now.Add(PolicyVotingWindow),
			Status:    models.ProposalOpen,
		}
		tx.st.proposals = prepend(tx.st.proposals, proposal)

		tx.record(tx.sender, "policy_created", fmt.Sprintf("Policy %s created", policy.ID))
		tx.record(tx.sender, "proposal_created", fmt.Sprintf("Proposal %s created for policy %s", proposal.ID, policy.ID))
		tx.touch(TopicPolicies, TopicProposals)
		tx.result.ID = policy.ID
		return nil
	})
}
