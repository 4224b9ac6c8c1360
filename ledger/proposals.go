package ledger

import (
	"context"
	"fmt"

	"github.com/yourusername/insure-dao/models"
)

func (s *Service) GetProposals(ctx context.Context) ([]models.Proposal, error) {
	var out []models.Proposal
	err := s.read(ctx, "get_proposals", func(st *state) {
		out = copyAll(st.proposals, nil)
	})
	return out, err
}

// VoteProposal adds the sender's vote to an open proposal.
func (s *Service) VoteProposal(ctx context.Context, proposalID string, vote models.Vote) (models.TxResult, error) {
	return s.write(ctx, "vote_proposal", true, func(tx *txn) error {
		if !tx.st.isDaoMember(tx.sender) {
			return unauthorized("Not a DAO member")
		}
		if !vote.Valid() {
			return violation("Invalid vote %q", vote)
		}
		p := tx.st.proposal(proposalID)
		if p == nil {
			return notFound("Proposal not found")
		}
		if p.Status != models.ProposalOpen {
			return violation("Voting closed")
		}
		if !tx.now.Before(p.EndsAt) {
			return violation("Voting period ended")
		}
		if !markVoted(tx.st.proposalVoters, proposalID, tx.sender) {
			return violation("Duplicate vote")
		}

		p.Votes.Add(vote)
		tx.record(tx.sender, "proposal_voted", fmt.Sprintf("Vote %s cast on proposal %s", vote, proposalID))
		tx.touch(TopicProposals)
		return nil
	})
}

// ResolveProposal closes an open proposal: passed when yes >= no (or when
// forced), rejected otherwise. A passed proposal applies its effect to the
// referenced policy or user. Already resolved proposals are left untouched.
func (s *Service) ResolveProposal(ctx context.Context, proposalID string) (models.TxResult, error) {
	return s.write(ctx, "resolve_proposal", false, func(tx *txn) error {
		p := tx.st.proposal(proposalID)
		if p == nil {
			return notFound("Proposal not found")
		}
		if p.Status != models.ProposalOpen {
			return violation("Proposal already resolved")
		}

		pass := s.Toggles().ForceProposalPass || p.Votes.Passing()
		if pass {
			p.Status = models.ProposalPassed
			applyProposal(tx.st, p)
		} else {
			p.Status = models.ProposalRejected
		}

		tx.record(actorDAO, "proposal_resolved", fmt.Sprintf("Proposal %s %s", proposalID, p.Status))
		tx.touch(TopicPolicies, TopicProposals, TopicUsers)
		return nil
	})
}

// applyProposal carries out a passed proposal. Membership, pool and claim
// resolution proposals are advisory and change nothing here.
func applyProposal(st *state, p *models.Proposal) {
	if p.RefID == "" {
		return
	}
	switch p.Kind {
	case models.KindPolicyCreate:
		setPolicyStatus(st, p.RefID, models.PolicyActive)
	case models.KindPolicyArchive:
		setPolicyStatus(st, p.RefID, models.PolicyArchived)
	case models.KindPolicyDelete:
		setPolicyStatus(st, p.RefID, models.PolicyDeleted)
	case models.KindDaoBanUser:
		if u, ok := st.users[p.RefID]; ok {
			u.Status = models.UserBanned
		}
	}
}

func setPolicyStatus(st *state, id string, status models.PolicyStatus) {
	if pol := st.policy(id); pol != nil {
		pol.Status = status
	}
}

// ProposeDaoChange opens a governance proposal of the given kind. Anyone
// connected may propose; only DAO members may vote. The proposal id is
// returned in TxResult.ID.
func (s *Service) ProposeDaoChange(ctx context.Context, draft models.ProposalDraft) (models.TxResult, error) {
	return s.write(ctx, "propose", true, func(tx *txn) error {
		if !draft.Kind.Valid() {
			return violation("Unknown proposal kind %q", draft.Kind)
		}
		if err := checkProposalRef(tx.st, draft.Kind, draft.RefID); err != nil {
			return err
		}
		p := &models.Proposal{
			ID:        tx.st.nextID("prp"),
			Title:     draft.Title,
			Summary:   draft.Summary,
			Kind:      draft.Kind,
			RefID:     draft.RefID,
			CreatedAt: tx.now,
			EndsAt:    tx.now.Add(ProposalVotingWindow),
			Status:    models.ProposalOpen,
		}
		tx.st.proposals = prepend(tx.st.proposals, p)

		tx.record(tx.sender, "proposal_created", fmt.Sprintf("Proposal %s created", p.ID))
		tx.touch(TopicProposals)
		tx.result.ID = p.ID
		return nil
	})
}

// checkProposalRef requires a present refID to name an entity of the type the
// kind acts on. Pool config references are free-form parameter names.
func checkProposalRef(st *state, kind models.ProposalKind, refID string) error {
	if refID == "" {
		return nil
	}
	switch kind {
	case models.KindPolicyCreate, models.KindPolicyArchive, models.KindPolicyDelete:
		if st.policy(refID) == nil {
			return notFound("Policy not found")
		}
	case models.KindDaoAddMember, models.KindDaoBanUser:
		if _, ok := st.users[refID]; !ok {
			return notFound("User not found")
		}
	case models.KindDaoRemoveMember:
		if !st.isDaoMember(refID) {
			return violation("Not a DAO member")
		}
	case models.KindClaimResolution:
		if st.claim(refID) == nil {
			return notFound("Claim not found")
		}
	}
	return nil
}
