package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/insure-dao/models"
)

func (s *Service) GetClaims(ctx context.Context) ([]models.Claim, error) {
	var out []models.Claim
	err := s.read(ctx, "get_claims", func(st *state) {
		out = copyAll(st.claims, nil)
	})
	return out, err
}

// SubmitClaim files a payout request once the policy's cooldown, counted
// from the subscription start, has elapsed. Another open or voting claim on
// the same subscription only flags the new one as conflicting.
func (s *Service) SubmitClaim(ctx context.Context, req models.ClaimRequest) (models.TxResult, error) {
	return s.write(ctx, "submit_claim", true, func(tx *txn) error {
		sub := tx.st.subscription(req.SubscriptionID)
		if sub == nil {
			return notFound("Subscription not found")
		}
		policy := tx.st.policy(sub.PolicyID)
		if policy == nil {
			return notFound("Policy not found")
		}

		cooldownEnds := sub.StartDate.Add(time.Duration(policy.Params.ClaimCooldownDays) * day)
		if tx.now.Before(cooldownEnds) {
			return violation("Cooldown active until %s", cooldownEnds.UTC().Format(time.RFC3339))
		}

		amount, err := parseAmount(req.Amount)
		if err != nil {
			return err
		}
		if exceedsCap(amount, policy.Params.MaxClaimAmount) {
			return violation("Amount exceeds policy maximum of %s", policy.Params.MaxClaimAmount)
		}

		conflict := false
		for _, c := range tx.st.claims {
			if c.SubscriptionID == req.SubscriptionID && (c.Status == models.ClaimOpen || c.Status == models.ClaimVoting) {
				conflict = true
				break
			}
		}

		claim := &models.Claim{
			ID:             tx.st.nextID("clm"),
			SubscriptionID: req.SubscriptionID,
			Claimer:        tx.sender,
			Amount:         amount.String(),
			EvidenceHash:   req.EvidenceHash,
			Description:    req.Description,
			Status:         models.ClaimVoting,
			CreatedAt:      tx.now,
			Conflict:       conflict,
		}
		tx.st.claims = prepend(tx.st.claims, claim)

		proposal := &models.Proposal{
			ID:        tx.st.nextID("prp"),
			Title:     "Claim Payout Request",
			Summary:   truncate(req.Description, summaryLength),
			Kind:      models.KindClaimResolution,
			RefID:     claim.ID,
			CreatedAt: tx.now,
			EndsAt:    tx.now.Add(ClaimVotingWindow),
			Status:    models.ProposalOpen,
		}
		tx.st.proposals = prepend(tx.st.proposals, proposal)

		tx.record(tx.sender, "claim_submitted", fmt.Sprintf("Claim %s submitted", claim.ID))
		tx.record(tx.sender, "proposal_created", fmt.Sprintf("Proposal %s created for claim %s", proposal.ID, claim.ID))
		tx.touch(TopicClaims, TopicProposals)
		tx.result.ID = claim.ID
		tx.result.ClaimID = claim.ID
		return nil
	})
}

// VoteClaim adds the sender's vote to a claim under review. Each DAO member
// votes at most once per claim.
func (s *Service) VoteClaim(ctx context.Context, claimID string, vote models.Vote) (models.TxResult, error) {
	return s.write(ctx, "vote_claim", true, func(tx *txn) error {
		if !tx.st.isDaoMember(tx.sender) {
			return unauthorized("Not a DAO member")
		}
		if !vote.Valid() {
			return violation("Invalid vote %q", vote)
		}
		claim := tx.st.claim(claimID)
		if claim == nil {
			return notFound("Claim not found")
		}
		if claim.Status != models.ClaimOpen && claim.Status != models.ClaimVoting {
			return violation("Voting closed")
		}
		if hasVoted(tx.st.claimVoters, claimID, tx.sender) || s.chance(DuplicateVoteRate) {
			return violation("Duplicate vote")
		}

		markVoted(tx.st.claimVoters, claimID, tx.sender)
		claim.Votes.Add(vote)
		tx.record(tx.sender, "claim_voted", fmt.Sprintf("Vote %s cast on claim %s", vote, claimID))
		tx.touch(TopicClaims)
		return nil
	})
}

// ExecutePayout decides a claim: approved when yes >= no (or when forced),
// otherwise rejected, in which case the claimer's credit is slashed by the
// policy's penalty. Decided claims are left untouched.
func (s *Service) ExecutePayout(ctx context.Context, claimID string) (models.TxResult, error) {
	return s.write(ctx, "execute_payout", true, func(tx *txn) error {
		claim := tx.st.claim(claimID)
		if claim == nil {
			return notFound("Claim not found")
		}
		if claim.Status.Terminal() {
			return violation("Claim already finalized")
		}
		if s.consumeFailNext() {
			return simulated("Payout failed")
		}

		if s.Toggles().ForceClaimApprove || claim.Votes.Passing() {
			claim.Status = models.ClaimApproved
		} else {
			claim.Status = models.ClaimRejected
		}
		tx.record(tx.sender, "payout_executed", fmt.Sprintf("Payout %s for claim %s", claim.Status, claimID))
		tx.touch(TopicClaims)

		if claim.Status == models.ClaimRejected {
			if slash := claimPenalty(tx.st, claim); slash > 0 {
				adjustCredit(tx, claim.Claimer, -slash,
					fmt.Sprintf("Credit score adjusted by %d after claim %s was rejected", -slash, claimID))
			}
		}
		return nil
	})
}

func claimPenalty(st *state, claim *models.Claim) int {
	sub := st.subscription(claim.SubscriptionID)
	if sub == nil {
		return 0
	}
	policy := st.policy(sub.PolicyID)
	if policy == nil {
		return 0
	}
	return policy.Params.CreditSlashOnReject
}
