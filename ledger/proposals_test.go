package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/insure-dao/models"
)

func proposalByID(t *testing.T, s *Service, id string) models.Proposal {
	t.Helper()
	proposals, err := s.GetProposals(context.Background())
	require.NoError(t, err)
	for _, p := range proposals {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("proposal %s not found", id)
	return models.Proposal{}
}

func TestResolveProposal(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		force bool
		want  models.ProposalStatus
		yesNo models.Tally
	}{
		{"five to two passes", "prp-1", false, models.ProposalPassed, models.Tally{Yes: 5, No: 2}},
		{"three to four is rejected", "prp-2", false, models.ProposalRejected, models.Tally{Yes: 3, No: 4}},
		{"forced pass", "prp-2", true, models.ProposalPassed, models.Tally{Yes: 3, No: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestService(t)
			s.SetToggles(models.Toggles{ForceProposalPass: tt.force})

			res, err := s.ResolveProposal(context.Background(), tt.id)
			require.NoError(t, err)
			require.True(t, res.OK, res.Error)

			p := proposalByID(t, s, tt.id)
			assert.Equal(t, tt.want, p.Status)
			assert.Equal(t, tt.yesNo, p.Votes)

			trail, err := s.GetAuditTrail(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "proposal_resolved", trail[0].Event)
			assert.Equal(t, actorDAO, trail[0].Actor)
		})
	}
}

func TestResolveProposalAlreadyResolved(t *testing.T) {
	s, _ := newTestService(t)
	notified := false
	s.Subscribe(TopicProposals, func() { notified = true })

	res, err := s.ResolveProposal(context.Background(), "prp-3")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "Proposal already resolved", res.Error)
	assert.Equal(t, models.CodePolicyViolation, res.Code)
	assert.False(t, notified)
	assert.Equal(t, models.ProposalPassed, proposalByID(t, s, "prp-3").Status)

	res, err = s.ResolveProposal(context.Background(), "prp-404")
	require.NoError(t, err)
	assert.Equal(t, "Proposal not found", res.Error)
}

func TestResolveProposalEffects(t *testing.T) {
	tests := []struct {
		name  string
		kind  models.ProposalKind
		ref   string
		check func(t *testing.T, s *Service)
	}{
		{
			name: "archive policy",
			kind: models.KindPolicyArchive,
			ref:  "pol-3",
			check: func(t *testing.T, s *Service) {
				policies, err := s.GetPolicies(context.Background())
				require.NoError(t, err)
				assert.Equal(t, models.PolicyArchived, policies[2].Status)
			},
		},
		{
			name: "delete policy",
			kind: models.KindPolicyDelete,
			ref:  "pol-4",
			check: func(t *testing.T, s *Service) {
				policies, err := s.GetPolicies(context.Background())
				require.NoError(t, err)
				assert.Equal(t, models.PolicyDeleted, policies[3].Status)
			},
		},
		{
			name: "ban user",
			kind: models.KindDaoBanUser,
			ref:  outsider,
			check: func(t *testing.T, s *Service) {
				u, err := s.GetUser(context.Background(), outsider)
				require.NoError(t, err)
				assert.Equal(t, models.UserBanned, u.Status)
			},
		},
		{
			name: "pool config is advisory",
			kind: models.KindPoolConfig,
			ref:  "pool-yield",
			check: func(t *testing.T, s *Service) {
				pool, err := s.GetPoolStats(context.Background())
				require.NoError(t, err)
				assert.Equal(t, 750, pool.YieldRate)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestService(t)
			res, err := s.ProposeDaoChange(as(member), models.ProposalDraft{Kind: tt.kind, Title: tt.name, RefID: tt.ref})
			require.NoError(t, err)
			require.True(t, res.OK)

			// zero votes is a tie, which passes
			res, err = s.ResolveProposal(context.Background(), res.ID)
			require.NoError(t, err)
			require.True(t, res.OK)
			tt.check(t, s)
		})
	}
}

func TestRejectedProposalHasNoEffect(t *testing.T) {
	s, _ := newTestService(t)
	res, err := s.ProposeDaoChange(as(member), models.ProposalDraft{Kind: models.KindPolicyArchive, Title: "Archive", RefID: "pol-3"})
	require.NoError(t, err)
	_, err = s.VoteProposal(as(member), res.ID, models.VoteNo)
	require.NoError(t, err)

	_, err = s.ResolveProposal(context.Background(), res.ID)
	require.NoError(t, err)

	assert.Equal(t, models.ProposalRejected, proposalByID(t, s, res.ID).Status)
	policies, err := s.GetPolicies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PolicyActive, policies[2].Status)
}

func TestVoteProposal(t *testing.T) {
	s, _ := newTestService(t)

	res, err := s.VoteProposal(as(member), "prp-1", models.VoteYes)
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, models.Tally{Yes: 6, No: 2}, proposalByID(t, s, "prp-1").Votes)

	res, err = s.VoteProposal(as(member2), "prp-1", models.VoteNo)
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, models.Tally{Yes: 6, No: 3}, proposalByID(t, s, "prp-1").Votes)

	res, err = s.VoteProposal(as(member), "prp-1", models.VoteNo)
	require.NoError(t, err)
	assert.Equal(t, "Duplicate vote", res.Error)
	assert.Equal(t, models.Tally{Yes: 6, No: 3}, proposalByID(t, s, "prp-1").Votes)
}

func TestVoteProposalRejections(t *testing.T) {
	tests := []struct {
		name    string
		sender  string
		id      string
		wantErr string
	}{
		{"not a member", outsider, "prp-1", "Not a DAO member"},
		{"missing", member, "prp-404", "Proposal not found"},
		{"resolved", member, "prp-3", "Voting closed"},
		{"window elapsed", member, "prp-6", "Voting period ended"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestService(t)
			res, err := s.VoteProposal(as(tt.sender), tt.id, models.VoteYes)
			require.NoError(t, err)
			assert.False(t, res.OK)
			assert.Equal(t, tt.wantErr, res.Error)
		})
	}
}

func TestVoteProposalAfterWindow(t *testing.T) {
	s, clock := newTestService(t)
	clock.Advance(3*day + 1)

	res, err := s.VoteProposal(as(member), "prp-1", models.VoteYes)
	require.NoError(t, err)
	assert.Equal(t, "Voting period ended", res.Error)
}

func TestProposeDaoChange(t *testing.T) {
	s, _ := newTestService(t)

	res, err := s.ProposeDaoChange(as(outsider), models.ProposalDraft{
		Kind:    models.KindDaoAddMember,
		Title:   "Add Ravi",
		Summary: "Ravi has been active for a year",
		RefID:   outsider,
	})
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, "prp-7", res.ID)

	p := proposalByID(t, s, "prp-7")
	assert.Equal(t, models.ProposalOpen, p.Status)
	assert.Equal(t, t0.Add(ProposalVotingWindow), p.EndsAt)
	assert.Equal(t, models.Tally{}, p.Votes)

	res, err = s.ProposeDaoChange(as(outsider), models.ProposalDraft{Kind: "raise_fees", Title: "Fees"})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, `Unknown proposal kind "raise_fees"`, res.Error)
}

func TestProposeDaoChangeReference(t *testing.T) {
	tests := []struct {
		name     string
		kind     models.ProposalKind
		ref      string
		wantErr  string
		wantCode models.ErrorCode
	}{
		{"archive names a user", models.KindPolicyArchive, member, "Policy not found", models.CodeNotFound},
		{"delete missing policy", models.KindPolicyDelete, "pol-999", "Policy not found", models.CodeNotFound},
		{"ban names a policy", models.KindDaoBanUser, "pol-1", "User not found", models.CodeNotFound},
		{"add unknown user", models.KindDaoAddMember, "GNEW...0000", "User not found", models.CodeNotFound},
		{"remove non-member", models.KindDaoRemoveMember, outsider, "Not a DAO member", models.CodePolicyViolation},
		{"claim resolution names a policy", models.KindClaimResolution, "pol-2", "Claim not found", models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestService(t)
			res, err := s.ProposeDaoChange(as(member), models.ProposalDraft{Kind: tt.kind, Title: tt.name, RefID: tt.ref})
			require.NoError(t, err)
			assert.False(t, res.OK)
			assert.Equal(t, tt.wantErr, res.Error)
			assert.Equal(t, tt.wantCode, res.Code)

			proposals, err := s.GetProposals(context.Background())
			require.NoError(t, err)
			assert.Len(t, proposals, 6)
		})
	}

	t.Run("matching references are accepted", func(t *testing.T) {
		s, _ := newTestService(t)
		for _, d := range []models.ProposalDraft{
			{Kind: models.KindPolicyDelete, Title: "Delete", RefID: "pol-2"},
			{Kind: models.KindDaoRemoveMember, Title: "Remove", RefID: member2},
			{Kind: models.KindClaimResolution, Title: "Resolve", RefID: "clm-1"},
			{Kind: models.KindPoolConfig, Title: "Yield", RefID: "pool-yield"},
		} {
			res, err := s.ProposeDaoChange(as(member), d)
			require.NoError(t, err)
			assert.True(t, res.OK, res.Error)
		}
	})
}
