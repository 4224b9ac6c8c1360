package models

import "time"

type ProposalKind string

const (
	KindPolicyCreate    ProposalKind = "policy_create"
	KindPolicyArchive   ProposalKind = "policy_archive"
	KindPolicyDelete    ProposalKind = "policy_delete"
	KindDaoAddMember    ProposalKind = "dao_add_member"
	KindDaoRemoveMember ProposalKind = "dao_remove_member"
	KindDaoBanUser      ProposalKind = "dao_ban_user"
	KindClaimResolution ProposalKind = "claim_resolution"
	KindPoolConfig      ProposalKind = "pool_config"
)

func (k ProposalKind) Valid() bool {
	switch k {
	case KindPolicyCreate, KindPolicyArchive, KindPolicyDelete,
		KindDaoAddMember, KindDaoRemoveMember, KindDaoBanUser,
		KindClaimResolution, KindPoolConfig:
		return true
	}
	return false
}

type ProposalStatus string

const (
	ProposalOpen     ProposalStatus = "open"
	ProposalPassed   ProposalStatus = "passed"
	ProposalFailed   ProposalStatus = "failed"
	ProposalRejected ProposalStatus = "rejected"
)

type Proposal struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Summary   string         `json:"summary"`
	Kind      ProposalKind   `json:"kind"`
	RefID     string         `json:"ref_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	EndsAt    time.Time      `json:"ends_at"`
	Status    ProposalStatus `json:"status"`
	Votes     Tally          `json:"votes"`
}

type ProposalDraft struct {
	Kind    ProposalKind `json:"kind" binding:"required"`
	Title   string       `json:"title" binding:"required"`
	Summary string       `json:"summary"`
	RefID   string       `json:"ref_id"`
}
