package models

import "time"

type ClaimStatus string

const (
	ClaimOpen     ClaimStatus = "open"
	ClaimVoting   ClaimStatus = "voting"
	ClaimPending  ClaimStatus = "pending"
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
)

// Terminal reports whether the claim has been decided.
func (s ClaimStatus) Terminal() bool {
	return s == ClaimApproved || s == ClaimRejected
}

type Vote string

const (
	VoteYes Vote = "yes"
	VoteNo  Vote = "no"
)

func (v Vote) Valid() bool {
	return v == VoteYes || v == VoteNo
}

type Tally struct {
	Yes int `json:"yes" yaml:"yes"`
	No  int `json:"no" yaml:"no"`
}

// Add increments the count for v.
func (t *Tally) Add(v Vote) {
	switch v {
	case VoteYes:
		t.Yes++
	case VoteNo:
		t.No++
	}
}

// Passing is the majority rule shared by claims and proposals; ties pass.
func (t Tally) Passing() bool {
	return t.Yes >= t.No
}

type Claim struct {
	ID             string      `json:"id"`
	SubscriptionID string      `json:"subscription_id"`
	Claimer        string      `json:"claimer"`
	Amount         string      `json:"amount"`
	EvidenceHash   string      `json:"evidence_hash"`
	Description    string      `json:"description"`
	Status         ClaimStatus `json:"status"`
	Votes          Tally       `json:"votes"`
	CreatedAt      time.Time   `json:"created_at"`
	Conflict       bool        `json:"conflict,omitempty"`
}

type ClaimRequest struct {
	SubscriptionID string `json:"subscription_id" binding:"required"`
	Amount         string `json:"amount" binding:"required"`
	EvidenceHash   string `json:"evidence_hash"`
	Description    string `json:"description"`
}
