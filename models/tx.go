package models

// ErrorCode classifies a failed TxResult.
type ErrorCode string

const (
	CodeNotFound         ErrorCode = "not_found"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodePolicyViolation  ErrorCode = "policy_violation"
	CodeSimulatedFailure ErrorCode = "simulated_failure"
)

// TxResult is returned by every write. ID carries the new entity id for
// creating operations; ClaimID is set by claim submission.
type TxResult struct {
	OK      bool      `json:"ok"`
	TxID    string    `json:"tx_id,omitempty"`
	Error   string    `json:"error,omitempty"`
	Code    ErrorCode `json:"code,omitempty"`
	ID      string    `json:"id,omitempty"`
	ClaimID string    `json:"claim_id,omitempty"`
}

// Toggles is the test-control surface for latency and failure injection.
type Toggles struct {
	SlowResponses     bool `json:"slow_responses"`
	FailNextTx        bool `json:"fail_next_tx"`
	ForceProposalPass bool `json:"force_proposal_pass"`
	ForceClaimApprove bool `json:"force_claim_approve"`
	NetworkFlaky      bool `json:"network_flaky"`
}

type ImageUpload struct {
	Hash string `json:"hash"`
	URL  string `json:"url"`
}

type Summary struct {
	Users         int       `json:"users"`
	Policies      int       `json:"policies"`
	Subscriptions int       `json:"subscriptions"`
	Claims        int       `json:"claims"`
	Proposals     int       `json:"proposals"`
	Deposits      int       `json:"deposits"`
	AuditEvents   int       `json:"audit_events"`
	Pool          PoolStats `json:"pool"`
}
