package ledger

import (
	"fmt"
	"slices"

	"github.com/yourusername/insure-dao/models"
)

// state is owned by Service and only touched with Service.mu held.
// Collections are ordered most recent first.
type state struct {
	seq map[string]int

	users         map[string]*models.User
	daoMembers    []string
	policies      []*models.Policy
	subscriptions []*models.Subscription
	claims        []*models.Claim
	proposals     []*models.Proposal
	deposits      []*models.Deposit
	audit         []models.AuditEvent
	pool          models.PoolStats

	claimVoters    map[string]map[string]bool
	proposalVoters map[string]map[string]bool
}

func newState() *state {
	return &state{
		seq:            make(map[string]int),
		users:          make(map[string]*models.User),
		claimVoters:    make(map[string]map[string]bool),
		proposalVoters: make(map[string]map[string]bool),
	}
}

func (st *state) nextID(prefix string) string {
	st.seq[prefix]++
	return fmt.Sprintf("%s-%d", prefix, st.seq[prefix])
}

func (st *state) isDaoMember(addr string) bool {
	return slices.Contains(st.daoMembers, addr)
}

func (st *state) policy(id string) *models.Policy {
	for _, p := range st.policies {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (st *state) subscription(id string) *models.Subscription {
	for _, sub := range st.subscriptions {
		if sub.ID == id {
			return sub
		}
	}
	return nil
}

func (st *state) claim(id string) *models.Claim {
	for _, c := range st.claims {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (st *state) proposal(id string) *models.Proposal {
	for _, p := range st.proposals {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (st *state) deposit(id string) *models.Deposit {
	for _, d := range st.deposits {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// markVoted records voter against id and reports false if it was already
// present.
func markVoted(voters map[string]map[string]bool, id, voter string) bool {
	if voters[id] == nil {
		voters[id] = make(map[string]bool)
	}
	if voters[id][voter] {
		return false
	}
	voters[id][voter] = true
	return true
}

func hasVoted(voters map[string]map[string]bool, id, voter string) bool {
	return voters[id][voter]
}

func prepend[T any](s []*T, v *T) []*T {
	return append([]*T{v}, s...)
}

func copyAll[T any](s []*T, keep func(*T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if keep == nil || keep(v) {
			out = append(out, *v)
		}
	}
	return out
}

func copyPool(p models.PoolStats) models.PoolStats {
	p.InvestorShares = slices.Clone(p.InvestorShares)
	if p.InvestorShares == nil {
		p.InvestorShares = []models.InvestorShare{}
	}
	return p
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
