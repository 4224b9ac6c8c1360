package ledger

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/insure-dao/models"
)

//go:embed seed.yaml
var seedYAML []byte

type seedDoc struct {
	DaoMembers []string `yaml:"dao_members"`
	Users      []struct {
		Address     string `yaml:"address"`
		Name        string `yaml:"name"`
		CreditScore int    `yaml:"credit_score"`
	} `yaml:"users"`
	Policies []struct {
		Title       string              `yaml:"title"`
		Description string              `yaml:"description"`
		Status      models.PolicyStatus `yaml:"status"`
		Creator     string              `yaml:"creator"`
		Params      models.PolicyParams `yaml:"params"`
	} `yaml:"policies"`
	Subscriptions []struct {
		Policy      int    `yaml:"policy"`
		Subscriber  string `yaml:"subscriber"`
		Start       int    `yaml:"start"`
		LastPayment int    `yaml:"last_payment"`
		NextDue     int    `yaml:"next_due"`
	} `yaml:"subscriptions"`
	Claims []struct {
		Subscription int                `yaml:"subscription"`
		Claimer      string             `yaml:"claimer"`
		Amount       string             `yaml:"amount"`
		EvidenceHash string             `yaml:"evidence_hash"`
		Description  string             `yaml:"description"`
		Status       models.ClaimStatus `yaml:"status"`
		Votes        models.Tally       `yaml:"votes"`
		Created      int                `yaml:"created"`
	} `yaml:"claims"`
	Proposals []struct {
		Title     string                `yaml:"title"`
		Summary   string                `yaml:"summary"`
		Kind      models.ProposalKind   `yaml:"kind"`
		RefPolicy *int                  `yaml:"ref_policy"`
		RefID     string                `yaml:"ref_id"`
		Created   int                   `yaml:"created"`
		Ends      int                   `yaml:"ends"`
		Status    models.ProposalStatus `yaml:"status"`
		Votes     models.Tally          `yaml:"votes"`
	} `yaml:"proposals"`
	Pool     models.PoolStats `yaml:"pool"`
	Deposits []struct {
		Investor string `yaml:"investor"`
		Amount   string `yaml:"amount"`
		Created  int    `yaml:"created"`
		LockEnds int    `yaml:"lock_ends"`
	} `yaml:"deposits"`
	Audit []struct {
		Time    int    `yaml:"time"`
		Event   string `yaml:"event"`
		Actor   string `yaml:"actor"`
		Details string `yaml:"details"`
	} `yaml:"audit"`
}

// loadSeed builds the initial state with every timestamp relative to now.
// members joins the seeded DAO member list.
func loadSeed(now time.Time, members []string) (*state, error) {
	var doc seedDoc
	if err := yaml.Unmarshal(seedYAML, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	at := func(days int) time.Time { return now.Add(time.Duration(days) * day) }

	st := newState()
	st.daoMembers = append(st.daoMembers, doc.DaoMembers...)
	for _, m := range members {
		if m != "" && !st.isDaoMember(m) {
			st.daoMembers = append(st.daoMembers, m)
		}
	}

	for _, u := range doc.Users {
		st.users[u.Address] = &models.User{
			Address:     u.Address,
			Name:        u.Name,
			CreditScore: models.ClampCredit(u.CreditScore),
			Status:      models.UserActive,
			JoinDate:    now,
			IsDaoMember: st.isDaoMember(u.Address),
		}
	}

	for _, p := range doc.Policies {
		st.policies = append(st.policies, &models.Policy{
			ID:          st.nextID("pol"),
			Title:       p.Title,
			Description: p.Description,
			Params:      p.Params,
			Status:      p.Status,
			CreatedAt:   now,
			Creator:     p.Creator,
		})
	}

	for _, sub := range doc.Subscriptions {
		if sub.Policy < 0 || sub.Policy >= len(st.policies) {
			return nil, fmt.Errorf("seed subscription references policy %d", sub.Policy)
		}
		st.subscriptions = append(st.subscriptions, &models.Subscription{
			ID:              st.nextID("sub"),
			PolicyID:        st.policies[sub.Policy].ID,
			Subscriber:      sub.Subscriber,
			StartDate:       at(sub.Start),
			Status:          models.SubscriptionActive,
			LastPaymentDate: at(sub.LastPayment),
			NextPaymentDue:  at(sub.NextDue),
			GracePeriodDays: GracePeriodDays,
		})
	}

	for _, c := range doc.Claims {
		if c.Subscription < 0 || c.Subscription >= len(st.subscriptions) {
			return nil, fmt.Errorf("seed claim references subscription %d", c.Subscription)
		}
		st.claims = append(st.claims, &models.Claim{
			ID:             st.nextID("clm"),
			SubscriptionID: st.subscriptions[c.Subscription].ID,
			Claimer:        c.Claimer,
			Amount:         c.Amount,
			EvidenceHash:   c.EvidenceHash,
			Description:    c.Description,
			Status:         c.Status,
			Votes:          c.Votes,
			CreatedAt:      at(c.Created),
		})
	}

	for _, p := range doc.Proposals {
		ref := p.RefID
		if p.RefPolicy != nil {
			if *p.RefPolicy < 0 || *p.RefPolicy >= len(st.policies) {
				return nil, fmt.Errorf("seed proposal references policy %d", *p.RefPolicy)
			}
			ref = st.policies[*p.RefPolicy].ID
		}
		st.proposals = append(st.proposals, &models.Proposal{
			ID:        st.nextID("prp"),
			Title:     p.Title,
			Summary:   p.Summary,
			Kind:      p.Kind,
			RefID:     ref,
			CreatedAt: at(p.Created),
			EndsAt:    at(p.Ends),
			Status:    p.Status,
			Votes:     p.Votes,
		})
	}

	st.pool = copyPool(doc.Pool)

	for _, d := range doc.Deposits {
		st.deposits = append(st.deposits, &models.Deposit{
			ID:         st.nextID("dep"),
			Investor:   d.Investor,
			Amount:     d.Amount,
			CreatedAt:  at(d.Created),
			LockEndsAt: at(d.LockEnds),
			Status:     models.DepositLocked,
		})
	}

	for _, e := range doc.Audit {
		st.audit = append(st.audit, models.AuditEvent{
			ID:      st.nextID("evt"),
			Time:    at(e.Time),
			Event:   e.Event,
			Details: e.Details,
			Actor:   e.Actor,
		})
	}

	return st, nil
}
