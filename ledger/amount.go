package ledger

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourusername/insure-dao/models"
)

var bps = decimal.NewFromInt(10000)

// parseAmount accepts a positive integer amount in stroops. Amounts stay
// strings on the ledger; arithmetic goes through decimal so they are never
// rounded through floating point.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() || !d.IsPositive() {
		return decimal.Zero, violation("Invalid amount %q", s)
	}
	return d, nil
}

// exceedsCap reports whether amount is above limit. Limits that do not
// parse are treated as absent.
func exceedsCap(amount decimal.Decimal, limit string) bool {
	l, err := decimal.NewFromString(strings.TrimSpace(limit))
	if err != nil || !l.IsPositive() {
		return false
	}
	return amount.GreaterThan(l)
}

func addAmount(total string, delta decimal.Decimal) string {
	t, err := decimal.NewFromString(total)
	if err != nil {
		t = decimal.Zero
	}
	t = t.Add(delta)
	if t.IsNegative() {
		t = decimal.Zero
	}
	return t.String()
}

// applyDeposit moves delta into (or, when negative, out of) the pool totals
// and recomputes investor shares from locked principal.
func (st *state) applyDeposit(delta decimal.Decimal) {
	st.pool.TotalPool = addAmount(st.pool.TotalPool, delta)
	st.pool.TotalInvested = addAmount(st.pool.TotalInvested, delta)
	st.pool.InvestorShares = investorShares(st.deposits)
}

// investorShares returns each investor's portion of locked principal in
// basis points, ordered by address.
func investorShares(deposits []*models.Deposit) []models.InvestorShare {
	byInvestor := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, d := range deposits {
		if d.Status != models.DepositLocked {
			continue
		}
		amt, err := decimal.NewFromString(d.Amount)
		if err != nil {
			continue
		}
		byInvestor[d.Investor] = byInvestor[d.Investor].Add(amt)
		total = total.Add(amt)
	}

	shares := make([]models.InvestorShare, 0, len(byInvestor))
	if total.IsZero() {
		return shares
	}
	for investor, amt := range byInvestor {
		shares = append(shares, models.InvestorShare{
			Investor:     investor,
			SharePercent: int(amt.Mul(bps).Div(total).IntPart()),
		})
	}
	slices.SortFunc(shares, func(a, b models.InvestorShare) int {
		return strings.Compare(a.Investor, b.Investor)
	})
	return shares
}
