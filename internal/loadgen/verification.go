package loadgen

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/skillswap/internal/domain/model"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ledgerPage is the largest journal page the server hands out by default.
const ledgerPage = 100

// verify checks that exactly one contender won each exchange, the final
// status matches the winner, credits are conserved and every member's
// balance equals opening balance plus journal.
func verify(
	ctx context.Context,
	c *client,
	cfg Config,
	members []string,
	exchanges []model.Exchange,
	wins map[string]int,
	report *Report,
) error {
	violate := func(format string, args ...any) {
		report.Violations = append(report.Violations, fmt.Sprintf(format, args...))
	}

	settledIn := make(map[string]int, len(exchanges))
	for _, ex := range exchanges {
		if n := wins[ex.ID]; n != 1 {
			violate("exchange %s had %d winning transitions", ex.ID, n)
		}
		var got model.Exchange
		if _, err := c.do(ctx, http.MethodGet, "/exchanges/"+ex.ID, ex.RequesterID, nil, &got); err != nil {
			return err
		}
		switch got.Status {
		case model.StatusCompleted:
			report.Completed++
		case model.StatusCancelled:
			report.Cancelled++
		default:
			violate("exchange %s ended %s", ex.ID, got.Status)
		}
		if got.Status == model.StatusCompleted {
			settledIn[ex.ID] = 0
		}
	}

	total := decimal.Zero
	fullJournal := true
	for _, id := range members {
		var m model.Member
		if _, err := c.do(ctx, http.MethodGet, "/members/"+id, "", nil, &m); err != nil {
			return err
		}
		total = total.Add(m.TimeBalance)

		var entries []model.LedgerEntry
		if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/members/%s/ledger?limit=%d", id, ledgerPage), id, nil, &entries); err != nil {
			return err
		}
		for _, e := range entries {
			if _, ok := settledIn[e.ExchangeID]; !ok {
				violate("ledger of %s references unsettled exchange %s", id, e.ExchangeID)
				continue
			}
			settledIn[e.ExchangeID]++
		}
		if len(entries) >= ledgerPage {
			fullJournal = false
		} else {
			sum := lo.Reduce(entries, func(acc decimal.Decimal, e model.LedgerEntry, _ int) decimal.Decimal {
				return acc.Add(e.Delta)
			}, decimal.Zero)
			if want := cfg.InitialBalance.Add(sum); !want.Equal(m.TimeBalance) {
				violate("member %s holds %s, journal implies %s", id, m.TimeBalance, want)
			}
		}
	}
	report.TotalAfter = total

	if !report.TotalAfter.Equal(report.TotalBefore) {
		violate("credits not conserved: %s before, %s after", report.TotalBefore, report.TotalAfter)
	}
	for id, legs := range settledIn {
		if fullJournal && legs != 2 {
			violate("exchange %s has %d ledger entries", id, legs)
		}
	}
	return nil
}
