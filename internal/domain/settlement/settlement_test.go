package settlement_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/skillswap/internal/domain/model"
	"github.com/okian/skillswap/internal/domain/settlement"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeLedger keeps balances in a map and records every write.
type fakeLedger struct {
	balances map[string]decimal.Decimal
	settled  map[string]time.Time
	entries  []model.LedgerEntry
	writes   int
}

func newFakeLedger(balances map[string]int64) *fakeLedger {
	l := &fakeLedger{
		balances: make(map[string]decimal.Decimal),
		settled:  make(map[string]time.Time),
	}
	for id, b := range balances {
		l.balances[id] = decimal.NewFromInt(b)
	}
	return l
}

func (l *fakeLedger) GetBalance(memberID string) (decimal.Decimal, error) {
	b, ok := l.balances[memberID]
	if !ok {
		return decimal.Zero, model.ErrMemberNotFound
	}
	return b, nil
}

func (l *fakeLedger) AdjustBalance(memberID string, delta decimal.Decimal) (decimal.Decimal, error) {
	b, ok := l.balances[memberID]
	if !ok {
		return decimal.Zero, model.ErrMemberNotFound
	}
	l.writes++
	l.balances[memberID] = b.Add(delta)
	return l.balances[memberID], nil
}

func (l *fakeLedger) MarkSettled(exchangeID string, at time.Time) error {
	if _, ok := l.settled[exchangeID]; ok {
		return model.ErrAlreadySettled
	}
	l.writes++
	l.settled[exchangeID] = at
	return nil
}

func (l *fakeLedger) AppendEntry(entry model.LedgerEntry) error {
	l.writes++
	l.entries = append(l.entries, entry)
	return nil
}

func completedExchange(credits int64) *model.Exchange {
	return &model.Exchange{
		ID:          "x1",
		RequesterID: "alice",
		ProviderID:  "bob",
		Status:      model.StatusCompleted,
		TimeCredits: decimal.NewFromInt(credits),
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("entry-%d", n)
	}
}

func TestEngineSettle(t *testing.T) {
	at := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	Convey("Given a settlement engine with the default policy", t, func() {
		engine := settlement.NewEngine(settlement.WithIDGenerator(sequentialIDs()))

		Convey("When settling a six credit exchange", func() {
			ledger := newFakeLedger(map[string]int64{"alice": 10, "bob": 0})
			ex := completedExchange(6)

			receipt, err := engine.Settle(ledger, ex, at)

			Convey("Then credits move from requester to provider", func() {
				So(err, ShouldBeNil)
				So(ledger.balances["alice"].Equal(decimal.NewFromInt(4)), ShouldBeTrue)
				So(ledger.balances["bob"].Equal(decimal.NewFromInt(6)), ShouldBeTrue)
				So(receipt.RequesterBalance.Equal(decimal.NewFromInt(4)), ShouldBeTrue)
				So(receipt.ProviderBalance.Equal(decimal.NewFromInt(6)), ShouldBeTrue)
			})

			Convey("Then completedAt is stamped", func() {
				So(ex.CompletedAt, ShouldNotBeNil)
				So(*ex.CompletedAt, ShouldEqual, at)
			})

			Convey("Then two journal legs are written that sum to zero", func() {
				So(len(ledger.entries), ShouldEqual, 2)
				So(ledger.entries[0].Kind, ShouldEqual, model.EntryDebit)
				So(ledger.entries[0].MemberID, ShouldEqual, "alice")
				So(ledger.entries[1].Kind, ShouldEqual, model.EntryCredit)
				So(ledger.entries[1].MemberID, ShouldEqual, "bob")
				sum := ledger.entries[0].Delta.Add(ledger.entries[1].Delta)
				So(sum.IsZero(), ShouldBeTrue)
				So(ledger.entries[0].ID, ShouldEqual, "entry-1")
			})

			Convey("Then the settlement marker is recorded", func() {
				So(ledger.settled, ShouldContainKey, "x1")
			})
		})

		Convey("When the requester balance would go negative", func() {
			ledger := newFakeLedger(map[string]int64{"alice": 2, "bob": 0})

			_, err := engine.Settle(ledger, completedExchange(6), at)

			Convey("Then the transfer still happens", func() {
				So(err, ShouldBeNil)
				So(ledger.balances["alice"].Equal(decimal.NewFromInt(-4)), ShouldBeTrue)
			})
		})

		Convey("When the requester does not exist", func() {
			ledger := newFakeLedger(map[string]int64{"bob": 0})
			ex := completedExchange(6)

			_, err := engine.Settle(ledger, ex, at)

			Convey("Then it fails with MemberNotFound and writes nothing", func() {
				So(errors.Is(err, model.ErrMemberNotFound), ShouldBeTrue)
				So(ledger.writes, ShouldEqual, 0)
				So(ex.CompletedAt, ShouldBeNil)
			})
		})

		Convey("When the provider does not exist", func() {
			ledger := newFakeLedger(map[string]int64{"alice": 10})
			ex := completedExchange(6)

			_, err := engine.Settle(ledger, ex, at)

			Convey("Then it fails with MemberNotFound and writes nothing", func() {
				So(errors.Is(err, model.ErrMemberNotFound), ShouldBeTrue)
				So(ledger.writes, ShouldEqual, 0)
				So(ledger.balances["alice"].Equal(decimal.NewFromInt(10)), ShouldBeTrue)
			})
		})

		Convey("When the exchange was already settled", func() {
			ledger := newFakeLedger(map[string]int64{"alice": 10, "bob": 0})
			ledger.settled["x1"] = at

			_, err := engine.Settle(ledger, completedExchange(6), at)

			Convey("Then no credits move", func() {
				So(errors.Is(err, model.ErrAlreadySettled), ShouldBeTrue)
				So(ledger.balances["alice"].Equal(decimal.NewFromInt(10)), ShouldBeTrue)
				So(ledger.balances["bob"].IsZero(), ShouldBeTrue)
			})
		})

		Convey("When completedAt is already set", func() {
			ledger := newFakeLedger(map[string]int64{"alice": 10, "bob": 0})
			ex := completedExchange(6)
			prev := at.Add(-time.Hour)
			ex.CompletedAt = &prev

			_, err := engine.Settle(ledger, ex, at)

			So(errors.Is(err, model.ErrAlreadySettled), ShouldBeTrue)
			So(ledger.writes, ShouldEqual, 0)
		})

		Convey("When the exchange is not marked completed", func() {
			ledger := newFakeLedger(map[string]int64{"alice": 10, "bob": 0})
			ex := completedExchange(6)
			ex.Status = model.StatusAccepted

			_, err := engine.Settle(ledger, ex, at)

			So(errors.Is(err, model.ErrInvalidTransition), ShouldBeTrue)
			So(ledger.writes, ShouldEqual, 0)
		})

		Convey("When the exchange carries no credits", func() {
			ledger := newFakeLedger(map[string]int64{"alice": 10, "bob": 0})

			_, err := engine.Settle(ledger, completedExchange(0), at)

			So(errors.Is(err, model.ErrInvalidRequest), ShouldBeTrue)
			So(ledger.writes, ShouldEqual, 0)
		})
	})

	Convey("Given a settlement engine that denies overdrafts", t, func() {
		engine := settlement.NewEngine(settlement.WithPolicy(settlement.DenyNegative))

		Convey("When the requester cannot cover the credits", func() {
			ledger := newFakeLedger(map[string]int64{"alice": 2, "bob": 0})

			_, err := engine.Settle(ledger, completedExchange(6), at)

			Convey("Then it fails with InsufficientCredits and writes nothing", func() {
				So(errors.Is(err, model.ErrInsufficientCredits), ShouldBeTrue)
				So(ledger.writes, ShouldEqual, 0)
			})
		})

		Convey("When the requester has exactly enough", func() {
			ledger := newFakeLedger(map[string]int64{"alice": 6, "bob": 0})

			_, err := engine.Settle(ledger, completedExchange(6), at)

			So(err, ShouldBeNil)
			So(ledger.balances["alice"].IsZero(), ShouldBeTrue)
		})
	})
}

func TestParsePolicy(t *testing.T) {
	Convey("Given policy names", t, func() {
		p, err := settlement.ParsePolicy("")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, settlement.AllowNegative)

		p, err = settlement.ParsePolicy("DENY")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, settlement.DenyNegative)
		So(p.String(), ShouldEqual, "deny")

		_, err = settlement.ParsePolicy("sometimes")
		So(err, ShouldNotBeNil)
	})
}
