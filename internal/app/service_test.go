package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/skillswap/internal/adapters/repository"
	service "github.com/okian/skillswap/internal/app"
	"github.com/okian/skillswap/internal/domain/model"
	"github.com/okian/skillswap/internal/domain/settlement"
	"github.com/okian/skillswap/pkg/logger"
	"github.com/okian/skillswap/pkg/metrics"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.ExchangeEvent
}

func (n *recordingNotifier) Name() string { return "recording" }

func (n *recordingNotifier) Notify(_ context.Context, e model.ExchangeEvent) error { //nolint:gocritic // hugeParam: matches the queue payload
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// counterValue reads a counter from the service registry by name suffix.
func counterValue(name string) float64 {
	families, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	for _, f := range families {
		if strings.HasSuffix(f.GetName(), name) && len(f.GetMetric()) > 0 {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

// fixture starts a service on an in-memory store with alice (10 credits),
// bob (0 credits) and a skill of bob's charged at 3 credits per hour.
type fixture struct {
	svc   *service.Service
	skill model.Skill
	ctx   context.Context
}

func newFixture(opts ...service.Option) *fixture {
	ctx := context.Background()
	opts = append([]service.Option{service.WithClock(func() time.Time { return testNow })}, opts...)
	svc := service.New(opts...)
	So(svc.Start(ctx), ShouldBeNil)

	_, err := svc.CreateMember(ctx, service.CreateMemberInput{ID: "alice", Name: "Alice", InitialBalance: dec(10)})
	So(err, ShouldBeNil)
	_, err = svc.CreateMember(ctx, service.CreateMemberInput{ID: "bob", Name: "Bob"})
	So(err, ShouldBeNil)
	skill, err := svc.CreateSkill(ctx, service.CreateSkillInput{OwnerID: "bob", Title: "Bike repair", HourlyRate: dec(3)})
	So(err, ShouldBeNil)

	return &fixture{svc: svc, skill: skill, ctx: ctx}
}

func (f *fixture) request(requester string, hours int64) (model.Exchange, error) {
	return f.svc.CreateExchange(f.ctx, service.CreateExchangeInput{
		RequesterID:    requester,
		SkillID:        f.skill.ID,
		RequestMessage: "my bike has a flat",
		ProposedDate:   testNow.Add(48 * time.Hour),
		Duration:       dec(hours),
	})
}

func (f *fixture) balance(id string) decimal.Decimal {
	m, err := f.svc.GetMember(f.ctx, id)
	So(err, ShouldBeNil)
	return m.TimeBalance
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a running service with two members and a skill", t, func() {
		f := newFixture()
		defer func() { _ = f.svc.Stop(context.Background()) }()

		Convey("When alice requests two hours of bob's skill", func() {
			ex, err := f.request("alice", 2)

			Convey("Then a pending exchange is priced at six credits", func() {
				So(err, ShouldBeNil)
				So(ex.Status, ShouldEqual, model.StatusPending)
				So(ex.ProviderID, ShouldEqual, "bob")
				So(ex.TimeCredits.Equal(dec(6)), ShouldBeTrue)
				So(ex.Version, ShouldEqual, 1)
				So(f.balance("alice").Equal(dec(10)), ShouldBeTrue)
			})

			Convey("And bob accepts and completes it", func() {
				_, err := f.svc.RequestTransition(f.ctx, ex.ID, "bob", model.StatusAccepted, "Saturday works")
				So(err, ShouldBeNil)
				done, err := f.svc.RequestTransition(f.ctx, ex.ID, "bob", model.StatusCompleted, "")
				So(err, ShouldBeNil)

				Convey("Then six credits move from alice to bob", func() {
					So(done.Status, ShouldEqual, model.StatusCompleted)
					So(done.ResponseMessage, ShouldEqual, "Saturday works")
					So(done.CompletedAt, ShouldNotBeNil)
					So(f.balance("alice").Equal(dec(4)), ShouldBeTrue)
					So(f.balance("bob").Equal(dec(6)), ShouldBeTrue)
				})

				Convey("Then each side has one ledger entry", func() {
					entries, err := f.svc.ListLedgerEntries(f.ctx, "alice", "alice", 0)
					So(err, ShouldBeNil)
					So(len(entries), ShouldEqual, 1)
					So(entries[0].Delta.Equal(dec(-6)), ShouldBeTrue)
					So(entries[0].BalanceAfter.Equal(dec(4)), ShouldBeTrue)

					entries, err = f.svc.ListLedgerEntries(f.ctx, "bob", "bob", 0)
					So(err, ShouldBeNil)
					So(len(entries), ShouldEqual, 1)
					So(entries[0].Kind, ShouldEqual, model.EntryCredit)
				})

				Convey("Then completing again is rejected and balances are unchanged", func() {
					_, err := f.svc.RequestTransition(f.ctx, ex.ID, "bob", model.StatusCompleted, "")
					So(errors.Is(err, model.ErrInvalidTransition), ShouldBeTrue)
					So(f.balance("alice").Equal(dec(4)), ShouldBeTrue)
				})

				Convey("Then stats report the settled credits", func() {
					stats, err := f.svc.GetStats(f.ctx)
					So(err, ShouldBeNil)
					So(stats.ExchangesByStatus[model.StatusCompleted], ShouldEqual, 1)
					So(stats.CreditsSettled.Equal(dec(6)), ShouldBeTrue)
					So(stats.Members, ShouldEqual, 2)
				})
			})

			Convey("And bob declines it", func() {
				_, err := f.svc.RequestTransition(f.ctx, ex.ID, "bob", model.StatusDeclined, "away that week")
				So(err, ShouldBeNil)

				Convey("Then it can no longer be completed", func() {
					_, err := f.svc.RequestTransition(f.ctx, ex.ID, "bob", model.StatusCompleted, "")
					So(errors.Is(err, model.ErrInvalidTransition), ShouldBeTrue)

					got, err := f.svc.GetExchange(f.ctx, ex.ID, "alice")
					So(err, ShouldBeNil)
					So(got.Status, ShouldEqual, model.StatusDeclined)
				})
			})

			Convey("And alice tries to accept or complete it", func() {
				_, errAccept := f.svc.RequestTransition(f.ctx, ex.ID, "alice", model.StatusAccepted, "")
				_, errComplete := f.svc.RequestTransition(f.ctx, ex.ID, "alice", model.StatusCompleted, "")

				Convey("Then both are forbidden", func() {
					So(errors.Is(errAccept, model.ErrForbidden), ShouldBeTrue)
					So(errors.Is(errComplete, model.ErrForbidden), ShouldBeTrue)
				})
			})

			Convey("And someone else looks at or moves it", func() {
				_, errGet := f.svc.GetExchange(f.ctx, ex.ID, "mallory")
				_, errMove := f.svc.RequestTransition(f.ctx, ex.ID, "mallory", model.StatusCancelled, "")

				Convey("Then both are forbidden", func() {
					So(errors.Is(errGet, model.ErrForbidden), ShouldBeTrue)
					So(errors.Is(errMove, model.ErrForbidden), ShouldBeTrue)
				})
			})

			Convey("And alice cancels it", func() {
				got, err := f.svc.RequestTransition(f.ctx, ex.ID, "alice", model.StatusCancelled, "")
				So(err, ShouldBeNil)
				So(got.Status, ShouldEqual, model.StatusCancelled)
			})

			Convey("Then it is listed for both participants", func() {
				mine, err := f.svc.ListExchanges(f.ctx, "alice", 10)
				So(err, ShouldBeNil)
				So(len(mine), ShouldEqual, 1)
				theirs, err := f.svc.ListExchanges(f.ctx, "bob", 10)
				So(err, ShouldBeNil)
				So(len(theirs), ShouldEqual, 1)
			})
		})

		Convey("When the transition names an unknown exchange", func() {
			_, err := f.svc.RequestTransition(f.ctx, "missing", "bob", model.StatusAccepted, "")
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
		})

		Convey("When the target status is unknown", func() {
			_, err := f.svc.RequestTransition(f.ctx, "missing", "bob", model.Status("archived"), "")
			So(errors.Is(err, model.ErrInvalidStatus), ShouldBeTrue)
		})
	})
}

func TestService_CreateExchange(t *testing.T) {
	Convey("Given a running service", t, func() {
		f := newFixture()
		defer func() { _ = f.svc.Stop(context.Background()) }()

		Convey("When a member with two credits asks for six credits of service", func() {
			_, err := f.svc.CreateMember(f.ctx, service.CreateMemberInput{ID: "carol", Name: "Carol", InitialBalance: dec(2)})
			So(err, ShouldBeNil)
			_, err = f.request("carol", 2)

			Convey("Then the request fails and nothing is stored", func() {
				So(errors.Is(err, model.ErrInsufficientCredits), ShouldBeTrue)
				list, err := f.svc.ListExchanges(f.ctx, "carol", 0)
				So(err, ShouldBeNil)
				So(list, ShouldBeEmpty)
			})
		})

		Convey("When bob requests his own skill", func() {
			_, err := f.request("bob", 1)
			So(errors.Is(err, model.ErrSelfExchange), ShouldBeTrue)
		})

		Convey("When the skill does not exist", func() {
			_, err := f.svc.CreateExchange(f.ctx, service.CreateExchangeInput{
				RequesterID:  "alice",
				SkillID:      "nope",
				ProposedDate: testNow,
				Duration:     dec(1),
			})
			So(errors.Is(err, model.ErrSkillNotFound), ShouldBeTrue)
		})

		Convey("When the requester does not exist", func() {
			_, err := f.request("ghost", 1)
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			So(errors.Is(err, model.ErrMemberNotFound), ShouldBeFalse)
		})

		Convey("When the duration is out of range", func() {
			_, err := f.request("alice", 0)
			So(errors.Is(err, model.ErrInvalidRequest), ShouldBeTrue)
		})

		Convey("When the proposed date is missing", func() {
			_, err := f.svc.CreateExchange(f.ctx, service.CreateExchangeInput{
				RequesterID: "alice",
				SkillID:     f.skill.ID,
				Duration:    dec(1),
			})
			So(errors.Is(err, model.ErrInvalidRequest), ShouldBeTrue)
		})

		Convey("When the message is too long", func() {
			_, err := f.svc.CreateExchange(f.ctx, service.CreateExchangeInput{
				RequesterID:    "alice",
				SkillID:        f.skill.ID,
				RequestMessage: strings.Repeat("é", 501),
				ProposedDate:   testNow,
				Duration:       dec(1),
			})
			So(errors.Is(err, model.ErrInvalidRequest), ShouldBeTrue)
		})

		Convey("When the same idempotency key is sent twice", func() {
			in := service.CreateExchangeInput{
				RequesterID:    "alice",
				SkillID:        f.skill.ID,
				ProposedDate:   testNow,
				Duration:       dec(1),
				IdempotencyKey: "k-1",
			}
			first, err := f.svc.CreateExchange(f.ctx, in)
			So(err, ShouldBeNil)
			_, err = f.svc.CreateExchange(f.ctx, in)

			Convey("Then the replay is rejected with the first exchange id", func() {
				So(errors.Is(err, service.ErrDuplicateRequest), ShouldBeTrue)
				var dup *service.DuplicateError
				So(errors.As(err, &dup), ShouldBeTrue)
				So(dup.ExchangeID, ShouldEqual, first.ID)

				list, err := f.svc.ListExchanges(f.ctx, "alice", 0)
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 1)
			})
		})

		Convey("When a request with an idempotency key fails", func() {
			in := service.CreateExchangeInput{
				RequesterID:    "alice",
				SkillID:        f.skill.ID,
				ProposedDate:   testNow,
				Duration:       dec(4),
				IdempotencyKey: "k-2",
			}
			_, err := f.svc.CreateExchange(f.ctx, in)
			So(errors.Is(err, model.ErrInsufficientCredits), ShouldBeTrue)

			Convey("Then the key can be used again", func() {
				in.Duration = dec(1)
				_, err := f.svc.CreateExchange(f.ctx, in)
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestService_Members(t *testing.T) {
	Convey("Given a running service", t, func() {
		f := newFixture()
		defer func() { _ = f.svc.Stop(context.Background()) }()

		Convey("When a member id is reused", func() {
			_, err := f.svc.CreateMember(f.ctx, service.CreateMemberInput{ID: "alice", Name: "Other"})
			So(errors.Is(err, model.ErrMemberExists), ShouldBeTrue)
		})

		Convey("When the opening balance is negative", func() {
			_, err := f.svc.CreateMember(f.ctx, service.CreateMemberInput{Name: "Dave", InitialBalance: dec(-1)})
			So(errors.Is(err, model.ErrInvalidRequest), ShouldBeTrue)
		})

		Convey("When no id is given", func() {
			m, err := f.svc.CreateMember(f.ctx, service.CreateMemberInput{Name: "Erin"})
			So(err, ShouldBeNil)
			So(m.ID, ShouldNotBeEmpty)
		})

		Convey("When an unknown member is read", func() {
			_, err := f.svc.GetMember(f.ctx, "ghost")
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
		})

		Convey("When a skill is offered by an unknown member", func() {
			_, err := f.svc.CreateSkill(f.ctx, service.CreateSkillInput{OwnerID: "ghost", Title: "Baking", HourlyRate: dec(1)})
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
		})

		Convey("When a skill is priced below the minimum rate", func() {
			_, err := f.svc.CreateSkill(f.ctx, service.CreateSkillInput{OwnerID: "bob", Title: "Baking", HourlyRate: decimal.Zero})
			So(errors.Is(err, model.ErrInvalidRequest), ShouldBeTrue)
		})

		Convey("When someone reads another member's ledger", func() {
			_, err := f.svc.ListLedgerEntries(f.ctx, "bob", "alice", 0)
			So(errors.Is(err, model.ErrForbidden), ShouldBeTrue)
		})
	})
}

func TestService_ConcurrentCompletion(t *testing.T) {
	Convey("Given an accepted exchange", t, func() {
		f := newFixture(service.WithCommitMaxRetries(100))
		defer func() { _ = f.svc.Stop(context.Background()) }()

		ex, err := f.request("alice", 2)
		So(err, ShouldBeNil)
		_, err = f.svc.RequestTransition(f.ctx, ex.ID, "bob", model.StatusAccepted, "")
		So(err, ShouldBeNil)

		Convey("When the provider completes it from many goroutines at once", func() {
			entriesBefore := counterValue("store_ledger_entries_total")
			const attempts = 8
			errs := make([]error, attempts)
			var wg sync.WaitGroup
			start := make(chan struct{})
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					_, errs[i] = f.svc.RequestTransition(f.ctx, ex.ID, "bob", model.StatusCompleted, "")
				}(i)
			}
			close(start)
			wg.Wait()

			Convey("Then exactly one completion settles", func() {
				succeeded := 0
				for _, err := range errs {
					if err == nil {
						succeeded++
						continue
					}
					So(errors.Is(err, model.ErrInvalidTransition), ShouldBeTrue)
				}
				So(succeeded, ShouldEqual, 1)
				So(f.balance("alice").Equal(dec(4)), ShouldBeTrue)
				So(f.balance("bob").Equal(dec(6)), ShouldBeTrue)

				entries, err := f.svc.ListLedgerEntries(f.ctx, "bob", "bob", 0)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
			})

			Convey("Then only the committed journal entries are counted", func() {
				So(counterValue("store_ledger_entries_total"), ShouldEqual, entriesBefore+2)
			})
		})
	})
}

func TestService_FrozenPrice(t *testing.T) {
	Convey("Given an exchange created while the skill costs 3 credits per hour", t, func() {
		store, err := repository.NewBadgerStore()
		So(err, ShouldBeNil)
		defer func() { _ = store.Close() }()

		f := newFixture(service.WithStore(store))
		defer func() { _ = f.svc.Stop(context.Background()) }()

		ex, err := f.request("alice", 2)
		So(err, ShouldBeNil)
		So(ex.TimeCredits.Equal(dec(6)), ShouldBeTrue)

		Convey("When the owner raises the rate before the exchange completes", func() {
			err := store.Update(f.ctx, "reprice", func(tx repository.Tx) error {
				skill, err := tx.GetSkill(f.skill.ID)
				if err != nil {
					return err
				}
				skill.HourlyRate = dec(5)
				return tx.PutSkill(skill)
			})
			So(err, ShouldBeNil)

			_, err = f.svc.RequestTransition(f.ctx, ex.ID, "bob", model.StatusAccepted, "")
			So(err, ShouldBeNil)
			done, err := f.svc.RequestTransition(f.ctx, ex.ID, "bob", model.StatusCompleted, "")
			So(err, ShouldBeNil)

			Convey("Then the price frozen at creation is settled", func() {
				skill, err := f.svc.GetSkill(f.ctx, f.skill.ID)
				So(err, ShouldBeNil)
				So(skill.HourlyRate.Equal(dec(5)), ShouldBeTrue)

				So(done.TimeCredits.Equal(dec(6)), ShouldBeTrue)
				So(f.balance("alice").Equal(dec(4)), ShouldBeTrue)
				So(f.balance("bob").Equal(dec(6)), ShouldBeTrue)
			})
		})
	})

	Convey("Given a skill with a fractional rate", t, func() {
		f := newFixture()
		defer func() { _ = f.svc.Stop(context.Background()) }()

		_, err := f.svc.CreateMember(f.ctx, service.CreateMemberInput{ID: "carol", Name: "Carol", InitialBalance: dec(1000)})
		So(err, ShouldBeNil)
		skill, err := f.svc.CreateSkill(f.ctx, service.CreateSkillInput{
			OwnerID: "bob", Title: "Tutoring", HourlyRate: decimal.RequireFromString("1.333"),
		})
		So(err, ShouldBeNil)

		Convey("When carol books thirty hours", func() {
			ex, err := f.svc.CreateExchange(f.ctx, service.CreateExchangeInput{
				RequesterID:    "carol",
				SkillID:        skill.ID,
				RequestMessage: "a month of lessons",
				ProposedDate:   testNow.Add(24 * time.Hour),
				Duration:       dec(30),
			})

			Convey("Then the long exchange is accepted at the exact product", func() {
				So(err, ShouldBeNil)
				So(ex.TimeCredits.String(), ShouldEqual, "39.99")
			})
		})

		Convey("When carol books an hour and a half", func() {
			ex, err := f.svc.CreateExchange(f.ctx, service.CreateExchangeInput{
				RequesterID:    "carol",
				SkillID:        skill.ID,
				RequestMessage: "one lesson",
				ProposedDate:   testNow.Add(24 * time.Hour),
				Duration:       decimal.RequireFromString("1.5"),
			})
			So(err, ShouldBeNil)
			So(ex.TimeCredits.String(), ShouldEqual, "1.9995")

			Convey("Then completion moves exactly that amount", func() {
				_, err := f.svc.RequestTransition(f.ctx, ex.ID, "bob", model.StatusAccepted, "")
				So(err, ShouldBeNil)
				_, err = f.svc.RequestTransition(f.ctx, ex.ID, "bob", model.StatusCompleted, "")
				So(err, ShouldBeNil)
				So(f.balance("carol").String(), ShouldEqual, "998.0005")
				So(f.balance("bob").String(), ShouldEqual, "1.9995")
			})
		})
	})
}

func TestService_NegativeBalancePolicy(t *testing.T) {
	completeBoth := func(f *fixture) (error, error) {
		first, err := f.request("alice", 2)
		So(err, ShouldBeNil)
		second, err := f.request("alice", 2)
		So(err, ShouldBeNil)
		for _, ex := range []model.Exchange{first, second} {
			_, err := f.svc.RequestTransition(f.ctx, ex.ID, "bob", model.StatusAccepted, "")
			So(err, ShouldBeNil)
		}
		_, err1 := f.svc.RequestTransition(f.ctx, first.ID, "bob", model.StatusCompleted, "")
		_, err2 := f.svc.RequestTransition(f.ctx, second.ID, "bob", model.StatusCompleted, "")
		return err1, err2
	}

	Convey("Given two accepted exchanges that together exceed alice's balance", t, func() {
		Convey("When negative balances are allowed", func() {
			f := newFixture()
			defer func() { _ = f.svc.Stop(context.Background()) }()
			err1, err2 := completeBoth(f)

			Convey("Then both settle and credits are conserved", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				alice, bob := f.balance("alice"), f.balance("bob")
				So(alice.Equal(dec(-2)), ShouldBeTrue)
				So(bob.Equal(dec(12)), ShouldBeTrue)
				So(alice.Add(bob).Equal(dec(10)), ShouldBeTrue)
			})
		})

		Convey("When negative balances are denied", func() {
			f := newFixture(service.WithNegativeBalancePolicy(settlement.DenyNegative))
			defer func() { _ = f.svc.Stop(context.Background()) }()
			err1, err2 := completeBoth(f)

			Convey("Then the second completion is rolled back", func() {
				So(err1, ShouldBeNil)
				So(errors.Is(err2, model.ErrInsufficientCredits), ShouldBeTrue)
				So(f.balance("alice").Equal(dec(4)), ShouldBeTrue)
				So(f.balance("bob").Equal(dec(6)), ShouldBeTrue)

				stats, err := f.svc.GetStats(f.ctx)
				So(err, ShouldBeNil)
				So(stats.ExchangesByStatus[model.StatusAccepted], ShouldEqual, 1)
				So(stats.NegativeBalancePolicy, ShouldEqual, "deny")
			})
		})
	})
}

func TestService_Notifications(t *testing.T) {
	Convey("Given a service with a recording notifier", t, func() {
		rec := &recordingNotifier{}
		f := newFixture(service.WithNotifier(rec), service.WithWorkerCount(1))

		Convey("When an exchange runs its full lifecycle and the service stops", func() {
			ex, err := f.request("alice", 1)
			So(err, ShouldBeNil)
			_, err = f.svc.RequestTransition(f.ctx, ex.ID, "bob", model.StatusAccepted, "")
			So(err, ShouldBeNil)
			_, err = f.svc.RequestTransition(f.ctx, ex.ID, "bob", model.StatusCompleted, "")
			So(err, ShouldBeNil)
			So(f.svc.Stop(context.Background()), ShouldBeNil)

			Convey("Then every committed change was delivered in order", func() {
				So(rec.types(), ShouldResemble, []string{"created", "accepted", "completed"})
			})
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("Then operations fail with ErrNotStarted", func() {
			_, err := svc.GetMember(context.Background(), "alice")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.Stop(context.Background()), ShouldBeNil)
		})

		Convey("When it is started and stopped twice", func() {
			ctx := context.Background()
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then it can start again on a fresh store", func() {
				So(svc.Start(ctx), ShouldBeNil)
				defer func() { _ = svc.Stop(ctx) }()
				stats, err := svc.GetStats(ctx)
				So(err, ShouldBeNil)
				So(stats.Members, ShouldEqual, 0)
			})
		})
	})
}
