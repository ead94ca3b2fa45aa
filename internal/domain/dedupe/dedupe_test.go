package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/skillswap/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When a key is claimed for the first time", func() {
			_, held := d.Claim(ctx, "key-1")

			Convey("Then it is newly held", func() {
				So(held, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is claimed twice", func() {
			d.Claim(ctx, "key-1")
			d.Complete(ctx, "key-1", "exchange-9")
			result, held := d.Claim(ctx, "key-1")

			Convey("Then the second claim sees the recorded result", func() {
				So(held, ShouldBeTrue)
				So(result, ShouldEqual, "exchange-9")
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a replay arrives before the first request finished", func() {
			d.Claim(ctx, "key-1")
			result, held := d.Claim(ctx, "key-1")
			So(held, ShouldBeTrue)
			So(result, ShouldBeEmpty)
		})

		Convey("When a failed key is released", func() {
			d.Claim(ctx, "key-1")
			d.Release(ctx, "key-1")

			Convey("Then it can be claimed again", func() {
				So(d.Size(), ShouldEqual, 0)
				_, held := d.Claim(ctx, "key-1")
				So(held, ShouldBeFalse)
			})
		})

		Convey("When releasing or completing an unknown key", func() {
			d.Release(ctx, "nope")
			d.Complete(ctx, "nope", "x")
			So(d.Size(), ShouldEqual, 0)
		})
	})

	Convey("Given keys scoped per member", t, func() {
		d := dedupe.NewInMemoryDeduper()
		_, heldA := d.Claim(ctx, dedupe.Scope("alice", "k"))
		_, heldB := d.Claim(ctx, dedupe.Scope("bob", "k"))
		So(heldA, ShouldBeFalse)
		So(heldB, ShouldBeFalse)
		So(dedupe.Scope("alice", "k"), ShouldNotEqual, dedupe.Scope("alic", "ek"))
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for i := 1; i <= 4; i++ {
			d.Claim(ctx, fmt.Sprintf("key-%d", i))
		}

		Convey("Then the oldest key was evicted", func() {
			So(d.Size(), ShouldEqual, 3)
			_, held := d.Claim(ctx, "key-4")
			So(held, ShouldBeTrue)
			_, held = d.Claim(ctx, "key-1")
			So(held, ShouldBeFalse)
			So(d.Size(), ShouldEqual, 3)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			_, held := d.Claim(ctx, fmt.Sprintf("key-%d", i))
			So(held, ShouldBeFalse)
		}
		So(d.Size(), ShouldEqual, 1000)
	})

	Convey("Given a deduper with a ttl", t, func() {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		d := dedupe.NewInMemoryDeduper(
			dedupe.WithTTL(time.Minute),
			dedupe.WithClock(func() time.Time { return now }),
		)
		d.Claim(ctx, "key-1")

		Convey("When the key is replayed within the ttl", func() {
			now = now.Add(30 * time.Second)
			_, held := d.Claim(ctx, "key-1")
			So(held, ShouldBeTrue)
		})

		Convey("When the key is replayed after the ttl", func() {
			now = now.Add(2 * time.Minute)
			_, held := d.Claim(ctx, "key-1")
			So(held, ShouldBeFalse)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given many goroutines claiming the same key", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var winners atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, held := d.Claim(context.Background(), "same"); !held {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one claim wins", func() {
			So(winners.Load(), ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}
