package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/skillswap/internal/domain/model"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseStatus(t *testing.T) {
	Convey("Given wire status values", t, func() {
		Convey("When parsing known values", func() {
			for _, s := range model.Statuses {
				got, err := model.ParseStatus(string(s))
				So(err, ShouldBeNil)
				So(got, ShouldEqual, s)
			}
		})

		Convey("When parsing values with odd casing and spaces", func() {
			got, err := model.ParseStatus("  Completed ")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, model.StatusCompleted)
		})

		Convey("When parsing an unknown value", func() {
			_, err := model.ParseStatus("archived")
			So(errors.Is(err, model.ErrInvalidStatus), ShouldBeTrue)
		})

		Convey("When parsing an empty value", func() {
			_, err := model.ParseStatus("")
			So(errors.Is(err, model.ErrInvalidStatus), ShouldBeTrue)
		})
	})
}

func TestStatusTerminal(t *testing.T) {
	Convey("Given every status", t, func() {
		So(model.StatusPending.Terminal(), ShouldBeFalse)
		So(model.StatusAccepted.Terminal(), ShouldBeFalse)
		So(model.StatusDeclined.Terminal(), ShouldBeTrue)
		So(model.StatusCancelled.Terminal(), ShouldBeTrue)
		So(model.StatusCompleted.Terminal(), ShouldBeTrue)
		So(model.Status("bogus").Valid(), ShouldBeFalse)
	})
}

func TestExchangeRoles(t *testing.T) {
	Convey("Given an exchange between two members", t, func() {
		ex := &model.Exchange{ID: "x1", RequesterID: "alice", ProviderID: "bob"}

		Convey("Then the requester and provider are recognised", func() {
			role, ok := ex.RoleOf("alice")
			So(ok, ShouldBeTrue)
			So(role, ShouldEqual, model.RoleRequester)

			role, ok = ex.RoleOf("bob")
			So(ok, ShouldBeTrue)
			So(role, ShouldEqual, model.RoleProvider)
		})

		Convey("Then outsiders and empty actors are not participants", func() {
			So(ex.Participant("mallory"), ShouldBeFalse)
			So(ex.Participant(""), ShouldBeFalse)
		})
	})
}

func TestNewExchangeEvent(t *testing.T) {
	Convey("Given a completed exchange", t, func() {
		at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		ex := &model.Exchange{
			ID:          "x1",
			RequesterID: "alice",
			ProviderID:  "bob",
			Status:      model.StatusCompleted,
			TimeCredits: decimal.NewFromInt(6),
		}

		ev := model.NewExchangeEvent(string(model.StatusCompleted), ex, "bob", at)

		So(ev.ExchangeID, ShouldEqual, "x1")
		So(ev.Status, ShouldEqual, model.StatusCompleted)
		So(ev.ActorID, ShouldEqual, "bob")
		So(ev.TimeCredits.Equal(decimal.NewFromInt(6)), ShouldBeTrue)
		So(ev.At, ShouldEqual, at)
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given the not-found kinds", t, func() {
		So(errors.Is(model.ErrExchangeNotFound, model.ErrNotFound), ShouldBeTrue)
		So(errors.Is(model.ErrSkillNotFound, model.ErrNotFound), ShouldBeTrue)
		So(errors.Is(model.ErrMemberNotFound, model.ErrNotFound), ShouldBeFalse)
	})
}
