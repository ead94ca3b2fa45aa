package lifecycle

import (
	"fmt"
	"strings"

	"github.com/okian/skillswap/internal/domain/model"
)

// Request is a transition request. Only the variants in this package
// implement it.
type Request interface {
	// Target is the status the request moves the exchange into.
	Target() model.Status
	ref() (exchangeID, actorID string)
	responseMessage() (string, bool)
}

// Accept is the provider agreeing to a pending request.
type Accept struct {
	ExchangeID string
	ActorID    string
	Message    string
}

// Decline is the provider refusing a pending request.
type Decline struct {
	ExchangeID string
	ActorID    string
	Message    string
}

// Cancel withdraws a pending or accepted exchange.
type Cancel struct {
	ExchangeID string
	ActorID    string
}

// Complete marks an accepted exchange as delivered and triggers settlement.
type Complete struct {
	ExchangeID string
	ActorID    string
}

func (Accept) Target() model.Status   { return model.StatusAccepted }
func (Decline) Target() model.Status  { return model.StatusDeclined }
func (Cancel) Target() model.Status   { return model.StatusCancelled }
func (Complete) Target() model.Status { return model.StatusCompleted }

func (r Accept) ref() (string, string)   { return r.ExchangeID, r.ActorID }
func (r Decline) ref() (string, string)  { return r.ExchangeID, r.ActorID }
func (r Cancel) ref() (string, string)   { return r.ExchangeID, r.ActorID }
func (r Complete) ref() (string, string) { return r.ExchangeID, r.ActorID }

func (r Accept) responseMessage() (string, bool)  { return r.Message, r.Message != "" }
func (r Decline) responseMessage() (string, bool) { return r.Message, r.Message != "" }
func (Cancel) responseMessage() (string, bool)    { return "", false }
func (Complete) responseMessage() (string, bool)  { return "", false }

// pendingTarget is what NewRequest produces for an explicit "pending"
// target. Nothing can transition into pending, so Apply always rejects it
// with ErrInvalidTransition once the exchange has been loaded.
type pendingTarget struct {
	ExchangeID string
	ActorID    string
}

func (pendingTarget) Target() model.Status            { return model.StatusPending }
func (r pendingTarget) ref() (string, string)         { return r.ExchangeID, r.ActorID }
func (pendingTarget) responseMessage() (string, bool) { return "", false }

// NewRequest builds the request variant for target from loosely typed input
// such as an HTTP body. A response message is only meaningful when accepting
// or declining; supplying one for any other target is ErrInvalidRequest.
func NewRequest(exchangeID, actorID string, target model.Status, message string) (Request, error) {
	message = strings.TrimSpace(message)
	switch target {
	case model.StatusAccepted:
		return Accept{ExchangeID: exchangeID, ActorID: actorID, Message: message}, nil
	case model.StatusDeclined:
		return Decline{ExchangeID: exchangeID, ActorID: actorID, Message: message}, nil
	case model.StatusCancelled, model.StatusCompleted, model.StatusPending:
		if message != "" {
			return nil, fmt.Errorf("%w: response message not allowed when moving to %s", model.ErrInvalidRequest, target)
		}
		switch target {
		case model.StatusCancelled:
			return Cancel{ExchangeID: exchangeID, ActorID: actorID}, nil
		case model.StatusCompleted:
			return Complete{ExchangeID: exchangeID, ActorID: actorID}, nil
		default:
			return pendingTarget{ExchangeID: exchangeID, ActorID: actorID}, nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, target)
	}
}

// ExchangeID returns the exchange a request refers to.
func ExchangeID(r Request) string {
	id, _ := r.ref()
	return id
}

// ActorID returns the member submitting a request.
func ActorID(r Request) string {
	_, actor := r.ref()
	return actor
}
