package api

import (
	"errors"
	"net/http"

	"github.com/okian/skillswap/internal/adapters/repository"
	service "github.com/okian/skillswap/internal/app"
	"github.com/okian/skillswap/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrMissingActor = errors.New("missing " + ActorHeader + " header")
	// ErrSeedingDisabled rejects POST /members unless seeding is enabled.
	ErrSeedingDisabled = errors.New("member seeding is disabled")
)

// Error tags an error with the handler operation that produced it.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Kind == nil:
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind returns err classified as kind and raised by op.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap tags err with op and keeps its own classification.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// statusFor maps an error to an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingActor):
		return http.StatusUnauthorized, "missing_actor"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidRequest),
		errors.Is(err, model.ErrInvalidStatus):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, model.ErrSelfExchange):
		return http.StatusBadRequest, "self_exchange"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrSeedingDisabled):
		return http.StatusForbidden, "seeding_disabled"
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate_request"
	case errors.Is(err, model.ErrMemberExists):
		return http.StatusConflict, "member_exists"
	case errors.Is(err, model.ErrInsufficientCredits):
		return http.StatusUnprocessableEntity, "insufficient_credits"
	case errors.Is(err, repository.ErrCommitConflict),
		errors.Is(err, service.ErrNotStarted),
		errors.Is(err, repository.ErrStoreClosed):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
