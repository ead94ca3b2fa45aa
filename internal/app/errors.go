package service

import (
	"errors"
	"fmt"

	"github.com/okian/skillswap/internal/domain/model"
)

var (
	// ErrUnknownMember is returned when a caller names a member that does not
	// exist. Unlike model.ErrMemberNotFound it is a plain not-found.
	ErrUnknownMember = fmt.Errorf("member %w", model.ErrNotFound)

	// ErrDuplicateRequest is returned when an idempotency key was already used.
	ErrDuplicateRequest = errors.New("duplicate request")
)

// DuplicateError carries the exchange created by the first request that
// used an idempotency key. ExchangeID is empty while that request is still
// in flight.
type DuplicateError struct {
	ExchangeID string
}

func (e *DuplicateError) Error() string {
	if e.ExchangeID == "" {
		return ErrDuplicateRequest.Error() + ": still in progress"
	}
	return ErrDuplicateRequest.Error() + ": exchange " + e.ExchangeID
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateRequest }

// memberLookup turns a missing member referenced by a caller into a not-found.
func memberLookup(id string, err error) error {
	if errors.Is(err, model.ErrMemberNotFound) {
		return fmt.Errorf("%w: %s", ErrUnknownMember, id)
	}
	return err
}
