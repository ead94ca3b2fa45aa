package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds shared by every layer. Callers match them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrExchangeNotFound = fmt.Errorf("exchange %w", ErrNotFound)
	ErrSkillNotFound    = fmt.Errorf("skill %w", ErrNotFound)

	// ErrMemberNotFound is deliberately not an ErrNotFound: during settlement it
	// signals a broken reference and is an internal failure.
	ErrMemberNotFound = errors.New("member not found")

	ErrForbidden           = errors.New("forbidden")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrInsufficientCredits = errors.New("insufficient time credits")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrSelfExchange        = errors.New("cannot request an exchange for your own skill")
	ErrAlreadySettled      = errors.New("exchange already settled")
	ErrMemberExists        = errors.New("member already exists")
)
