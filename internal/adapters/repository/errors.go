package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrStoreClosed    = errors.New("store closed")
	ErrCommitConflict = errors.New("transaction kept conflicting")
	ErrStaleExchange  = errors.New("exchange changed since it was read")
	ErrCorruptRecord  = errors.New("stored record cannot be decoded")
	ErrInvalidLimit   = errors.New("invalid list limit")
)
