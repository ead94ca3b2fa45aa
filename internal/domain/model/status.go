// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an exchange.
type Status string

// Exchange statuses.
const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusAccepted,
	StatusDeclined,
	StatusCancelled,
	StatusCompleted,
}

// ParseStatus converts a wire value into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// Terminal reports whether no transition may leave s.
func (s Status) Terminal() bool {
	switch s {
	case StatusDeclined, StatusCancelled, StatusCompleted:
		return true
	case StatusPending, StatusAccepted:
		return false
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

// Role is the part an actor plays in a specific exchange.
type Role string

// Exchange roles.
const (
	RoleRequester Role = "requester"
	RoleProvider  Role = "provider"
)
