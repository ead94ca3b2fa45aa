package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member is a neighbourhood participant holding a time-credit balance.
// TimeBalance is only ever changed by settlement.
type Member struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Location    string          `json:"location,omitempty"`
	TimeBalance decimal.Decimal `json:"timeBalance"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Skill is a service offered by exactly one member.
type Skill struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"ownerId"`
	Title      string          `json:"title"`
	Category   string          `json:"category,omitempty"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Exchange is a time-for-service request between a requester and the
// provider owning the skill. HourlyRate and TimeCredits are frozen at
// creation.
type Exchange struct {
	ID              string          `json:"id"`
	RequesterID     string          `json:"requesterId"`
	ProviderID      string          `json:"providerId"`
	SkillID         string          `json:"skillId"`
	Status          Status          `json:"status"`
	Duration        decimal.Decimal `json:"duration"`
	HourlyRate      decimal.Decimal `json:"hourlyRate"`
	TimeCredits     decimal.Decimal `json:"timeCredits"`
	RequestMessage  string          `json:"requestMessage"`
	ResponseMessage string          `json:"responseMessage,omitempty"`
	ProposedDate    time.Time       `json:"proposedDate"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	Version         uint64          `json:"version"`
}

// RoleOf returns the role actorID holds in the exchange, or false when the
// actor is not a participant.
func (e *Exchange) RoleOf(actorID string) (Role, bool) {
	switch {
	case actorID == "":
		return "", false
	case actorID == e.ProviderID:
		return RoleProvider, true
	case actorID == e.RequesterID:
		return RoleRequester, true
	default:
		return "", false
	}
}

// Participant reports whether actorID is the requester or the provider.
func (e *Exchange) Participant(actorID string) bool {
	_, ok := e.RoleOf(actorID)
	return ok
}

// EntryKind marks the side of a ledger movement.
type EntryKind string

// Ledger entry kinds.
const (
	EntryDebit  EntryKind = "debit"
	EntryCredit EntryKind = "credit"
)

// LedgerEntry is one leg of a settlement as seen by a single member.
// Delta is signed: negative for debits.
type LedgerEntry struct {
	ID             string          `json:"id"`
	MemberID       string          `json:"memberId"`
	ExchangeID     string          `json:"exchangeId"`
	CounterpartyID string          `json:"counterpartyId"`
	Kind           EntryKind       `json:"kind"`
	Delta          decimal.Decimal `json:"delta"`
	BalanceAfter   decimal.Decimal `json:"balanceAfter"`
	At             time.Time       `json:"at"`
}

// EventCreated is the event type emitted for a newly requested exchange.
// Transition events use the target status as their type.
const EventCreated = "created"

// ExchangeEvent notifies downstream consumers about a committed change.
type ExchangeEvent struct {
	Type        string          `json:"type"`
	ExchangeID  string          `json:"exchangeId"`
	Status      Status          `json:"status"`
	ActorID     string          `json:"actorId"`
	RequesterID string          `json:"requesterId"`
	ProviderID  string          `json:"providerId"`
	TimeCredits decimal.Decimal `json:"timeCredits"`
	At          time.Time       `json:"at"`
}

// NewExchangeEvent builds an event describing ex after a change made by actorID.
func NewExchangeEvent(eventType string, ex *Exchange, actorID string, at time.Time) ExchangeEvent {
	return ExchangeEvent{
		Type:        eventType,
		ExchangeID:  ex.ID,
		Status:      ex.Status,
		ActorID:     actorID,
		RequesterID: ex.RequesterID,
		ProviderID:  ex.ProviderID,
		TimeCredits: ex.TimeCredits,
		At:          at,
	}
}
