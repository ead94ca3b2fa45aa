// Package settlement moves time credits between the two members of a
// completed exchange.
package settlement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/skillswap/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Ledger is the balance store a settlement runs against. Every call made
// during one Settle belongs to the same atomic unit as the exchange write.
type Ledger interface {
	// GetBalance returns the member's balance or model.ErrMemberNotFound.
	GetBalance(memberID string) (decimal.Decimal, error)
	// AdjustBalance adds delta to the member's balance and returns the result.
	AdjustBalance(memberID string, delta decimal.Decimal) (decimal.Decimal, error)
	// MarkSettled records that exchangeID has been settled. It fails with
	// model.ErrAlreadySettled if a marker already exists.
	MarkSettled(exchangeID string, at time.Time) error
	// AppendEntry stores one journal leg.
	AppendEntry(entry model.LedgerEntry) error
}

// Policy decides whether a settlement may leave the requester below zero.
type Policy int

// Negative balance policies.
const (
	// AllowNegative lets balances go below zero; credits act as an
	// obligation to provide future service.
	AllowNegative Policy = iota
	// DenyNegative rejects any settlement that would overdraw the requester.
	DenyNegative
)

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "allow":
		return AllowNegative, nil
	case "deny":
		return DenyNegative, nil
	default:
		return AllowNegative, fmt.Errorf("unknown negative balance policy %q", s)
	}
}

func (p Policy) String() string {
	if p == DenyNegative {
		return "deny"
	}
	return "allow"
}

// Receipt describes a completed transfer.
type Receipt struct {
	ExchangeID       string
	Amount           decimal.Decimal
	RequesterBalance decimal.Decimal
	ProviderBalance  decimal.Decimal
	SettledAt        time.Time
	Entries          []model.LedgerEntry
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPolicy sets the negative balance policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithIDGenerator overrides how ledger entry ids are produced.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// Engine performs settlements.
type Engine struct {
	policy Policy
	newID  func() string
}

// NewEngine creates a settlement engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		policy: AllowNegative,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the configured negative balance policy.
func (e *Engine) Policy() Policy { return e.policy }

// Settle transfers ex.TimeCredits from the requester to the provider and
// stamps ex.CompletedAt. ex must already carry StatusCompleted and must not
// have been settled before. On error nothing in ex is modified; the caller
// is expected to discard the surrounding unit of work.
func (e *Engine) Settle(l Ledger, ex *model.Exchange, at time.Time) (Receipt, error) {
	if ex.Status != model.StatusCompleted {
		return Receipt{}, fmt.Errorf("settle %s in status %s: %w", ex.ID, ex.Status, model.ErrInvalidTransition)
	}
	if ex.CompletedAt != nil {
		return Receipt{}, fmt.Errorf("settle %s: %w", ex.ID, model.ErrAlreadySettled)
	}
	if !ex.TimeCredits.IsPositive() {
		return Receipt{}, fmt.Errorf("settle %s: non-positive credits %s: %w", ex.ID, ex.TimeCredits, model.ErrInvalidRequest)
	}

	// Both members must resolve before anything is written.
	requesterBalance, err := l.GetBalance(ex.RequesterID)
	if err != nil {
		return Receipt{}, fmt.Errorf("settle %s: requester %s: %w", ex.ID, ex.RequesterID, err)
	}
	if _, err := l.GetBalance(ex.ProviderID); err != nil {
		return Receipt{}, fmt.Errorf("settle %s: provider %s: %w", ex.ID, ex.ProviderID, err)
	}

	if e.policy == DenyNegative && requesterBalance.LessThan(ex.TimeCredits) {
		return Receipt{}, fmt.Errorf("settle %s: balance %s below %s: %w",
			ex.ID, requesterBalance, ex.TimeCredits, model.ErrInsufficientCredits)
	}

	if err := l.MarkSettled(ex.ID, at); err != nil {
		return Receipt{}, fmt.Errorf("settle %s: %w", ex.ID, err)
	}

	// Requester first, then provider.
	reqAfter, err := l.AdjustBalance(ex.RequesterID, ex.TimeCredits.Neg())
	if err != nil {
		return Receipt{}, fmt.Errorf("settle %s: debit %s: %w", ex.ID, ex.RequesterID, err)
	}
	provAfter, err := l.AdjustBalance(ex.ProviderID, ex.TimeCredits)
	if err != nil {
		return Receipt{}, fmt.Errorf("settle %s: credit %s: %w", ex.ID, ex.ProviderID, err)
	}

	entries := []model.LedgerEntry{
		{
			ID:             e.newID(),
			MemberID:       ex.RequesterID,
			ExchangeID:     ex.ID,
			CounterpartyID: ex.ProviderID,
			Kind:           model.EntryDebit,
			Delta:          ex.TimeCredits.Neg(),
			BalanceAfter:   reqAfter,
			At:             at,
		},
		{
			ID:             e.newID(),
			MemberID:       ex.ProviderID,
			ExchangeID:     ex.ID,
			CounterpartyID: ex.RequesterID,
			Kind:           model.EntryCredit,
			Delta:          ex.TimeCredits,
			BalanceAfter:   provAfter,
			At:             at,
		},
	}
	for _, entry := range entries {
		if err := l.AppendEntry(entry); err != nil {
			return Receipt{}, fmt.Errorf("settle %s: journal: %w", ex.ID, err)
		}
	}

	completedAt := at
	ex.CompletedAt = &completedAt

	return Receipt{
		ExchangeID:       ex.ID,
		Amount:           ex.TimeCredits,
		RequesterBalance: reqAfter,
		ProviderBalance:  provAfter,
		SettledAt:        at,
		Entries:          entries,
	}, nil
}
