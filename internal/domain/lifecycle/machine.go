package lifecycle

import (
	"fmt"
	"time"

	"github.com/okian/skillswap/internal/domain/model"
	"github.com/okian/skillswap/internal/domain/settlement"
)

// Records loads and stores exchange records.
type Records interface {
	GetExchange(id string) (model.Exchange, error)
	PutExchange(ex model.Exchange) error
}

// Unit is one atomic unit of work: exchange records plus the ledger. Either
// everything written through a Unit is committed or none of it is.
type Unit interface {
	Records
	settlement.Ledger
}

// Settler performs the credit transfer for a completing exchange.
type Settler interface {
	Settle(l settlement.Ledger, ex *model.Exchange, at time.Time) (settlement.Receipt, error)
}

// Outcome is the result of an applied transition.
type Outcome struct {
	Exchange model.Exchange
	Previous model.Status
	// Receipt is set only when the transition completed the exchange.
	Receipt *settlement.Receipt
}

// Option applies a configuration option to the Machine.
type Option func(*Machine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// Machine validates and applies exchange transitions.
type Machine struct {
	settler Settler
	now     func() time.Time
}

// NewMachine creates a state machine that settles through settler.
func NewMachine(settler Settler, opts ...Option) *Machine {
	m := &Machine{
		settler: settler,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply runs one transition inside u. Checks run in this order:
//  1. the exchange exists (ErrExchangeNotFound)
//  2. the actor participates in it (ErrForbidden)
//  3. the actor's role may ever request the target (ErrForbidden); targets
//     nobody may request, such as pending, fall through to step 4
//  4. the target is reachable from the current status (ErrInvalidTransition)
//  5. the role may request it from the current status (ErrForbidden)
//
// Completing settles inside the same unit; any settlement error is returned
// and the caller must discard u.
func (m *Machine) Apply(u Unit, req Request) (Outcome, error) {
	exchangeID, actorID := req.ref()
	target := req.Target()

	ex, err := u.GetExchange(exchangeID)
	if err != nil {
		return Outcome{}, err
	}

	role, ok := ex.RoleOf(actorID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s is not a participant of exchange %s", model.ErrForbidden, actorID, ex.ID)
	}
	if _, governed := policy[target]; governed && !mayRequest(role, target) {
		return Outcome{}, fmt.Errorf("%w: %s may not move an exchange to %s", model.ErrForbidden, role, target)
	}

	current := ex.Status
	if !Reachable(current, target) {
		return Outcome{}, fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, current, target)
	}
	if !Authorize(role, current, target) {
		return Outcome{}, fmt.Errorf("%w: %s may not move a %s exchange to %s", model.ErrForbidden, role, current, target)
	}

	now := m.now()
	ex.Status = target
	ex.UpdatedAt = now
	if msg, ok := req.responseMessage(); ok {
		ex.ResponseMessage = msg
	}

	out := Outcome{Previous: current}
	if target == model.StatusCompleted {
		receipt, err := m.settler.Settle(u, &ex, now)
		if err != nil {
			return Outcome{}, err
		}
		out.Receipt = &receipt
	}

	if err := u.PutExchange(ex); err != nil {
		return Outcome{}, fmt.Errorf("store exchange %s: %w", ex.ID, err)
	}
	out.Exchange = ex
	return out, nil
}
