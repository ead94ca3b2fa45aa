// Package repository persists members, skills, exchanges and the credit
// ledger. Every logical operation runs in one transaction.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/skillswap/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Tx is the view of the store inside one transaction. It satisfies the
// lifecycle Unit so a transition and its settlement share a commit.
type Tx interface {
	GetExchange(id string) (model.Exchange, error)
	// PutExchange stores ex. A new exchange is indexed under both
	// participants; an existing one must carry the version it was read at.
	PutExchange(ex model.Exchange) error

	GetSkill(id string) (model.Skill, error)
	PutSkill(s model.Skill) error

	GetMember(id string) (model.Member, error)
	CreateMember(m model.Member) error

	GetBalance(memberID string) (decimal.Decimal, error)
	AdjustBalance(memberID string, delta decimal.Decimal) (decimal.Decimal, error)
	MarkSettled(exchangeID string, at time.Time) error
	AppendEntry(entry model.LedgerEntry) error
}

// Store provides transactional access to persisted state.
type Store interface {
	// Update runs fn in a read-write transaction and commits it. Conflicting
	// commits are retried, re-running fn from scratch. op labels metrics and logs.
	Update(ctx context.Context, op string, fn func(Tx) error) error
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(Tx) error) error

	// ListExchangesForMember returns exchanges where memberID is requester or
	// provider, newest first.
	ListExchangesForMember(ctx context.Context, memberID string, limit int) ([]model.Exchange, error)
	// ListLedgerEntries returns a member's journal, newest first.
	ListLedgerEntries(ctx context.Context, memberID string, limit int) ([]model.LedgerEntry, error)
	// Summarize counts exchanges per status and totals settled credits.
	Summarize(ctx context.Context) (Summary, error)
	// CountMembers returns the number of members.
	CountMembers(ctx context.Context) (int, error)

	Close() error
}

// Summary aggregates all exchanges.
type Summary struct {
	ByStatus       map[model.Status]int
	CreditsSettled decimal.Decimal
}

// Key layout.
const (
	memberPrefix   = "member:"
	skillPrefix    = "skill:"
	exchangePrefix = "exchange:"
	settledPrefix  = "settled:"
	ledgerPrefix   = "ledger:"
	indexPrefix    = "idx:member:"

	// Upper bound for reverse seeks over zero-padded nanosecond timestamps.
	seekEnd = "9999999999999999999"
)

func memberKey(id string) []byte   { return []byte(memberPrefix + id) }
func skillKey(id string) []byte    { return []byte(skillPrefix + id) }
func exchangeKey(id string) []byte { return []byte(exchangePrefix + id) }
func settledKey(id string) []byte  { return []byte(settledPrefix + id) }

func ledgerKey(memberID string, at time.Time, entryID string) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s", ledgerPrefix, memberID, at.UnixNano(), entryID))
}

func indexKey(memberID string, createdAt time.Time, exchangeID string) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s", indexPrefix, memberID, createdAt.UnixNano(), exchangeID))
}

func ledgerMemberPrefix(memberID string) []byte { return []byte(ledgerPrefix + memberID + ":") }
func indexMemberPrefix(memberID string) []byte  { return []byte(indexPrefix + memberID + ":") }
