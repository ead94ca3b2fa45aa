package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/okian/skillswap/internal/domain/model"
	"github.com/shopspring/decimal"
)

// badgerTx implements Tx over one badger transaction.
type badgerTx struct {
	txn *badger.Txn
}

func (t *badgerTx) get(key []byte, v any) error {
	item, err := t.txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
		}
		return nil
	})
}

func (t *badgerTx) set(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return t.txn.Set(key, data)
}

func (t *badgerTx) exists(key []byte) (bool, error) {
	_, err := t.txn.Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}

// GetExchange implements Tx.
func (t *badgerTx) GetExchange(id string) (model.Exchange, error) {
	var ex model.Exchange
	err := t.get(exchangeKey(id), &ex)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return model.Exchange{}, fmt.Errorf("%w: %s", model.ErrExchangeNotFound, id)
	}
	return ex, err
}

// PutExchange implements Tx.
func (t *badgerTx) PutExchange(ex model.Exchange) error {
	var prev model.Exchange
	err := t.get(exchangeKey(ex.ID), &prev)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		for _, member := range []string{ex.RequesterID, ex.ProviderID} {
			if err := t.txn.Set(indexKey(member, ex.CreatedAt, ex.ID), []byte(ex.ID)); err != nil {
				return err
			}
		}
		ex.Version = 1
	case err != nil:
		return err
	case prev.Version != ex.Version:
		return fmt.Errorf("%w: %s read at v%d, stored v%d", ErrStaleExchange, ex.ID, ex.Version, prev.Version)
	default:
		ex.Version = prev.Version + 1
	}
	return t.set(exchangeKey(ex.ID), ex)
}

// GetSkill implements Tx.
func (t *badgerTx) GetSkill(id string) (model.Skill, error) {
	var s model.Skill
	err := t.get(skillKey(id), &s)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return model.Skill{}, fmt.Errorf("%w: %s", model.ErrSkillNotFound, id)
	}
	return s, err
}

// PutSkill implements Tx.
func (t *badgerTx) PutSkill(s model.Skill) error {
	return t.set(skillKey(s.ID), s)
}

// GetMember implements Tx.
func (t *badgerTx) GetMember(id string) (model.Member, error) {
	var m model.Member
	err := t.get(memberKey(id), &m)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return model.Member{}, fmt.Errorf("%w: %s", model.ErrMemberNotFound, id)
	}
	return m, err
}

// CreateMember implements Tx.
func (t *badgerTx) CreateMember(m model.Member) error {
	found, err := t.exists(memberKey(m.ID))
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: %s", model.ErrMemberExists, m.ID)
	}
	return t.set(memberKey(m.ID), m)
}

// GetBalance implements Tx.
func (t *badgerTx) GetBalance(memberID string) (decimal.Decimal, error) {
	m, err := t.GetMember(memberID)
	if err != nil {
		return decimal.Zero, err
	}
	return m.TimeBalance, nil
}

// AdjustBalance implements Tx.
func (t *badgerTx) AdjustBalance(memberID string, delta decimal.Decimal) (decimal.Decimal, error) {
	m, err := t.GetMember(memberID)
	if err != nil {
		return decimal.Zero, err
	}
	m.TimeBalance = m.TimeBalance.Add(delta)
	m.UpdatedAt = time.Now().UTC()
	if err := t.set(memberKey(memberID), m); err != nil {
		return decimal.Zero, err
	}
	return m.TimeBalance, nil
}

// MarkSettled implements Tx.
func (t *badgerTx) MarkSettled(exchangeID string, at time.Time) error {
	found, err := t.exists(settledKey(exchangeID))
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: %s", model.ErrAlreadySettled, exchangeID)
	}
	return t.txn.Set(settledKey(exchangeID), []byte(at.UTC().Format(time.RFC3339Nano)))
}

// AppendEntry implements Tx.
func (t *badgerTx) AppendEntry(entry model.LedgerEntry) error {
	return t.set(ledgerKey(entry.MemberID, entry.At, entry.ID), entry)
}
