package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v4"
	"github.com/okian/skillswap/internal/domain/model"
	"github.com/okian/skillswap/pkg/logger"
	"github.com/okian/skillswap/pkg/metrics"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// BadgerStore implements Store on BadgerDB. Badger's optimistic transactions
// detect read-write conflicts at commit; Update retries those with backoff.
type BadgerStore struct {
	db            *badger.DB
	dataDir       string
	log           logger.Logger
	maxRetries    int
	retryInterval time.Duration
	maxRetryWait  time.Duration
	closed        atomic.Bool
}

// NewBadgerStore opens the store.
func NewBadgerStore(opts ...Option) (*BadgerStore, error) {
	s := &BadgerStore{
		log:           logger.NewNop(),
		maxRetries:    defaultMaxRetries,
		retryInterval: defaultRetryInterval,
		maxRetryWait:  defaultMaxRetryWait,
	}
	for _, opt := range opts {
		opt(s)
	}

	bopts := badger.DefaultOptions(s.dataDir)
	if s.dataDir == "" {
		bopts = bopts.WithInMemory(true)
	}
	bopts = bopts.WithLogger(badgerLogger{log: s.log.Named("badger")})

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", s.dataDir, err)
	}
	s.db = db
	return s, nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

// Update implements Store.
func (s *BadgerStore) Update(ctx context.Context, op string, fn func(Tx) error) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	start := time.Now()
	defer func() {
		metrics.RecordStoreTxnLatency(op, float64(time.Since(start).Microseconds())/1000)
	}()

	attempts := 0
	run := func() error {
		attempts++
		err := s.db.Update(func(txn *badger.Txn) error {
			return fn(&badgerTx{txn: txn})
		})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, badger.ErrConflict):
			metrics.RecordStoreConflict()
			s.log.Debug(ctx, "transaction conflict, retrying",
				logger.String("op", op), logger.Int("attempt", attempts))
			return err
		default:
			return backoff.Permanent(err)
		}
	}

	err := backoff.Retry(run, backoff.WithContext(backoff.WithMaxRetries(s.backOff(), uint64(s.maxRetries)), ctx))
	if errors.Is(err, badger.ErrConflict) {
		metrics.RecordStoreCommitAbort()
		metrics.RecordErrorByComponent("store", "commit_conflict")
		s.log.Warn(ctx, "transaction abandoned", logger.String("op", op), logger.Int("attempts", attempts))
		return fmt.Errorf("%w: %s after %d attempts", ErrCommitConflict, op, attempts)
	}
	return err
}

func (s *BadgerStore) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInterval
	b.MaxInterval = s.maxRetryWait
	b.MaxElapsedTime = 0
	return b
}

// View implements Store.
func (s *BadgerStore) View(ctx context.Context, fn func(Tx) error) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		return fn(&badgerTx{txn: txn})
	})
}

// ListExchangesForMember implements Store.
func (s *BadgerStore) ListExchangesForMember(ctx context.Context, memberID string, limit int) ([]model.Exchange, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	var out []model.Exchange
	err := s.View(ctx, func(t Tx) error {
		tx := t.(*badgerTx)
		ids, err := reverseScan(tx.txn, indexMemberPrefix(memberID), limit, false, func(val []byte) (string, error) {
			return string(val), nil
		})
		if err != nil {
			return err
		}
		out = make([]model.Exchange, 0, len(ids))
		for _, id := range ids {
			ex, err := tx.GetExchange(id)
			if err != nil {
				return err
			}
			out = append(out, ex)
		}
		return nil
	})
	return out, err
}

// ListLedgerEntries implements Store.
func (s *BadgerStore) ListLedgerEntries(ctx context.Context, memberID string, limit int) ([]model.LedgerEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	var out []model.LedgerEntry
	err := s.View(ctx, func(t Tx) error {
		var err error
		out, err = reverseScan(t.(*badgerTx).txn, ledgerMemberPrefix(memberID), limit, true, decode[model.LedgerEntry])
		return err
	})
	return out, err
}

// Summarize implements Store.
func (s *BadgerStore) Summarize(ctx context.Context) (Summary, error) {
	var all []model.Exchange
	err := s.View(ctx, func(t Tx) error {
		var err error
		all, err = forwardScan(t.(*badgerTx).txn, []byte(exchangePrefix), decode[model.Exchange])
		return err
	})
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		ByStatus: lo.CountValuesBy(all, func(ex model.Exchange) model.Status { return ex.Status }),
		CreditsSettled: lo.Reduce(all, func(acc decimal.Decimal, ex model.Exchange, _ int) decimal.Decimal {
			if ex.Status != model.StatusCompleted {
				return acc
			}
			return acc.Add(ex.TimeCredits)
		}, decimal.Zero),
	}
	for _, st := range model.Statuses {
		if _, ok := sum.ByStatus[st]; !ok {
			sum.ByStatus[st] = 0
		}
	}
	return sum, nil
}

// CountMembers implements Store.
func (s *BadgerStore) CountMembers(ctx context.Context) (int, error) {
	n := 0
	err := s.View(ctx, func(t Tx) error {
		it := t.(*badgerTx).txn.NewIterator(badger.IteratorOptions{PrefetchValues: false, Prefix: []byte(memberPrefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// reverseScan walks keys under prefix from the newest timestamp backwards.
func reverseScan[T any](txn *badger.Txn, prefix []byte, limit int, prefetch bool, conv func([]byte) (T, error)) ([]T, error) {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.PrefetchValues = prefetch
	it := txn.NewIterator(opts)
	defer it.Close()

	seek := append(append([]byte{}, prefix...), []byte(seekEnd)...)
	var out []T
	for it.Seek(seek); it.ValidForPrefix(prefix) && len(out) < limit; it.Next() {
		var v T
		err := it.Item().Value(func(val []byte) error {
			var err error
			v, err = conv(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func forwardScan[T any](txn *badger.Txn, prefix []byte, conv func([]byte) (T, error)) ([]T, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var out []T
	for it.Rewind(); it.Valid(); it.Next() {
		var v T
		err := it.Item().Value(func(val []byte) error {
			var err error
			v, err = conv(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decode[T any](val []byte) (T, error) {
	var v T
	if err := json.Unmarshal(val, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return v, nil
}

// badgerLogger routes badger's own logging into ours.
type badgerLogger struct {
	log logger.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(context.Background(), fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(context.Background(), fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(context.Background(), fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(context.Background(), fmt.Sprintf(format, args...))
}
