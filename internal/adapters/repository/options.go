package repository

import (
	"time"

	"github.com/okian/skillswap/pkg/logger"
)

// Default store configuration constants.
const (
	defaultMaxRetries    = 10
	defaultRetryInterval = 2 * time.Millisecond
	defaultMaxRetryWait  = 100 * time.Millisecond
)

// Option applies a configuration option to the BadgerStore.
type Option func(*BadgerStore)

// WithDataDir sets the on-disk directory. Empty keeps everything in memory.
func WithDataDir(dir string) Option {
	return func(s *BadgerStore) {
		s.dataDir = dir
	}
}

// WithLogger sets the logger used by the store and by badger itself.
func WithLogger(l logger.Logger) Option {
	return func(s *BadgerStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxRetries sets how many times a conflicting transaction is re-run.
func WithMaxRetries(n int) Option {
	return func(s *BadgerStore) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithRetryInterval sets the initial and maximum wait between conflict retries.
func WithRetryInterval(initial, maxWait time.Duration) Option {
	return func(s *BadgerStore) {
		if initial > 0 && maxWait >= initial {
			s.retryInterval = initial
			s.maxRetryWait = maxWait
		}
	}
}
