// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load layers file and env on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// DataDir is the Badger directory. Empty keeps the store in memory.
	DataDir string `koanf:"data_dir"`

	// NegativeBalancePolicy is allow or deny; see settlement.Policy.
	NegativeBalancePolicy string `koanf:"negative_balance_policy" validate:"oneof=allow deny"`

	// CommitMaxRetries bounds how often a conflicting transaction is re-run.
	CommitMaxRetries int `koanf:"commit_max_retries" validate:"min=1"`

	// NotifyQueueSize bounds the in-memory notification queue.
	NotifyQueueSize int `koanf:"notify_queue_size" validate:"min=1"`

	// NotifyWorkerCount sets the number of notification workers.
	NotifyWorkerCount int `koanf:"notify_worker_count" validate:"min=1"`

	// NATSURL enables the NATS notifier when set.
	NATSURL string `koanf:"nats_url" validate:"omitempty,url"`

	// NATSSubjectPrefix is prepended to the status in published subjects.
	NATSSubjectPrefix string `koanf:"nats_subject_prefix" validate:"required_with=NATSURL"`

	// DedupeSize caps the number of idempotency keys remembered.
	DedupeSize int `koanf:"dedupe_size" validate:"min=0"`

	// IdempotencyTTL is how long an idempotency key is remembered.
	IdempotencyTTL time.Duration `koanf:"idempotency_ttl" validate:"min=0"`

	// MaxMessageLength caps request and response messages, in characters.
	MaxMessageLength int `koanf:"max_message_length" validate:"min=1"`

	// MaxListLimit caps GET /exchanges?limit and the ledger listing.
	MaxListLimit int `koanf:"max_list_limit" validate:"min=1"`

	// MaxExchangeHours caps the duration of one exchange. Zero means no cap.
	MaxExchangeHours float64 `koanf:"max_exchange_hours" validate:"min=0"`

	// CreditPlaces limits decimal places in rates and durations. -1 accepts any.
	CreditPlaces int `koanf:"credit_places" validate:"min=-1"`

	// SeedMembers exposes POST /members. Off by default; operators seed
	// members through the CLI.
	SeedMembers bool `koanf:"seed_members"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=0"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		DataDir:               "",
		NegativeBalancePolicy: "allow",
		CommitMaxRetries:      10,
		NotifyQueueSize:       4096,
		NotifyWorkerCount:     2,
		NATSSubjectPrefix:     "skillswap.exchange",
		DedupeSize:            50_000,
		IdempotencyTTL:        24 * time.Hour,
		MaxMessageLength:      500,
		MaxListLimit:          100,
		CreditPlaces:          -1,
		ShutdownTimeout:       10 * time.Second,
	}
}
