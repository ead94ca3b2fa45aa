// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	eventqueue "github.com/okian/skillswap/internal/adapters/mq/queue"
	workerpool "github.com/okian/skillswap/internal/adapters/mq/worker"
	"github.com/okian/skillswap/internal/adapters/notify"
	"github.com/okian/skillswap/internal/adapters/repository"
	"github.com/okian/skillswap/internal/domain/dedupe"
	"github.com/okian/skillswap/internal/domain/lifecycle"
	"github.com/okian/skillswap/internal/domain/model"
	"github.com/okian/skillswap/internal/domain/pricing"
	"github.com/okian/skillswap/internal/domain/settlement"
	"github.com/okian/skillswap/pkg/logger"
	"github.com/okian/skillswap/pkg/metrics"
)

// ErrNotStarted is returned by operations called before Start.
var ErrNotStarted = errors.New("service not started")

var validate = validator.New()

// Service implements the exchange operations on top of the store, the
// lifecycle machine and the notification pipeline.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	machine  *lifecycle.Machine
	pricer   pricing.Pricer
	deduper  dedupe.Deduper
	queue    eventqueue.Queue
	pool     *workerpool.Pool
	notifier workerpool.Notifier

	// Configuration
	dataDir          string
	ownsStore        bool
	policy           settlement.Policy
	commitMaxRetries int
	queueSize        int
	workerCount      int
	dedupeSize       int
	idempotencyTTL   time.Duration
	maxMessageLength int
	maxListLimit     int
	now              func() time.Time

	// State
	started bool
	stopCh  chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects an already opened store. The service does not close it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDataDir sets the Badger directory used when no store is injected.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		s.dataDir = dir
	}
}

// WithNegativeBalancePolicy sets whether settlement may overdraw a requester.
func WithNegativeBalancePolicy(p settlement.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithCommitMaxRetries bounds conflict retries of the owned store.
func WithCommitMaxRetries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.commitMaxRetries = n
		}
	}
}

// WithQueueSize sets the maximum size of the notification queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of notification workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithIdempotencyTTL sets how long idempotency keys are remembered.
func WithIdempotencyTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.idempotencyTTL = ttl
	}
}

// WithNotifier sets where lifecycle events are delivered. Defaults to the log.
func WithNotifier(n workerpool.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithMaxMessageLength caps request and response messages.
func WithMaxMessageLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxMessageLength = n
		}
	}
}

// WithMaxListLimit caps list sizes.
func WithMaxListLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxListLimit = n
		}
	}
}

// WithPricer overrides how exchanges are priced.
func WithPricer(p pricing.Pricer) Option {
	return func(s *Service) {
		if p != nil {
			s.pricer = p
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		policy:           settlement.AllowNegative,
		commitMaxRetries: 10,
		queueSize:        4096,
		workerCount:      2,
		dedupeSize:       50_000,
		idempotencyTTL:   24 * time.Hour,
		maxMessageLength: 500,
		maxListLimit:     100,
		now:              func() time.Time { return time.Now().UTC() },
		stopCh:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store and starts the notification pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting exchange service...")

	if s.store == nil {
		store, err := repository.NewBadgerStore(
			repository.WithDataDir(s.dataDir),
			repository.WithMaxRetries(s.commitMaxRetries),
			repository.WithLogger(s.logger.Named("repository")),
		)
		if err != nil {
			return fmt.Errorf("start service: %w", err)
		}
		s.store = store
		s.ownsStore = true
	}
	if s.pricer == nil {
		s.pricer = pricing.NewRatePricer()
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(s.logger.Named("notify"))
	}

	s.machine = lifecycle.NewMachine(
		settlement.NewEngine(settlement.WithPolicy(s.policy)),
		lifecycle.WithClock(s.now),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
		dedupe.WithTTL(s.idempotencyTTL),
	)
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.notifier, s.logger.Named("worker"))
	s.pool.Start(context.WithoutCancel(ctx))

	s.stopCh = make(chan struct{})
	go s.refreshGauges(s.stopCh)

	s.started = true
	s.logger.Info(ctx, "exchange service started",
		logger.String("data_dir", s.dataDir),
		logger.String("negative_balance_policy", s.policy.String()),
		logger.String("notifier", s.notifier.Name()),
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
	)
	return nil
}

// Stop drains pending notifications and closes what the service opened.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping exchange service...")
	close(s.stopCh)

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if closer, ok := s.notifier.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close notifier: %w", err))
		}
	}
	if s.ownsStore {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(ctx, "exchange service stopped")
	return errors.Join(errs...)
}

// refreshGauges samples gauges that are not updated on the write path.
func (s *Service) refreshGauges(stop <-chan struct{}) {
	ticker := time.NewTicker(metrics.GetManager().RefreshInterval())
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			metrics.RecordSystemSnapshot()
			if _, err := s.GetStats(context.Background()); err != nil {
				s.logger.Debug(context.Background(), "stats refresh failed", logger.Error(err))
			}
		}
	}
}

// components returns the running components or ErrNotStarted.
func (s *Service) components() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// publish enqueues a notification without blocking the caller.
func (s *Service) publish(ctx context.Context, e model.ExchangeEvent) { //nolint:gocritic // hugeParam: matches the queue payload
	if !s.queue.Enqueue(context.WithoutCancel(ctx), e) {
		s.logger.Warn(ctx, "notification dropped",
			logger.String("exchange_id", e.ExchangeID),
			logger.String("type", e.Type),
		)
	}
}
