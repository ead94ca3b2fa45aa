// Package worker delivers queued lifecycle notifications to a notifier.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/okian/skillswap/internal/adapters/mq/queue"
	"github.com/okian/skillswap/pkg/logger"
	"github.com/okian/skillswap/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount     = 2
	defaultDeliveryTimeout = 2 * time.Second
	defaultRetries         = 3
	retryInitialInterval   = 50 * time.Millisecond
	poolShutdownTimeout    = 30 * time.Second
)

// Event abstracts what workers read off the queue.
type Event = queue.Event

// Notifier delivers one event to the outside world.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
	// Name labels the sink in metrics.
	Name() string
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker consumes events until its queue is closed and drained.
type Worker interface {
	// Run starts the worker loop until the queue closes or ctx is canceled.
	Run(ctx context.Context)

	// Done is closed once Run has returned.
	Done() <-chan struct{}
}

// InMemoryWorker implements Worker for delivering notifications.
type InMemoryWorker struct {
	queue           Queue
	notifier        Notifier
	name            string
	deliveryTimeout time.Duration
	retries         int
	active          *atomic.Int64

	done   chan struct{}
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, notifier Notifier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:           q,
		notifier:        notifier,
		name:            "worker",
		deliveryTimeout: defaultDeliveryTimeout,
		retries:         defaultRetries,
		active:          &atomic.Int64{},
		done:            make(chan struct{}),
		logger:          logger.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run implements Worker.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.deliver(ctx, event); err != nil {
				w.logger.Error(ctx, "notification dropped",
					logger.String("exchange_id", event.ExchangeID),
					logger.String("type", event.Type),
					logger.Error(err),
				)
			}
		}
	}
}

// Done implements Worker.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

// deliver sends one event, retrying transient failures with backoff.
func (w *InMemoryWorker) deliver(ctx context.Context, event Event) error { //nolint:gocritic // hugeParam: Event must be passed by value for channel semantics
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	attempt := func() error {
		callCtx, cancel := context.WithTimeout(ctx, w.deliveryTimeout)
		defer cancel()
		return w.notifier.Notify(callCtx, event)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(b, uint64(w.retries)), ctx))
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordNotification(w.notifier.Name(), "failed")
		metrics.RecordErrorByComponent("worker", "notify_failed")
		return fmt.Errorf("notify %s via %s: %w", event.ExchangeID, w.notifier.Name(), err)
	}
	metrics.RecordNotification(w.notifier.Name(), "delivered")
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   queue.Queue
	logger  logger.Logger
}

// NewPool creates a new worker pool. Options are applied to every worker.
func NewPool(workerCount int, q queue.Queue, notifier Notifier, log logger.Logger, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	if log == nil {
		log = logger.NewNop()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  log,
	}
	active := &atomic.Int64{}
	for i := 0; i < workerCount; i++ {
		wopts := make([]Option, 0, len(opts)+2)
		wopts = append(wopts, WithLogger(log))
		wopts = append(wopts, opts...)
		wopts = append(wopts, WithName("worker-"+strconv.Itoa(i)))
		w := NewInMemoryWorker(q, notifier, wopts...)
		w.active = active
		pool.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Shutdown closes the queue and waits for workers to drain what is left.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
		}
	}
	return nil
}
