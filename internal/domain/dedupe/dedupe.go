// Package dedupe tracks idempotency keys so a retried create is applied once.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Deduper records idempotency keys to ensure at-most-once creation.
type Deduper interface {
	// Claim atomically checks whether key is already held and holds it if not.
	// Returns the result recorded for an earlier claim, if any, and true when
	// the key was already held.
	Claim(ctx context.Context, key string) (string, bool)

	// Complete attaches the id of the created resource to a held key.
	Complete(ctx context.Context, key, resultID string)

	// Release drops a key so the request can be retried. Used when the
	// operation behind a claim failed.
	Release(ctx context.Context, key string)

	Size() int64
}

// Scope builds the key a member's idempotency header is tracked under.
// Two members may use the same header value without colliding.
func Scope(memberID, key string) string {
	return memberID + "\x00" + key
}

type entry struct {
	key      string
	resultID string
	at       time.Time
}

// inMemoryDeduper keeps keys in insertion order. When bounded the oldest key
// is evicted first; keys older than ttl are treated as unseen.
type inMemoryDeduper struct {
	mu      sync.Mutex
	keys    map[string]*list.Element
	order   *list.List // front = newest
	maxSize int        // 0 or negative = unbounded
	ttl     time.Duration
	now     func() time.Time
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
		ttl:     24 * time.Hour,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.keys = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

// Claim implements Deduper.
func (d *inMemoryDeduper) Claim(_ context.Context, key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if el, ok := d.keys[key]; ok {
		e := el.Value.(*entry)
		if d.ttl <= 0 || now.Sub(e.at) < d.ttl {
			return e.resultID, true
		}
		d.remove(el)
	}

	if d.maxSize > 0 {
		for len(d.keys) >= d.maxSize {
			d.remove(d.order.Back())
		}
	}
	d.keys[key] = d.order.PushFront(&entry{key: key, at: now})
	d.size.Add(1)
	return "", false
}

// Complete implements Deduper.
func (d *inMemoryDeduper) Complete(_ context.Context, key, resultID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.keys[key]; ok {
		el.Value.(*entry).resultID = resultID
	}
}

// Release implements Deduper.
func (d *inMemoryDeduper) Release(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.keys[key]; ok {
		d.remove(el)
	}
}

// remove must be called with d.mu held.
func (d *inMemoryDeduper) remove(el *list.Element) {
	if el == nil {
		return
	}
	delete(d.keys, el.Value.(*entry).key)
	d.order.Remove(el)
	d.size.Add(-1)
}

// Size returns the current number of held keys.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
