package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/okian/skillswap/internal/domain/model"
)

// ErrNoSubjectPrefix is returned when the NATS notifier has no subject prefix.
var ErrNoSubjectPrefix = errors.New("nats subject prefix is empty")

const defaultConnectTimeout = 5 * time.Second

// Publisher is the subset of *nats.Conn the notifier needs.
type Publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSNotifier publishes each event as JSON on <prefix>.<status>.
type NATSNotifier struct {
	pub    Publisher
	prefix string
}

// DialNATS connects to url and returns a notifier publishing under prefix.
func DialNATS(url, prefix string) (*NATSNotifier, error) {
	if prefix == "" {
		return nil, ErrNoSubjectPrefix
	}
	nc, err := nats.Connect(url,
		nats.Name("skillswap"),
		nats.Timeout(defaultConnectTimeout),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	return NewNATSNotifier(nc, prefix)
}

// NewNATSNotifier wraps an existing connection.
func NewNATSNotifier(pub Publisher, prefix string) (*NATSNotifier, error) {
	if prefix == "" {
		return nil, ErrNoSubjectPrefix
	}
	return &NATSNotifier{pub: pub, prefix: prefix}, nil
}

// Name implements worker.Notifier.
func (n *NATSNotifier) Name() string { return "nats" }

// Subject returns the subject an event is published on.
func (n *NATSNotifier) Subject(e model.ExchangeEvent) string { //nolint:gocritic // hugeParam: matches the queue payload
	return n.prefix + "." + e.Type
}

// Notify implements worker.Notifier. The publish is flushed so a returned nil
// means the server has the message.
func (n *NATSNotifier) Notify(ctx context.Context, e model.ExchangeEvent) error { //nolint:gocritic // hugeParam: matches the queue payload
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := n.Subject(e)
	if err := n.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultConnectTimeout)
		defer cancel()
	}
	if err := n.pub.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection.
func (n *NATSNotifier) Close() error {
	return n.pub.Drain()
}
