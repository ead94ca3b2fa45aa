// Package notify delivers exchange lifecycle events to external sinks.
package notify

import (
	"context"

	"github.com/okian/skillswap/internal/domain/model"
	"github.com/okian/skillswap/pkg/logger"
)

// LogNotifier writes each event as a structured log line.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a notifier that logs through l.
func NewLogNotifier(l logger.Logger) *LogNotifier {
	if l == nil {
		l = logger.NewNop()
	}
	return &LogNotifier{log: l}
}

// Name implements worker.Notifier.
func (n *LogNotifier) Name() string { return "log" }

// Notify implements worker.Notifier.
func (n *LogNotifier) Notify(ctx context.Context, e model.ExchangeEvent) error { //nolint:gocritic // hugeParam: matches the queue payload
	n.log.Info(ctx, "exchange "+e.Type,
		logger.String("exchange_id", e.ExchangeID),
		logger.String("status", e.Status.String()),
		logger.String("actor_id", e.ActorID),
		logger.String("requester_id", e.RequesterID),
		logger.String("provider_id", e.ProviderID),
		logger.String("time_credits", e.TimeCredits.String()),
	)
	return nil
}
