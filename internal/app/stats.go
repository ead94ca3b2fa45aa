package service

import (
	"context"

	"github.com/okian/skillswap/internal/domain/model"
	"github.com/okian/skillswap/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Stats is a point-in-time view of the service.
type Stats struct {
	ExchangesByStatus     map[model.Status]int `json:"exchangesByStatus"`
	CreditsSettled        decimal.Decimal      `json:"creditsSettled"`
	Members               int                  `json:"members"`
	PendingNotifications  int                  `json:"pendingNotifications"`
	IdempotencyKeys       int64                `json:"idempotencyKeys"`
	NotifyWorkers         int                  `json:"notifyWorkers"`
	NegativeBalancePolicy string               `json:"negativeBalancePolicy"`
}

// GetStats summarises stored state and refreshes the matching gauges.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	store, err := s.components()
	if err != nil {
		return Stats{}, err
	}
	summary, err := store.Summarize(ctx)
	if err != nil {
		return Stats{}, err
	}
	members, err := store.CountMembers(ctx)
	if err != nil {
		return Stats{}, err
	}

	byStatus := make(map[model.Status]int, len(model.Statuses))
	gauge := make(map[string]int, len(model.Statuses))
	for _, st := range model.Statuses {
		byStatus[st] = summary.ByStatus[st]
		gauge[st.String()] = summary.ByStatus[st]
	}
	metrics.UpdateExchangesByStatus(gauge)
	metrics.UpdateMembersTotal(members)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		ExchangesByStatus:     byStatus,
		CreditsSettled:        summary.CreditsSettled,
		Members:               members,
		PendingNotifications:  s.queue.Len(ctx),
		IdempotencyKeys:       s.deduper.Size(),
		NotifyWorkers:         s.pool.Size(),
		NegativeBalancePolicy: s.policy.String(),
	}, nil
}
