package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/okian/skillswap/internal/adapters/repository"
	"github.com/okian/skillswap/internal/domain/dedupe"
	"github.com/okian/skillswap/internal/domain/lifecycle"
	"github.com/okian/skillswap/internal/domain/model"
	"github.com/okian/skillswap/pkg/logger"
	"github.com/okian/skillswap/pkg/metrics"
	"github.com/shopspring/decimal"
)

// CreateExchangeInput asks the owner of SkillID for Duration hours of service.
type CreateExchangeInput struct {
	RequesterID    string    `validate:"required"`
	SkillID        string    `validate:"required"`
	RequestMessage string
	ProposedDate   time.Time `validate:"required"`
	Duration       decimal.Decimal
	// IdempotencyKey, when set, makes retries of the same request return
	// ErrDuplicateRequest instead of creating a second exchange.
	IdempotencyKey string `validate:"max=255"`
}

// CreateExchange prices and records a pending exchange. The requester must
// hold at least the quoted credits at this moment; nothing is reserved.
func (s *Service) CreateExchange(ctx context.Context, in CreateExchangeInput) (model.Exchange, error) {
	store, err := s.components()
	if err != nil {
		return model.Exchange{}, err
	}
	in.RequestMessage = strings.TrimSpace(in.RequestMessage)
	if err := validate.StructCtx(ctx, in); err != nil {
		return model.Exchange{}, fmt.Errorf("%w: %w", model.ErrInvalidRequest, err)
	}
	if err := s.checkMessage(in.RequestMessage); err != nil {
		return model.Exchange{}, err
	}

	var key string
	if in.IdempotencyKey != "" {
		key = dedupe.Scope(in.RequesterID, in.IdempotencyKey)
		if prev, held := s.deduper.Claim(ctx, key); held {
			metrics.RecordIdempotentReplay()
			return model.Exchange{}, &DuplicateError{ExchangeID: prev}
		}
	}

	ex, err := s.createExchange(ctx, store, in)
	if err != nil {
		if key != "" {
			s.deduper.Release(ctx, key)
		}
		return model.Exchange{}, fmt.Errorf("create exchange: %w", err)
	}
	if key != "" {
		s.deduper.Complete(ctx, key, ex.ID)
	}

	metrics.RecordExchangeCreated()
	s.logger.Info(ctx, "exchange requested",
		logger.String("exchange_id", ex.ID),
		logger.String("requester_id", ex.RequesterID),
		logger.String("provider_id", ex.ProviderID),
		logger.Stringer("time_credits", ex.TimeCredits),
	)
	s.publish(ctx, model.NewExchangeEvent(model.EventCreated, &ex, ex.RequesterID, ex.CreatedAt))
	return ex, nil
}

func (s *Service) createExchange(ctx context.Context, store repository.Store, in CreateExchangeInput) (model.Exchange, error) {
	id := uuid.NewString()
	var ex model.Exchange
	err := store.Update(ctx, "create_exchange", func(tx repository.Tx) error {
		skill, err := tx.GetSkill(in.SkillID)
		if err != nil {
			return err
		}
		if skill.OwnerID == in.RequesterID {
			return model.ErrSelfExchange
		}
		requester, err := tx.GetMember(in.RequesterID)
		if err != nil {
			return memberLookup(in.RequesterID, err)
		}
		quote, err := s.pricer.Quote(skill.HourlyRate, in.Duration)
		if err != nil {
			return fmt.Errorf("%w: %w", model.ErrInvalidRequest, err)
		}
		if requester.TimeBalance.LessThan(quote.TimeCredits) {
			return fmt.Errorf("%w: balance %s, exchange costs %s",
				model.ErrInsufficientCredits, requester.TimeBalance, quote.TimeCredits)
		}

		now := s.now()
		if err := tx.PutExchange(model.Exchange{
			ID:             id,
			RequesterID:    in.RequesterID,
			ProviderID:     skill.OwnerID,
			SkillID:        skill.ID,
			Status:         model.StatusPending,
			Duration:       quote.Duration,
			HourlyRate:     quote.HourlyRate,
			TimeCredits:    quote.TimeCredits,
			RequestMessage: in.RequestMessage,
			ProposedDate:   in.ProposedDate.UTC(),
			CreatedAt:      now,
			UpdatedAt:      now,
		}); err != nil {
			return err
		}
		ex, err = tx.GetExchange(id)
		return err
	})
	return ex, err
}

// GetExchange returns an exchange visible to actorID.
func (s *Service) GetExchange(ctx context.Context, id, actorID string) (model.Exchange, error) {
	store, err := s.components()
	if err != nil {
		return model.Exchange{}, err
	}
	var ex model.Exchange
	if err := store.View(ctx, func(tx repository.Tx) error {
		var err error
		ex, err = tx.GetExchange(id)
		return err
	}); err != nil {
		return model.Exchange{}, err
	}
	if !ex.Participant(actorID) {
		return model.Exchange{}, fmt.Errorf("%w: %s is not a participant of exchange %s", model.ErrForbidden, actorID, id)
	}
	return ex, nil
}

// ListExchanges returns the exchanges actorID takes part in, newest first.
func (s *Service) ListExchanges(ctx context.Context, actorID string, limit int) ([]model.Exchange, error) {
	store, err := s.components()
	if err != nil {
		return nil, err
	}
	if actorID == "" {
		return nil, fmt.Errorf("%w: missing actor", model.ErrForbidden)
	}
	return store.ListExchangesForMember(ctx, actorID, s.listLimit(limit))
}

// RequestTransition moves an exchange to target on behalf of actorID.
// Completion settles credits in the same commit as the status change.
func (s *Service) RequestTransition(
	ctx context.Context,
	exchangeID, actorID string,
	target model.Status,
	responseMessage string,
) (model.Exchange, error) {
	store, err := s.components()
	if err != nil {
		return model.Exchange{}, err
	}
	if err := s.checkMessage(responseMessage); err != nil {
		return model.Exchange{}, err
	}
	req, err := lifecycle.NewRequest(exchangeID, actorID, target, responseMessage)
	if err != nil {
		return model.Exchange{}, err
	}

	var out lifecycle.Outcome
	err = store.Update(ctx, "transition", func(tx repository.Tx) error {
		var err error
		out, err = s.machine.Apply(tx, req)
		return err
	})
	metrics.RecordTransition(target.String(), transitionOutcome(err))
	if err != nil {
		s.transitionFailed(ctx, exchangeID, actorID, target, err)
		return model.Exchange{}, err
	}

	fields := []logger.Field{
		logger.String("exchange_id", exchangeID),
		logger.String("actor_id", actorID),
		logger.String("from", out.Previous.String()),
		logger.String("to", target.String()),
	}
	if out.Receipt != nil {
		metrics.RecordSettlement(out.Receipt.Amount.InexactFloat64())
		metrics.RecordLedgerEntries(len(out.Receipt.Entries))
		fields = append(fields,
			logger.Stringer("credits", out.Receipt.Amount),
			logger.Stringer("requester_balance", out.Receipt.RequesterBalance),
			logger.Stringer("provider_balance", out.Receipt.ProviderBalance),
		)
	}
	s.logger.Info(ctx, "exchange transitioned", fields...)

	s.publish(ctx, model.NewExchangeEvent(target.String(), &out.Exchange, actorID, out.Exchange.UpdatedAt))
	return out.Exchange, nil
}

func (s *Service) transitionFailed(ctx context.Context, exchangeID, actorID string, target model.Status, err error) {
	fields := []logger.Field{
		logger.String("exchange_id", exchangeID),
		logger.String("actor_id", actorID),
		logger.String("to", target.String()),
		logger.Error(err),
	}
	switch {
	case errors.Is(err, model.ErrMemberNotFound):
		metrics.RecordSettlementFailure("member_not_found")
		metrics.RecordErrorByComponent("service", "settlement")
		s.logger.Error(ctx, "settlement references a missing member", fields...)
	case errors.Is(err, model.ErrInsufficientCredits):
		metrics.RecordSettlementFailure("insufficient_credits")
		s.logger.Warn(ctx, "settlement refused", fields...)
	case errors.Is(err, repository.ErrCommitConflict):
		metrics.RecordErrorByComponent("service", "commit_conflict")
		s.logger.Warn(ctx, "transition kept conflicting", fields...)
	default:
		s.logger.Debug(ctx, "transition rejected", fields...)
	}
}

// transitionOutcome classifies a transition result for metrics.
func transitionOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeApplied
	case errors.Is(err, model.ErrForbidden):
		return metrics.OutcomeForbidden
	case errors.Is(err, model.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrInvalidRequest),
		errors.Is(err, model.ErrInsufficientCredits):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeFailed
	}
}

func (s *Service) checkMessage(msg string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(msg)); n > s.maxMessageLength {
		return fmt.Errorf("%w: message has %d characters, limit is %d", model.ErrInvalidRequest, n, s.maxMessageLength)
	}
	return nil
}
