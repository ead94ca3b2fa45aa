package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/skillswap/internal/adapters/repository"
	"github.com/okian/skillswap/internal/domain/model"
	"github.com/okian/skillswap/pkg/logger"
	"github.com/shopspring/decimal"
)

// CreateMemberInput seeds a member. Balances change only through
// settlement afterwards.
type CreateMemberInput struct {
	ID             string `validate:"omitempty,max=64,excludesall=:"`
	Name           string `validate:"required,max=120"`
	Location       string `validate:"max=120"`
	InitialBalance decimal.Decimal
}

// CreateMember registers a member with an opening balance.
func (s *Service) CreateMember(ctx context.Context, in CreateMemberInput) (model.Member, error) {
	store, err := s.components()
	if err != nil {
		return model.Member{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.StructCtx(ctx, in); err != nil {
		return model.Member{}, fmt.Errorf("%w: %w", model.ErrInvalidRequest, err)
	}
	if in.InitialBalance.IsNegative() {
		return model.Member{}, fmt.Errorf("%w: initial balance %s is negative", model.ErrInvalidRequest, in.InitialBalance)
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	now := s.now()
	m := model.Member{
		ID:          in.ID,
		Name:        in.Name,
		Location:    strings.TrimSpace(in.Location),
		TimeBalance: in.InitialBalance,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.Update(ctx, "create_member", func(tx repository.Tx) error {
		return tx.CreateMember(m)
	}); err != nil {
		return model.Member{}, fmt.Errorf("create member: %w", err)
	}

	s.logger.Info(ctx, "member created",
		logger.String("member_id", m.ID),
		logger.Stringer("balance", m.TimeBalance),
	)
	return m, nil
}

// GetMember returns a member by id.
func (s *Service) GetMember(ctx context.Context, id string) (model.Member, error) {
	store, err := s.components()
	if err != nil {
		return model.Member{}, err
	}
	var m model.Member
	err = store.View(ctx, func(tx repository.Tx) error {
		var err error
		m, err = tx.GetMember(id)
		return memberLookup(id, err)
	})
	return m, err
}

// ListLedgerEntries returns a member's settlement history, newest first.
// Members can only read their own journal.
func (s *Service) ListLedgerEntries(ctx context.Context, actorID, memberID string, limit int) ([]model.LedgerEntry, error) {
	store, err := s.components()
	if err != nil {
		return nil, err
	}
	if actorID == "" || actorID != memberID {
		return nil, fmt.Errorf("%w: ledger of %s", model.ErrForbidden, memberID)
	}
	if _, err := s.GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	return store.ListLedgerEntries(ctx, memberID, s.listLimit(limit))
}

// CreateSkillInput describes a skill offered by OwnerID.
type CreateSkillInput struct {
	OwnerID    string `validate:"required"`
	Title      string `validate:"required,max=120"`
	Category   string `validate:"max=60"`
	HourlyRate decimal.Decimal
}

// CreateSkill registers a skill for an existing member.
func (s *Service) CreateSkill(ctx context.Context, in CreateSkillInput) (model.Skill, error) {
	store, err := s.components()
	if err != nil {
		return model.Skill{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.StructCtx(ctx, in); err != nil {
		return model.Skill{}, fmt.Errorf("%w: %w", model.ErrInvalidRequest, err)
	}
	if err := s.pricer.CheckRate(in.HourlyRate); err != nil {
		return model.Skill{}, fmt.Errorf("%w: %w", model.ErrInvalidRequest, err)
	}

	skill := model.Skill{
		ID:         uuid.NewString(),
		OwnerID:    in.OwnerID,
		Title:      in.Title,
		Category:   strings.TrimSpace(in.Category),
		HourlyRate: in.HourlyRate,
		CreatedAt:  s.now(),
	}
	err = store.Update(ctx, "create_skill", func(tx repository.Tx) error {
		if _, err := tx.GetMember(in.OwnerID); err != nil {
			return memberLookup(in.OwnerID, err)
		}
		return tx.PutSkill(skill)
	})
	if err != nil {
		return model.Skill{}, fmt.Errorf("create skill: %w", err)
	}
	return skill, nil
}

// GetSkill returns a skill by id.
func (s *Service) GetSkill(ctx context.Context, id string) (model.Skill, error) {
	store, err := s.components()
	if err != nil {
		return model.Skill{}, err
	}
	var skill model.Skill
	err = store.View(ctx, func(tx repository.Tx) error {
		var err error
		skill, err = tx.GetSkill(id)
		return err
	})
	return skill, err
}

func (s *Service) listLimit(limit int) int {
	if limit <= 0 || limit > s.maxListLimit {
		return s.maxListLimit
	}
	return limit
}
