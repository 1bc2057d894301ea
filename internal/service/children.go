package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playwatch/platform/internal/domain"
	"github.com/playwatch/platform/internal/repository"
)

// ChildService handles the guardian-scoped child roster.
type ChildService struct {
	pool     *pgxpool.Pool
	children repository.ChildRepository
}

// NewChildService creates a new ChildService.
func NewChildService(pool *pgxpool.Pool, children repository.ChildRepository) *ChildService {
	return &ChildService{pool: pool, children: children}
}

// ChildInput holds the create/update request fields.
type ChildInput struct {
	Name             string `json:"name"`
	SteamID          string `json:"steam_id"`
	WeeklyLimitHours int    `json:"weekly_limit_hours"`
}

func (in *ChildInput) validate() error {
	if in.Name == "" {
		return domain.ErrValidation("name is required")
	}
	if err := domain.ValidateSteamID(in.SteamID); err != nil {
		return domain.ErrValidation(err.Error())
	}
	if in.WeeklyLimitHours == 0 {
		in.WeeklyLimitHours = domain.DefaultWeeklyLimitHours
	}
	if err := domain.ValidateWeeklyLimit(in.WeeklyLimitHours); err != nil {
		return domain.ErrValidation(err.Error())
	}
	return nil
}

// List returns all children belonging to the guardian.
func (s *ChildService) List(ctx context.Context, parentID uuid.UUID) ([]domain.Child, error) {
	children, err := s.children.ListByParent(ctx, s.pool, parentID)
	if err != nil {
		return nil, domain.ErrInternal("list children", err)
	}
	return children, nil
}

// Create adds a child to the guardian's roster.
func (s *ChildService) Create(ctx context.Context, parentID uuid.UUID, input ChildInput) (*domain.Child, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	child := &domain.Child{
		ID:               uuid.New(),
		ParentID:         parentID,
		Name:             input.Name,
		SteamID:          input.SteamID,
		WeeklyLimitHours: input.WeeklyLimitHours,
	}
	if err := s.children.Create(ctx, s.pool, child); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.ErrConflict("a child with this Steam ID is already monitored")
		}
		return nil, domain.ErrInternal("create child", err)
	}
	return child, nil
}

// Update modifies a child. Ownership is enforced in the update itself, so a
// child belonging to another guardian reads as not found.
func (s *ChildService) Update(ctx context.Context, parentID, childID uuid.UUID, input ChildInput) (*domain.Child, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	child := &domain.Child{
		ID:               childID,
		ParentID:         parentID,
		Name:             input.Name,
		SteamID:          input.SteamID,
		WeeklyLimitHours: input.WeeklyLimitHours,
	}
	affected, err := s.children.Update(ctx, s.pool, child)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.ErrConflict("a child with this Steam ID is already monitored")
		}
		return nil, domain.ErrInternal("update child", err)
	}
	if affected == 0 {
		return nil, domain.ErrNotFound("child", childID.String())
	}
	return s.children.FindForParent(ctx, s.pool, childID, parentID)
}

// Delete removes a child from the guardian's roster.
func (s *ChildService) Delete(ctx context.Context, parentID, childID uuid.UUID) error {
	affected, err := s.children.Delete(ctx, s.pool, childID, parentID)
	if err != nil {
		return domain.ErrInternal("delete child", err)
	}
	if affected == 0 {
		return domain.ErrNotFound("child", childID.String())
	}
	return nil
}
