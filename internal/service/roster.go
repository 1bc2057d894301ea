package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playwatch/platform/internal/domain"
	"github.com/playwatch/platform/internal/repository"
)

// RosterStore adapts the pgx repositories to the monitor package's
// RosterStore and NotificationStore interfaces.
type RosterStore struct {
	pool     *pgxpool.Pool
	children repository.ChildRepository
	users    repository.UserRepository
}

// NewRosterStore creates a RosterStore over the shared pool.
func NewRosterStore(pool *pgxpool.Pool, children repository.ChildRepository, users repository.UserRepository) *RosterStore {
	return &RosterStore{pool: pool, children: children, users: users}
}

// LoadRoster returns every monitored child across all guardians.
func (s *RosterStore) LoadRoster(ctx context.Context) ([]domain.Child, error) {
	return s.children.ListAll(ctx, s.pool)
}

// GuardianContact returns the contact profile for a guardian, or nil if
// the guardian no longer exists.
func (s *RosterStore) GuardianContact(ctx context.Context, guardianID uuid.UUID) (*domain.Contact, error) {
	user, err := s.users.FindByID(ctx, s.pool, guardianID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	contact := user.Contact()
	return &contact, nil
}

// MarkNotified performs the compare-and-set on a child's last-notified
// timestamp through the storage layer's single-row atomic update.
func (s *RosterStore) MarkNotified(ctx context.Context, childID uuid.UUID, at time.Time, prev *time.Time) (bool, error) {
	return s.children.MarkNotified(ctx, s.pool, childID, at, prev)
}
