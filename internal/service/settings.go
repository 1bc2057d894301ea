package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playwatch/platform/internal/domain"
	"github.com/playwatch/platform/internal/repository"
)

// SettingsService manages a guardian's notification contact settings.
type SettingsService struct {
	pool  *pgxpool.Pool
	users repository.UserRepository
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(pool *pgxpool.Pool, users repository.UserRepository) *SettingsService {
	return &SettingsService{pool: pool, users: users}
}

// Get returns the guardian's current contact settings.
func (s *SettingsService) Get(ctx context.Context, userID uuid.UUID) (*domain.Contact, error) {
	user, err := s.users.FindByID(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	contact := user.Contact()
	return &contact, nil
}

// Update validates and persists new contact settings. Both fields are
// optional; an empty string clears the channel.
func (s *SettingsService) Update(ctx context.Context, userID uuid.UUID, contact domain.Contact) (*domain.Contact, error) {
	if contact.Email != "" {
		if err := domain.ValidateEmail(contact.Email); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
	}
	if err := domain.ValidateDiscordWebhookURL(contact.DiscordWebhookURL); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	affected, err := s.users.UpdateContact(ctx, s.pool, userID, contact)
	if err != nil {
		return nil, domain.ErrInternal("update contact", err)
	}
	if affected == 0 {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	return &contact, nil
}
