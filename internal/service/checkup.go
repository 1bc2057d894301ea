package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playwatch/platform/internal/domain"
	"github.com/playwatch/platform/internal/guard"
	"github.com/playwatch/platform/internal/monitor"
	"github.com/playwatch/platform/internal/repository"
)

// CheckupService runs on-demand playtime checks for guardians and the
// public quick check.
type CheckupService struct {
	pool     *pgxpool.Pool
	children repository.ChildRepository
	users    repository.UserRepository
	audits   repository.AuditRepository
	records  repository.RecordRepository
	eval     *monitor.Evaluator
	limiter  *guard.RateLimiter
	logger   *slog.Logger
}

// NewCheckupService creates a new CheckupService.
func NewCheckupService(
	pool *pgxpool.Pool,
	children repository.ChildRepository,
	users repository.UserRepository,
	audits repository.AuditRepository,
	records repository.RecordRepository,
	eval *monitor.Evaluator,
	limiter *guard.RateLimiter,
	logger *slog.Logger,
) *CheckupService {
	return &CheckupService{
		pool:     pool,
		children: children,
		users:    users,
		audits:   audits,
		records:  records,
		eval:     eval,
		limiter:  limiter,
		logger:   logger,
	}
}

// CheckChild runs a full evaluation of one child on behalf of its guardian.
// A child owned by another guardian reads as not found, never forbidden.
func (s *CheckupService) CheckChild(ctx context.Context, parentID, childID uuid.UUID) (*domain.PlaytimeSnapshot, error) {
	if res := s.limiter.Check(ctx, parentID.String()); !res.Allowed {
		return nil, domain.ErrRateLimited("too many playtime checks, slow down")
	}

	child, err := s.children.FindForParent(ctx, s.pool, childID, parentID)
	if err != nil {
		return nil, domain.ErrInternal("find child", err)
	}
	if child == nil {
		return nil, domain.ErrNotFound("child", childID.String())
	}

	guardian, err := s.users.FindByID(ctx, s.pool, parentID)
	if err != nil {
		return nil, domain.ErrInternal("find guardian", err)
	}
	if guardian == nil {
		return nil, domain.ErrNotFound("user", parentID.String())
	}

	outcome, err := s.eval.Evaluate(ctx, *child, guardian.Contact())
	if err != nil {
		return nil, err
	}

	// The audit trail and check history record successful fetches only; a
	// NoData outcome means Steam returned nothing worth recording.
	if outcome.Status == monitor.StatusEvaluated {
		if err := s.audits.Insert(ctx, s.pool, parentID, child.SteamID); err != nil {
			s.logger.Error("audit insert failed", "child_id", child.ID, "error", err)
		}
		if err := s.records.Insert(ctx, s.pool, child.SteamID, outcome.TotalMinutes); err != nil {
			s.logger.Error("playtime record insert failed", "steam_id", child.SteamID, "error", err)
		}
	}

	return outcome.Snapshot(), nil
}

// QuickCheckInput holds the unauthenticated quick check request fields.
type QuickCheckInput struct {
	SteamID           string `json:"steam_id"`
	ParentEmail       string `json:"parent_email"`
	DiscordWebhookURL string `json:"discord_webhook_url"`
}

// QuickCheck evaluates a Steam ID against the fixed public limit without
// touching the roster. No audit entry is written.
func (s *CheckupService) QuickCheck(ctx context.Context, input QuickCheckInput) (*domain.PlaytimeSnapshot, error) {
	if err := domain.ValidateSteamID(input.SteamID); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if input.ParentEmail != "" {
		if err := domain.ValidateEmail(input.ParentEmail); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
	}
	if err := domain.ValidateDiscordWebhookURL(input.DiscordWebhookURL); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if res := s.limiter.Check(ctx, "quick:"+input.SteamID); !res.Allowed {
		return nil, domain.ErrRateLimited("too many playtime checks, slow down")
	}

	contact := domain.Contact{Email: input.ParentEmail, DiscordWebhookURL: input.DiscordWebhookURL}
	outcome, err := s.eval.CheckOnce(ctx, input.SteamID, contact)
	if err != nil {
		return nil, err
	}

	if outcome.Status == monitor.StatusEvaluated {
		if err := s.records.Insert(ctx, s.pool, input.SteamID, outcome.TotalMinutes); err != nil {
			s.logger.Error("playtime record insert failed", "steam_id", input.SteamID, "error", err)
		}
	}

	return outcome.Snapshot(), nil
}
