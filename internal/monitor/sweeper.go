package monitor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/playwatch/platform/internal/domain"
)

// RosterStore loads the monitored roster and guardian contact profiles.
type RosterStore interface {
	// LoadRoster returns every monitored child across all guardians.
	LoadRoster(ctx context.Context) ([]domain.Child, error)

	// GuardianContact returns the contact profile for a guardian, or nil
	// if the guardian no longer exists.
	GuardianContact(ctx context.Context, guardianID uuid.UUID) (*domain.Contact, error)
}

// SweepReport aggregates the result of one full roster pass.
type SweepReport struct {
	Checked    int           `json:"checked"`
	OverLimit  int           `json:"over_limit"`
	Notified   int           `json:"notified"`
	Suppressed int           `json:"suppressed"`
	NoData     int           `json:"no_data"`
	Errors     int           `json:"errors"`
	Skipped    int           `json:"skipped"`
	Duration   time.Duration `json:"duration"`
}

// Sweeper runs the evaluator over the entire roster on a fixed schedule.
// At most one sweep is in flight; a trigger that fires while a sweep is
// running is dropped, never queued.
type Sweeper struct {
	roster   RosterStore
	eval     *Evaluator
	interval time.Duration
	logger   *slog.Logger
	inFlight atomic.Bool
}

// NewSweeper creates a Sweeper with the given trigger interval.
func NewSweeper(roster RosterStore, eval *Evaluator, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		roster:   roster,
		eval:     eval,
		interval: interval,
		logger:   logger,
	}
}

// Start runs an immediate sweep and then one per interval until ctx is
// cancelled. Blocks.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("sweeper starting", "interval", s.interval)

	s.TryRun(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			go s.TryRun(ctx)
		}
	}
}

// TryRun runs a sweep unless one is already in flight, in which case the
// trigger is dropped and ok is false.
func (s *Sweeper) TryRun(ctx context.Context) (report *SweepReport, ok bool) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("sweep trigger dropped, previous sweep still running")
		return nil, false
	}
	defer s.inFlight.Store(false)
	return s.runSweep(ctx), true
}

// runSweep walks the roster once. Per-child failures are contained: one
// child's source failure must never prevent other children from being
// checked or notified. The scheduled path writes no audit entries.
func (s *Sweeper) runSweep(ctx context.Context) *SweepReport {
	start := time.Now()
	report := &SweepReport{}

	s.logger.Info("sweep starting")

	roster, err := s.roster.LoadRoster(ctx)
	if err != nil {
		s.logger.Error("sweep roster load failed", "error", err)
		report.Errors++
		report.Duration = time.Since(start)
		return report
	}

	for _, child := range roster {
		contact, err := s.roster.GuardianContact(ctx, child.ParentID)
		if err != nil {
			s.logger.Error("sweep contact lookup failed",
				"child_id", child.ID, "child_name", child.Name, "error", err)
			report.Errors++
			continue
		}
		if contact == nil {
			s.logger.Warn("sweep skipping child, guardian not found",
				"child_id", child.ID, "child_name", child.Name)
			report.Skipped++
			continue
		}

		outcome, err := s.eval.Evaluate(ctx, child, *contact)
		if err != nil {
			s.logger.Error("sweep evaluation failed",
				"child_id", child.ID, "child_name", child.Name, "steam_id", child.SteamID, "error", err)
			report.Errors++
			continue
		}

		report.Checked++
		switch {
		case outcome.Status == StatusNoData:
			report.NoData++
		case outcome.OverLimit && outcome.Notified:
			report.OverLimit++
			report.Notified++
		case outcome.OverLimit && outcome.Suppressed:
			report.OverLimit++
			report.Suppressed++
		case outcome.OverLimit:
			report.OverLimit++
		}
	}

	report.Duration = time.Since(start)
	s.logger.Info("sweep finished",
		"checked", report.Checked,
		"over_limit", report.OverLimit,
		"notified", report.Notified,
		"suppressed", report.Suppressed,
		"no_data", report.NoData,
		"errors", report.Errors,
		"skipped", report.Skipped,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report
}
