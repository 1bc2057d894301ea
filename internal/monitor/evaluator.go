// Package monitor holds the playtime evaluation core: the per-child
// evaluator, the scheduled roster sweeper and the stateless quick check.
package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/playwatch/platform/internal/domain"
	"github.com/playwatch/platform/internal/infra"
	"github.com/playwatch/platform/internal/notify"
)

const (
	// SuppressionWindow is the minimum gap between two notifications for
	// the same child.
	SuppressionWindow = 24 * time.Hour

	// monitoredWeeks restates the weekly limit over the source's fixed
	// 14-day reporting window. Fixed policy, not configurable.
	monitoredWeeks = 2

	// QuickCheckWeeklyHours is the fixed limit applied by the public
	// quick check, which has no child record to read a limit from.
	QuickCheckWeeklyHours = 40
)

// Status classifies the outcome of one evaluation.
type Status string

const (
	// StatusNoData means the source reported no recent games (private
	// profile or no activity in the window). Not an error.
	StatusNoData Status = "no_data"

	// StatusEvaluated means playtime was aggregated and compared.
	StatusEvaluated Status = "evaluated"
)

// Outcome is the result of one evaluation.
type Outcome struct {
	Status       Status        `json:"status"`
	TotalMinutes int           `json:"total_playtime_minutes"`
	LimitMinutes int           `json:"limit_minutes"`
	OverLimit    bool          `json:"is_over_limit"`
	Suppressed   bool          `json:"suppressed"`
	Notified     bool          `json:"notified"`
	Games        []domain.Game `json:"games"`
}

// Snapshot restates the outcome as the transient per-check snapshot.
func (o *Outcome) Snapshot() *domain.PlaytimeSnapshot {
	return &domain.PlaytimeSnapshot{
		TotalMinutes: o.TotalMinutes,
		LimitMinutes: o.LimitMinutes,
		OverLimit:    o.OverLimit,
		Games:        o.Games,
	}
}

// PlaytimeSource returns recently-played games for a player identifier.
// An empty slice with nil error means no game data.
type PlaytimeSource interface {
	RecentlyPlayed(ctx context.Context, steamID string) ([]domain.Game, error)
}

// NotificationStore persists the last-notified timestamp. MarkNotified is
// a compare-and-set: it applies only if the stored value still equals prev.
type NotificationStore interface {
	MarkNotified(ctx context.Context, childID uuid.UUID, at time.Time, prev *time.Time) (bool, error)
}

// EventPublisher emits limit-exceeded events. infra.EventProducer
// satisfies this; a disabled producer is a no-op.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Evaluator runs the per-child limit check and notification workflow.
type Evaluator struct {
	source      PlaytimeSource
	dispatchers []notify.Dispatcher
	store       NotificationStore
	events      EventPublisher
	logger      *slog.Logger
	now         func() time.Time
}

// NewEvaluator creates an Evaluator. events may be nil when no event
// stream is configured.
func NewEvaluator(source PlaytimeSource, dispatchers []notify.Dispatcher, store NotificationStore, events EventPublisher, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		source:      source,
		dispatchers: dispatchers,
		store:       store,
		events:      events,
		logger:      logger,
		now:         time.Now,
	}
}

// LimitMinutes restates a weekly hour limit in minutes over the monitored
// 14-day window.
func LimitMinutes(weeklyLimitHours int) int {
	return weeklyLimitHours * monitoredWeeks * 60
}

// Evaluate checks one child against its limit and, when exceeded and not
// recently notified, dispatches to every configured channel and records
// the notification timestamp. A source failure returns an error and
// mutates nothing.
func (e *Evaluator) Evaluate(ctx context.Context, child domain.Child, contact domain.Contact) (*Outcome, error) {
	games, err := e.source.RecentlyPlayed(ctx, child.SteamID)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return &Outcome{Status: StatusNoData, Games: []domain.Game{}}, nil
	}

	outcome := e.aggregate(games, child.WeeklyLimitHours)
	if !outcome.OverLimit {
		return outcome, nil
	}

	now := e.now()
	if child.LastNotifiedAt != nil && now.Sub(*child.LastNotifiedAt) < SuppressionWindow {
		outcome.Suppressed = true
		return outcome, nil
	}

	e.dispatchAll(ctx, contact, alertFor(child, outcome))
	outcome.Notified = true

	// The timestamp is updated after the dispatch attempt regardless of
	// per-channel success, so a flaky channel cannot cause a notification
	// storm on the next sweep.
	ok, err := e.store.MarkNotified(ctx, child.ID, now, child.LastNotifiedAt)
	if err != nil {
		e.logger.Error("mark notified failed", "child_id", child.ID, "error", err)
	} else if !ok {
		e.logger.Warn("notification already claimed by concurrent check", "child_id", child.ID)
	}

	e.publishLimitExceeded(ctx, child, outcome, now)
	return outcome, nil
}

// CheckOnce is the stateless quick check: same fetch, aggregation and
// dispatch rules, but with a fixed limit and no suppression state to
// read or write.
func (e *Evaluator) CheckOnce(ctx context.Context, steamID string, contact domain.Contact) (*Outcome, error) {
	games, err := e.source.RecentlyPlayed(ctx, steamID)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return &Outcome{Status: StatusNoData, Games: []domain.Game{}}, nil
	}

	outcome := e.aggregate(games, QuickCheckWeeklyHours)
	if outcome.OverLimit {
		e.dispatchAll(ctx, contact, notify.Alert{
			ChildName:        "Your child",
			WeeklyLimitHours: QuickCheckWeeklyHours,
			TotalMinutes:     outcome.TotalMinutes,
			LimitMinutes:     outcome.LimitMinutes,
		})
		outcome.Notified = true
	}
	return outcome, nil
}

func (e *Evaluator) aggregate(games []domain.Game, weeklyLimitHours int) *Outcome {
	total := 0
	for _, g := range games {
		total += g.TwoWeekMinutes
	}
	limit := LimitMinutes(weeklyLimitHours)
	return &Outcome{
		Status:       StatusEvaluated,
		TotalMinutes: total,
		LimitMinutes: limit,
		OverLimit:    total > limit,
		Games:        games,
	}
}

// dispatchAll tries every channel. Channel failures are logged and never
// abort the evaluation or the other channels.
func (e *Evaluator) dispatchAll(ctx context.Context, contact domain.Contact, alert notify.Alert) {
	for _, d := range e.dispatchers {
		sent, err := d.Dispatch(ctx, contact, alert)
		switch {
		case err != nil:
			e.logger.Error("notification dispatch failed",
				"channel", d.Name(), "child", alert.ChildName, "error", err)
		case sent:
			e.logger.Info("notification sent", "channel", d.Name(), "child", alert.ChildName)
		}
	}
}

func (e *Evaluator) publishLimitExceeded(ctx context.Context, child domain.Child, outcome *Outcome, at time.Time) {
	if e.events == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"child_id":      child.ID,
		"steam_id":      child.SteamID,
		"total_minutes": outcome.TotalMinutes,
		"limit_minutes": outcome.LimitMinutes,
		"notified_at":   at.UTC(),
	})
	if err != nil {
		return
	}
	if err := e.events.Publish(ctx, infra.TopicLimitExceeded, []byte(child.ID.String()), payload); err != nil {
		e.logger.Error("publish limit-exceeded event", "child_id", child.ID, "error", err)
	}
}

func alertFor(child domain.Child, outcome *Outcome) notify.Alert {
	return notify.Alert{
		ChildName:        child.Name,
		WeeklyLimitHours: child.WeeklyLimitHours,
		TotalMinutes:     outcome.TotalMinutes,
		LimitMinutes:     outcome.LimitMinutes,
	}
}
