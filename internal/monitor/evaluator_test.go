package monitor

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/playwatch/platform/internal/domain"
	"github.com/playwatch/platform/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakeSource struct {
	games map[string][]domain.Game
	errs  map[string]error
	calls int
}

func (f *fakeSource) RecentlyPlayed(_ context.Context, steamID string) ([]domain.Game, error) {
	f.calls++
	if err, ok := f.errs[steamID]; ok {
		return nil, err
	}
	return f.games[steamID], nil
}

type fakeDispatcher struct {
	name       string
	fail       bool
	dispatches []notify.Alert
}

func (f *fakeDispatcher) Name() string { return f.name }

func (f *fakeDispatcher) Dispatch(_ context.Context, contact domain.Contact, alert notify.Alert) (bool, error) {
	if f.name == "email" && contact.Email == "" {
		return false, nil
	}
	if f.name == "discord" && contact.DiscordWebhookURL == "" {
		return false, nil
	}
	if f.fail {
		return true, assert.AnError
	}
	f.dispatches = append(f.dispatches, alert)
	return true, nil
}

type markCall struct {
	childID uuid.UUID
	at      time.Time
	prev    *time.Time
}

type fakeStore struct {
	marks []markCall
}

func (f *fakeStore) MarkNotified(_ context.Context, childID uuid.UUID, at time.Time, prev *time.Time) (bool, error) {
	f.marks = append(f.marks, markCall{childID, at, prev})
	return true, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type evalEnv struct {
	eval    *Evaluator
	source  *fakeSource
	email   *fakeDispatcher
	discord *fakeDispatcher
	store   *fakeStore
	now     time.Time
}

func newEvalEnv() *evalEnv {
	env := &evalEnv{
		source:  &fakeSource{games: map[string][]domain.Game{}, errs: map[string]error{}},
		email:   &fakeDispatcher{name: "email"},
		discord: &fakeDispatcher{name: "discord"},
		store:   &fakeStore{},
		now:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	env.eval = NewEvaluator(env.source,
		[]notify.Dispatcher{env.email, env.discord}, env.store, nil, testLogger())
	env.eval.now = func() time.Time { return env.now }
	return env
}

func testChild(limitHours int, lastNotified *time.Time) domain.Child {
	return domain.Child{
		ID:               uuid.New(),
		ParentID:         uuid.New(),
		Name:             "Alex",
		SteamID:          "76561198000000001",
		WeeklyLimitHours: limitHours,
		LastNotifiedAt:   lastNotified,
	}
}

func fullContact() domain.Contact {
	return domain.Contact{
		Email:             "parent@example.com",
		DiscordWebhookURL: "https://discord.com/api/webhooks/1/t",
	}
}

// --- Evaluate ---

func TestEvaluateUnderLimitNeverDispatches(t *testing.T) {
	env := newEvalEnv()
	env.source.games["76561198000000001"] = []domain.Game{
		{Name: "A", TwoWeekMinutes: 500},
		{Name: "B", TwoWeekMinutes: 400},
	}

	// 10 h/week doubles to 1200 limit minutes; 900 played is under.
	outcome, err := env.eval.Evaluate(context.Background(), testChild(10, nil), fullContact())
	require.NoError(t, err)

	assert.Equal(t, StatusEvaluated, outcome.Status)
	assert.Equal(t, 900, outcome.TotalMinutes)
	assert.Equal(t, 1200, outcome.LimitMinutes)
	assert.False(t, outcome.OverLimit)
	assert.False(t, outcome.Notified)
	assert.Empty(t, env.email.dispatches)
	assert.Empty(t, env.discord.dispatches)
	assert.Empty(t, env.store.marks)
}

func TestEvaluateOverLimitDispatchesAllChannelsAndMarks(t *testing.T) {
	env := newEvalEnv()
	env.source.games["76561198000000001"] = []domain.Game{
		{Name: "A", TwoWeekMinutes: 700},
		{Name: "B", TwoWeekMinutes: 600},
	}

	// Concrete scenario: limit 10 h/week → 10×2×60 = 1200; 700+600 = 1300.
	child := testChild(10, nil)
	outcome, err := env.eval.Evaluate(context.Background(), child, fullContact())
	require.NoError(t, err)

	assert.Equal(t, 1300, outcome.TotalMinutes)
	assert.Equal(t, 1200, outcome.LimitMinutes)
	assert.True(t, outcome.OverLimit)
	assert.True(t, outcome.Notified)
	assert.False(t, outcome.Suppressed)

	require.Len(t, env.email.dispatches, 1)
	require.Len(t, env.discord.dispatches, 1)
	assert.Equal(t, 1300, env.email.dispatches[0].TotalMinutes)

	require.Len(t, env.store.marks, 1)
	assert.Equal(t, child.ID, env.store.marks[0].childID)
	assert.Equal(t, env.now, env.store.marks[0].at)
	assert.Nil(t, env.store.marks[0].prev)
}

func TestEvaluateSuppressionWindow(t *testing.T) {
	env := newEvalEnv()
	env.source.games["76561198000000001"] = []domain.Game{{Name: "A", TwoWeekMinutes: 2000}}

	t.Run("23h ago is suppressed", func(t *testing.T) {
		last := env.now.Add(-23 * time.Hour)
		outcome, err := env.eval.Evaluate(context.Background(), testChild(10, &last), fullContact())
		require.NoError(t, err)

		assert.True(t, outcome.OverLimit)
		assert.True(t, outcome.Suppressed)
		assert.False(t, outcome.Notified)
		assert.Empty(t, env.email.dispatches)
		assert.Empty(t, env.store.marks)
	})

	t.Run("25h ago dispatches and updates timestamp", func(t *testing.T) {
		last := env.now.Add(-25 * time.Hour)
		outcome, err := env.eval.Evaluate(context.Background(), testChild(10, &last), fullContact())
		require.NoError(t, err)

		assert.True(t, outcome.Notified)
		assert.False(t, outcome.Suppressed)
		require.Len(t, env.email.dispatches, 1)
		require.Len(t, env.store.marks, 1)
		assert.Equal(t, last, *env.store.marks[0].prev)
		assert.Equal(t, env.now, env.store.marks[0].at)
	})
}

func TestEvaluateChannelFailureIsIndependent(t *testing.T) {
	env := newEvalEnv()
	env.email.fail = true
	env.source.games["76561198000000001"] = []domain.Game{{Name: "A", TwoWeekMinutes: 2000}}

	outcome, err := env.eval.Evaluate(context.Background(), testChild(10, nil), fullContact())
	require.NoError(t, err)

	// Email failing must not stop discord, the timestamp update, or the
	// evaluation itself.
	assert.True(t, outcome.Notified)
	require.Len(t, env.discord.dispatches, 1)
	require.Len(t, env.store.marks, 1)
}

func TestEvaluateOnlyConfiguredChannels(t *testing.T) {
	env := newEvalEnv()
	env.source.games["76561198000000001"] = []domain.Game{{Name: "A", TwoWeekMinutes: 2000}}

	contact := domain.Contact{Email: "parent@example.com"} // no webhook
	outcome, err := env.eval.Evaluate(context.Background(), testChild(10, nil), contact)
	require.NoError(t, err)

	assert.True(t, outcome.Notified)
	require.Len(t, env.email.dispatches, 1)
	assert.Empty(t, env.discord.dispatches)
}

func TestEvaluateNoData(t *testing.T) {
	env := newEvalEnv()
	// No games registered for the steam id.

	outcome, err := env.eval.Evaluate(context.Background(), testChild(10, nil), fullContact())
	require.NoError(t, err)

	assert.Equal(t, StatusNoData, outcome.Status)
	assert.Empty(t, env.email.dispatches)
	assert.Empty(t, env.store.marks)
}

func TestEvaluateSourceErrorMutatesNothing(t *testing.T) {
	env := newEvalEnv()
	env.source.errs["76561198000000001"] = domain.ErrSourceUnavailable(assert.AnError)

	_, err := env.eval.Evaluate(context.Background(), testChild(10, nil), fullContact())
	require.Error(t, err)
	assert.Empty(t, env.email.dispatches)
	assert.Empty(t, env.discord.dispatches)
	assert.Empty(t, env.store.marks)
}

func TestEvaluateExactLimitIsNotOver(t *testing.T) {
	env := newEvalEnv()
	env.source.games["76561198000000001"] = []domain.Game{{Name: "A", TwoWeekMinutes: 1200}}

	outcome, err := env.eval.Evaluate(context.Background(), testChild(10, nil), fullContact())
	require.NoError(t, err)
	assert.False(t, outcome.OverLimit)
}

// --- CheckOnce ---

func TestCheckOnceUsesFixedLimit(t *testing.T) {
	env := newEvalEnv()
	env.source.games["76561198000000002"] = []domain.Game{{Name: "A", TwoWeekMinutes: 1000}}

	outcome, err := env.eval.CheckOnce(context.Background(), "76561198000000002", domain.Contact{})
	require.NoError(t, err)

	assert.Equal(t, QuickCheckWeeklyHours*2*60, outcome.LimitMinutes)
	assert.False(t, outcome.OverLimit)
	assert.Empty(t, env.store.marks)
}

func TestCheckOnceDispatchesWithoutMarking(t *testing.T) {
	env := newEvalEnv()
	env.source.games["76561198000000002"] = []domain.Game{{Name: "A", TwoWeekMinutes: 5000}}

	outcome, err := env.eval.CheckOnce(context.Background(), "76561198000000002",
		domain.Contact{Email: "someone@example.com"})
	require.NoError(t, err)

	assert.True(t, outcome.OverLimit)
	assert.True(t, outcome.Notified)
	require.Len(t, env.email.dispatches, 1)
	assert.Empty(t, env.store.marks)
}

func TestLimitMinutes(t *testing.T) {
	assert.Equal(t, 1200, LimitMinutes(10))
	assert.Equal(t, 2400, LimitMinutes(20))
}
