package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/playwatch/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoster struct {
	children []domain.Child
	contacts map[uuid.UUID]*domain.Contact
	loadErr  error

	mu    sync.Mutex
	loads int
}

func (f *fakeRoster) LoadRoster(_ context.Context) ([]domain.Child, error) {
	f.mu.Lock()
	f.loads++
	f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.children, nil
}

func (f *fakeRoster) GuardianContact(_ context.Context, guardianID uuid.UUID) (*domain.Contact, error) {
	return f.contacts[guardianID], nil
}

func newSweepEnv() (*evalEnv, *fakeRoster) {
	env := newEvalEnv()
	roster := &fakeRoster{contacts: map[uuid.UUID]*domain.Contact{}}
	return env, roster
}

func addRosterChild(env *evalEnv, roster *fakeRoster, steamID string, games []domain.Game) domain.Child {
	child := domain.Child{
		ID:               uuid.New(),
		ParentID:         uuid.New(),
		Name:             "child-" + steamID,
		SteamID:          steamID,
		WeeklyLimitHours: 10,
	}
	roster.children = append(roster.children, child)
	contact := fullContact()
	roster.contacts[child.ParentID] = &contact
	env.source.games[steamID] = games
	return child
}

func TestSweepIsolatesPerChildFailures(t *testing.T) {
	env, roster := newSweepEnv()

	over := []domain.Game{{Name: "A", TwoWeekMinutes: 2000}}
	under := []domain.Game{{Name: "B", TwoWeekMinutes: 100}}

	c1 := addRosterChild(env, roster, "76561198000000001", over)
	c2 := addRosterChild(env, roster, "76561198000000002", nil)
	addRosterChild(env, roster, "76561198000000003", under)
	env.source.errs[c2.SteamID] = domain.ErrSourceUnavailable(assert.AnError)

	sweeper := NewSweeper(roster, env.eval, time.Hour, testLogger())
	report, ok := sweeper.TryRun(context.Background())
	require.True(t, ok)

	// Child 2's failure must not stop children 1 and 3.
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 1, report.OverLimit)
	assert.Equal(t, 1, report.Notified)

	require.Len(t, env.store.marks, 1)
	assert.Equal(t, c1.ID, env.store.marks[0].childID)
}

func TestSweepSkipsChildWithMissingGuardian(t *testing.T) {
	env, roster := newSweepEnv()

	c := addRosterChild(env, roster, "76561198000000001", []domain.Game{{TwoWeekMinutes: 2000}})
	delete(roster.contacts, c.ParentID)

	sweeper := NewSweeper(roster, env.eval, time.Hour, testLogger())
	report, ok := sweeper.TryRun(context.Background())
	require.True(t, ok)

	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Checked)
	assert.Equal(t, 0, env.source.calls)
}

func TestSweepCountsSuppressedAndNoData(t *testing.T) {
	env, roster := newSweepEnv()

	// Over limit but recently notified.
	addRosterChild(env, roster, "76561198000000001", []domain.Game{{TwoWeekMinutes: 2000}})
	last := env.now.Add(-time.Hour)
	roster.children[0].LastNotifiedAt = &last

	// Private profile.
	addRosterChild(env, roster, "76561198000000002", nil)
	env.source.games["76561198000000002"] = []domain.Game{}

	sweeper := NewSweeper(roster, env.eval, time.Hour, testLogger())
	report, ok := sweeper.TryRun(context.Background())
	require.True(t, ok)

	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 1, report.Suppressed)
	assert.Equal(t, 1, report.NoData)
	assert.Equal(t, 0, report.Notified)
	assert.Empty(t, env.store.marks)
}

func TestSweepRosterLoadFailure(t *testing.T) {
	env, roster := newSweepEnv()
	roster.loadErr = assert.AnError

	sweeper := NewSweeper(roster, env.eval, time.Hour, testLogger())
	report, ok := sweeper.TryRun(context.Background())
	require.True(t, ok)
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 0, report.Checked)
}

func TestSweepDropsOverlappingTrigger(t *testing.T) {
	env, roster := newSweepEnv()
	sweeper := NewSweeper(roster, env.eval, time.Hour, testLogger())

	// Hold the gate as a running sweep would.
	require.True(t, sweeper.inFlight.CompareAndSwap(false, true))
	report, ok := sweeper.TryRun(context.Background())
	assert.False(t, ok)
	assert.Nil(t, report)
	sweeper.inFlight.Store(false)

	// Gate released: the next trigger runs.
	_, ok = sweeper.TryRun(context.Background())
	assert.True(t, ok)
	assert.Equal(t, 1, roster.loads)
}
