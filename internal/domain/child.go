package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultWeeklyLimitHours is applied when a child is added without an
// explicit limit.
const DefaultWeeklyLimitHours = 20

// Child represents a children row: one monitored Steam account owned by
// one guardian. A Steam ID maps to at most one child globally.
type Child struct {
	ID               uuid.UUID  `json:"id"`
	ParentID         uuid.UUID  `json:"parent_id"`
	Name             string     `json:"name"`
	SteamID          string     `json:"steam_id"`
	WeeklyLimitHours int        `json:"weekly_limit_hours"`
	LastNotifiedAt   *time.Time `json:"last_notified_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
