package domain

import (
	"time"

	"github.com/google/uuid"
)

// Game is one recently-played entry reported by the playtime source.
// TwoWeekMinutes is the trailing-14-day playtime.
type Game struct {
	AppID          int64  `json:"appid"`
	Name           string `json:"name"`
	TwoWeekMinutes int    `json:"playtime_2weeks"`
	ForeverMinutes int    `json:"playtime_forever"`
	IconHash       string `json:"img_icon_url"`
}

// PlaytimeSnapshot is the transient result of one check. It is owned by
// the request or sweep iteration that produced it and never persisted,
// except for the last-notified timestamp side effect on the child row.
type PlaytimeSnapshot struct {
	TotalMinutes int    `json:"total_playtime_minutes"`
	LimitMinutes int    `json:"limit_minutes"`
	OverLimit    bool   `json:"is_over_limit"`
	Games        []Game `json:"games"`
}

// TotalHours restates the total in hours for rendered notifications.
func (s *PlaytimeSnapshot) TotalHours() float64 {
	return float64(s.TotalMinutes) / 60
}

// AuditEntry is an immutable activity_logs row: guardian X checked
// player Y at time T. Written once per on-demand check, never mutated.
type AuditEntry struct {
	ID             int64     `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	CheckedSteamID string    `json:"checked_steam_id"`
	CreatedAt      time.Time `json:"timestamp"`
}

// PlaytimeRecord is a playtime_records history row keeping the total of
// one completed check per Steam ID.
type PlaytimeRecord struct {
	ID           int64     `json:"id"`
	SteamID      string    `json:"steam_id"`
	TotalMinutes int       `json:"total_playtime_minutes"`
	CreatedAt    time.Time `json:"created_at"`
}
