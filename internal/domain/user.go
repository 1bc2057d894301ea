package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the account role stored on a users row.
type Role string

const (
	RoleParent Role = "parent"
	RoleAdmin  Role = "admin"
)

// User represents a users row: a guardian or an admin account.
type User struct {
	ID                uuid.UUID  `json:"id"`
	Username          string     `json:"username"`
	PasswordHash      string     `json:"-"`
	Role              Role       `json:"role"`
	Email             string     `json:"email,omitempty"`
	DiscordWebhookURL string     `json:"discord_webhook_url,omitempty"`
	SteamID           string     `json:"steam_id,omitempty"`
	ParentID          *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Contact holds the notification channels configured for a guardian.
// Either field may be empty; a channel is dispatched only when set.
type Contact struct {
	Email             string `json:"email,omitempty"`
	DiscordWebhookURL string `json:"discord_webhook_url,omitempty"`
}

// Contact returns the notification contact profile for the user.
func (u *User) Contact() Contact {
	return Contact{Email: u.Email, DiscordWebhookURL: u.DiscordWebhookURL}
}
