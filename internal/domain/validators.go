package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	steamIDRegex = regexp.MustCompile(`^[0-9]{5,20}$`)
)

// DiscordWebhookPrefix is the only accepted destination prefix for chat
// notifications. Validated when the setting is written, not at dispatch time.
const DiscordWebhookPrefix = "https://discord.com/api/webhooks/"

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateSteamID checks that a Steam ID is a plausible 64-bit account id.
func ValidateSteamID(steamID string) error {
	if steamID == "" {
		return fmt.Errorf("steam id is required")
	}
	if !steamIDRegex.MatchString(steamID) {
		return fmt.Errorf("invalid steam id: must be numeric")
	}
	return nil
}

// ValidateWeeklyLimit checks that a weekly hour limit is positive.
func ValidateWeeklyLimit(hours int) error {
	if hours <= 0 {
		return fmt.Errorf("weekly limit must be a positive number of hours, got %d", hours)
	}
	return nil
}

// ValidateDiscordWebhookURL checks the webhook destination against the
// expected provider prefix. An empty URL is valid (channel unset).
func ValidateDiscordWebhookURL(url string) error {
	if url == "" {
		return nil
	}
	if !strings.HasPrefix(url, DiscordWebhookPrefix) {
		return fmt.Errorf("invalid Discord webhook URL format")
	}
	return nil
}

// ValidateRole checks that a role is one of the two known roles.
func ValidateRole(role Role) error {
	if role != RoleParent && role != RoleAdmin {
		return fmt.Errorf("invalid role: %s", role)
	}
	return nil
}
