package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/playwatch/platform/internal/domain"
)

// DiscordWebhook delivers alerts as plain-text messages to a Discord
// webhook endpoint. The endpoint URL is validated against the provider
// prefix when the guardian saves it, not here.
type DiscordWebhook struct {
	client *http.Client
}

// NewDiscordWebhook creates a Discord webhook dispatcher.
func NewDiscordWebhook() *DiscordWebhook {
	return &DiscordWebhook{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *DiscordWebhook) Name() string { return "discord" }

// Dispatch posts the alert to the contact's webhook URL if one is set.
func (d *DiscordWebhook) Dispatch(ctx context.Context, contact domain.Contact, alert Alert) (bool, error) {
	if contact.DiscordWebhookURL == "" {
		return false, nil
	}

	message := fmt.Sprintf(":bell: **%s** :bell:\n%s", alertSubject(), alertText(alert))
	payload, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		return true, fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, contact.DiscordWebhookURL, bytes.NewReader(payload))
	if err != nil {
		return true, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return true, fmt.Errorf("webhook returned %d: %s", resp.StatusCode, body)
	}
	return true, nil
}
