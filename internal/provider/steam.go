package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/playwatch/platform/internal/domain"
	"github.com/playwatch/platform/internal/guard"
)

const (
	steamBaseURL = "https://api.steampowered.com"

	// breakerKey groups all Steam calls under one circuit so a broken
	// upstream fails fast for the whole sweep.
	breakerKey = "steam"
)

// recentlyPlayedResponse mirrors IPlayerService/GetRecentlyPlayedGames.
// A private profile omits the games field entirely.
type recentlyPlayedResponse struct {
	Response struct {
		TotalCount int `json:"total_count"`
		Games      []struct {
			AppID          int64  `json:"appid"`
			Name           string `json:"name"`
			Playtime2Weeks int    `json:"playtime_2weeks"`
			PlaytimeTotal  int    `json:"playtime_forever"`
			ImgIconURL     string `json:"img_icon_url"`
		} `json:"games"`
	} `json:"response"`
}

// SteamClient fetches trailing-14-day playtime from the Steam Web API.
type SteamClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *guard.CircuitBreaker
	logger  *slog.Logger
}

// NewSteamClient creates a Steam Web API client with a conservative
// per-call timeout and a shared circuit breaker.
func NewSteamClient(apiKey string, logger *slog.Logger) *SteamClient {
	return &SteamClient{
		baseURL: steamBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: guard.NewCircuitBreaker(5, time.Minute),
		logger:  logger,
	}
}

// NewSteamClientWithBaseURL overrides the API host, for stub servers and
// regional proxies.
func NewSteamClientWithBaseURL(baseURL, apiKey string, logger *slog.Logger) *SteamClient {
	c := NewSteamClient(apiKey, logger)
	c.baseURL = baseURL
	return c
}

// RecentlyPlayed returns the recently-played games for a Steam account.
// An empty slice with a nil error means the source reported no game data
// (private profile or no recent activity). Auth failures and network
// failures return distinct AppError codes.
func (c *SteamClient) RecentlyPlayed(ctx context.Context, steamID string) ([]domain.Game, error) {
	if res := c.breaker.Check(ctx, breakerKey); !res.Allowed {
		return nil, domain.ErrSourceUnavailable(fmt.Errorf("%s", res.Reason))
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("steamid", steamID)
	q.Set("format", "json")
	reqURL := fmt.Sprintf("%s/IPlayerService/GetRecentlyPlayedGames/v1/?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, domain.ErrInternal("build steam request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.breaker.RecordFailure(breakerKey)
		return nil, domain.ErrSourceUnavailable(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	c.logger.Debug("steam api request", "steam_id", steamID, "status", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.breaker.RecordFailure(breakerKey)
		return nil, domain.ErrSourceAuth(fmt.Errorf("steam api returned %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		c.breaker.RecordFailure(breakerKey)
		return nil, domain.ErrSourceUnavailable(
			fmt.Errorf("steam api returned %d: %s", resp.StatusCode, truncate(body, 200)))
	}

	var parsed recentlyPlayedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.breaker.RecordFailure(breakerKey)
		return nil, domain.ErrSourceUnavailable(fmt.Errorf("decode steam response: %w", err))
	}

	c.breaker.RecordSuccess(breakerKey)

	games := make([]domain.Game, 0, len(parsed.Response.Games))
	for _, g := range parsed.Response.Games {
		name := g.Name
		if name == "" {
			name = "Unknown Game"
		}
		games = append(games, domain.Game{
			AppID:          g.AppID,
			Name:           name,
			TwoWeekMinutes: g.Playtime2Weeks,
			ForeverMinutes: g.PlaytimeTotal,
			IconHash:       g.ImgIconURL,
		})
	}
	return games, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
