//go:build integration

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// StubGame is one game entry served by the Steam stub.
type StubGame struct {
	AppID          int64  `json:"appid"`
	Name           string `json:"name"`
	TwoWeekMinutes int    `json:"playtime_2weeks"`
	ForeverMinutes int    `json:"playtime_forever"`
	IconHash       string `json:"img_icon_url"`
}

// SteamStub is an in-process stand-in for the Steam Web API. Steam IDs
// without registered games get an empty response, matching a private
// profile or an idle account.
type SteamStub struct {
	server *httptest.Server

	mu     sync.Mutex
	games  map[string][]StubGame
	status map[string]int
}

// NewSteamStub starts the stub server.
func NewSteamStub() *SteamStub {
	s := &SteamStub{
		games:  make(map[string][]StubGame),
		status: make(map[string]int),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// SetGames registers the games returned for a Steam ID.
func (s *SteamStub) SetGames(steamID string, games ...StubGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[steamID] = games
}

// SetStatus makes requests for a Steam ID fail with the given HTTP status.
func (s *SteamStub) SetStatus(steamID string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[steamID] = code
}

// URL returns the stub's base URL.
func (s *SteamStub) URL() string { return s.server.URL }

// Close shuts the stub down.
func (s *SteamStub) Close() { s.server.Close() }

func (s *SteamStub) handle(w http.ResponseWriter, r *http.Request) {
	steamID := r.URL.Query().Get("steamid")

	s.mu.Lock()
	code, failing := s.status[steamID]
	games := s.games[steamID]
	s.mu.Unlock()

	if failing {
		w.WriteHeader(code)
		return
	}

	type response struct {
		TotalCount int        `json:"total_count,omitempty"`
		Games      []StubGame `json:"games,omitempty"`
	}
	json.NewEncoder(w).Encode(map[string]response{
		"response": {TotalCount: len(games), Games: games},
	})
}
