package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playwatch/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordDispatchSendsContent(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscordWebhook()
	sent, err := d.Dispatch(context.Background(),
		domain.Contact{DiscordWebhookURL: srv.URL},
		Alert{ChildName: "Alex", WeeklyLimitHours: 10, TotalMinutes: 1300, LimitMinutes: 1200})
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Contains(t, received["content"], "Alex")
	assert.Contains(t, received["content"], "1300 minutes")
	assert.Contains(t, received["content"], "20 hours")
}

func TestDiscordDispatchSkipsUnconfiguredContact(t *testing.T) {
	d := NewDiscordWebhook()
	sent, err := d.Dispatch(context.Background(), domain.Contact{}, Alert{})
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestDiscordDispatchReportsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	d := NewDiscordWebhook()
	sent, err := d.Dispatch(context.Background(),
		domain.Contact{DiscordWebhookURL: srv.URL}, Alert{ChildName: "Alex"})
	assert.True(t, sent)
	require.Error(t, err)
}

func TestMailerSkipsUnconfiguredContact(t *testing.T) {
	m := NewMailer("localhost", 587, "user", "pass", "")
	sent, err := m.Dispatch(context.Background(), domain.Contact{}, Alert{})
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestAlertText(t *testing.T) {
	a := Alert{ChildName: "Alex", WeeklyLimitHours: 10, TotalMinutes: 1300, LimitMinutes: 1200}
	text := alertText(a)
	assert.Contains(t, text, "21.67 hours")
	assert.Contains(t, text, "limit of 20 hours")
	assert.Contains(t, text, "10 h/week")
}
