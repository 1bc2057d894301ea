//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/playwatch/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	TotalMinutes int  `json:"total_playtime_minutes"`
	LimitMinutes int  `json:"limit_minutes"`
	OverLimit    bool `json:"is_over_limit"`
	Games        []struct {
		Name string `json:"name"`
	} `json:"games"`
}

func TestCheckChild_UnderLimit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterParent("checker1", "securepass123")
	childID := env.AddChild(token, "Alex", "76561198000000101", 10)
	env.Steam.SetGames("76561198000000101",
		testutil.StubGame{AppID: 730, Name: "Counter-Strike 2", TwoWeekMinutes: 900})

	resp := env.POST("/children/"+childID.String()+"/check", nil, token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snap snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 900, snap.TotalMinutes)
	assert.Equal(t, 1200, snap.LimitMinutes)
	assert.False(t, snap.OverLimit)
	require.Len(t, snap.Games, 1)
	assert.Equal(t, "Counter-Strike 2", snap.Games[0].Name)
}

func TestCheckChild_OverLimit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterParent("checker2", "securepass123")
	childID := env.AddChild(token, "Alex", "76561198000000102", 10)
	env.Steam.SetGames("76561198000000102",
		testutil.StubGame{AppID: 730, Name: "Counter-Strike 2", TwoWeekMinutes: 700},
		testutil.StubGame{AppID: 570, Name: "Dota 2", TwoWeekMinutes: 600})

	resp := env.POST("/children/"+childID.String()+"/check", nil, token)
	defer resp.Body.Close()

	var snap snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 1300, snap.TotalMinutes)
	assert.True(t, snap.OverLimit)

	// Over-limit check stamps the notification timestamp
	var notified *time.Time
	err := env.Pool.QueryRow(context.Background(),
		"SELECT last_notified_at FROM children WHERE id = $1", childID).Scan(&notified)
	require.NoError(t, err)
	assert.NotNil(t, notified)
}

func TestCheckChild_WritesAuditAndRecord(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterParent("checker3", "securepass123")
	childID := env.AddChild(token, "Alex", "76561198000000103", 20)
	env.Steam.SetGames("76561198000000103",
		testutil.StubGame{AppID: 730, Name: "Counter-Strike 2", TwoWeekMinutes: 100})

	resp := env.POST("/children/"+childID.String()+"/check", nil, token)
	resp.Body.Close()

	var auditCount, recordCount int
	env.Pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM activity_logs WHERE user_id = $1 AND checked_steam_id = $2",
		userID, "76561198000000103").Scan(&auditCount)
	env.Pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM playtime_records WHERE steam_id = $1",
		"76561198000000103").Scan(&recordCount)

	assert.Equal(t, 1, auditCount)
	assert.Equal(t, 1, recordCount)
}

func TestCheckChild_NoDataWritesNoAudit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterParent("checker4", "securepass123")
	childID := env.AddChild(token, "Ghost", "76561198000000104", 20)
	// No games registered: the stub reports an empty response

	resp := env.POST("/children/"+childID.String()+"/check", nil, token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snap snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 0, snap.TotalMinutes)
	assert.Empty(t, snap.Games)

	var auditCount int
	env.Pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM activity_logs").Scan(&auditCount)
	assert.Equal(t, 0, auditCount)
}

func TestCheckChild_OtherGuardiansChildNotFound(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ownerToken, _ := env.RegisterParent("checkowner", "securepass123")
	otherToken, _ := env.RegisterParent("checkother", "securepass123")
	childID := env.AddChild(ownerToken, "Alex", "76561198000000105", 20)

	resp := env.POST("/children/"+childID.String()+"/check", nil, otherToken)
	defer resp.Body.Close()

	testutil.AssertStatus(t, resp, http.StatusNotFound)
	testutil.AssertErrorCode(t, resp, "NOT_FOUND")
}

func TestCheckChild_SteamDown(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterParent("checker5", "securepass123")
	childID := env.AddChild(token, "Alex", "76561198000000106", 20)
	env.Steam.SetStatus("76561198000000106", http.StatusInternalServerError)

	resp := env.POST("/children/"+childID.String()+"/check", nil, token)
	defer resp.Body.Close()

	testutil.AssertStatus(t, resp, http.StatusBadGateway)
	testutil.AssertErrorCode(t, resp, "SOURCE_UNAVAILABLE")
}

func TestCheckChild_SteamKeyRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterParent("checker6", "securepass123")
	childID := env.AddChild(token, "Alex", "76561198000000107", 20)
	env.Steam.SetStatus("76561198000000107", http.StatusForbidden)

	resp := env.POST("/children/"+childID.String()+"/check", nil, token)
	defer resp.Body.Close()

	testutil.AssertStatus(t, resp, http.StatusBadGateway)
	testutil.AssertErrorCode(t, resp, "SOURCE_AUTH")
}

func TestQuickCheck_FixedLimit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.Steam.SetGames("76561198000000108",
		testutil.StubGame{AppID: 730, Name: "Counter-Strike 2", TwoWeekMinutes: 1000})

	resp := env.POST("/check-playtime", map[string]string{
		"steam_id": "76561198000000108",
	}, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snap snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 1000, snap.TotalMinutes)
	// Public check uses the fixed 40 h/week limit
	assert.Equal(t, 4800, snap.LimitMinutes)
	assert.False(t, snap.OverLimit)
}

func TestQuickCheck_WritesRecordButNoAudit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.Steam.SetGames("76561198000000109",
		testutil.StubGame{AppID: 570, Name: "Dota 2", TwoWeekMinutes: 300})

	resp := env.POST("/check-playtime", map[string]string{
		"steam_id": "76561198000000109",
	}, "")
	resp.Body.Close()

	var recordCount, auditCount int
	env.Pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM playtime_records WHERE steam_id = $1",
		"76561198000000109").Scan(&recordCount)
	env.Pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM activity_logs").Scan(&auditCount)

	assert.Equal(t, 1, recordCount)
	assert.Equal(t, 0, auditCount)
}

func TestQuickCheck_InvalidSteamID(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.POST("/check-playtime", map[string]string{
		"steam_id": "garbage",
	}, "")
	defer resp.Body.Close()

	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestQuickCheck_InvalidWebhookPrefix(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.POST("/check-playtime", map[string]string{
		"steam_id":            "76561198000000110",
		"discord_webhook_url": "https://example.com/webhook",
	}, "")
	defer resp.Body.Close()

	testutil.AssertStatus(t, resp, http.StatusBadRequest)
}
