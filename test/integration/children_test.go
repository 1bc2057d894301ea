//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/playwatch/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildren_CreateAndList(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterParent("parent1", "securepass123")

	env.AddChild(token, "Alex", "76561198000000001", 10)
	env.AddChild(token, "Sam", "76561198000000002", 25)

	resp := env.AuthGET("/children", token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var children []struct {
		Name             string `json:"name"`
		SteamID          string `json:"steam_id"`
		WeeklyLimitHours int    `json:"weekly_limit_hours"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&children))
	require.Len(t, children, 2)
	assert.Equal(t, "Alex", children[0].Name)
	assert.Equal(t, 10, children[0].WeeklyLimitHours)
}

func TestChildren_DefaultLimit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterParent("parent2", "securepass123")

	resp := env.POST("/children", map[string]interface{}{
		"name": "NoLimit", "steam_id": "76561198000000003",
	}, token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var child struct {
		WeeklyLimitHours int `json:"weekly_limit_hours"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&child))
	assert.Equal(t, 20, child.WeeklyLimitHours)
}

func TestChildren_InvalidSteamID(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterParent("parent3", "securepass123")

	resp := env.POST("/children", map[string]interface{}{
		"name": "Bad", "steam_id": "not-a-steam-id",
	}, token)
	defer resp.Body.Close()

	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestChildren_NegativeLimit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterParent("parent4", "securepass123")

	resp := env.POST("/children", map[string]interface{}{
		"name": "Bad", "steam_id": "76561198000000004", "weekly_limit_hours": -5,
	}, token)
	defer resp.Body.Close()

	testutil.AssertStatus(t, resp, http.StatusBadRequest)
}

func TestChildren_DuplicateSteamID(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterParent("parent5", "securepass123")
	env.AddChild(token, "First", "76561198000000005", 20)

	resp := env.POST("/children", map[string]interface{}{
		"name": "Second", "steam_id": "76561198000000005",
	}, token)
	defer resp.Body.Close()

	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "CONFLICT")
}

func TestChildren_Update(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterParent("parent6", "securepass123")
	childID := env.AddChild(token, "Alex", "76561198000000006", 20)

	resp := env.AuthPUT("/children/"+childID.String(), map[string]interface{}{
		"name": "Alexander", "steam_id": "76561198000000006", "weekly_limit_hours": 15,
	}, token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var child struct {
		Name             string `json:"name"`
		WeeklyLimitHours int    `json:"weekly_limit_hours"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&child))
	assert.Equal(t, "Alexander", child.Name)
	assert.Equal(t, 15, child.WeeklyLimitHours)
}

func TestChildren_Delete(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterParent("parent7", "securepass123")
	childID := env.AddChild(token, "Alex", "76561198000000007", 20)

	resp := env.AuthDELETE("/children/"+childID.String(), token)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	list := env.AuthGET("/children", token)
	defer list.Body.Close()
	var children []json.RawMessage
	require.NoError(t, json.NewDecoder(list.Body).Decode(&children))
	assert.Empty(t, children)
}

func TestChildren_OtherGuardiansChildReadsAsNotFound(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ownerToken, _ := env.RegisterParent("owner", "securepass123")
	otherToken, _ := env.RegisterParent("other", "securepass123")
	childID := env.AddChild(ownerToken, "Alex", "76561198000000008", 20)

	update := env.AuthPUT("/children/"+childID.String(), map[string]interface{}{
		"name": "Hijack", "steam_id": "76561198000000008",
	}, otherToken)
	defer update.Body.Close()
	testutil.AssertStatus(t, update, http.StatusNotFound)
	testutil.AssertErrorCode(t, update, "NOT_FOUND")

	del := env.AuthDELETE("/children/"+childID.String(), otherToken)
	defer del.Body.Close()
	testutil.AssertStatus(t, del, http.StatusNotFound)
}

func TestChildren_ListScopedToGuardian(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token1, _ := env.RegisterParent("guardian1", "securepass123")
	token2, _ := env.RegisterParent("guardian2", "securepass123")
	env.AddChild(token1, "Mine", "76561198000000009", 20)

	resp := env.AuthGET("/children", token2)
	defer resp.Body.Close()

	var children []json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&children))
	assert.Empty(t, children)
}

func TestChildren_UnknownIDNotFound(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterParent("parent8", "securepass123")

	resp := env.AuthDELETE("/children/"+uuid.New().String(), token)
	defer resp.Body.Close()

	testutil.AssertStatus(t, resp, http.StatusNotFound)
}
