//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/playwatch/platform/internal/auth"
	"golang.org/x/crypto/bcrypt"
)

// RegisterParent creates a guardian account and returns the auth token and user ID.
func (env *TestEnv) RegisterParent(username, password string) (token string, userID uuid.UUID) {
	env.t.Helper()
	resp := env.POST("/auth/register", map[string]string{
		"username": username,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RegisterParent: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
		User  struct {
			ID uuid.UUID `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("RegisterParent: decode: %v", err)
	}
	return result.Token, result.User.ID
}

// Login authenticates an existing user and returns the auth token.
func (env *TestEnv) Login(username, password string) string {
	env.t.Helper()
	resp := env.POST("/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("Login: expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("Login: decode: %v", err)
	}
	return result.Token
}

// CreateAdmin inserts an admin account directly and returns an admin-realm
// token for it.
func (env *TestEnv) CreateAdmin(username, password string) (token string, userID uuid.UUID) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		env.t.Fatalf("CreateAdmin: hash: %v", err)
	}

	userID = uuid.New()
	_, err = env.Pool.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, role)
		VALUES ($1, $2, $3, 'admin')`,
		userID, username, string(hash))
	if err != nil {
		env.t.Fatalf("CreateAdmin: insert: %v", err)
	}

	token, err = env.JWTMgr.GenerateToken(auth.RealmAdmin, userID, username)
	if err != nil {
		env.t.Fatalf("CreateAdmin: token: %v", err)
	}
	return token, userID
}

// AddChild creates a child via the API and returns its ID.
func (env *TestEnv) AddChild(token, name, steamID string, weeklyLimitHours int) uuid.UUID {
	env.t.Helper()
	resp := env.POST("/children", map[string]interface{}{
		"name":               name,
		"steam_id":           steamID,
		"weekly_limit_hours": weeklyLimitHours,
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("AddChild: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("AddChild: decode: %v", err)
	}
	return result.ID
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.request("POST", path, body, token)
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.request("GET", path, nil, token)
}

// AuthPUT performs an authenticated PUT request.
func (env *TestEnv) AuthPUT(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.request("PUT", path, body, token)
}

// AuthDELETE performs an authenticated DELETE request.
func (env *TestEnv) AuthDELETE(path, token string) *http.Response {
	env.t.Helper()
	return env.request("DELETE", path, nil, token)
}

// OPTIONS performs an OPTIONS request.
func (env *TestEnv) OPTIONS(path string) *http.Response {
	env.t.Helper()
	return env.request("OPTIONS", path, nil, "")
}

func (env *TestEnv) request(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}
