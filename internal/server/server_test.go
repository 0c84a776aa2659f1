package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"skillshare/internal/config"
	"skillshare/internal/database"
	"skillshare/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestServer builds a full server against an in-memory sqlite database
// with all routes registered.
func setupTestServer(t *testing.T) (*fiber.App, *Server) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, db.AutoMigrate(database.AllModels()...), "migrate sqlite")

	cfg := &config.Config{
		JWTSecret:                 "test-secret",
		JWTTTLMinutes:             60,
		Env:                       "test",
		UploadDir:                 t.TempDir(),
		MaxUploadSizeMB:           10,
		NotificationRetentionDays: 30,
	}

	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return app, srv
}

type authResult struct {
	AccessToken string      `json:"accessToken"`
	TokenType   string      `json:"tokenType"`
	User        models.User `json:"user"`
}

// signupUser registers a user through the API and returns the auth response.
func signupUser(t *testing.T, app *fiber.App, username, email string) authResult {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "Password123",
	})
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode, "signup %s", username)

	var out authResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.AccessToken)
	return out
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSignup(t *testing.T) {
	app, _ := setupTestServer(t)

	res := signupUser(t, app, "alice", "alice@example.com")
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, models.ProviderLocal, res.User.Provider)

	t.Run("duplicate email", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"username": "alice2",
			"email":    "alice@example.com",
			"password": "Password123",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "Email is already in use", body.Message)
		assert.Equal(t, http.StatusBadRequest, body.Status)
		assert.NotEmpty(t, body.Timestamp)
	})

	t.Run("duplicate username", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"username": "alice",
			"email":    "other@example.com",
			"password": "Password123",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "Username is already taken", body.Message)
	})

	t.Run("field errors render as bare map", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"username": "ab",
			"email":    "not-an-email",
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		fields := decodeBody[map[string]string](t, resp)
		assert.Contains(t, fields, "username")
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "password")
		assert.Equal(t, "email should be valid", fields["email"])
	})
}

func TestLogin(t *testing.T) {
	app, _ := setupTestServer(t)
	signupUser(t, app, "bob", "bob@example.com")

	t.Run("success", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "bob@example.com",
			"password": "Password123",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody[authResult](t, resp)
		assert.NotEmpty(t, body.AccessToken)
		assert.Equal(t, "Bearer", body.TokenType)
		assert.Equal(t, "bob", body.User.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "bob@example.com",
			"password": "WrongPassword1",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "nobody@example.com",
			"password": "Password123",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthRequired(t *testing.T) {
	app, _ := setupTestServer(t)
	res := signupUser(t, app, "carol", "carol@example.com")

	t.Run("missing token", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/users/me", "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/users/me", "not.a.jwt", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/users/me", res.AccessToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		user := decodeBody[models.User](t, resp)
		assert.Equal(t, "carol", user.Username)
	})

	t.Run("token as query param", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet,
			fmt.Sprintf("/api/users/me?token=%s", res.AccessToken), "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestHealthEndpoints(t *testing.T) {
	app, _ := setupTestServer(t)

	resp := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Without Redis the readiness check still passes on a healthy database.
	resp2 := doJSON(t, app, http.MethodGet, "/health/ready", "", nil)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}
