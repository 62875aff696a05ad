package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"vibenotes-be/internal/bootstrap"
	"vibenotes-be/internal/config"
	"vibenotes-be/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		App: config.AppConfig{
			Port:               "0",
			Environment:        "test",
			LogFilePath:        filepath.Join(dir, "app.log"),
			CorsAllowedOrigins: "http://localhost",
			NoteStore:          config.NoteStoreMemory,
			EmotionTopic:       "test.emotion",
		},
		Auth: config.AuthConfig{JWTSecret: "server-test", TokenTTL: time.Hour, BcryptCost: 4},
		Ai:   config.AIConfig{EmotionProvider: "none"},
		Notification: config.NotificationConfig{
			LogFilePath: filepath.Join(dir, "notification.log"),
			DedupeTTL:   time.Minute,
			ProfileTTL:  time.Minute,
		},
	}
}

func post(t *testing.T, srv *Server, path, token string, body interface{}) (int, map[string]json.RawMessage) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.GetApp().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestServerWiresFullStackInMemory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	cfg := memoryConfig(t)

	container, err := bootstrap.NewContainer(ctx, nil, cfg)
	require.NoError(t, err)
	t.Cleanup(container.Close)
	srv := New(cfg, container, container.Logger)

	register := func(name string) string {
		status, env := post(t, srv, "/api/auth/register", "", dto.RegisterRequest{
			Username: name, DisplayName: name, Email: name + "@example.com", Password: "password123",
		})
		require.Equal(t, http.StatusCreated, status)
		var auth dto.AuthResponse
		require.NoError(t, json.Unmarshal(env["data"], &auth))
		return auth.Token
	}
	owner := register("owner")
	guest := register("guest")

	status, env := post(t, srv, "/api/notes", owner, dto.CreateNoteRequest{Title: "hello", IsPublic: true})
	require.Equal(t, http.StatusCreated, status)
	var note dto.NoteResponse
	require.NoError(t, json.Unmarshal(env["data"], &note))

	status, _ = post(t, srv, "/api/notes/"+note.Id+"/response", guest, dto.AddResponseRequest{Text: "hi!"})
	assert.Equal(t, http.StatusCreated, status)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications/unread-count", nil)
	req.Header.Set("Authorization", "Bearer "+owner)
	resp, err := srv.GetApp().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var count struct{ Count int64 }
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&count))
	assert.Equal(t, int64(1), count.Count)
}

func TestNewContainerRejectsUnknownStore(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.App.NoteStore = "cassandra"

	_, err := bootstrap.NewContainer(context.Background(), nil, cfg)

	assert.Error(t, err)
}

func TestNewContainerNeedsDatabaseForPostgres(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.App.NoteStore = config.NoteStorePostgres

	_, err := bootstrap.NewContainer(context.Background(), nil, cfg)

	assert.Error(t, err)
}

func corsHeaders(t *testing.T, origins string) http.Header {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	cfg := memoryConfig(t)
	cfg.App.CorsAllowedOrigins = origins

	container, err := bootstrap.NewContainer(ctx, nil, cfg)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	var srv *Server
	require.NotPanics(t, func() { srv = New(cfg, container, container.Logger) })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost")
	resp, err := srv.GetApp().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return resp.Header
}

func TestWildcardOriginStartsWithoutCredentials(t *testing.T) {
	h := corsHeaders(t, "*")

	assert.Equal(t, "*", h.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, h.Get("Access-Control-Allow-Credentials"))
}

func TestExplicitOriginAllowsCredentials(t *testing.T) {
	h := corsHeaders(t, "http://localhost")

	assert.Equal(t, "http://localhost", h.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", h.Get("Access-Control-Allow-Credentials"))
}
