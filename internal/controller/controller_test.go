package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vibenotes-be/internal/dto"
	"vibenotes-be/internal/entity"
	"vibenotes-be/internal/pkg/logger"
	"vibenotes-be/internal/pkg/serverutils"
	"vibenotes-be/internal/repository/memory"
	"vibenotes-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "controller-test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Kind    string          `json:"kind"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	app   *fiber.App
	store *memory.Store
	alice string
	bob   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewNopLogger()
	store := memory.NewStore()
	factory := memory.NewRepositoryFactory(store)
	profiles := service.NewProfileService(factory, time.Minute, log)

	noteService := service.NewNoteService(factory, nil, profiles, nil, log)
	responseService := service.NewResponseService(factory, profiles, nil, log)
	authService := service.NewAuthService(factory, testSecret, time.Hour, bcrypt.MinCost)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(log))
	api := app.Group("/api")
	NewAuthController(authService).RegisterRoutes(api)
	NewNoteController(noteService, testSecret).RegisterRoutes(api)
	NewResponseController(responseService, testSecret).RegisterRoutes(api)

	s := &testServer{app: app, store: store}
	s.alice = s.seedUser(t, "alice")
	s.bob = s.seedUser(t, "bob")
	return s
}

func (s *testServer) seedUser(t *testing.T, name string) string {
	t.Helper()
	u := &entity.User{Id: uuid.New(), Username: name, DisplayName: name, Email: name + "@example.com"}
	require.NoError(t, memory.NewUserRepository(s.store).Create(context.Background(), u))
	token, _, err := serverutils.GenerateUserToken(u.Id.String(), testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (s *testServer) createNote(t *testing.T, token string, public bool) dto.NoteResponse {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/notes", token, dto.CreateNoteRequest{Title: "Today", Content: "ok", IsPublic: public})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var note dto.NoteResponse
	require.NoError(t, json.Unmarshal(env.Data, &note))
	return note
}

func TestNotesRequireToken(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/notes", "", dto.CreateNoteRequest{Title: "x"})

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "NOT_AUTHENTICATED", env.Kind)
}

func TestShowNoteVisibility(t *testing.T) {
	s := newTestServer(t)
	public := s.createNote(t, s.alice, true)
	private := s.createNote(t, s.alice, false)

	status, env := s.do(t, http.MethodGet, "/api/notes/"+public.Id, "", nil)
	assert.Equal(t, http.StatusOK, status)
	var shown dto.NoteResponse
	require.NoError(t, json.Unmarshal(env.Data, &shown))
	assert.Equal(t, "alice", shown.Author.Username)

	status, env = s.do(t, http.MethodGet, "/api/notes/"+private.Id, s.bob, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Kind)

	status, _ = s.do(t, http.MethodGet, "/api/notes/"+private.Id, s.alice, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodGet, "/api/notes/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Kind)
}

func TestCreateNoteValidation(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/notes", s.alice, map[string]interface{}{"content": "no title"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Kind)

	status, env = s.do(t, http.MethodPost, "/api/notes", s.alice, "{not json")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Kind)
}

func TestResponseLifecycle(t *testing.T) {
	s := newTestServer(t)
	note := s.createNote(t, s.alice, true)
	path := "/api/notes/" + note.Id + "/response"

	status, env := s.do(t, http.MethodPost, path, s.bob, dto.AddResponseRequest{Text: "hang in there"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var added dto.AddResponseResult
	require.NoError(t, json.Unmarshal(env.Data, &added))
	assert.Equal(t, 0, added.ResponseIndex)
	assert.Equal(t, "bob", added.Response.Author.Username)

	status, env = s.do(t, http.MethodPatch, path, s.alice, map[string]interface{}{
		"action":        dto.ActionLikeResponse,
		"responseIndex": 0,
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var flat map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &flat))
	assert.Equal(t, true, flat["liked"])
	assert.Equal(t, float64(1), flat["likes"])
	assert.NotNil(t, flat["note"])

	status, env = s.do(t, http.MethodPatch, path, s.alice, map[string]interface{}{
		"action":     dto.ActionAddReply,
		"responseId": added.Response.Id,
		"replyText":  "thanks",
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var replied dto.PatchResponseResult
	require.NoError(t, json.Unmarshal(env.Data, &replied))
	require.NotNil(t, replied.ReplyIndex)
	assert.Equal(t, 0, *replied.ReplyIndex)
	assert.Equal(t, "thanks", replied.Note.Responses[0].Replies[0].Text)

	status, env = s.do(t, http.MethodPatch, path, s.alice, map[string]interface{}{
		"action":        dto.ActionDeleteResponse,
		"responseIndex": 0,
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Kind)

	status, env = s.do(t, http.MethodPatch, path, s.bob, map[string]interface{}{
		"action":        dto.ActionDeleteResponse,
		"responseIndex": 0,
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var deleted dto.PatchResponseResult
	require.NoError(t, json.Unmarshal(env.Data, &deleted))
	assert.Empty(t, deleted.Note.Responses)
}

func TestPatchResponseErrors(t *testing.T) {
	s := newTestServer(t)
	note := s.createNote(t, s.alice, true)
	path := "/api/notes/" + note.Id + "/response"

	status, env := s.do(t, http.MethodPatch, path, s.bob, map[string]interface{}{"action": "shout", "responseIndex": 0})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Kind)

	status, env = s.do(t, http.MethodPatch, path, s.bob, map[string]interface{}{"action": dto.ActionLikeResponse, "responseIndex": 3})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ADDRESS", env.Kind)

	status, _ = s.do(t, http.MethodPost, path, s.bob, dto.AddResponseRequest{Text: "one"})
	require.Equal(t, http.StatusCreated, status)

	status, env = s.do(t, http.MethodPatch, path, s.bob, map[string]interface{}{
		"action":        dto.ActionLikeResponse,
		"responseIndex": 0,
		"version":       note.Version,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Kind)

	status, env = s.do(t, http.MethodPatch, "/api/notes/"+uuid.NewString()+"/response", s.bob, map[string]interface{}{
		"action":        dto.ActionLikeResponse,
		"responseIndex": 0,
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Kind)
}

func TestPrivateNoteReplyForbidden(t *testing.T) {
	s := newTestServer(t)
	note := s.createNote(t, s.alice, false)
	path := "/api/notes/" + note.Id + "/response"

	status, _ := s.do(t, http.MethodPost, path, s.alice, dto.AddResponseRequest{Text: "note to self"})
	require.Equal(t, http.StatusCreated, status)

	status, env := s.do(t, http.MethodPatch, path, s.alice, map[string]interface{}{
		"action":        dto.ActionAddReply,
		"responseIndex": 0,
		"replyText":     "x",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Kind)
}

func TestNoteLikeAndDelete(t *testing.T) {
	s := newTestServer(t)
	note := s.createNote(t, s.alice, true)

	status, env := s.do(t, http.MethodPost, "/api/notes/"+note.Id+"/like", s.bob, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	var like dto.NoteLikeResponse
	require.NoError(t, json.Unmarshal(env.Data, &like))
	assert.True(t, like.Liked)
	assert.Equal(t, 1, like.Note.Likes)

	status, _ = s.do(t, http.MethodDelete, "/api/notes/"+note.Id, s.bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodDelete, "/api/notes/"+note.Id, s.alice, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodGet, "/api/notes/"+note.Id, s.alice, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRegisterAndLoginRoutes(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Username:    "carol",
		DisplayName: "Carol",
		Email:       "carol@example.com",
		Password:    "long-enough",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	status, env = s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Username:    "carol",
		DisplayName: "Carol",
		Email:       "carol2@example.com",
		Password:    "long-enough",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, env = s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "carol", Password: "long-enough"})
	require.Equal(t, http.StatusOK, status, env.Message)
	var auth dto.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))

	// The issued token works against protected routes.
	note := s.createNote(t, auth.Token, true)
	assert.Equal(t, "carol", note.Author.Username)

	status, env = s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "carol", Password: "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "NOT_AUTHENTICATED", env.Kind)
}
