package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"vibenotes-be/internal/bootstrap"
	"vibenotes-be/internal/config"
	"vibenotes-be/internal/dto"
	"vibenotes-be/internal/pkg/apperr"
	"vibenotes-be/internal/server"
	"vibenotes-be/pkg/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startMemoryServer serves the full stack on a loopback port with the
// in-memory store and returns the API base URL.
func startMemoryServer(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	dir := t.TempDir()
	cfg := &config.Config{
		App: config.AppConfig{
			Environment:        "test",
			LogFilePath:        filepath.Join(dir, "app.log"),
			CorsAllowedOrigins: "http://localhost",
			NoteStore:          config.NoteStoreMemory,
			EmotionTopic:       "e2e.emotion",
		},
		Auth: config.AuthConfig{JWTSecret: "e2e", TokenTTL: time.Hour, BcryptCost: 4},
		Ai:   config.AIConfig{EmotionProvider: "none"},
		Notification: config.NotificationConfig{
			LogFilePath: filepath.Join(dir, "notification.log"),
			DedupeTTL:   time.Minute,
			ProfileTTL:  time.Minute,
		},
	}

	container, err := bootstrap.NewContainer(ctx, nil, cfg)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	srv := server.New(cfg, container, container.Logger)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.GetApp().Listener(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	return "http://" + ln.Addr().String() + "/api"
}

func register(t *testing.T, baseURL, name string) (*client.Client, string) {
	t.Helper()
	c := client.New(baseURL)
	auth, err := c.Register(context.Background(), dto.RegisterRequest{
		Username:    name,
		DisplayName: name,
		Email:       name + "@example.com",
		Password:    "password123",
	})
	require.NoError(t, err)
	return c, auth.User.Id
}

func TestClientThreadAgainstServer(t *testing.T) {
	ctx := context.Background()
	baseURL := startMemoryServer(t)

	owner, ownerID := register(t, baseURL, "owner")
	guest, guestID := register(t, baseURL, "guest")

	note, err := owner.CreateNote(ctx, dto.CreateNoteRequest{Title: "A day", Content: "it was fine", IsPublic: true})
	require.NoError(t, err)

	guestThread, err := client.OpenThread(ctx, guest, note.Id, guestID)
	require.NoError(t, err)

	_, err = guestThread.AddResponse(ctx, "first")
	require.NoError(t, err)
	_, err = guestThread.AddResponse(ctx, "second")
	require.NoError(t, err)

	view := guestThread.View()
	require.Len(t, view, 2)
	assert.Equal(t, "second", view[0].Response.Text)
	assert.True(t, view[0].Response.Author.Resolved)

	ownerThread, err := client.OpenThread(ctx, owner, note.Id, ownerID)
	require.NoError(t, err)
	ownerView := ownerThread.View()
	assert.Equal(t, "first", ownerView[0].Response.Text)

	// The owner is still looking at the old snapshot when the guest deletes
	// the first response; the like must land on "second" anyway.
	stale := ownerView[1]
	require.Equal(t, 1, stale.Ref.Index)

	_, err = guestThread.DeleteResponse(ctx, guestThread.View()[1].Ref)
	require.NoError(t, err)

	res, err := ownerThread.LikeResponse(ctx, stale.Ref)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 0, res.ResponseIndex)
	require.Len(t, ownerThread.Note().Responses, 1)
	assert.Equal(t, "second", ownerThread.Note().Responses[0].Text)
	assert.Equal(t, 1, ownerThread.Note().Responses[0].Likes)

	_, err = ownerThread.AddReply(ctx, ownerThread.View()[0].Ref, "thanks")
	require.NoError(t, err)

	_, err = ownerThread.DeleteResponse(ctx, ownerThread.View()[0].Ref)
	assert.True(t, client.IsKind(err, apperr.KindForbidden))
	assert.Len(t, ownerThread.View(), 1)

	require.NoError(t, guestThread.Refresh(ctx))
	replies := guestThread.View()[0].Response.Replies
	require.Len(t, replies, 1)
	assert.Equal(t, "thanks", replies[0].Text)
}
