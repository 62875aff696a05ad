package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vibenotes-be/internal/dto"
	"vibenotes-be/internal/entity"
	"vibenotes-be/internal/pkg/logger"
	"vibenotes-be/internal/repository/contract"
	"vibenotes-be/internal/repository/memory"
	"vibenotes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu       sync.Mutex
	requests []dto.CreateNotificationRequest
	err      error
}

func (n *recordingNotifier) CreateNotification(ctx context.Context, req dto.CreateNotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests = append(n.requests, req)
	return n.err
}

func (n *recordingNotifier) Requests() []dto.CreateNotificationRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]dto.CreateNotificationRequest(nil), n.requests...)
}

type fixture struct {
	store     *memory.Store
	factory   unitofwork.RepositoryFactory
	clock     *fakeClock
	notifier  *recordingNotifier
	responses IResponseService
	notes     INoteService

	owner, guest, other, banned *entity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:    store,
		factory:  memory.NewRepositoryFactory(store),
		clock:    &fakeClock{now: baseTime},
		notifier: &recordingNotifier{},
	}

	f.owner = f.addUser(t, "owner", false)
	f.guest = f.addUser(t, "guest", false)
	f.other = f.addUser(t, "other", false)
	f.banned = f.addUser(t, "banned", true)

	log := logger.NewNopLogger()
	profiles := NewProfileService(f.factory, time.Minute, log)
	f.responses = NewResponseService(f.factory, profiles, f.notifier, log, WithClock(f.clock.Now))
	f.notes = NewNoteService(f.factory, nil, profiles, f.notifier, log, WithNoteClock(f.clock.Now))
	return f
}

func (f *fixture) addUser(t *testing.T, name string, banned bool) *entity.User {
	t.Helper()
	u := &entity.User{
		Id:          uuid.New(),
		Username:    name,
		DisplayName: "Display " + name,
		Email:       name + "@example.com",
		IsBanned:    banned,
	}
	require.NoError(t, memory.NewUserRepository(f.store).Create(context.Background(), u))
	return u
}

func (f *fixture) noteRepo() contract.NoteRepository {
	return memory.NewNoteRepository(f.store)
}

func (f *fixture) addNote(t *testing.T, public bool, responses ...entity.Response) *entity.Note {
	t.Helper()
	if responses == nil {
		responses = []entity.Response{}
	}
	n := &entity.Note{
		Id:        uuid.New(),
		Title:     "A day",
		Content:   "it was fine",
		UserId:    f.owner.Id,
		IsPublic:  public,
		Reactions: entity.Reactions{LikedBy: []uuid.UUID{}},
		Responses: responses,
		CreatedAt: f.clock.Now(),
	}
	require.NoError(t, f.noteRepo().Create(context.Background(), n))
	return n
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *entity.Note {
	t.Helper()
	n, err := f.noteRepo().FindById(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, n)
	return n
}

func response(author uuid.UUID, text string, at time.Time, replies ...entity.Reply) entity.Response {
	if replies == nil {
		replies = []entity.Reply{}
	}
	return entity.Response{
		Id:        uuid.New(),
		Text:      text,
		AuthorId:  author,
		Reactions: entity.Reactions{LikedBy: []uuid.UUID{}},
		CreatedAt: at,
		Replies:   replies,
	}
}

func reply(author uuid.UUID, text string, at time.Time) entity.Reply {
	return entity.Reply{
		Id:        uuid.New(),
		Text:      text,
		AuthorId:  author,
		Reactions: entity.Reactions{LikedBy: []uuid.UUID{}},
		CreatedAt: at,
	}
}

func intPtr(i int) *int { return &i }

func int64Ptr(i int64) *int64 { return &i }

// failingUsersFactory serves everything from memory except user lookups.
type failingUsersFactory struct {
	inner unitofwork.RepositoryFactory
}

func (f failingUsersFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return failingUsersUow{UnitOfWork: f.inner.NewUnitOfWork(ctx)}
}

type failingUsersUow struct {
	unitofwork.UnitOfWork
}

func (u failingUsersUow) UserRepository() contract.UserRepository {
	return failingUserRepo{}
}

type failingUserRepo struct{}

var errUsersDown = errors.New("users table unavailable")

func (failingUserRepo) Create(context.Context, *entity.User) error { return errUsersDown }
func (failingUserRepo) FindById(context.Context, uuid.UUID) (*entity.User, error) {
	return nil, errUsersDown
}
func (failingUserRepo) FindByUsername(context.Context, string) (*entity.User, error) {
	return nil, errUsersDown
}
func (failingUserRepo) FindByIds(context.Context, []uuid.UUID) ([]*entity.User, error) {
	return nil, errUsersDown
}

func nopLogger() *logger.ZapLogger {
	return logger.NewNopLogger()
}

func bannedUser(passwordHash string) *entity.User {
	return &entity.User{
		Username:     "troll",
		DisplayName:  "Troll",
		Email:        "troll@example.com",
		PasswordHash: passwordHash,
		IsBanned:     true,
	}
}
