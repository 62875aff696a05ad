package service

import (
	"context"
	"testing"
	"time"

	"vibenotes-be/internal/entity"
	"vibenotes-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileResolveCachesProfiles(t *testing.T) {
	f := newFixture(t)
	svc := NewProfileService(f.factory, time.Minute, nopLogger())
	ctx := context.Background()
	stranger := uuid.New()

	got := svc.Resolve(ctx, []uuid.UUID{f.owner.Id, f.guest.Id, stranger})

	require.Len(t, got, 2)
	assert.Equal(t, "owner", got[f.owner.Id].Username)
	assert.NotContains(t, got, stranger)
}

func TestProfileCacheEntriesExpire(t *testing.T) {
	f := newFixture(t)
	svc := NewProfileService(f.factory, 20*time.Millisecond, nopLogger()).(*profileService)
	ctx := context.Background()

	require.Len(t, svc.Resolve(ctx, []uuid.UUID{f.owner.Id}), 1)
	svc.uowFactory = failingUsersFactory{inner: f.factory}
	require.Len(t, svc.Resolve(ctx, []uuid.UUID{f.owner.Id}), 1, "served from cache")

	assert.Eventually(t, func() bool {
		return len(svc.Resolve(ctx, []uuid.UUID{f.owner.Id})) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestProfileResolveFallsBackOnLookupFailure(t *testing.T) {
	f := newFixture(t)
	svc := NewProfileService(failingUsersFactory{inner: f.factory}, time.Minute, nopLogger())

	got := svc.Resolve(context.Background(), []uuid.UUID{f.owner.Id})

	assert.Empty(t, got)
}

func TestProfileResolveServesCacheEvenWhenStoreFails(t *testing.T) {
	store := memory.NewStore()
	factory := memory.NewRepositoryFactory(store)
	u := &entity.User{Id: uuid.New(), Username: "cached", Email: "c@example.com"}
	require.NoError(t, memory.NewUserRepository(store).Create(context.Background(), u))

	warm := NewProfileService(factory, time.Minute, nopLogger()).(*profileService)
	warm.Resolve(context.Background(), []uuid.UUID{u.Id})
	warm.uowFactory = failingUsersFactory{inner: factory}

	got := warm.Resolve(context.Background(), []uuid.UUID{u.Id, uuid.New()})

	require.Len(t, got, 1)
	assert.Equal(t, "cached", got[u.Id].Username)
}
