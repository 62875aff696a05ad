package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"vibenotes-be/internal/entity"
	"vibenotes-be/internal/model"
	"vibenotes-be/internal/pkg/apperr"
	"vibenotes-be/internal/repository/unitofwork"
	"vibenotes-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Note{}, &model.Notification{}))
	return db
}

func seedUser(t *testing.T, uow unitofwork.UnitOfWork) *entity.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	u := &entity.User{
		Id:           uuid.New(),
		Username:     "it" + suffix,
		DisplayName:  "Integration " + suffix,
		Email:        "it-" + suffix + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, uow.UserRepository().Create(context.Background(), u))
	return u
}

func TestGormUserRepository(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)

	u := seedUser(t, uow)
	t.Cleanup(func() { db.Delete(&model.User{}, "id = ?", u.Id) })

	found, err := uow.UserRepository().FindByUsername(ctx, u.Username)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.Id, found.Id)

	dup := *u
	dup.Id = uuid.New()
	err = uow.UserRepository().Create(ctx, &dup)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	missing, err := uow.UserRepository().FindById(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGormNoteRepositoryVersioning(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	owner := seedUser(t, uow)

	note := &entity.Note{
		Id:        uuid.New(),
		Title:     "integration",
		UserId:    owner.Id,
		IsPublic:  true,
		Reactions: entity.Reactions{LikedBy: []uuid.UUID{}},
		Responses: []entity.Response{},
		Version:   1,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, uow.NoteRepository().Create(ctx, note))
	t.Cleanup(func() {
		db.Delete(&model.Note{}, "id = ?", note.Id)
		db.Delete(&model.User{}, "id = ?", owner.Id)
	})

	first, err := uow.NoteRepository().FindById(ctx, note.Id)
	require.NoError(t, err)
	stale, err := uow.NoteRepository().FindById(ctx, note.Id)
	require.NoError(t, err)

	_, err = first.AddResponse(owner.Actor(), "first writer", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, uow.NoteRepository().Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	_, err = stale.AddResponse(owner.Actor(), "lost update", time.Now().UTC())
	require.NoError(t, err)
	assert.ErrorIs(t, uow.NoteRepository().Update(ctx, stale), apperr.ErrConflict)

	stored, err := uow.NoteRepository().FindById(ctx, note.Id)
	require.NoError(t, err)
	require.Len(t, stored.Responses, 1)
	assert.Equal(t, "first writer", stored.Responses[0].Text)

	require.NoError(t, uow.NoteRepository().Delete(ctx, note.Id))
	assert.ErrorIs(t, uow.NoteRepository().Update(ctx, stored), apperr.ErrNotFound)
}
