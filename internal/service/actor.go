package service

import (
	"context"

	"vibenotes-be/internal/entity"
	"vibenotes-be/internal/pkg/apperr"
	"vibenotes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// loadActor turns a token subject into an actor. Users that no longer exist
// or are banned cannot write.
func loadActor(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (entity.Actor, error) {
	if userId == uuid.Nil {
		return entity.Actor{}, apperr.NotAuthenticated("authentication required")
	}
	user, err := uow.UserRepository().FindById(ctx, userId)
	if err != nil {
		return entity.Actor{}, apperr.Internal("failed to load user", err)
	}
	if user == nil {
		return entity.Actor{}, apperr.NotAuthenticated("user no longer exists")
	}
	if user.IsBanned {
		return entity.Actor{}, apperr.NotAuthenticated("user is banned")
	}
	return user.Actor(), nil
}

func loadNote(ctx context.Context, uow unitofwork.UnitOfWork, noteId uuid.UUID) (*entity.Note, error) {
	note, err := uow.NoteRepository().FindById(ctx, noteId)
	if err != nil {
		return nil, apperr.Internal("failed to load note", err)
	}
	if note == nil {
		return nil, apperr.NotFound("note not found")
	}
	return note, nil
}

// saveNote passes apperr kinds (Conflict, NotFound) through and wraps the rest.
func saveNote(ctx context.Context, uow unitofwork.UnitOfWork, note *entity.Note) error {
	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		if kind := apperr.KindOf(err); kind != apperr.KindInternal {
			return err
		}
		return apperr.Internal("failed to save note", err)
	}
	return nil
}

func checkVersion(note *entity.Note, expected *int64) error {
	if expected != nil && *expected != note.Version {
		return apperr.Conflict("note has changed since it was loaded, reload and retry")
	}
	return nil
}
