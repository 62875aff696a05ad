package contract

import (
	"context"

	"vibenotes-be/internal/entity"

	"github.com/google/uuid"
)

// NoteRepository persists the note aggregate, response tree included, as one document.
type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	// FindById returns nil, nil when the note does not exist.
	FindById(ctx context.Context, id uuid.UUID) (*entity.Note, error)
	// Update writes the note only if the stored version still equals note.Version,
	// then bumps note.Version. A stale version yields apperr.ErrConflict.
	Update(ctx context.Context, note *entity.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
}
