package implementation

import (
	"context"
	"errors"
	"fmt"

	"vibenotes-be/internal/entity"
	"vibenotes-be/internal/mapper"
	"vibenotes-be/internal/model"
	"vibenotes-be/internal/pkg/apperr"
	"vibenotes-be/internal/repository/contract"
	"vibenotes-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if m.Version == 0 {
		m.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	var m model.Note
	query := specification.Apply(r.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find note: %w", err)
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)

	query := specification.Apply(
		r.db.WithContext(ctx).Model(&model.Note{}),
		specification.ByID{ID: note.Id},
		specification.AtVersion{Version: note.Version},
	)
	result := query.Updates(map[string]interface{}{
		"title":      m.Title,
		"content":    m.Content,
		"emotion":    m.Emotion,
		"likes":      m.Likes,
		"liked_by":   m.LikedBy,
		"responses":  m.Responses,
		"version":    gorm.Expr("version + 1"),
		"updated_at": m.UpdatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("update note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missOrConflict(ctx, note.Id)
	}

	note.Version++
	note.UpdatedAt = m.UpdatedAt
	return nil
}

// missOrConflict explains why a versioned update matched no row.
func (r *NoteRepositoryImpl) missOrConflict(ctx context.Context, id uuid.UUID) error {
	var count int64
	query := specification.Apply(r.db.WithContext(ctx).Model(&model.Note{}), specification.ByID{ID: id})
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if count == 0 {
		return apperr.NotFound("note not found")
	}
	return apperr.Conflict("note was modified by another request, reload and retry")
}

func (r *NoteRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Note{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("note not found")
	}
	return nil
}
