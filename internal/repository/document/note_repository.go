// Package document stores notes in MongoDB, one document per note with the
// response tree embedded.
package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vibenotes-be/internal/entity"
	"vibenotes-be/internal/mapper"
	"vibenotes-be/internal/model"
	"vibenotes-be/internal/pkg/apperr"
	"vibenotes-be/internal/repository/contract"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const NotesCollection = "notes"

type noteDocument struct {
	ID        string                   `bson:"_id"`
	Title     string                   `bson:"title"`
	Content   string                   `bson:"content"`
	UserID    string                   `bson:"user_id"`
	IsPublic  bool                     `bson:"is_public"`
	Emotion   []model.EmotionDocument  `bson:"emotion"`
	Likes     int                      `bson:"likes"`
	LikedBy   []string                 `bson:"liked_by"`
	Responses []model.ResponseDocument `bson:"responses"`
	Version   int64                    `bson:"version"`
	CreatedAt time.Time                `bson:"created_at"`
	UpdatedAt *time.Time               `bson:"updated_at,omitempty"`
}

var _ contract.NoteRepository = (*NoteRepository)(nil)

type NoteRepository struct {
	coll *mongo.Collection
}

func NewNoteRepository(db *mongo.Database) *NoteRepository {
	return &NoteRepository{coll: db.Collection(NotesCollection)}
}

func toDocument(n *entity.Note) *noteDocument {
	likedBy := make([]string, len(n.LikedBy))
	for i, id := range n.LikedBy {
		likedBy[i] = id.String()
	}
	return &noteDocument{
		ID:        n.Id.String(),
		Title:     n.Title,
		Content:   n.Content,
		UserID:    n.UserId.String(),
		IsPublic:  n.IsPublic,
		Emotion:   mapper.EmotionToDocuments(n.Emotion),
		Likes:     n.Likes,
		LikedBy:   likedBy,
		Responses: mapper.ResponsesToDocuments(n.Responses),
		Version:   n.Version,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toEntity(d *noteDocument) (*entity.Note, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("note %q: %w", d.ID, err)
	}
	userId, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("note %q owner: %w", d.ID, err)
	}
	likedBy := make([]uuid.UUID, 0, len(d.LikedBy))
	for _, s := range d.LikedBy {
		if u, err := uuid.Parse(s); err == nil {
			likedBy = append(likedBy, u)
		}
	}
	return &entity.Note{
		Id:        id,
		Title:     d.Title,
		Content:   d.Content,
		UserId:    userId,
		IsPublic:  d.IsPublic,
		Emotion:   mapper.EmotionToEntity(d.Emotion),
		Reactions: entity.Reactions{Likes: d.Likes, LikedBy: likedBy},
		Responses: mapper.ResponsesToEntity(d.Responses),
		Version:   d.Version,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func (r *NoteRepository) Create(ctx context.Context, note *entity.Note) error {
	if note.Id == uuid.Nil {
		note.Id = uuid.New()
	}
	if note.Version == 0 {
		note.Version = 1
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, toDocument(note)); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *NoteRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	var d noteDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find note: %w", err)
	}
	return toEntity(&d)
}

// Update replaces the document only if its version is still the one that was read.
func (r *NoteRepository) Update(ctx context.Context, note *entity.Note) error {
	doc := toDocument(note)
	doc.Version = note.Version + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": note.Version}, doc)
	if err != nil {
		return fmt.Errorf("replace note: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": doc.ID})
		if err != nil {
			return fmt.Errorf("replace note: %w", err)
		}
		if n == 0 {
			return apperr.NotFound("note not found")
		}
		return apperr.Conflict("note was modified by another request, reload and retry")
	}

	note.Version = doc.Version
	return nil
}

func (r *NoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("note not found")
	}
	return nil
}
