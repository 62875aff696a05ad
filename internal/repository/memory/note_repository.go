package memory

import (
	"context"
	"time"

	"vibenotes-be/internal/entity"
	"vibenotes-be/internal/pkg/apperr"

	"github.com/google/uuid"
)

type NoteRepository struct {
	store *Store
}

func NewNoteRepository(store *Store) *NoteRepository {
	return &NoteRepository{store: store}
}

func (r *NoteRepository) Create(ctx context.Context, note *entity.Note) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if note.Id == uuid.Nil {
		note.Id = uuid.New()
	}
	if note.Version == 0 {
		note.Version = 1
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	if note.Responses == nil {
		note.Responses = []entity.Response{}
	}
	if note.LikedBy == nil {
		note.LikedBy = []uuid.UUID{}
	}
	r.store.notes[note.Id] = CloneNote(note)
	return nil
}

func (r *NoteRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	n, ok := r.store.notes[id]
	if !ok {
		return nil, nil
	}
	return CloneNote(n), nil
}

func (r *NoteRepository) Update(ctx context.Context, note *entity.Note) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.notes[note.Id]
	if !ok {
		return apperr.NotFound("note not found")
	}
	if stored.Version != note.Version {
		return apperr.Conflict("note was modified by another request, reload and retry")
	}

	note.Version++
	r.store.notes[note.Id] = CloneNote(note)
	return nil
}

func (r *NoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.notes[id]; !ok {
		return apperr.NotFound("note not found")
	}
	delete(r.store.notes, id)
	return nil
}

// CloneNote deep-copies the note including its response tree.
func CloneNote(n *entity.Note) *entity.Note {
	c := *n
	c.LikedBy = cloneIds(n.LikedBy)
	if n.Emotion != nil {
		c.Emotion = append([]entity.EmotionScore(nil), n.Emotion...)
	}
	if n.UpdatedAt != nil {
		t := *n.UpdatedAt
		c.UpdatedAt = &t
	}
	c.Responses = make([]entity.Response, len(n.Responses))
	for i, resp := range n.Responses {
		rc := resp
		rc.LikedBy = cloneIds(resp.LikedBy)
		rc.Replies = make([]entity.Reply, len(resp.Replies))
		for j, reply := range resp.Replies {
			reply.LikedBy = cloneIds(reply.LikedBy)
			rc.Replies[j] = reply
		}
		c.Responses[i] = rc
	}
	return &c
}

func cloneIds(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out
}
