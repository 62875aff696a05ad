package entity

import (
	"time"

	"vibenotes-be/pkg/address"

	"github.com/google/uuid"
)

// EditWindow is how long an author may edit or delete their own note, response or reply.
const EditWindow = 10 * time.Minute

// WithinEditWindow uses an inclusive boundary: exactly EditWindow old is still editable.
func WithinEditWindow(createdAt, now time.Time) bool {
	return now.Sub(createdAt) <= EditWindow
}

type EmotionScore struct {
	Label string
	Score float64
}

type Note struct {
	Id        uuid.UUID
	Title     string
	Content   string
	UserId    uuid.UUID
	IsPublic  bool
	Emotion   []EmotionScore
	Reactions
	Responses []Response
	Version   int64
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type Response struct {
	Id       uuid.UUID
	Text     string
	AuthorId uuid.UUID
	Reactions
	CreatedAt time.Time
	Replies   []Reply
}

type Reply struct {
	Id       uuid.UUID
	Text     string
	AuthorId uuid.UUID
	Reactions
	CreatedAt time.Time
}

func keyOf(id, authorId uuid.UUID, createdAt time.Time) address.Key {
	k := address.Key{CreatedAt: createdAt}
	if id != uuid.Nil {
		k.ID = id.String()
	}
	if authorId != uuid.Nil {
		k.AuthorID = authorId.String()
	}
	return k
}

func (r Response) AddressKey() address.Key {
	return keyOf(r.Id, r.AuthorId, r.CreatedAt)
}

func (r Reply) AddressKey() address.Key {
	return keyOf(r.Id, r.AuthorId, r.CreatedAt)
}

// AuthorIds lists every distinct author in the note tree, owner first.
func (n *Note) AuthorIds() []uuid.UUID {
	seen := map[uuid.UUID]bool{n.UserId: true}
	ids := []uuid.UUID{n.UserId}
	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, resp := range n.Responses {
		add(resp.AuthorId)
		for _, reply := range resp.Replies {
			add(reply.AuthorId)
		}
	}
	return ids
}
