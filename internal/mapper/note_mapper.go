package mapper

import (
	"vibenotes-be/internal/entity"
	"vibenotes-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	return &entity.Note{
		Id:        n.Id,
		Title:     n.Title,
		Content:   n.Content,
		UserId:    n.UserId,
		IsPublic:  n.IsPublic,
		Emotion:   EmotionToEntity(n.Emotion),
		Reactions: entity.Reactions{Likes: n.Likes, LikedBy: parseIds(n.LikedBy)},
		Responses: ResponsesToEntity(n.Responses.Data()),
		Version:   n.Version,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	return &model.Note{
		Id:        n.Id,
		Title:     n.Title,
		Content:   n.Content,
		UserId:    n.UserId,
		IsPublic:  n.IsPublic,
		Emotion:   datatypes.JSONSlice[model.EmotionDocument](EmotionToDocuments(n.Emotion)),
		Likes:     n.Likes,
		LikedBy:   datatypes.JSONSlice[string](formatIds(n.LikedBy)),
		Responses: datatypes.NewJSONType(ResponsesToDocuments(n.Responses)),
		Version:   n.Version,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}

// Document helpers are shared with the MongoDB store, which embeds the same documents.

func ResponsesToDocuments(responses []entity.Response) []model.ResponseDocument {
	docs := make([]model.ResponseDocument, len(responses))
	for i, r := range responses {
		replies := make([]model.ReplyDocument, len(r.Replies))
		for j, reply := range r.Replies {
			replies[j] = model.ReplyDocument{
				Id:        reply.Id.String(),
				Text:      reply.Text,
				AuthorId:  reply.AuthorId.String(),
				Likes:     reply.Likes,
				LikedBy:   formatIds(reply.LikedBy),
				CreatedAt: reply.CreatedAt,
			}
		}
		docs[i] = model.ResponseDocument{
			Id:        r.Id.String(),
			Text:      r.Text,
			AuthorId:  r.AuthorId.String(),
			Likes:     r.Likes,
			LikedBy:   formatIds(r.LikedBy),
			CreatedAt: r.CreatedAt,
			Replies:   replies,
		}
	}
	return docs
}

func ResponsesToEntity(docs []model.ResponseDocument) []entity.Response {
	responses := make([]entity.Response, len(docs))
	for i, d := range docs {
		replies := make([]entity.Reply, len(d.Replies))
		for j, reply := range d.Replies {
			replies[j] = entity.Reply{
				Id:        parseId(reply.Id),
				Text:      reply.Text,
				AuthorId:  parseId(reply.AuthorId),
				Reactions: entity.Reactions{Likes: reply.Likes, LikedBy: parseIds(reply.LikedBy)},
				CreatedAt: reply.CreatedAt,
			}
		}
		responses[i] = entity.Response{
			Id:        parseId(d.Id),
			Text:      d.Text,
			AuthorId:  parseId(d.AuthorId),
			Reactions: entity.Reactions{Likes: d.Likes, LikedBy: parseIds(d.LikedBy)},
			CreatedAt: d.CreatedAt,
			Replies:   replies,
		}
	}
	return responses
}

func EmotionToDocuments(scores []entity.EmotionScore) []model.EmotionDocument {
	if scores == nil {
		return nil
	}
	docs := make([]model.EmotionDocument, len(scores))
	for i, s := range scores {
		docs[i] = model.EmotionDocument{Label: s.Label, Score: s.Score}
	}
	return docs
}

func EmotionToEntity(docs []model.EmotionDocument) []entity.EmotionScore {
	if docs == nil {
		return nil
	}
	scores := make([]entity.EmotionScore, len(docs))
	for i, d := range docs {
		scores[i] = entity.EmotionScore{Label: d.Label, Score: d.Score}
	}
	return scores
}

// parseId tolerates legacy entries that predate per-entry ids.
func parseId(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func parseIds(ss []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(ss))
	for _, s := range ss {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func formatIds(ids []uuid.UUID) []string {
	ss := make([]string, len(ids))
	for i, id := range ids {
		ss[i] = id.String()
	}
	return ss
}
