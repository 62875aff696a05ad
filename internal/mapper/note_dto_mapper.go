package mapper

import (
	"time"

	"vibenotes-be/internal/dto"
	"vibenotes-be/internal/entity"

	"github.com/google/uuid"
)

// Profiles maps user ids to their resolved public profile.
type Profiles map[uuid.UUID]entity.UserProfile

// NoteDtoMapper turns notes into their wire shape. Response and reply
// positions in the output are exactly those of the stored arrays.
type NoteDtoMapper struct{}

func NewNoteDtoMapper() *NoteDtoMapper {
	return &NoteDtoMapper{}
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (m *NoteDtoMapper) Author(id uuid.UUID, profiles Profiles) dto.Author {
	p, ok := profiles[id]
	if !ok {
		return dto.UnresolvedAuthor(id.String())
	}
	return dto.Author{
		Resolved:    true,
		Id:          p.Id.String(),
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Image:       p.Image,
	}
}

func (m *NoteDtoMapper) ToNoteResponse(n *entity.Note, profiles Profiles) *dto.NoteResponse {
	if n == nil {
		return nil
	}

	responses := make([]dto.ResponseItem, len(n.Responses))
	for i := range n.Responses {
		responses[i] = m.ToResponseItem(n.Responses[i], profiles)
	}

	var emotion []dto.EmotionScore
	if n.Emotion != nil {
		emotion = make([]dto.EmotionScore, len(n.Emotion))
		for i, e := range n.Emotion {
			emotion[i] = dto.EmotionScore{Label: e.Label, Score: e.Score}
		}
	}

	var updatedAt *string
	if n.UpdatedAt != nil {
		s := FormatTime(*n.UpdatedAt)
		updatedAt = &s
	}

	return &dto.NoteResponse{
		Id:        n.Id.String(),
		Title:     n.Title,
		Content:   n.Content,
		Author:    m.Author(n.UserId, profiles),
		IsPublic:  n.IsPublic,
		Emotion:   emotion,
		Likes:     n.Likes,
		LikedBy:   IdStrings(n.LikedBy),
		Responses: responses,
		Version:   n.Version,
		CreatedAt: FormatTime(n.CreatedAt),
		UpdatedAt: updatedAt,
	}
}

func (m *NoteDtoMapper) ToResponseItem(r entity.Response, profiles Profiles) dto.ResponseItem {
	replies := make([]dto.ReplyItem, len(r.Replies))
	for j := range r.Replies {
		replies[j] = m.ToReplyItem(r.Replies[j], profiles)
	}
	return dto.ResponseItem{
		Id:        r.Id.String(),
		Text:      r.Text,
		Author:    m.Author(r.AuthorId, profiles),
		Likes:     r.Likes,
		LikedBy:   IdStrings(r.LikedBy),
		CreatedAt: FormatTime(r.CreatedAt),
		Replies:   replies,
	}
}

func (m *NoteDtoMapper) ToReplyItem(r entity.Reply, profiles Profiles) dto.ReplyItem {
	return dto.ReplyItem{
		Id:        r.Id.String(),
		Text:      r.Text,
		Author:    m.Author(r.AuthorId, profiles),
		Likes:     r.Likes,
		LikedBy:   IdStrings(r.LikedBy),
		CreatedAt: FormatTime(r.CreatedAt),
	}
}

func (m *NoteDtoMapper) ToLikeResult(liked bool, r entity.Reactions) *dto.LikeResult {
	return &dto.LikeResult{Liked: liked, Likes: r.Likes, LikedBy: IdStrings(r.LikedBy)}
}

// IdStrings never returns nil so empty lists serialize as [].
func IdStrings(ids []uuid.UUID) []string {
	return formatIds(ids)
}
