package dto

import "github.com/google/uuid"

// CreateNotificationRequest is what the core hands to the notification collaborator.
// ResponseIndex is -1 for notifications about the note itself.
type CreateNotificationRequest struct {
	ActorId       uuid.UUID `json:"actor_id"`
	RecipientId   uuid.UUID `json:"recipient_id"`
	Type          string    `json:"type"`
	NoteId        uuid.UUID `json:"note_id"`
	ResponseIndex int       `json:"response_index"`
	ReplyIndex    *int      `json:"reply_index,omitempty"`
	TargetUrl     string    `json:"target_url"`
	Message       string    `json:"message"`
	Dedupe        bool      `json:"dedupe,omitempty"`
}

type NotificationListResponse[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
