package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification stores the notification history shown in a user's inbox.
type Notification struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_user_created,priority:1;index:idx_notifications_user_unread,priority:1" json:"user_id"`
	ActorID       *uuid.UUID `gorm:"type:uuid" json:"actor_id,omitempty"`
	TypeCode      string     `gorm:"type:varchar(50);not null;index:idx_notifications_type" json:"type_code"`
	NoteID        *uuid.UUID `gorm:"type:uuid;index" json:"note_id,omitempty"`
	ResponseIndex *int       `json:"response_index,omitempty"`
	ReplyIndex    *int       `json:"reply_index,omitempty"`
	TargetURL     string     `gorm:"type:text" json:"target_url"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	IsRead        bool       `gorm:"default:false;index:idx_notifications_user_unread,priority:2" json:"is_read"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP;index:idx_notifications_user_created,priority:2" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
