package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ReplyDocument is a reply as stored inside the responses JSON document.
type ReplyDocument struct {
	Id        string    `json:"id" bson:"id"`
	Text      string    `json:"text" bson:"text"`
	AuthorId  string    `json:"author" bson:"author"`
	Likes     int       `json:"likes" bson:"likes"`
	LikedBy   []string  `json:"likedBy" bson:"likedBy"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// ResponseDocument is a response as stored inside the responses JSON document.
type ResponseDocument struct {
	Id        string          `json:"id" bson:"id"`
	Text      string          `json:"text" bson:"text"`
	AuthorId  string          `json:"author" bson:"author"`
	Likes     int             `json:"likes" bson:"likes"`
	LikedBy   []string        `json:"likedBy" bson:"likedBy"`
	CreatedAt time.Time       `json:"createdAt" bson:"createdAt"`
	Replies   []ReplyDocument `json:"replies" bson:"replies"`
}

type EmotionDocument struct {
	Label string  `json:"label" bson:"label"`
	Score float64 `json:"score" bson:"score"`
}

// Note keeps the whole response tree in one JSONB column; Version guards
// read-modify-write cycles against lost updates.
type Note struct {
	Id        uuid.UUID                              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string                                 `gorm:"type:varchar(255);not null"`
	Content   string                                 `gorm:"type:text"`
	UserId    uuid.UUID                              `gorm:"type:uuid;not null;index"`
	IsPublic  bool                                   `gorm:"not null;default:false;index"`
	Emotion   datatypes.JSONSlice[EmotionDocument]   `gorm:"type:jsonb"`
	Likes     int                                    `gorm:"not null;default:0"`
	LikedBy   datatypes.JSONSlice[string]            `gorm:"type:jsonb;not null;default:'[]'"`
	Responses datatypes.JSONType[[]ResponseDocument] `gorm:"type:jsonb;not null;default:'[]'"`
	Version   int64                                  `gorm:"not null;default:1"`
	CreatedAt time.Time                              `gorm:"autoCreateTime"`
	// UpdatedAt marks the last title/content edit and stays nil until then.
	UpdatedAt *time.Time                             `gorm:"autoUpdateTime:false"`
}

func (Note) TableName() string {
	return "notes"
}
