package dto

type EmotionScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type CreateNoteRequest struct {
	Title    string `json:"title" validate:"required,max=255"`
	Content  string `json:"content" validate:"max=20000"`
	IsPublic bool   `json:"isPublic"`
}

// UpdateNoteRequest has no isPublic: visibility is fixed at creation.
type UpdateNoteRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"max=20000"`
}

type ReplyItem struct {
	Id        string   `json:"id"`
	Text      string   `json:"text"`
	Author    Author   `json:"author"`
	Likes     int      `json:"likes"`
	LikedBy   []string `json:"likedBy"`
	CreatedAt string   `json:"createdAt"`
}

type ResponseItem struct {
	Id        string      `json:"id"`
	Text      string      `json:"text"`
	Author    Author      `json:"author"`
	Likes     int         `json:"likes"`
	LikedBy   []string    `json:"likedBy"`
	CreatedAt string      `json:"createdAt"`
	Replies   []ReplyItem `json:"replies"`
}

// NoteResponse is the client-facing note. Responses and replies keep the
// exact positions of the persisted arrays.
type NoteResponse struct {
	Id        string         `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Author    Author         `json:"author"`
	IsPublic  bool           `json:"isPublic"`
	Emotion   []EmotionScore `json:"emotion"`
	Likes     int            `json:"likes"`
	LikedBy   []string       `json:"likedBy"`
	Responses []ResponseItem `json:"responses"`
	Version   int64          `json:"version"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt *string        `json:"updatedAt"`
}

type LikeResult struct {
	Liked   bool     `json:"liked"`
	Likes   int      `json:"likes"`
	LikedBy []string `json:"likedBy"`
}

type NoteLikeResponse struct {
	LikeResult
	Note *NoteResponse `json:"note"`
}
