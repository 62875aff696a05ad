package dto

import "github.com/google/uuid"

// Actions accepted by PATCH /notes/:id/response.
const (
	ActionLikeResponse   = "like-response"
	ActionLikeReply      = "like-reply"
	ActionAddReply       = "add-reply"
	ActionDeleteResponse = "delete-response"
	ActionDeleteReply    = "delete-reply"
)

type AddResponseRequest struct {
	Text    string `json:"text"`
	Version *int64 `json:"version,omitempty"`
}

// PatchResponseRequest addresses its target by id when given; the positional
// index is only used when no id is sent.
type PatchResponseRequest struct {
	Action        string     `json:"action" validate:"required,oneof=like-response like-reply add-reply delete-response delete-reply"`
	ResponseIndex *int       `json:"responseIndex,omitempty"`
	ResponseId    *uuid.UUID `json:"responseId,omitempty"`
	ReplyIndex    *int       `json:"replyIndex,omitempty"`
	ReplyId       *uuid.UUID `json:"replyId,omitempty"`
	ReplyText     string     `json:"replyText,omitempty"`
	Version       *int64     `json:"version,omitempty"`
}

type AddResponseResult struct {
	Note          *NoteResponse `json:"note"`
	ResponseIndex int           `json:"responseIndex"`
	Response      *ResponseItem `json:"response"`
}

// PatchResponseResult always carries the full note so clients can replace
// their snapshot; the remaining fields describe the entity that was touched.
// Like actions flatten liked/likes/likedBy into the top level.
type PatchResponseResult struct {
	Action        string        `json:"action"`
	Note          *NoteResponse `json:"note"`
	ResponseIndex int           `json:"responseIndex"`
	ReplyIndex    *int          `json:"replyIndex,omitempty"`
	Response      *ResponseItem `json:"response,omitempty"`
	Reply         *ReplyItem    `json:"reply,omitempty"`
	*LikeResult
}
