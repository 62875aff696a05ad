package dto

import "github.com/google/uuid"

// AnalyzeNoteEmotionMessage is queued after a note is created or edited.
type AnalyzeNoteEmotionMessage struct {
	NoteId uuid.UUID `json:"note_id"`
}
