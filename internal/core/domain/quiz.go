package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttachmentKind is the closed set of media kinds the transport can deliver.
type AttachmentKind string

const (
	AttachmentPhoto AttachmentKind = "photo"
	AttachmentVoice AttachmentKind = "voice"
	AttachmentAudio AttachmentKind = "audio"
)

type Quiz struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	Archived  bool      `json:"archived"`
}

type Question struct {
	ID            uuid.UUID    `json:"id"`
	QuizID        uuid.UUID    `json:"quiz_id"`
	Text          string       `json:"text"`
	CreatedAt     time.Time    `json:"created_at"`
	MediaBundleID *uuid.UUID   `json:"media_bundle_id,omitempty"`
	Options       []Option     `json:"options"`
	Attachments   []Attachment `json:"attachments,omitempty"`
}

// CorrectIndex returns the option index flagged correct, or -1 when no
// option carries the flag.
func (q *Question) CorrectIndex() int {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.OptionIndex
		}
	}
	return -1
}

type Option struct {
	ID          uuid.UUID `json:"id"`
	QuestionID  uuid.UUID `json:"question_id"`
	OptionIndex int       `json:"option_index"`
	Text        string    `json:"text"`
	IsCorrect   bool      `json:"is_correct"`
}

type Attachment struct {
	ID         uuid.UUID      `json:"id"`
	QuestionID uuid.UUID      `json:"question_id"`
	Kind       AttachmentKind `json:"kind"`
	FileID     string         `json:"file_id"`
	Position   int            `json:"position"`
}

// MediaBundle groups attachments shared by several questions of one quiz.
type MediaBundle struct {
	ID          uuid.UUID          `json:"id"`
	QuizID      uuid.UUID          `json:"quiz_id"`
	CreatedAt   time.Time          `json:"created_at"`
	Attachments []BundleAttachment `json:"attachments"`
}

type BundleAttachment struct {
	ID       uuid.UUID      `json:"id"`
	BundleID uuid.UUID      `json:"bundle_id"`
	Kind     AttachmentKind `json:"kind"`
	FileID   string         `json:"file_id"`
	Position int            `json:"position"`
}
