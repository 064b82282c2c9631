package domain

import (
	"time"

	"github.com/google/uuid"
)

// SentPoll records one published poll. Republishing a quiz always creates
// new rows; IsClosed only ever moves false -> true.
type SentPoll struct {
	ID         uuid.UUID  `json:"id"`
	ChatID     int64      `json:"chat_id"`
	QuizID     uuid.UUID  `json:"quiz_id"`
	QuestionID uuid.UUID  `json:"question_id"`
	PollID     string     `json:"poll_id"`
	MessageID  int64      `json:"message_id"` // 0 when the transport never returned one
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	IsClosed   bool       `json:"is_closed"`
}

// SentMessage is the general outbound-message record kept alongside polls.
type SentMessage struct {
	ID        uuid.UUID  `json:"id"`
	ChatID    int64      `json:"chat_id"`
	QuizID    uuid.UUID  `json:"quiz_id"`
	MessageID int64      `json:"message_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
