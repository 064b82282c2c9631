package domain

import (
	"time"

	"github.com/google/uuid"
)

// Response is a participant's graded answer to one question in one chat.
// At most one exists per (chat, user, question), enforced by the store.
type Response struct {
	ID          uuid.UUID `json:"id"`
	ChatID      int64     `json:"chat_id"`
	UserID      int64     `json:"user_id"`
	QuestionID  uuid.UUID `json:"question_id"`
	OptionIndex int       `json:"option_index"`
	IsCorrect   bool      `json:"is_correct"`
	AnsweredAt  time.Time `json:"answered_at"`
}

// ParticipantName is the latest display name seen for a participant in a
// quiz; every answer overwrites it.
type ParticipantName struct {
	ChatID int64     `json:"chat_id"`
	UserID int64     `json:"user_id"`
	QuizID uuid.UUID `json:"quiz_id"`
	Name   string    `json:"name"`
}

type LeaderboardEntry struct {
	UserID        int64  `json:"user_id"`
	DisplayName   string `json:"display_name"`
	Score         int    `json:"score"`
	AnsweredCount int    `json:"answered_count"`
}
