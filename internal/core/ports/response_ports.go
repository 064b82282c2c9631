package ports

import (
	"context"

	"github.com/google/uuid"

	"quizcast/internal/core/domain"
)

type ResponseRepository interface {
	// SaveResponse inserts the response, returning domain.ErrAlreadyAnswered
	// when the (chat, user, question) key is already taken. The store's
	// unique constraint is the source of truth, not a prior existence check.
	SaveResponse(ctx context.Context, response *domain.Response) error
	UpsertParticipantName(ctx context.Context, name domain.ParticipantName) error
	CountAnswered(ctx context.Context, chatID, userID int64, quizID uuid.UUID) (int, error)
	CountCorrect(ctx context.Context, chatID, userID int64, quizID uuid.UUID) (int, error)
	Leaderboard(ctx context.Context, quizID uuid.UUID, chatID int64, limit int) ([]domain.LeaderboardEntry, error)
}

// AnswerEvent is one inbound answer as delivered by the transport. Only the
// first selected option of a vote is graded.
type AnswerEvent struct {
	PollID      string
	UserID      int64
	DisplayName string
	OptionIndex int
}

type IngestService interface {
	// Ingest is fire-and-forget: every disqualifying condition results in a
	// silent drop and nothing is ever surfaced to the participant.
	Ingest(ctx context.Context, event AnswerEvent)
}

type ScoreService interface {
	Leaderboard(ctx context.Context, quizID uuid.UUID, chatID int64) ([]domain.LeaderboardEntry, error)
}
