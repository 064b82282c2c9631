package services

import (
	"context"

	"github.com/google/uuid"

	"quizcast/internal/core/domain"
	"quizcast/internal/core/ports"
)

const leaderboardLimit = 20

type scoreService struct {
	content   ports.ContentRepository
	responses ports.ResponseRepository
}

func NewScoreService(content ports.ContentRepository, responses ports.ResponseRepository) ports.ScoreService {
	return &scoreService{content: content, responses: responses}
}

// Leaderboard ranks participants of a quiz within one chat: score
// descending, then answered count descending, capped to the top 20. Only
// responses to the quiz's current question set count; answers to questions
// deleted since then are excluded by the store query.
func (s *scoreService) Leaderboard(ctx context.Context, quizID uuid.UUID, chatID int64) ([]domain.LeaderboardEntry, error) {
	if _, err := s.content.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.responses.Leaderboard(ctx, quizID, chatID, leaderboardLimit)
}
