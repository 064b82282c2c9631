package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"quizcast/internal/core/domain"
	"quizcast/internal/core/ports"
)

const uniqueViolation = "23505"

type responseRepository struct {
	db *sql.DB
}

func NewResponseRepository(db *sql.DB) ports.ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) SaveResponse(ctx context.Context, response *domain.Response) error {
	query := `
		INSERT INTO responses (id, chat_id, user_id, question_id, option_index, is_correct, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		response.ID, response.ChatID, response.UserID, response.QuestionID,
		response.OptionIndex, response.IsCorrect, response.AnsweredAt,
	)
	if err != nil {
		// The unique key on (chat_id, user_id, question_id) settles races
		// between concurrent ingestions; the loser sees this sentinel.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrAlreadyAnswered
		}
		return fmt.Errorf("failed to insert response: %w", err)
	}
	return nil
}

func (r *responseRepository) UpsertParticipantName(ctx context.Context, name domain.ParticipantName) error {
	query := `
		INSERT INTO participant_names (origin_chat_id, user_id, quiz_id, name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (origin_chat_id, user_id, quiz_id) DO UPDATE
		SET name = EXCLUDED.name
	`
	_, err := r.db.ExecContext(ctx, query, name.ChatID, name.UserID, name.QuizID, name.Name)
	if err != nil {
		return fmt.Errorf("failed to upsert participant name: %w", err)
	}
	return nil
}

func (r *responseRepository) CountAnswered(ctx context.Context, chatID, userID int64, quizID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM responses r
		JOIN questions q ON q.id = r.question_id
		WHERE r.chat_id = $1 AND r.user_id = $2 AND q.quiz_id = $3
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, chatID, userID, quizID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count answered questions: %w", err)
	}
	return count, nil
}

func (r *responseRepository) CountCorrect(ctx context.Context, chatID, userID int64, quizID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM responses r
		JOIN questions q ON q.id = r.question_id
		WHERE r.chat_id = $1 AND r.user_id = $2 AND q.quiz_id = $3 AND r.is_correct
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, chatID, userID, quizID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count correct answers: %w", err)
	}
	return count, nil
}

// Leaderboard joins responses against the quiz's current questions, so
// answers to questions deleted since then drop out of the ranking.
func (r *responseRepository) Leaderboard(ctx context.Context, quizID uuid.UUID, chatID int64, limit int) ([]domain.LeaderboardEntry, error) {
	query := `
		SELECT r.user_id,
		       COALESCE(pn.name, '') AS display_name,
		       COUNT(*) FILTER (WHERE r.is_correct) AS score,
		       COUNT(*) AS answered_count
		FROM responses r
		JOIN questions q ON q.id = r.question_id
		LEFT JOIN participant_names pn
		       ON pn.origin_chat_id = r.chat_id AND pn.user_id = r.user_id AND pn.quiz_id = q.quiz_id
		WHERE q.quiz_id = $1 AND r.chat_id = $2
		GROUP BY r.user_id, pn.name
		ORDER BY score DESC, answered_count DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, quizID, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.DisplayName, &entry.Score, &entry.AnsweredCount); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}
	return entries, nil
}
