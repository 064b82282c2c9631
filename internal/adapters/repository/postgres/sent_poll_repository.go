package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quizcast/internal/core/domain"
	"quizcast/internal/core/ports"
)

type sentPollRepository struct {
	db *sql.DB
}

func NewSentPollRepository(db *sql.DB) ports.SentPollRepository {
	return &sentPollRepository{db: db}
}

func (r *sentPollRepository) SavePoll(ctx context.Context, poll *domain.SentPoll) error {
	query := `
		INSERT INTO sent_polls (id, chat_id, quiz_id, question_id, poll_id, message_id, expires_at, is_closed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	messageID := sql.NullInt64{Int64: poll.MessageID, Valid: poll.MessageID != 0}
	_, err := r.db.ExecContext(ctx, query,
		poll.ID, poll.ChatID, poll.QuizID, poll.QuestionID, poll.PollID, messageID, poll.ExpiresAt, poll.IsClosed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sent poll: %w", err)
	}
	return nil
}

func (r *sentPollRepository) SaveMessage(ctx context.Context, msg *domain.SentMessage) error {
	query := `
		INSERT INTO sent_msgs (id, chat_id, quiz_id, message_id, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.ChatID, msg.QuizID, msg.MessageID, msg.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert sent message: %w", err)
	}
	return nil
}

func (r *sentPollRepository) GetByPollID(ctx context.Context, pollID string) (*domain.SentPoll, error) {
	query := `
		SELECT id, chat_id, quiz_id, question_id, poll_id, message_id, expires_at, is_closed
		FROM sent_polls
		WHERE poll_id = $1
	`
	poll, err := scanSentPoll(r.db.QueryRowContext(ctx, query, pollID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get sent poll: %w", err)
	}
	return poll, nil
}

func (r *sentPollRepository) ListExpired(ctx context.Context, now time.Time) ([]*domain.SentPoll, error) {
	query := `
		SELECT id, chat_id, quiz_id, question_id, poll_id, message_id, expires_at, is_closed
		FROM sent_polls
		WHERE is_closed = FALSE AND expires_at IS NOT NULL AND expires_at <= $1
	`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired polls: %w", err)
	}
	defer rows.Close()

	var polls []*domain.SentPoll
	for rows.Next() {
		poll, err := scanSentPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sent poll: %w", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sent polls: %w", err)
	}
	return polls, nil
}

func (r *sentPollRepository) MarkClosed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sent_polls SET is_closed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark sent poll closed: %w", err)
	}
	return nil
}

func scanSentPoll(row rowScanner) (*domain.SentPoll, error) {
	var poll domain.SentPoll
	var messageID sql.NullInt64
	var expiresAt sql.NullTime
	err := row.Scan(
		&poll.ID, &poll.ChatID, &poll.QuizID, &poll.QuestionID, &poll.PollID, &messageID, &expiresAt, &poll.IsClosed,
	)
	if err != nil {
		return nil, err
	}
	poll.MessageID = messageID.Int64
	if expiresAt.Valid {
		t := expiresAt.Time
		poll.ExpiresAt = &t
	}
	return &poll, nil
}
