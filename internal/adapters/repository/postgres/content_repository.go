package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"quizcast/internal/core/domain"
	"quizcast/internal/core/ports"
)

type contentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) ports.ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) GetQuiz(ctx context.Context, id uuid.UUID) (*domain.Quiz, error) {
	query := `
		SELECT id, title, created_by, created_at, is_archived
		FROM quizzes
		WHERE id = $1
	`
	var quiz domain.Quiz
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&quiz.ID, &quiz.Title, &quiz.CreatedBy, &quiz.CreatedAt, &quiz.Archived,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return &quiz, nil
}

func (r *contentRepository) GetQuestion(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	query := `
		SELECT id, quiz_id, text, created_at, media_bundle_id
		FROM questions
		WHERE id = $1
	`
	question, err := r.scanQuestionRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if err := r.loadQuestionDetails(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (r *contentRepository) ListQuestions(ctx context.Context, quizID uuid.UUID) ([]*domain.Question, error) {
	query := `
		SELECT id, quiz_id, text, created_at, media_bundle_id
		FROM questions
		WHERE quiz_id = $1
		ORDER BY seq
	`
	rows, err := r.db.QueryContext(ctx, query, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []*domain.Question
	for rows.Next() {
		question, err := r.scanQuestionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	for _, question := range questions {
		if err := r.loadQuestionDetails(ctx, question); err != nil {
			return nil, err
		}
	}
	return questions, nil
}

func (r *contentRepository) CountQuestions(ctx context.Context, quizID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions WHERE quiz_id = $1`, quizID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

func (r *contentRepository) GetBundle(ctx context.Context, id uuid.UUID) (*domain.MediaBundle, error) {
	query := `
		SELECT id, quiz_id, created_at
		FROM media_bundles
		WHERE id = $1
	`
	var bundle domain.MediaBundle
	err := r.db.QueryRowContext(ctx, query, id).Scan(&bundle.ID, &bundle.QuizID, &bundle.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrBundleNotFound
		}
		return nil, fmt.Errorf("failed to get bundle: %w", err)
	}

	attQuery := `
		SELECT id, bundle_id, kind, file_id, position
		FROM media_bundle_attachments
		WHERE bundle_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, attQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get bundle attachments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var att domain.BundleAttachment
		if err := rows.Scan(&att.ID, &att.BundleID, &att.Kind, &att.FileID, &att.Position); err != nil {
			return nil, fmt.Errorf("failed to scan bundle attachment: %w", err)
		}
		bundle.Attachments = append(bundle.Attachments, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bundle attachments: %w", err)
	}
	return &bundle, nil
}

func (r *contentRepository) SaveQuiz(ctx context.Context, quiz *domain.Quiz) error {
	query := `
		INSERT INTO quizzes (id, title, created_by, created_at, is_archived)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, quiz.ID, quiz.Title, quiz.CreatedBy, quiz.CreatedAt, quiz.Archived)
	if err != nil {
		return fmt.Errorf("failed to insert quiz: %w", err)
	}
	return nil
}

func (r *contentRepository) SaveQuestion(ctx context.Context, question *domain.Question) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryQuestion := `
		INSERT INTO questions (id, quiz_id, text, created_at, media_bundle_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	var bundleID uuid.NullUUID
	if question.MediaBundleID != nil {
		bundleID = uuid.NullUUID{UUID: *question.MediaBundleID, Valid: true}
	}
	_, err = tx.ExecContext(ctx, queryQuestion, question.ID, question.QuizID, question.Text, question.CreatedAt, bundleID)
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}

	queryOption := `
		INSERT INTO options (id, question_id, option_index, text, is_correct)
		VALUES ($1, $2, $3, $4, $5)
	`
	optStmt, err := tx.PrepareContext(ctx, queryOption)
	if err != nil {
		return fmt.Errorf("failed to prepare option statement: %w", err)
	}
	defer optStmt.Close()

	for _, opt := range question.Options {
		if _, err := optStmt.ExecContext(ctx, opt.ID, opt.QuestionID, opt.OptionIndex, opt.Text, opt.IsCorrect); err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	queryAttachment := `
		INSERT INTO question_attachments (id, question_id, kind, file_id, position)
		VALUES ($1, $2, $3, $4, $5)
	`
	attStmt, err := tx.PrepareContext(ctx, queryAttachment)
	if err != nil {
		return fmt.Errorf("failed to prepare attachment statement: %w", err)
	}
	defer attStmt.Close()

	for _, att := range question.Attachments {
		if _, err := attStmt.ExecContext(ctx, att.ID, att.QuestionID, att.Kind, att.FileID, att.Position); err != nil {
			return fmt.Errorf("failed to insert attachment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *contentRepository) SaveBundle(ctx context.Context, bundle *domain.MediaBundle) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryBundle := `
		INSERT INTO media_bundles (id, quiz_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err = tx.ExecContext(ctx, queryBundle, bundle.ID, bundle.QuizID, bundle.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert bundle: %w", err)
	}

	queryAttachment := `
		INSERT INTO media_bundle_attachments (id, bundle_id, kind, file_id, position)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := tx.PrepareContext(ctx, queryAttachment)
	if err != nil {
		return fmt.Errorf("failed to prepare bundle attachment statement: %w", err)
	}
	defer stmt.Close()

	for _, att := range bundle.Attachments {
		if _, err := stmt.ExecContext(ctx, att.ID, att.BundleID, att.Kind, att.FileID, att.Position); err != nil {
			return fmt.Errorf("failed to insert bundle attachment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *contentRepository) DeleteQuiz(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *contentRepository) scanQuestionRow(row rowScanner) (*domain.Question, error) {
	var question domain.Question
	var bundleID uuid.NullUUID
	if err := row.Scan(&question.ID, &question.QuizID, &question.Text, &question.CreatedAt, &bundleID); err != nil {
		return nil, err
	}
	if bundleID.Valid {
		question.MediaBundleID = &bundleID.UUID
	}
	return &question, nil
}

func (r *contentRepository) loadQuestionDetails(ctx context.Context, question *domain.Question) error {
	options, err := r.fetchOptions(ctx, question.ID)
	if err != nil {
		return err
	}
	question.Options = options

	attachments, err := r.fetchAttachments(ctx, question.ID)
	if err != nil {
		return err
	}
	question.Attachments = attachments
	return nil
}

func (r *contentRepository) fetchOptions(ctx context.Context, questionID uuid.UUID) ([]domain.Option, error) {
	query := `
		SELECT id, question_id, option_index, text, is_correct
		FROM options
		WHERE question_id = $1
		ORDER BY option_index
	`
	rows, err := r.db.QueryContext(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get options: %w", err)
	}
	defer rows.Close()

	var options []domain.Option
	for rows.Next() {
		var opt domain.Option
		if err := rows.Scan(&opt.ID, &opt.QuestionID, &opt.OptionIndex, &opt.Text, &opt.IsCorrect); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}
	return options, nil
}

func (r *contentRepository) fetchAttachments(ctx context.Context, questionID uuid.UUID) ([]domain.Attachment, error) {
	query := `
		SELECT id, question_id, kind, file_id, position
		FROM question_attachments
		WHERE question_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attachments: %w", err)
	}
	defer rows.Close()

	var attachments []domain.Attachment
	for rows.Next() {
		var att domain.Attachment
		if err := rows.Scan(&att.ID, &att.QuestionID, &att.Kind, &att.FileID, &att.Position); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachments: %w", err)
	}
	return attachments, nil
}
