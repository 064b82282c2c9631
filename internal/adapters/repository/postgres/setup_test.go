package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"quizcast/internal/core/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, applyMigrations(db))
	return db
}

func applyMigrations(db *sql.DB) error {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}
		content, err := os.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func insertQuiz(t *testing.T, db *sql.DB, title string) *domain.Quiz {
	t.Helper()
	quiz := &domain.Quiz{ID: uuid.New(), Title: title, CreatedBy: 1, CreatedAt: time.Now().UTC()}
	_, err := db.Exec(
		`INSERT INTO quizzes (id, title, created_by, created_at) VALUES ($1, $2, $3, $4)`,
		quiz.ID, quiz.Title, quiz.CreatedBy, quiz.CreatedAt,
	)
	require.NoError(t, err)
	return quiz
}

func insertQuestion(t *testing.T, db *sql.DB, quizID uuid.UUID, text string, optionTexts []string, correct int) *domain.Question {
	t.Helper()
	question := &domain.Question{ID: uuid.New(), QuizID: quizID, Text: text, CreatedAt: time.Now().UTC()}
	_, err := db.Exec(
		`INSERT INTO questions (id, quiz_id, text, created_at) VALUES ($1, $2, $3, $4)`,
		question.ID, question.QuizID, question.Text, question.CreatedAt,
	)
	require.NoError(t, err)

	for i, opt := range optionTexts {
		option := domain.Option{ID: uuid.New(), QuestionID: question.ID, OptionIndex: i, Text: opt, IsCorrect: i == correct}
		_, err := db.Exec(
			`INSERT INTO options (id, question_id, option_index, text, is_correct) VALUES ($1, $2, $3, $4, $5)`,
			option.ID, option.QuestionID, option.OptionIndex, option.Text, option.IsCorrect,
		)
		require.NoError(t, err)
		question.Options = append(question.Options, option)
	}
	return question
}
