package ports

import (
	"context"

	"github.com/google/uuid"

	"quizcast/internal/core/domain"
)

// ContentRepository stores authored quiz content. Reads return questions in
// ascending creation order with options (by option index) and attachments
// (by position) populated.
type ContentRepository interface {
	GetQuiz(ctx context.Context, id uuid.UUID) (*domain.Quiz, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*domain.Question, error)
	ListQuestions(ctx context.Context, quizID uuid.UUID) ([]*domain.Question, error)
	CountQuestions(ctx context.Context, quizID uuid.UUID) (int, error)
	GetBundle(ctx context.Context, id uuid.UUID) (*domain.MediaBundle, error)
	SaveQuiz(ctx context.Context, quiz *domain.Quiz) error
	SaveQuestion(ctx context.Context, question *domain.Question) error
	SaveBundle(ctx context.Context, bundle *domain.MediaBundle) error
	DeleteQuiz(ctx context.Context, id uuid.UUID) error
}

type CreateOptionInput struct {
	Text    string
	Correct bool
}

type CreateQuestionInput struct {
	Text    string
	Options []CreateOptionInput
}

type CreateQuizInput struct {
	Title     string
	CreatedBy int64
	Questions []CreateQuestionInput
}

type ContentService interface {
	Create(ctx context.Context, input CreateQuizInput) (*domain.Quiz, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MergeService interface {
	// Merge clones the content of both quizzes into a brand-new quiz and
	// returns its id. The copy is not atomic: a mid-way failure leaves the
	// new quiz partially populated.
	Merge(ctx context.Context, quizA, quizB uuid.UUID) (uuid.UUID, error)
}
