package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"quizcast/internal/core/domain"
	"quizcast/internal/core/ports"
)

type contentService struct {
	content ports.ContentRepository
	now     func() time.Time
}

func NewContentService(content ports.ContentRepository) ports.ContentService {
	return &contentService{content: content, now: time.Now}
}

// Create stores a quiz with its questions in one flat call. Option indices
// are assigned from the request order.
func (s *contentService) Create(ctx context.Context, input ports.CreateQuizInput) (*domain.Quiz, error) {
	if input.Title == "" {
		return nil, errors.New("title is required")
	}

	quiz := &domain.Quiz{
		ID:        uuid.New(),
		Title:     input.Title,
		CreatedBy: input.CreatedBy,
		CreatedAt: s.now(),
	}
	if err := s.content.SaveQuiz(ctx, quiz); err != nil {
		return nil, err
	}

	for _, q := range input.Questions {
		question := &domain.Question{
			ID:        uuid.New(),
			QuizID:    quiz.ID,
			Text:      q.Text,
			CreatedAt: s.now(),
		}
		for i, opt := range q.Options {
			question.Options = append(question.Options, domain.Option{
				ID:          uuid.New(),
				QuestionID:  question.ID,
				OptionIndex: i,
				Text:        opt.Text,
				IsCorrect:   opt.Correct,
			})
		}
		if err := s.content.SaveQuestion(ctx, question); err != nil {
			return nil, err
		}
	}
	return quiz, nil
}

// Delete removes the quiz; the store cascades to its questions, options,
// attachments and bundles. Recorded responses survive as history.
func (s *contentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.content.DeleteQuiz(ctx, id)
}
