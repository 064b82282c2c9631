package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quizcast/internal/core/domain"
	"quizcast/internal/core/ports"
)

type mergeService struct {
	content ports.ContentRepository
	now     func() time.Time
}

func NewMergeService(content ports.ContentRepository) ports.MergeService {
	return &mergeService{content: content, now: time.Now}
}

// Merge copies all questions of quizA then quizB, in each quiz's original
// order, into a new quiz. Option order, correctness flags and attachment
// order are preserved. A bundle referenced by any number of copied questions
// is cloned exactly once per call. The sources are never touched. There is
// no rollback: a mid-way failure leaves the new quiz partially populated.
func (s *mergeService) Merge(ctx context.Context, quizA, quizB uuid.UUID) (uuid.UUID, error) {
	first, err := s.content.GetQuiz(ctx, quizA)
	if err != nil {
		return uuid.Nil, err
	}
	second, err := s.content.GetQuiz(ctx, quizB)
	if err != nil {
		return uuid.Nil, err
	}

	merged := &domain.Quiz{
		ID:        uuid.New(),
		Title:     first.Title + " + " + second.Title,
		CreatedBy: first.CreatedBy,
		CreatedAt: s.now(),
	}
	if err := s.content.SaveQuiz(ctx, merged); err != nil {
		return uuid.Nil, fmt.Errorf("create merged quiz: %w", err)
	}

	// Maps source bundle ids to their clones; scoped to this call only.
	bundleClones := make(map[uuid.UUID]uuid.UUID)
	for _, sourceID := range []uuid.UUID{quizA, quizB} {
		if err := s.copyQuestions(ctx, sourceID, merged.ID, bundleClones); err != nil {
			return uuid.Nil, fmt.Errorf("copy questions of %s: %w", sourceID, err)
		}
	}
	return merged.ID, nil
}

func (s *mergeService) copyQuestions(ctx context.Context, sourceID, targetID uuid.UUID, bundleClones map[uuid.UUID]uuid.UUID) error {
	questions, err := s.content.ListQuestions(ctx, sourceID)
	if err != nil {
		return err
	}

	for _, question := range questions {
		var bundleID *uuid.UUID
		if question.MediaBundleID != nil {
			cloneID, ok := bundleClones[*question.MediaBundleID]
			if !ok {
				cloneID, err = s.cloneBundle(ctx, *question.MediaBundleID, targetID)
				if err != nil {
					return err
				}
				bundleClones[*question.MediaBundleID] = cloneID
			}
			bundleID = &cloneID
		}

		clone := &domain.Question{
			ID:            uuid.New(),
			QuizID:        targetID,
			Text:          question.Text,
			CreatedAt:     s.now(),
			MediaBundleID: bundleID,
		}
		for _, opt := range question.Options {
			clone.Options = append(clone.Options, domain.Option{
				ID:          uuid.New(),
				QuestionID:  clone.ID,
				OptionIndex: opt.OptionIndex,
				Text:        opt.Text,
				IsCorrect:   opt.IsCorrect,
			})
		}
		for _, att := range question.Attachments {
			clone.Attachments = append(clone.Attachments, domain.Attachment{
				ID:         uuid.New(),
				QuestionID: clone.ID,
				Kind:       att.Kind,
				FileID:     att.FileID,
				Position:   att.Position,
			})
		}
		if err := s.content.SaveQuestion(ctx, clone); err != nil {
			return err
		}
	}
	return nil
}

func (s *mergeService) cloneBundle(ctx context.Context, sourceID, targetQuizID uuid.UUID) (uuid.UUID, error) {
	bundle, err := s.content.GetBundle(ctx, sourceID)
	if err != nil {
		return uuid.Nil, err
	}

	clone := &domain.MediaBundle{
		ID:        uuid.New(),
		QuizID:    targetQuizID,
		CreatedAt: s.now(),
	}
	for _, att := range bundle.Attachments {
		clone.Attachments = append(clone.Attachments, domain.BundleAttachment{
			ID:       uuid.New(),
			BundleID: clone.ID,
			Kind:     att.Kind,
			FileID:   att.FileID,
			Position: att.Position,
		})
	}
	if err := s.content.SaveBundle(ctx, clone); err != nil {
		return uuid.Nil, err
	}
	return clone.ID, nil
}
