package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"quizcast/internal/core/domain"
	"quizcast/internal/core/ports"
)

const celebrationText = "🎉"

type ingestService struct {
	content   ports.ContentRepository
	sentPolls ports.SentPollRepository
	responses ports.ResponseRepository
	transport ports.Transport
	now       func() time.Time
}

func NewIngestService(content ports.ContentRepository, sentPolls ports.SentPollRepository, responses ports.ResponseRepository, transport ports.Transport) ports.IngestService {
	return &ingestService{
		content:   content,
		sentPolls: sentPolls,
		responses: responses,
		transport: transport,
		now:       time.Now,
	}
}

// Ingest records one answer with at-most-once semantics per
// (chat, user, question). It never returns an error: unknown polls, closed
// polls and duplicate answers are dropped silently. A poll past its deadline
// but not yet swept by the watcher also drops here; answers that raced the
// close window itself are accepted by design.
func (s *ingestService) Ingest(ctx context.Context, event ports.AnswerEvent) {
	poll, err := s.sentPolls.GetByPollID(ctx, event.PollID)
	if err != nil {
		if !errors.Is(err, domain.ErrPollNotFound) {
			log.Printf("[ingest] lookup of poll %s failed: %v", event.PollID, err)
		}
		return
	}
	if poll.IsClosed {
		return
	}
	if poll.ExpiresAt != nil && poll.ExpiresAt.Before(s.now()) {
		return
	}

	// Last write wins, including for answers dropped as duplicates below.
	name := domain.ParticipantName{
		ChatID: poll.ChatID,
		UserID: event.UserID,
		QuizID: poll.QuizID,
		Name:   event.DisplayName,
	}
	if err := s.responses.UpsertParticipantName(ctx, name); err != nil {
		log.Printf("[ingest] participant name upsert for user %d failed: %v", event.UserID, err)
	}

	question, err := s.content.GetQuestion(ctx, poll.QuestionID)
	if err != nil {
		log.Printf("[ingest] question %s for poll %s not loadable: %v", poll.QuestionID, event.PollID, err)
		return
	}

	// An index with no matching stored option is simply incorrect.
	correctIndex := question.CorrectIndex()
	correct := correctIndex >= 0 && event.OptionIndex == correctIndex

	response := &domain.Response{
		ID:          uuid.New(),
		ChatID:      poll.ChatID,
		UserID:      event.UserID,
		QuestionID:  poll.QuestionID,
		OptionIndex: event.OptionIndex,
		IsCorrect:   correct,
		AnsweredAt:  s.now(),
	}
	if err := s.responses.SaveResponse(ctx, response); err != nil {
		// The store's unique constraint decides races: the loser lands here
		// and the first recorded answer stands, permanently.
		if !errors.Is(err, domain.ErrAlreadyAnswered) {
			log.Printf("[ingest] save response for user %d failed: %v", event.UserID, err)
		}
		return
	}

	if correct {
		if _, err := s.transport.SendMessage(ctx, poll.ChatID, celebrationText); err != nil {
			log.Printf("[ingest] celebration send to chat %d failed: %v", poll.ChatID, err)
		}
	}

	s.notifyCompletion(ctx, poll, event)
}

// notifyCompletion emits the final-score message when this answer completed
// the quiz for the participant. Each question contributes at most one
// response ever, so the transition fires at most once per participant per
// quiz without extra bookkeeping.
func (s *ingestService) notifyCompletion(ctx context.Context, poll *domain.SentPoll, event ports.AnswerEvent) {
	total, err := s.content.CountQuestions(ctx, poll.QuizID)
	if err != nil || total == 0 {
		return
	}
	answered, err := s.responses.CountAnswered(ctx, poll.ChatID, event.UserID, poll.QuizID)
	if err != nil || answered != total {
		return
	}
	score, err := s.responses.CountCorrect(ctx, poll.ChatID, event.UserID, poll.QuizID)
	if err != nil {
		return
	}
	text := fmt.Sprintf("🏁 %s finished with %d/%d", event.DisplayName, score, total)
	if _, err := s.transport.SendMessage(ctx, poll.ChatID, text); err != nil {
		log.Printf("[ingest] final score send to chat %d failed: %v", poll.ChatID, err)
	}
}
