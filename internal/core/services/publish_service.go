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

const (
	minOptions     = 2
	maxOptions     = 10
	maxPromptRunes = 300

	minDurationHours = 1
	maxDurationHours = 240

	// Minimum gap between any two outbound sends of one publish run.
	defaultSendSpacing = 1500 * time.Millisecond
)

type publishService struct {
	content   ports.ContentRepository
	sentPolls ports.SentPollRepository
	transport ports.Transport
	spacing   time.Duration
	sleep     func(time.Duration)
	now       func() time.Time
}

func NewPublishService(content ports.ContentRepository, sentPolls ports.SentPollRepository, transport ports.Transport) ports.PublishService {
	return &publishService{
		content:   content,
		sentPolls: sentPolls,
		transport: transport,
		spacing:   defaultSendSpacing,
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// Publish turns the quiz into an ordered run of attachment sends and poll
// creations. Failures are isolated per question: each one is reported inline
// to the chat and the run continues to the last question. Partial
// publication is an accepted terminal state; nothing is rolled back.
func (s *publishService) Publish(ctx context.Context, input ports.PublishInput) (ports.PublishReport, error) {
	var report ports.PublishReport

	expiresAt, err := resolveDeadline(input.Duration, s.now())
	if err != nil {
		return report, err
	}

	quiz, err := s.content.GetQuiz(ctx, input.QuizID)
	if err != nil {
		return report, err
	}
	if quiz.Archived {
		return report, domain.ErrQuizArchived
	}

	questions, err := s.content.ListQuestions(ctx, input.QuizID)
	if err != nil {
		return report, err
	}
	if len(questions) == 0 {
		return report, domain.ErrQuizEmpty
	}

	pace := &sendPacer{spacing: s.spacing, sleep: s.sleep, now: s.now}
	// Bundle dedup is scoped to this run only; a later run re-sends bundles.
	sentBundles := make(map[uuid.UUID]bool)

	for i, question := range questions {
		number := i + 1
		if err := s.publishQuestion(ctx, pace, input.ChatID, quiz.ID, number, question, expiresAt, sentBundles); err != nil {
			report.Skipped++
			s.warn(ctx, pace, input.ChatID, number, err)
			continue
		}
		report.Published++
	}
	return report, nil
}

func (s *publishService) publishQuestion(ctx context.Context, pace *sendPacer, chatID int64, quizID uuid.UUID, number int, question *domain.Question, expiresAt *time.Time, sentBundles map[uuid.UUID]bool) error {
	// Validate before sending anything so a skipped question costs no traffic.
	if len(question.Options) < minOptions || len(question.Options) > maxOptions {
		return domain.ErrBadOptionCount
	}
	correct := question.CorrectIndex()
	if correct < 0 {
		return domain.ErrNoCorrectOption
	}

	if question.MediaBundleID != nil && !sentBundles[*question.MediaBundleID] {
		if err := s.sendBundle(ctx, pace, chatID, *question.MediaBundleID); err != nil {
			return err
		}
		sentBundles[*question.MediaBundleID] = true
	}

	for _, att := range question.Attachments {
		if err := s.sendAttachment(ctx, pace, chatID, att.Kind, att.FileID); err != nil {
			return err
		}
	}

	options := make([]string, len(question.Options))
	for i, opt := range question.Options {
		options[i] = opt.Text
	}

	handle, err := s.sendPoll(ctx, pace, chatID, ports.PollSpec{
		Prompt:       pollPrompt(number, question.Text),
		Options:      options,
		CorrectIndex: correct,
	})
	if err != nil {
		return err
	}

	poll := &domain.SentPoll{
		ID:         uuid.New(),
		ChatID:     chatID,
		QuizID:     quizID,
		QuestionID: question.ID,
		PollID:     handle.PollID,
		MessageID:  handle.MessageID,
		ExpiresAt:  expiresAt,
	}
	if err := s.sentPolls.SavePoll(ctx, poll); err != nil {
		return fmt.Errorf("record sent poll: %w", err)
	}

	msg := &domain.SentMessage{
		ID:        uuid.New(),
		ChatID:    chatID,
		QuizID:    quizID,
		MessageID: handle.MessageID,
		ExpiresAt: expiresAt,
	}
	if err := s.sentPolls.SaveMessage(ctx, msg); err != nil {
		return fmt.Errorf("record sent message: %w", err)
	}
	return nil
}

func (s *publishService) sendBundle(ctx context.Context, pace *sendPacer, chatID int64, bundleID uuid.UUID) error {
	bundle, err := s.content.GetBundle(ctx, bundleID)
	if err != nil {
		return fmt.Errorf("load bundle %s: %w", bundleID, err)
	}
	for _, att := range bundle.Attachments {
		if err := s.sendAttachment(ctx, pace, chatID, att.Kind, att.FileID); err != nil {
			return err
		}
	}
	return nil
}

func (s *publishService) sendAttachment(ctx context.Context, pace *sendPacer, chatID int64, kind domain.AttachmentKind, fileID string) error {
	pace.wait()
	var err error
	switch kind {
	case domain.AttachmentPhoto:
		_, err = s.transport.SendPhoto(ctx, chatID, fileID)
	case domain.AttachmentVoice:
		_, err = s.transport.SendVoice(ctx, chatID, fileID)
	case domain.AttachmentAudio:
		_, err = s.transport.SendAudio(ctx, chatID, fileID)
	default:
		err = fmt.Errorf("unknown attachment kind %q", kind)
	}
	return err
}

// sendPoll creates the poll, retrying exactly once after the signaled delay
// when the transport rate-limits the call.
func (s *publishService) sendPoll(ctx context.Context, pace *sendPacer, chatID int64, spec ports.PollSpec) (ports.PollHandle, error) {
	pace.wait()
	handle, err := s.transport.SendPoll(ctx, chatID, spec)
	var rateLimited *ports.RateLimitError
	if errors.As(err, &rateLimited) {
		s.sleep(rateLimited.RetryAfter)
		handle, err = s.transport.SendPoll(ctx, chatID, spec)
	}
	return handle, err
}

// warn reports a skipped question inline to the target chat, best effort.
func (s *publishService) warn(ctx context.Context, pace *sendPacer, chatID int64, number int, cause error) {
	pace.wait()
	text := fmt.Sprintf("⚠️ Question %d was skipped: %v", number, cause)
	if _, err := s.transport.SendMessage(ctx, chatID, text); err != nil {
		log.Printf("[publish] could not report skipped question %d to chat %d: %v", number, chatID, err)
	}
}

func pollPrompt(number int, text string) string {
	prompt := fmt.Sprintf("[%d] %s", number, text)
	if runes := []rune(prompt); len(runes) > maxPromptRunes {
		prompt = string(runes[:maxPromptRunes])
	}
	return prompt
}

func resolveDeadline(choice ports.DurationChoice, now time.Time) (*time.Time, error) {
	if choice.Unlimited {
		return nil, nil
	}
	if choice.Hours < minDurationHours || choice.Hours > maxDurationHours {
		return nil, domain.ErrInvalidDuration
	}
	deadline := now.Add(time.Duration(choice.Hours) * time.Hour)
	return &deadline, nil
}

// sendPacer enforces the minimum gap between consecutive outbound sends of
// one publish run.
type sendPacer struct {
	spacing time.Duration
	sleep   func(time.Duration)
	now     func() time.Time
	last    time.Time
}

func (p *sendPacer) wait() {
	if !p.last.IsZero() {
		if gap := p.spacing - p.now().Sub(p.last); gap > 0 {
			p.sleep(gap)
		}
	}
	p.last = p.now()
}
