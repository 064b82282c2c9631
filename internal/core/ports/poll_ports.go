package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quizcast/internal/core/domain"
)

type SentPollRepository interface {
	SavePoll(ctx context.Context, poll *domain.SentPoll) error
	SaveMessage(ctx context.Context, msg *domain.SentMessage) error
	GetByPollID(ctx context.Context, pollID string) (*domain.SentPoll, error)
	// ListExpired returns open polls whose deadline is at or before now.
	ListExpired(ctx context.Context, now time.Time) ([]*domain.SentPoll, error)
	MarkClosed(ctx context.Context, id uuid.UUID) error
}

// DurationChoice is the publish-time poll lifetime selection: a fixed number
// of hours or no deadline at all.
type DurationChoice struct {
	Unlimited bool
	Hours     int
}

type PublishInput struct {
	QuizID   uuid.UUID
	ChatID   int64
	Duration DurationChoice
}

// PublishReport summarizes a publish run. Skipped questions were reported
// inline to the chat; the run itself never aborts on them.
type PublishReport struct {
	Published int `json:"published"`
	Skipped   int `json:"skipped"`
}

type PublishService interface {
	Publish(ctx context.Context, input PublishInput) (PublishReport, error)
}

type ExpiryService interface {
	// CloseExpired performs one sweep over overdue open polls.
	CloseExpired(ctx context.Context) error
}
