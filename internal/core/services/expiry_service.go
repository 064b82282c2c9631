package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"quizcast/internal/core/ports"
)

type expiryService struct {
	sentPolls ports.SentPollRepository
	transport ports.Transport
	now       func() time.Time
}

func NewExpiryService(sentPolls ports.SentPollRepository, transport ports.Transport) ports.ExpiryService {
	return &expiryService{
		sentPolls: sentPolls,
		transport: transport,
		now:       time.Now,
	}
}

// CloseExpired sweeps open polls whose deadline has passed. Failures are
// isolated per row: a poll that cannot be closed stays open and is retried
// on every later sweep. A rate-limit signal ends the sweep early; the
// remaining rows are picked up on the next tick instead of sleeping inside
// the scheduler. Closing is idempotent on the transport side.
func (s *expiryService) CloseExpired(ctx context.Context) error {
	overdue, err := s.sentPolls.ListExpired(ctx, s.now())
	if err != nil {
		return fmt.Errorf("list overdue polls: %w", err)
	}

	for _, poll := range overdue {
		if poll.MessageID == 0 {
			// No message id was ever recorded; there is nothing to close on
			// the transport side, so the row can only be retired.
			if err := s.sentPolls.MarkClosed(ctx, poll.ID); err != nil {
				log.Printf("[expiry] retire poll %s: %v", poll.PollID, err)
			}
			continue
		}

		err := s.transport.ClosePoll(ctx, poll.ChatID, poll.MessageID)
		var rateLimited *ports.RateLimitError
		if errors.As(err, &rateLimited) {
			log.Printf("[expiry] rate limited closing poll %s, resuming next sweep (retry after %s)", poll.PollID, rateLimited.RetryAfter)
			return nil
		}
		if err != nil {
			log.Printf("[expiry] close poll %s in chat %d: %v", poll.PollID, poll.ChatID, err)
			continue
		}

		if err := s.sentPolls.MarkClosed(ctx, poll.ID); err != nil {
			log.Printf("[expiry] mark poll %s closed: %v", poll.PollID, err)
		}
	}
	return nil
}
