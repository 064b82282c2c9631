package ports

import (
	"context"
	"fmt"
	"time"
)

// PollSpec describes a single-choice, correctness-graded, non-anonymous poll.
type PollSpec struct {
	Prompt       string
	Options      []string
	CorrectIndex int
}

// PollHandle identifies a created poll on the transport side.
type PollHandle struct {
	PollID    string
	MessageID int64
}

// Transport is the outbound chat capability set. Media sends return the
// message id assigned by the transport.
type Transport interface {
	SendPhoto(ctx context.Context, chatID int64, fileID string) (int64, error)
	SendVoice(ctx context.Context, chatID int64, fileID string) (int64, error)
	SendAudio(ctx context.Context, chatID int64, fileID string) (int64, error)
	SendMessage(ctx context.Context, chatID int64, text string) (int64, error)
	SendPoll(ctx context.Context, chatID int64, spec PollSpec) (PollHandle, error)
	ClosePoll(ctx context.Context, chatID int64, messageID int64) error
}

// RateLimitError signals the transport asked the caller to slow down for
// RetryAfter before sending again.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}
