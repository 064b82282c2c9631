// Package telegram implements ports.Transport against the Telegram Bot API.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"quizcast/internal/core/ports"
)

const defaultBaseURL = "https://api.telegram.org"

type Client struct {
	http  *resty.Client
	token string
}

var _ ports.Transport = (*Client)(nil)

func NewClient(token string) *Client {
	return NewClientWithBaseURL(token, defaultBaseURL)
}

// NewClientWithBaseURL points the client at a non-default API host, which
// also lets tests run against a local server.
func NewClientWithBaseURL(token, baseURL string) *Client {
	return &Client{
		http:  resty.New().SetBaseURL(baseURL).SetTimeout(30 * time.Second),
		token: token,
	}
}

// apiResponse is the Bot API envelope shared by all methods.
type apiResponse struct {
	OK          bool                `json:"ok"`
	Result      json.RawMessage     `json:"result"`
	Description string              `json:"description"`
	ErrorCode   int                 `json:"error_code"`
	Parameters  *responseParameters `json:"parameters"`
}

type responseParameters struct {
	RetryAfter int `json:"retry_after"`
}

type message struct {
	MessageID int64 `json:"message_id"`
	Poll      *poll `json:"poll"`
}

type poll struct {
	ID string `json:"id"`
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileID string) (int64, error) {
	return c.sendMedia(ctx, "sendPhoto", "photo", chatID, fileID)
}

func (c *Client) SendVoice(ctx context.Context, chatID int64, fileID string) (int64, error) {
	return c.sendMedia(ctx, "sendVoice", "voice", chatID, fileID)
}

func (c *Client) SendAudio(ctx context.Context, chatID int64, fileID string) (int64, error) {
	return c.sendMedia(ctx, "sendAudio", "audio", chatID, fileID)
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (int64, error) {
	raw, err := c.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return 0, err
	}
	return messageID(raw)
}

func (c *Client) SendPoll(ctx context.Context, chatID int64, spec ports.PollSpec) (ports.PollHandle, error) {
	raw, err := c.call(ctx, "sendPoll", map[string]any{
		"chat_id":           chatID,
		"question":          spec.Prompt,
		"options":           spec.Options,
		"type":              "quiz",
		"correct_option_id": spec.CorrectIndex,
		"is_anonymous":      false,
	})
	if err != nil {
		return ports.PollHandle{}, err
	}

	var msg message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return ports.PollHandle{}, fmt.Errorf("telegram sendPoll: decode result: %w", err)
	}
	if msg.Poll == nil {
		return ports.PollHandle{}, fmt.Errorf("telegram sendPoll: result carries no poll")
	}
	return ports.PollHandle{PollID: msg.Poll.ID, MessageID: msg.MessageID}, nil
}

// ClosePoll stops the poll; stopping an already stopped poll is treated as
// a success by the API, which keeps expiry sweeps idempotent.
func (c *Client) ClosePoll(ctx context.Context, chatID int64, messageID int64) error {
	_, err := c.call(ctx, "stopPoll", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	})
	return err
}

func (c *Client) sendMedia(ctx context.Context, method, field string, chatID int64, fileID string) (int64, error) {
	raw, err := c.call(ctx, method, map[string]any{
		"chat_id": chatID,
		field:     fileID,
	})
	if err != nil {
		return 0, err
	}
	return messageID(raw)
}

func (c *Client) call(ctx context.Context, method string, body any) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(fmt.Sprintf("/bot%s/%s", c.token, method))
	if err != nil {
		return nil, fmt.Errorf("telegram %s: %w", method, err)
	}

	var api apiResponse
	if err := json.Unmarshal(resp.Body(), &api); err != nil {
		return nil, fmt.Errorf("telegram %s: decode response: %w", method, err)
	}
	if !api.OK {
		if api.ErrorCode == http.StatusTooManyRequests && api.Parameters != nil {
			return nil, &ports.RateLimitError{
				RetryAfter: time.Duration(api.Parameters.RetryAfter) * time.Second,
			}
		}
		return nil, fmt.Errorf("telegram %s: %s (code %d)", method, api.Description, api.ErrorCode)
	}
	return api.Result, nil
}

func messageID(raw json.RawMessage) (int64, error) {
	var msg message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return 0, fmt.Errorf("telegram: decode message result: %w", err)
	}
	return msg.MessageID, nil
}
