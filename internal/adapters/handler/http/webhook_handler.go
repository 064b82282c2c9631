package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"quizcast/internal/core/ports"
)

// WebhookHandler receives Telegram update pushes and feeds poll answers to
// the ingester.
type WebhookHandler struct {
	ingester ports.IngestService
}

func NewWebhookHandler(ingester ports.IngestService) *WebhookHandler {
	return &WebhookHandler{ingester: ingester}
}

type update struct {
	UpdateID   int64       `json:"update_id"`
	PollAnswer *pollAnswer `json:"poll_answer"`
}

type pollAnswer struct {
	PollID    string        `json:"poll_id"`
	User      answeringUser `json:"user"`
	OptionIDs []int         `json:"option_ids"`
}

type answeringUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// HandleUpdate always acknowledges with 200: a non-2xx answer would make the
// transport redeliver the same update forever, and ingestion is silent-drop
// by contract anyway.
func (h *WebhookHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var u update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	if u.PollAnswer == nil || len(u.PollAnswer.OptionIDs) == 0 {
		// A retracted vote arrives with empty option_ids; nothing to grade.
		w.WriteHeader(http.StatusOK)
		return
	}

	h.ingester.Ingest(r.Context(), ports.AnswerEvent{
		PollID:      u.PollAnswer.PollID,
		UserID:      u.PollAnswer.User.ID,
		DisplayName: displayName(u.PollAnswer.User),
		OptionIndex: u.PollAnswer.OptionIDs[0],
	})
	w.WriteHeader(http.StatusOK)
}

func displayName(u answeringUser) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}
