package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"quizcast/internal/core/domain"
	"quizcast/internal/core/ports"
)

type QuizHandler struct {
	content   ports.ContentService
	publisher ports.PublishService
	scores    ports.ScoreService
	merger    ports.MergeService
	validate  *validator.Validate
}

func NewQuizHandler(content ports.ContentService, publisher ports.PublishService, scores ports.ScoreService, merger ports.MergeService) *QuizHandler {
	return &QuizHandler{
		content:   content,
		publisher: publisher,
		scores:    scores,
		merger:    merger,
		validate:  validator.New(),
	}
}

type createOptionRequest struct {
	Text    string `json:"text" validate:"required"`
	Correct bool   `json:"correct"`
}

type createQuestionRequest struct {
	Text    string                `json:"text" validate:"required"`
	Options []createOptionRequest `json:"options" validate:"min=2,max=10,dive"`
}

type createQuizRequest struct {
	Title     string                  `json:"title" validate:"required"`
	CreatedBy int64                   `json:"created_by"`
	Questions []createQuestionRequest `json:"questions" validate:"dive"`
}

func (h *QuizHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	input := ports.CreateQuizInput{Title: req.Title, CreatedBy: req.CreatedBy}
	for _, q := range req.Questions {
		question := ports.CreateQuestionInput{Text: q.Text}
		for _, opt := range q.Options {
			question.Options = append(question.Options, ports.CreateOptionInput{Text: opt.Text, Correct: opt.Correct})
		}
		input.Questions = append(input.Questions, question)
	}

	quiz, err := h.content.Create(r.Context(), input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(quiz)
}

type publishRequest struct {
	ChatID   int64  `json:"chat_id" validate:"required"`
	Duration string `json:"duration" validate:"required,oneof=12h 24h unlimited custom"`
	Hours    int    `json:"hours" validate:"omitempty,min=1,max=240"`
}

func (h *QuizHandler) PublishQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid quiz id", http.StatusBadRequest)
		return
	}

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	duration, ok := durationChoice(req)
	if !ok {
		http.Error(w, domain.ErrInvalidDuration.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.publisher.Publish(r.Context(), ports.PublishInput{
		QuizID:   quizID,
		ChatID:   req.ChatID,
		Duration: duration,
	})
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if errors.Is(err, domain.ErrQuizArchived) || errors.Is(err, domain.ErrQuizEmpty) || errors.Is(err, domain.ErrInvalidDuration) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func durationChoice(req publishRequest) (ports.DurationChoice, bool) {
	switch req.Duration {
	case "12h":
		return ports.DurationChoice{Hours: 12}, true
	case "24h":
		return ports.DurationChoice{Hours: 24}, true
	case "unlimited":
		return ports.DurationChoice{Unlimited: true}, true
	case "custom":
		if req.Hours == 0 {
			return ports.DurationChoice{}, false
		}
		return ports.DurationChoice{Hours: req.Hours}, true
	}
	return ports.DurationChoice{}, false
}

func (h *QuizHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	quizID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid quiz id", http.StatusBadRequest)
		return
	}
	chatID, err := strconv.ParseInt(r.URL.Query().Get("chat_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid chat_id", http.StatusBadRequest)
		return
	}

	entries, err := h.scores.Leaderboard(r.Context(), quizID, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

type mergeRequest struct {
	QuizA uuid.UUID `json:"quiz_a" validate:"required"`
	QuizB uuid.UUID `json:"quiz_b" validate:"required"`
}

func (h *QuizHandler) MergeQuizzes(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mergedID, err := h.merger.Merge(r.Context(), req.QuizA, req.QuizB)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]uuid.UUID{"id": mergedID})
}

func (h *QuizHandler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid quiz id", http.StatusBadRequest)
		return
	}

	if err := h.content.Delete(r.Context(), quizID); err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
