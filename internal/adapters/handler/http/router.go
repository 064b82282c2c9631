package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(quizHandler *QuizHandler, webhookHandler *WebhookHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Post("/telegram/webhook", webhookHandler.HandleUpdate)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})

		r.Route("/quizzes", func(r chi.Router) {
			r.Post("/", quizHandler.CreateQuiz)
			r.Post("/merge", quizHandler.MergeQuizzes)

			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", quizHandler.DeleteQuiz)
				r.Post("/publish", quizHandler.PublishQuiz)
				r.Get("/leaderboard", quizHandler.Leaderboard)
			})
		})
	})

	return r
}
