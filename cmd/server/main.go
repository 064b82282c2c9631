package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"quizcast/internal/adapters/handler/http"
	"quizcast/internal/adapters/repository/postgres"
	"quizcast/internal/adapters/transport/telegram"
	"quizcast/internal/core/services"
)

const sweepTimeout = time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	db, err := sql.Open("postgres", dbConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	contentRepo := postgres.NewContentRepository(db)
	sentPollRepo := postgres.NewSentPollRepository(db)
	responseRepo := postgres.NewResponseRepository(db)

	bot := telegram.NewClient(os.Getenv("TELEGRAM_TOKEN"))

	contentSvc := services.NewContentService(contentRepo)
	publishSvc := services.NewPublishService(contentRepo, sentPollRepo, bot)
	ingestSvc := services.NewIngestService(contentRepo, sentPollRepo, responseRepo, bot)
	expirySvc := services.NewExpiryService(sentPollRepo, bot)
	scoreSvc := services.NewScoreService(contentRepo, responseRepo)
	mergeSvc := services.NewMergeService(contentRepo)

	quizHandler := http.NewQuizHandler(contentSvc, publishSvc, scoreSvc, mergeSvc)
	webhookHandler := http.NewWebhookHandler(ingestSvc)
	handler := http.NewHandler(quizHandler, webhookHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &stdhttp.Server{Addr: "0.0.0.0:" + port, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	sweepSpec := os.Getenv("EXPIRY_SWEEP")
	if sweepSpec == "" {
		sweepSpec = "@every 30s"
	}
	if _, err := c.AddFunc(sweepSpec, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if err := expirySvc.CloseExpired(sweepCtx); err != nil {
			log.Printf("expiry sweep: %v", err)
		}
	}); err != nil {
		log.Fatal(err)
	}
	c.Start()

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Gracefully shutting down...")

	<-c.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

func dbConnString() string {
	dbName, user, password, host, port := dbConfig()
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
}

func dbConfig() (dbName string, user string, password string, host string, port string) {
	dbName = os.Getenv("POSTGRES_DB")
	user = os.Getenv("POSTGRES_USER")
	password = os.Getenv("POSTGRES_PASSWORD")
	host = os.Getenv("POSTGRES_HOST")
	port = os.Getenv("POSTGRES_PORT")
	return
}
