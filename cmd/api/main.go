package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taqdeer/taqdeer-api/internal/database"
	"github.com/taqdeer/taqdeer-api/internal/llm"
	"github.com/taqdeer/taqdeer-api/internal/logger"
	"github.com/taqdeer/taqdeer-api/internal/server"
	"github.com/taqdeer/taqdeer-api/pkg/config"
)

func gracefulShutdown(ctx context.Context, apiServer *http.Server, app *server.Server, log *logger.Logger, done chan<- struct{}) {
	<-ctx.Done()
	log.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	if err := app.Drain(shutdownCtx); err != nil {
		log.Warn("background tasks still running at exit", "error", err)
	}

	log.Info("server exiting")
	close(done)
}

func main() {
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.New(cfg.DatabaseURL, log)
	if err != nil {
		log.Warn("database unavailable, continuing without a store", "error", err)
		db = database.Unavailable()
	}
	defer db.Close()

	if err := database.AutoMigrate(db, server.Models...); err != nil {
		log.Fatal("auto migration failed", "error", err)
	}

	model := llm.NewOpenAI(llm.Config{
		APIKey:     cfg.OpenAIKey,
		Model:      cfg.OpenAIModel,
		BaseURL:    cfg.OpenAIBaseURL,
		Timeout:    cfg.OpenAITimeout,
		MaxRetries: cfg.OpenAIMaxRetries,
	}, log)
	if cfg.OpenAIKey == "" {
		log.Warn("OPENAI_API_KEY is not set; generation endpoints will fail")
	}

	app := server.NewServer(db, model, cfg, log)
	apiServer := app.HTTPServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go gracefulShutdown(ctx, apiServer, app, log, done)

	log.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "model", model.Model())
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("http server error", "error", err)
	}

	<-done
}
