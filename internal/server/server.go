package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/taqdeer/taqdeer-api/internal/contact"
	"github.com/taqdeer/taqdeer-api/internal/database"
	"github.com/taqdeer/taqdeer-api/internal/feedback"
	"github.com/taqdeer/taqdeer-api/internal/guidance"
	"github.com/taqdeer/taqdeer-api/internal/llm"
	"github.com/taqdeer/taqdeer-api/internal/logger"
	"github.com/taqdeer/taqdeer-api/internal/mail"
	"github.com/taqdeer/taqdeer-api/internal/stats"
	"github.com/taqdeer/taqdeer-api/pkg/config"
)

type Server struct {
	port     string
	db       database.Service
	handler  http.Handler
	cfg      *config.Config
	log      *logger.Logger
	mail     contact.Sender
	stats    *stats.Service
	guidance *guidance.Service
}

// Models lists every table the server reads or writes.
var Models = []interface{}{&stats.UsageStats{}, &feedback.Record{}, &guidance.RulingRecord{}}

// NewServer constructs the app server with all dependencies injected. A
// store that is down is logged, not fatal: stats read as zeros and feedback
// fails with 500 until it comes back.
func NewServer(db database.Service, model llm.Client, cfg *config.Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}

	health := db.Health()
	if health["status"] != "up" {
		log.Warn("Database unavailable, running without a store", "error", health["error"])
	} else {
		log.Info("Database connection successful")
	}

	mailer := mail.NewMail(cfg.SmtpFrom, "Taqdeer", cfg.SmtpUser, cfg.SmtpPassword, cfg.SmtpHost, cfg.SmtpPort)

	statsService := stats.NewService(stats.NewRepository(db, log), log)
	guidanceService := guidance.NewService(model, statsService, log,
		guidance.WithArchive(guidance.NewRulingArchive(db, log)),
		guidance.WithCache(cfg.RulingCacheSize),
	)

	s := &Server{
		port:     cfg.Port,
		db:       db,
		cfg:      cfg,
		log:      log,
		mail:     mailer,
		stats:    statsService,
		guidance: guidanceService,
	}

	s.handler = s.RegisterRoutes()
	return s
}

// HTTPServer returns the actual *http.Server instance
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", s.port),
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Drain waits for detached work (counter increments, ruling archiving) to finish.
func (s *Server) Drain(ctx context.Context) error {
	return s.guidance.Drain(ctx)
}
