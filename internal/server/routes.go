package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/taqdeer/taqdeer-api/internal/contact"
	"github.com/taqdeer/taqdeer-api/internal/feedback"
	"github.com/taqdeer/taqdeer-api/internal/guidance"
	"github.com/taqdeer/taqdeer-api/internal/reference"
	"github.com/taqdeer/taqdeer-api/internal/stats"
	"github.com/taqdeer/taqdeer-api/pkg/response"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.WelcomeHandler)
	r.Get("/health", s.HealthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.ServerIsWorking)
		s.loadStatsRoutes(r)
		s.loadGuidanceRoutes(r)
		s.loadFeedbackRoutes(r)
		s.loadContactRoutes(r)
		r.Get("/reference", reference.LinkHandler)
	})

	return r
}

type welcome struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func (s *Server) WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, welcome{
		Message: "Welcome to Taqdeer API",
		Version: "1.0.0",
		Endpoints: map[string]string{
			"api":          "/api",
			"stats":        "/api/stats",
			"generateDua":  "/api/dua/generate",
			"searchRuling": "/api/ruling/search",
			"reference":    "/api/reference",
			"contact":      "/api/contact",
			"feedback":     "/api/feedback",
		},
	})
}

func (s *Server) ServerIsWorking(w http.ResponseWriter, r *http.Request) {
	response.Success(w, response.MessageBody{Message: "Taqdeer API is working!"})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{
		"status": "ok",
		"store":  s.db.Health()["status"],
	})
}

func (s *Server) loadStatsRoutes(router chi.Router) {
	statsHandler := stats.NewHandler(s.stats)

	router.Get("/stats", statsHandler.GetStatsHandler)
	router.Post("/stats/visitor", statsHandler.TrackVisitorHandler)
	router.Post("/stats/shared", statsHandler.TrackShareHandler)
}

func (s *Server) loadGuidanceRoutes(router chi.Router) {
	guidanceHandler := guidance.NewHandler(s.guidance)

	router.Post("/dua/generate", guidanceHandler.GenerateDuaHandler)
	router.Post("/ruling/search", guidanceHandler.SearchRulingHandler)
}

func (s *Server) loadFeedbackRoutes(router chi.Router) {
	feedbackService := feedback.NewService(feedback.NewRepository(s.db), s.log)
	feedbackHandler := feedback.NewHandler(feedbackService)

	router.Post("/feedback", feedbackHandler.SubmitFeedbackHandler)
}

func (s *Server) loadContactRoutes(router chi.Router) {
	contactService := contact.NewService(s.mail, s.cfg.ContactInbox, s.log)
	contactHandler := contact.NewHandler(contactService)

	router.Post("/contact", contactHandler.ContactHandler)
}
