package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/doctrans/internal/config"
	"github.com/dgallion1/doctrans/internal/pipeline"
	"github.com/dgallion1/doctrans/internal/translate"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for doctrans.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	llm          *translate.OpenAIClient
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, llm *translate.OpenAIClient, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		llm:          llm,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DoctransAPIKey, s.log))

		r.Post("/api/translate", s.handleTranslate)
		r.Get("/api/translate/{jobID}/status", s.handleTranslateStatus)
		r.Get("/api/translate/{jobID}/result", s.handleTranslateResult)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
