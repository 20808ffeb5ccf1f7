package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ubitquity/Zoltaran-Speaks/internal/auth"
	"github.com/ubitquity/Zoltaran-Speaks/internal/wish"
)

// Server handles HTTP requests for the wish game engine.
type Server struct {
	svc       *wish.Service
	tokens    auth.JWT
	logger    *log.Logger
	startTime time.Time
}

// NewServer creates a new API server around a wish service.
func NewServer(svc *wish.Service, tokens auth.JWT) *Server {
	return &Server{
		svc:       svc,
		tokens:    tokens,
		logger:    log.New(os.Stdout, "[API] ", log.LstdFlags),
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes with proper middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health and monitoring endpoints
	r.Get("/health", s.handleHealth)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/health/ready", s.handleReadiness)

	r.Route("/api/v1", func(r chi.Router) {
		// Read-only query surface: the persisted tables are public,
		// exactly as they are on the host chain.
		r.Get("/config", s.handleGetConfig)
		r.Get("/token-prices", s.handleListTokenPrices)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/history", s.handleHistory)
		r.Get("/reconcile", s.handleReconcile)
		r.Get("/players/{name}", s.handleGetPlayer)
		r.Get("/players/{name}/commit", s.handleGetPendingCommit)
		r.Get("/players/{name}/history", s.handleHistory)

		// Mutations require a signed identity
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.tokens))

			r.Post("/commits", s.handleCommit)
			r.Post("/commits/{id}/reveal", s.handleReveal)
			r.Post("/cleanup", s.handleCleanup)
			r.Post("/payments", s.handlePayment)

			r.Route("/admin", func(r chi.Router) {
				r.Post("/config", s.handleSetConfig)
				r.Post("/token-prices", s.handleSetTokenPrice)
				r.Post("/pause", s.handleSetPause)
				r.Post("/withdraw", s.handleWithdraw)
			})
		})
	})

	return r
}

// writeJSON writes a JSON response with proper headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Zoltaran-Version", Version)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeError writes a structured error response.
func (s *Server) writeError(w http.ResponseWriter, status int, errType, message string, context map[string]any) {
	s.writeJSON(w, status, APIError{Type: errType, Message: message, Context: context})
}

// writeServiceError maps a wish error onto the HTTP surface.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := classify(err)
	if status >= 500 {
		s.logger.Printf("request_failed request_id=%s path=%s error=%q",
			middleware.GetReqID(r.Context()), r.URL.Path, err.Error())
	}
	s.writeError(w, status, errType, err.Error(), nil)
}
