// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stub

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"
)

// ============================================================================
// CONFIGURATION
// ============================================================================

// ModelName is reported in model_used.
const ModelName = "friendsfixer-stub"

// Config holds stub service settings.
type Config struct {
	// Addr is the listen address (default: 127.0.0.1:8000)
	Addr string

	// WarmUp is how long ai_ready stays false after start
	WarmUp time.Duration

	// Latency is added to every chat reply
	Latency time.Duration

	// RatePerSecond limits chat requests; zero disables the limit
	RatePerSecond float64
	Burst         int

	// Phrases overrides DefaultPhrases
	Phrases []Phrase

	Logger *zap.Logger
}

// DefaultConfig returns the default stub configuration.
func DefaultConfig() Config {
	return Config{
		Addr:          "127.0.0.1:8000",
		WarmUp:        3 * time.Second,
		Latency:       300 * time.Millisecond,
		RatePerSecond: 2,
		Burst:         4,
	}
}

// ============================================================================
// WIRE TYPES
// ============================================================================

type chatRequest struct {
	Message   string `json:"message"`
	ShowHints bool   `json:"show_hints"`
}

type hint struct {
	Konglish string  `json:"konglish"`
	Natural  string  `json:"natural"`
	Why      string  `json:"why,omitempty"`
	Sim      float64 `json:"sim"`
}

type chatResponse struct {
	Response       string  `json:"response"`
	Hints          []hint  `json:"hints"`
	ProcessingTime float64 `json:"processing_time"`
	ModelUsed      string  `json:"model_used"`
}

type healthResponse struct {
	Status  string         `json:"status"`
	AIReady bool           `json:"ai_ready"`
	Files   map[string]any `json:"files"`
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the stub correction service.
type Server struct {
	cfg     Config
	phrases []Phrase
	logger  *zap.Logger
	limiter *rate.Limiter
	router  chi.Router
	started time.Time

	mu       sync.RWMutex
	ready    *bool  // overrides the warm-up clock when set
	failWith string // when set, chat answers 500 with this detail
	requests int

	server *http.Server
}

// New creates a stub server. The warm-up clock starts now.
func New(cfg Config) *Server {
	defaults := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = defaults.Addr
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	phrases := cfg.Phrases
	if len(phrases) == 0 {
		phrases = DefaultPhrases
	}

	s := &Server{
		cfg:     cfg,
		phrases: phrases,
		logger:  logger.Named("stub"),
		started: time.Now(),
	}
	if cfg.RatePerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst)
	}

	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetReady pins ai_ready regardless of the warm-up clock.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = &ready
}

// SetFailure makes every chat request fail with HTTP 500 and detail.
// An empty detail restores normal replies.
func (s *Server) SetFailure(detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = detail
}

// Requests returns the number of chat requests answered.
func (s *Server) Requests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ready != nil {
		return *s.ready
	}
	return time.Since(s.started) >= s.cfg.WarmUp
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(Chain(
		chimiddleware.RequestID,
		RecoveryMiddleware(s.logger),
		LoggingMiddleware(s.logger),
	))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(OverloadMiddleware(s.limiter)).Post("/chat", s.handleChat)
		r.Get("/stats", s.handleStats)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	s.router = r
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	ready := s.isReady()
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "FriendsFixer API - Stub",
		"status":       "running",
		"initialized":  ready,
		"model_loaded": ready,
		"rag_loaded":   true,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ready := s.isReady()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		AIReady: ready,
		Files: map[string]any{
			"model_exists":    true,
			"database_exists": true,
			"model_loaded":    ready,
			"rag_loaded":      true,
		},
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"body"}, "msg": "invalid JSON body"}},
		})
		return
	}
	message := norm.NFC.String(strings.TrimSpace(req.Message))
	if message == "" {
		writeDetail(w, http.StatusBadRequest, "Message is empty")
		return
	}

	s.mu.RLock()
	failWith := s.failWith
	s.mu.RUnlock()
	if failWith != "" {
		writeDetail(w, http.StatusInternalServerError, failWith)
		return
	}

	if !s.isReady() {
		writeDetail(w, http.StatusServiceUnavailable, "model is still loading")
		return
	}

	if s.cfg.Latency > 0 {
		select {
		case <-time.After(s.cfg.Latency):
		case <-r.Context().Done():
			return
		}
	}

	resp := chatResponse{
		Response:  correct(s.phrases, message),
		Hints:     []hint{},
		ModelUsed: ModelName,
	}
	if req.ShowHints {
		for _, m := range findPhrases(s.phrases, message) {
			resp.Hints = append(resp.Hints, hint{
				Konglish: m.Konglish,
				Natural:  m.Natural,
				Why:      m.Why,
				Sim:      math.Round(m.Similarity*1000) / 1000,
			})
		}
	}
	resp.ProcessingTime = math.Round(time.Since(start).Seconds()*1000) / 1000

	s.mu.Lock()
	s.requests++
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ready := s.isReady()
	writeJSON(w, http.StatusOK, map[string]any{
		"model_initialized": ready,
		"ml_available":      false,
		"device":            "cpu",
		"model_loaded":      ready,
		"rag_database_size": len(s.phrases),
		"model_config": map[string]any{
			"base_model":     ModelName,
			"max_new_tokens": 128,
		},
		"rag_config": map[string]any{
			"top_k":   4,
			"min_sim": 0.6,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("stub service listening",
			zap.String("addr", ln.Addr().String()),
			zap.Duration("warm_up", s.cfg.WarmUp),
		)
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("stub service shutting down")
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
