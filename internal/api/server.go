package api

import (
	"errors"
	"net/http"

	"github.com/carebyte/carebot/internal/attrs"
	"github.com/carebyte/carebot/internal/chat"
	"github.com/carebyte/carebot/internal/log"
	"github.com/carebyte/carebot/internal/session"
)

// maxRequestBody caps request bodies. Prompts are chat-sized; anything
// bigger is a mistake or abuse.
const maxRequestBody = 1 << 20 // 1 MiB

// Rate limiter defaults: one token per second with a burst of 60.
const (
	defaultRateRPS   = 1.0
	defaultRateBurst = 60
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger     log.Logger
	Store      session.Store // Required
	Runner     *chat.Runner  // Required
	Seed       attrs.Seed    // Prefills for sessions created over the API
	RateRPS    float64       // Tokens per second per IP (0 = default 1)
	RateBurst  int           // Rate limiter burst size per IP (0 = default 60)
	TrustProxy bool          // Trust X-Real-IP/X-Forwarded-For headers (behind reverse proxy)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.Runner == nil {
		return nil, errors.New("chat runner is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	sh := &sessionHandler{store: cfg.Store, seed: cfg.Seed, logger: logger}
	ch := &chatHandler{store: cfg.Store, runner: cfg.Runner, turns: newInflight(), logger: logger}

	mux := http.NewServeMux()

	// Session CRUD
	mux.HandleFunc("POST /api/v1/sessions", sh.createSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}", sh.getSession)
	mux.HandleFunc("PATCH /api/v1/sessions/{id}/settings", sh.updateSettings)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", sh.deleteSession)

	// Chat
	mux.HandleFunc("POST /api/v1/chat", ch.send)
	mux.HandleFunc("POST /api/v1/chat/stream", ch.stream)

	rps := cfg.RateRPS
	if rps <= 0 {
		rps = defaultRateRPS
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = defaultRateBurst
	}
	rl := newRateLimiter(rps, burst)

	// Build middleware stack (outermost first):
	//   Recovery → Logging → RateLimit → Routes
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Top-level mux separates health probes from the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health(logger))
	topMux.HandleFunc("GET /ready", readiness(cfg.Store, logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
