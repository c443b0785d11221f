package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/academy-desk/internal/db"
	"github.com/jonathan/academy-desk/internal/intake"
	"github.com/jonathan/academy-desk/internal/logging"
	"github.com/jonathan/academy-desk/internal/server/ratelimit"
)

// DraftStore persists extracted drafts. *db.DB implements it.
type DraftStore interface {
	SaveDraft(ctx context.Context, input *db.DraftInput) (*db.Draft, error)
	GetDraft(ctx context.Context, id uuid.UUID) (*db.Draft, error)
	ListDrafts(ctx context.Context, limit, offset int) ([]db.Draft, error)
	CountDrafts(ctx context.Context) (int, error)
	DeleteDraft(ctx context.Context, id uuid.UUID) (bool, error)
	ReasonCounts(ctx context.Context) ([]db.ReasonCount, error)
	Ping(ctx context.Context) error
}

// Config holds server configuration
type Config struct {
	Port int
	// AllowedOrigins lists CORS origins; empty allows any origin.
	AllowedOrigins []string
	// Workers bounds batch extraction concurrency.
	Workers   int
	RateLimit *ratelimit.Config
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	assembler      *intake.Assembler
	store          DraftStore
	logger         *zap.Logger
	rateLimiter    *ratelimit.Limiter
	validate       *validator.Validate
	allowedOrigins map[string]bool
	workers        int
}

// New creates a server. store may be nil, in which case the draft and
// analytics routes answer 503.
func New(cfg Config, assembler *intake.Assembler, store DraftStore, logger *zap.Logger) *Server {
	if assembler == nil {
		assembler = intake.Default()
	}
	logger = logging.OrNop(logger)

	s := &Server{
		assembler:      assembler,
		store:          store,
		logger:         logger,
		rateLimiter:    ratelimit.NewLimiter(cfg.RateLimit),
		validate:       validator.New(),
		allowedOrigins: make(map[string]bool, len(cfg.AllowedOrigins)),
		workers:        cfg.Workers,
	}
	for _, o := range cfg.AllowedOrigins {
		s.allowedOrigins[strings.TrimSuffix(o, "/")] = true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Extraction
	mux.HandleFunc("POST /extract", s.handleExtract)
	mux.HandleFunc("POST /extract/batch", s.handleExtractBatch)
	mux.HandleFunc("POST /normalize", s.handleNormalize)
	mux.HandleFunc("POST /quickcopy", s.handleQuickCopy)

	// Drafts
	mux.HandleFunc("POST /drafts", s.handleCreateDraft)
	mux.HandleFunc("GET /drafts", s.handleListDrafts)
	mux.HandleFunc("GET /drafts/{id}", s.handleGetDraft)
	mux.HandleFunc("DELETE /drafts/{id}", s.handleDeleteDraft)

	// Analytics
	mux.HandleFunc("GET /analytics/reasons", s.handleReasonAnalytics)

	port := cfg.Port
	if port == 0 {
		port = 8080
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is canceled or the process receives SIGINT or
// SIGTERM, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(s.allowedOrigins) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case s.allowedOrigins[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients that exceed their allowance
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// handleHealth returns server health status. The database is reported
// only when one is configured; an unreachable database degrades the status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("database ping failed", zap.Error(err))
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unavailable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to its status code. Internal errors are logged and
// reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		s.errorResponse(w, status, "internal error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID uses the IP from RemoteAddr; forwarded headers are not
// trusted.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds() + 0.999)
		response["retry_after"] = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
