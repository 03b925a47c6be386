package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	applog "dailyspend/internal/log"
	"dailyspend/internal/services"
)

// Each manual trigger messages the user.
const triggerLimitPerMinute = 6

// Digests is the part of the digest scheduler the ops endpoints use.
type Digests interface {
	Preview(ctx context.Context) (string, error)
	Trigger(ctx context.Context) error
}

// Server exposes health probes and the digest endpoints.
type Server struct {
	http.Server
	digests     Digests
	ready       func(context.Context) error
	access      *applog.StructuredLogger
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer builds the ops server. ready reports whether the ledger can be
// loaded; a nil ready always passes.
func NewServer(addr string, digests Digests, ready func(context.Context) error, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		digests:     digests,
		ready:       ready,
		access:      applog.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(triggerLimitPerMinute, time.Minute),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /digest", s.handleDigestPreview)
	mux.HandleFunc("POST /digest/trigger", s.handleDigestTrigger)

	var handler http.Handler = mux
	handler = s.withRequestLog(handler)
	handler = applog.RequestIDMiddleware(requestID)(handler)
	handler = applog.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the limiter cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRequestLog adds security headers and access logs around every request.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		setSecurityHeaders(w.Header())

		s.access.LogHTTPStart(r.Context(), r, clientIP)
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.access.LogHTTPEnd(r.Context(), r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" && len(id) <= 64 {
		return id
	}
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err.Error())
			writeText(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeText(w, http.StatusOK, "ready")
}

func (s *Server) handleDigestPreview(w http.ResponseWriter, r *http.Request) {
	text, err := s.digests.Preview(r.Context())
	if err != nil {
		s.access.LogError(r.Context(), "Digest preview failed", err, applog.ComponentScheduler, applog.OpRender, nil)
		writeText(w, http.StatusInternalServerError, "failed to build digest")
		return
	}
	writeText(w, http.StatusOK, text)
}

func (s *Server) handleDigestTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientIP := extractClientIP(r)
	if !s.rateLimiter.allow(clientIP) {
		slog.WarnContext(ctx, "Rate limit exceeded", applog.FieldClientIP, clientIP, applog.FieldPath, r.URL.Path)
		w.Header().Set("Retry-After", "60")
		writeText(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
		return
	}

	err := s.digests.Trigger(ctx)
	switch {
	case errors.Is(err, services.ErrNoRecipient):
		writeText(w, http.StatusConflict, "no recipient registered; send /start to the bot first")
	case err != nil:
		s.access.LogError(ctx, "Manual digest failed", err, applog.ComponentScheduler, applog.OpSend, nil)
		writeText(w, http.StatusBadGateway, "failed to send digest")
	default:
		writeText(w, http.StatusOK, "digest sent")
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
