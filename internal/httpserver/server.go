// Package httpserver exposes the dashboard's JSON API: chart-ready
// analytics series and the scheduled-post queue.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pupbiscuit/skydash/internal/config"
	"github.com/pupbiscuit/skydash/internal/domain"
	"github.com/pupbiscuit/skydash/internal/metrics"
	"github.com/pupbiscuit/skydash/internal/schedule"
)

// SnapshotSource serves the snapshot the analytics handlers read from.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
}

// ScheduleStore is the subset of the schedule store the API mutates.
type ScheduleStore interface {
	Load() ([]schedule.Item, error)
	Add(path, text string) (schedule.Item, error)
	Remove(id string) error
	Reorder(ids []string) error
}

// Server is the HTTP server for the dashboard API.
type Server struct {
	cfg        *config.Config
	snapshots  SnapshotSource
	queue      ScheduleStore
	logger     *slog.Logger
	m          *metrics.Metrics
	httpServer *http.Server
}

// NewServer creates a new HTTP server. metricsHandler serves the Prometheus
// scrape endpoint and may be nil to disable it; m may be nil.
func NewServer(cfg *config.Config, snapshots SnapshotSource, queue ScheduleStore, logger *slog.Logger, m *metrics.Metrics, metricsHandler http.Handler) *Server {
	s := &Server{
		cfg:       cfg,
		snapshots: snapshots,
		queue:     queue,
		logger:    logger,
		m:         m,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/profile", s.handleProfile)
	mux.HandleFunc("GET /api/charts/likes", s.handleLikesChart)
	mux.HandleFunc("GET /api/charts/engagement", s.handleEngagementChart)
	mux.HandleFunc("GET /api/charts/embed-types", s.handleEmbedTypesChart)
	mux.HandleFunc("GET /api/charts/rate", s.handleRateChart)
	mux.HandleFunc("GET /api/charts/hour-of-week", s.handleHourOfWeekChart)
	mux.HandleFunc("GET /api/charts/retention", s.handleRetentionChart)
	mux.HandleFunc("GET /api/top-posts", s.handleTopPosts)
	mux.HandleFunc("GET /api/schedule", s.handleScheduleList)
	mux.HandleFunc("POST /api/schedule/upload", s.handleScheduleUpload)
	mux.HandleFunc("POST /api/schedule/reorder", s.handleScheduleReorder)
	mux.HandleFunc("DELETE /api/schedule/{id}", s.handleScheduleDelete)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, map[string]string{
		"error":   errType,
		"message": message,
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
		if s.m != nil {
			s.m.HTTPRequests.WithLabelValues(r.URL.Path, strconv.Itoa(wrapped.status)).Inc()
			s.m.HTTPDuration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
		}
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
