// Package server is the presentation shell: it wires the filter controls,
// summary metrics, and the map/table/analytics panels behind an HTTP API and
// an embedded single-page UI. It owns no business logic.
package server

import (
	"embed"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leap-analytics/gymscope/internal/warehouse"
)

//go:embed static/index.html
var staticFS embed.FS

// StatsFunc reports data-access cache statistics, when the store is cached.
type StatsFunc func() warehouse.CacheStats

// Server serves the dashboard API over a warehouse store.
type Server struct {
	store warehouse.Store
	stats StatsFunc
}

// New creates a Server. stats may be nil when the store is uncached.
func New(store warehouse.Store, stats StatsFunc) *Server {
	return &Server{store: store, stats: stats}
}

// Router builds the chi router with CORS, request IDs, and request logging.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/", s.handleIndex)

	r.Route("/api", func(r chi.Router) {
		r.Get("/filters", s.handleFilters)
		r.Get("/map", s.handleMap)
		r.Get("/blocks", s.handleBlocks)
		r.Get("/summary", s.handleSummary)
		r.Get("/export.csv", s.handleExportCSV)
		r.Get("/export.xlsx", s.handleExportXLSX)
		r.Get("/cache/stats", s.handleCacheStats)
	})

	return r
}

// requestLogger tags each request with an ID and logs method, path, and
// duration at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Debug("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "index unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	if s.stats == nil {
		writeJSON(w, http.StatusOK, map[string]string{"cache": "disabled"})
		return
	}
	writeJSON(w, http.StatusOK, s.stats())
}
