package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/wetland-risk-monitor/internal/domain"
	"github.com/couchcryptid/wetland-risk-monitor/internal/monitor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor is the evaluation surface the server renders.
type Monitor interface {
	sharedobs.ReadinessChecker
	Sites() []domain.Site
	Evaluate(ctx context.Context, req monitor.Request) (domain.Report, error)
}

// Server exposes the assessment API, the dashboard, and health, readiness,
// and metrics endpoints.
type Server struct {
	httpServer *http.Server
	monitor    Monitor
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the API, dashboard, /healthz, /readyz,
// and /metrics routes.
func NewServer(addr string, m Monitor, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		monitor: m,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(m))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/sites", s.handleSites)
	mux.HandleFunc("GET /api/sites/{id}/assessment", s.handleAssessment)
	mux.HandleFunc("GET /{$}", s.handleDashboard)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleSites(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.monitor.Sites())
}

func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	nearActivity, err := parseNearActivity(r.URL.Query())
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	report, err := s.monitor.Evaluate(r.Context(), monitor.Request{
		SiteID:       r.PathValue("id"),
		NearActivity: nearActivity,
	})
	if errors.Is(err, monitor.ErrUnknownSite) {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("evaluate site", "site_id", r.PathValue("id"), "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, report)
}

// parseNearActivity reads the near_activity flag, defaulting to true. When the
// parameter repeats, the last value wins, which lets an HTML form pair a
// hidden "false" with a checkbox "true".
func parseNearActivity(q url.Values) (bool, error) {
	vals := q["near_activity"]
	if len(vals) == 0 {
		return true, nil
	}
	v, err := strconv.ParseBool(vals[len(vals)-1])
	if err != nil {
		return false, errors.New("near_activity must be true or false")
	}
	return v, nil
}
