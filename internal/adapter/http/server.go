package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
	"github.com/couchcryptid/pv-climate-etl/internal/geo"
)

// NearestFinder ranks cataloged sites by distance from a query point.
type NearestFinder interface {
	Nearest(lat, lon float64, limit int) (geo.Ranking, error)
}

// Server exposes health, readiness, metrics, and nearest-site HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /sites/nearest routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, sites NearestFinder, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /sites/nearest", s.handleNearest(sites))

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

// handleNearest serves GET /sites/nearest?lat=&lon=&limit=. limit is
// optional; zero or absent returns every site.
func (s *Server) handleNearest(sites NearestFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		lat, err := parseFloatParam(q.Get("lat"), "lat")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		lon, err := parseFloatParam(q.Get("lon"), "lon")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		limit := 0
		if v := q.Get("limit"); v != "" {
			limit, err = strconv.Atoi(v)
			if err != nil || limit < 0 {
				writeError(w, http.StatusBadRequest, &domain.InvalidParameterError{Param: "limit", Reason: "must be a non-negative integer"})
				return
			}
		}

		ranking, err := sites.Nearest(lat, lon, limit)
		var ip *domain.InvalidParameterError
		switch {
		case errors.Is(err, domain.ErrCatalogNotReady):
			writeError(w, http.StatusServiceUnavailable, err)
			return
		case errors.As(err, &ip):
			writeError(w, http.StatusBadRequest, err)
			return
		case err != nil:
			s.logger.Error("nearest query failed", "error", err, "lat", lat, "lon", lon)
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		sharedobs.WriteJSON(w, http.StatusOK, ranking)
	}
}

func parseFloatParam(v, name string) (float64, error) {
	if v == "" {
		return 0, &domain.InvalidParameterError{Param: name, Reason: "is required"}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &domain.InvalidParameterError{Param: name, Reason: "must be a number"}
	}
	return f, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
