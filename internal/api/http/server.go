package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bp-tracker-service/internal/domain"
	"bp-tracker-service/internal/logging"
)

// Config carries the transport-level settings of the API.
type Config struct {
	ListLimitDefault int
	ListLimitCap     int
	CORSOrigins      []string
}

// Server exposes the HTTP transport for the tracker application.
type Server struct {
	router chi.Router
}

// NewServer constructs a chi based HTTP server that forwards requests to
// the application services. All endpoints are mounted under /api.
func NewServer(measurements domain.MeasurementService, stats domain.StatsService, logger *logging.Logger, cfg Config) *Server {
	if cfg.ListLimitDefault <= 0 {
		cfg.ListLimitDefault = 100
	}
	if cfg.ListLimitCap <= 0 {
		cfg.ListLimitCap = 500
	}

	router := chi.NewRouter()
	router.Use(requestID)
	router.Use(corsMiddleware(cfg.CORSOrigins))
	router.Use(requestLogger(logger))
	router.Use(recoverer(logger))

	h := &handler{
		measurements: measurements,
		stats:        stats,
		logger:       logger,
		listDefault:  cfg.ListLimitDefault,
		listCap:      cfg.ListLimitCap,
	}
	router.Route("/api", func(r chi.Router) {
		registerRoutes(r, h)
	})

	return &Server{router: router}
}

// Router returns the configured chi router for reuse in tests or external
// HTTP servers.
func (s *Server) Router() http.Handler {
	return s.router
}

// ServeHTTP allows Server to satisfy the http.Handler interface directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
