// Package http serves the forecast page, the forecast API, health and metrics
package http

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/augur-forecast/augur/internal/config"
	"github.com/augur-forecast/augur/internal/engine"
	"github.com/augur-forecast/augur/internal/metrics"
	"github.com/augur-forecast/augur/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/page.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

// Server wires the forecast pipeline to HTTP handlers
type Server struct {
	cfg     *config.Config
	engine  engine.Engine
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewServer returns a server forecasting with e
func NewServer(cfg *config.Config, e engine.Engine, m *metrics.Metrics, logger *slog.Logger) *Server {
	if m == nil {
		m = metrics.New()
	}
	return &Server{
		cfg:     cfg,
		engine:  e,
		metrics: m,
		logger:  logger.With("component", "http"),
	}
}

// Routes builds the router
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(StructuredLogger(s.logger))
	r.Use(Recoverer(s.logger))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimit.Enabled {
			r.Use(NewRateLimiter(s.cfg.RateLimit.RPS, s.cfg.RateLimit.Burst, s.logger).Handler)
		}
		r.Use(MaxBytes(s.cfg.Server.MaxUploadBytes))

		r.Post("/forecast", s.handleForecastPage)
		r.Post("/api/v1/forecast", s.handleForecastAPI)
	})
	return r
}

// NewHTTPServer returns an http.Server listening on the configured address
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func (s *Server) newSession() *session.Session {
	return session.New(s.engine,
		session.WithLogger(s.logger),
		session.WithHorizon(s.cfg.Forecast.DefaultHorizon),
	)
}
