// Copyright (c) 2025 MC Youniverse
//
// This file is part of the attendance service.
//
// attendance is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@mcyouniverse.com for commercial licensing options.

package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/mcyouniverse/attendance/pkg/correlation"
	"github.com/mcyouniverse/attendance/pkg/ratelimit"
)

// Config holds the REST server configuration.
type Config struct {
	// Listen is the address to listen on, e.g. ":8080".
	Listen string

	// AllowedOrigins are the CORS origins the browser client calls from.
	AllowedOrigins []string

	// RateLimitPerMinute caps requests per client IP. Zero disables limiting.
	RateLimitPerMinute float64
	RateLimitBurst     int

	// MetricsEnabled exposes /metrics when set.
	MetricsEnabled bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server is the attendance HTTP server.
type Server struct {
	server  *http.Server
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewServer wires the handler onto a chi router with logging, security
// headers, CORS and rate limiting, and returns a server ready to start.
func NewServer(cfg *Config, handler *Handler, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	limiter := ratelimit.New(&ratelimit.Config{
		Enabled:           cfg.RateLimitPerMinute > 0,
		RequestsPerMinute: cfg.RateLimitPerMinute,
		Burst:             cfg.RateLimitBurst,
	})

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
	})

	r := chi.NewRouter()
	r.Use(correlation.Middleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(SecurityHeaders)
	r.Use(corsMiddleware.Handler)
	r.Use(ratelimit.Middleware(limiter))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/employee", handler.EmployeeLookup)
		r.Post("/registerRequest", handler.RegisterRequest)
		r.Post("/registerResponse", handler.RegisterResponse)
		r.Post("/signinRequest", handler.SigninRequest)
		r.Post("/signinResponse", handler.SigninResponse)
		r.Get("/signout", handler.Signout)
	})
	r.Route("/attendance", func(r chi.Router) {
		r.Get("/daily", handler.Daily)
		r.Get("/history", handler.History)
		r.Get("/report", handler.Report)
	})
	r.Get("/health", handler.Health)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return &Server{
		server: &http.Server{
			Addr:         cfg.Listen,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		limiter: limiter,
		logger:  logger,
	}, nil
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.server.Addr)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.server.Shutdown(ctx)
}

// Router returns the configured HTTP handler.
func (s *Server) Router() http.Handler {
	return s.server.Handler
}
