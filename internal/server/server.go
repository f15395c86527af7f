// Package server hosts the governance HTTP surface: the direct API, a
// governed pass-through gateway, metrics, and the live event socket.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/govgate/govgate/internal/config"
	"github.com/govgate/govgate/internal/events"
	"github.com/govgate/govgate/internal/govern"
	"github.com/govgate/govgate/internal/logger"
	"github.com/govgate/govgate/internal/metrics"
)

// Server is the governance gateway.
type Server struct {
	config   *config.Config
	logger   *logger.Logger
	governor *govern.Governor
	router   *mux.Router
	server   *http.Server
	hub      *events.Hub
	limiter  *rateLimiter
	metrics  *metrics.Metrics
}

// New creates a server around one governor instance.
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	governor, err := govern.New(govern.Config{
		DefaultAction: govern.Action(cfg.Governance.DefaultAction),
		PolicyVersion: cfg.Governance.PolicyVersion,
	}, log.WithComponent("govern"))
	if err != nil {
		return nil, fmt.Errorf("failed to create governor: %w", err)
	}

	hub := events.NewHub(events.Config{
		BroadcastDecisions: cfg.Events.BroadcastDecisions,
		BroadcastSystem:    cfg.Events.BroadcastSystem,
	}, log.WithComponent("events").Logger)

	s := &Server{
		config:   cfg,
		logger:   log.WithComponent("server"),
		governor: governor,
		router:   mux.NewRouter(),
		hub:      hub,
		limiter:  newRateLimiter(cfg.RateLimit),
		metrics:  metrics.New(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// Governor exposes the server's governor, mainly for tests and for
// callers embedding the server.
func (s *Server) Governor() *govern.Governor {
	return s.governor
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")

	s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})).Methods("GET")

	if s.config.Events.Enabled {
		s.router.HandleFunc("/ws", s.hub.ServeWS).Methods("GET")
	}

	// Direct governance API.
	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/govern", s.handleGovern).Methods("POST")
	api.HandleFunc("/detect", s.handleDetect).Methods("POST")
	api.HandleFunc("/verify", s.handleVerify).Methods("POST")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/stats/reset", s.handleStatsReset).Methods("POST")

	// Governed pass-through to the upstream target.
	gateway := s.router.PathPrefix("/gateway").Subrouter()
	gateway.Use(s.loggingMiddleware)
	gateway.Use(s.rateLimitMiddleware)
	gateway.Use(s.governanceMiddleware)
	gateway.PathPrefix("/").HandlerFunc(s.handleGatewayProxy)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting governance gateway",
		zap.Int("port", s.config.Server.Port),
		zap.String("default_action", string(s.governor.DefaultAction())),
		zap.String("policy_version", s.governor.PolicyVersion()),
		zap.String("upstream", s.config.Upstream.Target),
	)

	go s.hub.Run()
	s.limiter.startCleanupRoutine()

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping governance gateway")
	return s.server.Shutdown(ctx)
}
