package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aescanero/tripplanner/internal/application/workers"
	"github.com/aescanero/tripplanner/pkg/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Planner builds trip plans
type Planner interface {
	Plan(ctx context.Context, req domain.Request) (*domain.CompositeResult, error)
}

// HealthReporter reports worker pool health
type HealthReporter interface {
	GetStatus() *workers.HealthStatus
}

// RequestRecorder records served HTTP requests
type RequestRecorder interface {
	RecordHTTPRequest(method, route, status string, duration time.Duration)
}

// Server represents the HTTP API server
type Server struct {
	router  *gin.Engine
	server  *http.Server
	planner Planner
	health  HealthReporter
	missing []string
	logger  *zap.Logger
}

// Config holds HTTP server configuration
type Config struct {
	Port    int
	Planner Planner
	Health  HealthReporter
	Metrics RequestRecorder

	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer

	// MissingCredentials lists unset API keys; plan requests are refused
	// while it is non-empty.
	MissingCredentials []string

	Logger *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(requestLogger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(requestMetrics(cfg.Metrics))
	}
	router.Use(corsMiddleware())

	s := &Server{
		router:  router,
		planner: cfg.Planner,
		health:  cfg.Health,
		missing: cfg.MissingCredentials,
		logger:  cfg.Logger,
	}

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s.setupRoutes(gatherer)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	// Health checks
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/healthz", s.handleLiveness)

	// Metrics
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/plans", s.handleCreatePlan)
		v1.GET("/plans/example", s.handleExample)
	}
}

// SetupWebSocket adds the plan progress stream to the server
func (s *Server) SetupWebSocket(handler interface{ HandlePlanStream(*gin.Context) }) {
	s.router.GET("/api/v1/plans/ws", handler.HandlePlanStream)
}

// Handler returns the server's HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}
