package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/tripplanner/pkg/api/grpc"
	"github.com/aescanero/tripplanner/pkg/api/http"
	"github.com/aescanero/tripplanner/pkg/api/websocket"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP, WebSocket and gRPC health servers",
	Long: `Run the planner API.

Endpoints:
  POST /api/v1/plans          build a plan (JSON or form body)
  GET  /api/v1/plans/example  example request
  GET  /api/v1/plans/ws       build a plan and stream its progress
  GET  /health, /healthz      health and liveness
  GET  /metrics               Prometheus metrics

Without LLM_API_KEY or UNSPLASH_ACCESS_KEY the server still starts, reports
itself degraded and refuses plan requests.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting trip planner",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("events_backend", cfg.Events.Backend))

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	health := a.pool.Health()

	httpCfg := &http.Config{
		Port:               cfg.HTTPPort,
		Health:             health,
		Metrics:            a.metrics,
		MissingCredentials: cfg.MissingCredentials(),
		Logger:             logger,
	}
	if a.manager != nil {
		httpCfg.Planner = a.manager
	}
	httpServer := http.NewServer(httpCfg)

	if a.manager != nil {
		httpServer.SetupWebSocket(websocket.NewHandler(a.manager, a.eventBus, logger))
	}

	grpcServer, err := grpc.NewServer(&grpc.Config{
		Port:          cfg.GRPCPort,
		Health:        health,
		CheckInterval: cfg.Workers.HealthCheckInterval,
		Logger:        logger,
	})
	if err != nil {
		a.shutdown(context.Background())
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()
	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server failed: %w", err)
		}
	}()

	logger.Info("trip planner started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.Int("worker_pool_size", cfg.Workers.PoolSize))

	// Wait for interrupt signal or a server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		logger.Error("server stopped unexpectedly", zap.Error(runErr))
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := grpcServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("gRPC server shutdown error", zap.Error(err))
	}

	a.shutdown(shutdownCtx)

	logger.Info("trip planner shut down complete")
	return runErr
}
