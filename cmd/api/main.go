// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/feedback-simulator/internal/config"
	"github.com/capitalize-ai/feedback-simulator/internal/handler"
	natsclient "github.com/capitalize-ai/feedback-simulator/internal/nats"
	"github.com/capitalize-ai/feedback-simulator/internal/service"
	"github.com/capitalize-ai/feedback-simulator/internal/simulator"
	"github.com/capitalize-ai/feedback-simulator/pkg/logger"
	"github.com/capitalize-ai/feedback-simulator/pkg/tracing"
)

const serviceName = "feedback-simulator"

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.NewFromEnv(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, serviceName, cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect the response tap if configured
	var (
		publisher service.ResponsePublisher = service.NopPublisher{}
		readiness handler.ConnectionChecker
	)
	if cfg.TapEnabled() {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		natsClient, err := natsclient.Connect(connectCtx, natsclient.Config{
			URL:      cfg.NATSURL,
			Name:     serviceName,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log.Named("nats"))
		cancel()
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer natsClient.Close()

		publisher = natsclient.NewResponseTap(natsClient.Conn(), cfg.NATSSubjectPrefix)
		readiness = natsClient
		log.Info("response tap enabled", zap.String("subject_prefix", cfg.NATSSubjectPrefix))
	}

	// Initialize simulator and services
	sim := simulator.New(
		simulator.WithInjector(simulator.NewCoinFlip(cfg.SimulatorSeed)),
		simulator.WithLogger(log.Named("simulator")),
	)
	chatSvc := service.NewChatService(sim, publisher, log.Named("chat"))

	// Create router
	router := handler.NewRouter(handler.RouterConfig{
		Chat:              handler.NewChatHandler(chatSvc, log),
		Health:            handler.NewHealthHandler(readiness),
		Logger:            log,
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
