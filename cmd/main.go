/**
 * @description
 * This is the main entry point for the membership-service.
 * It initializes and wires together all the components of the application,
 * including configuration, database connection, repository, services, event
 * producer, the cron scheduler, and the HTTP router. Finally, it starts the
 * HTTP server to listen for incoming requests.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitcore/membership-service/internal/api"
	"github.com/fitcore/membership-service/internal/app"
	"github.com/fitcore/membership-service/internal/config"
	"github.com/fitcore/membership-service/internal/store"
	"github.com/fitcore/membership-service/pkg/rabbitmq"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load application configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up channel to listen for OS signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Establish connection to the PostgreSQL database with connection pool configuration
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}

	poolCfg.MaxConns = 50
	poolCfg.MinConns = 5
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Use simple protocol so the service works behind PgBouncer transaction
	// pooling without statement cache errors (SQLSTATE 42P05)
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	// Ensure required tables exist (idempotent)
	if err := store.EnsureSchema(ctx, dbpool); err != nil {
		logger.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	// Connect the event producer; without a broker URL the service runs with
	// a no-op publisher and keeps serving requests.
	var producer rabbitmq.Publisher
	if cfg.AMQPURL != "" {
		p, err := rabbitmq.NewEventProducer(cfg.AMQPURL, app.EventsExchange)
		if err != nil {
			logger.Error("unable to connect to RabbitMQ, events will be dropped", "error", err)
			producer = &rabbitmq.NoopProducer{}
		} else {
			producer = p
			logger.Info("rabbitmq producer connected", "exchange", app.EventsExchange)
		}
	} else {
		logger.Warn("AMQP_URL not set, events will be dropped")
		producer = &rabbitmq.NoopProducer{}
	}
	defer producer.Close()

	// Initialize application layers
	repository := store.NewPostgresRepository(dbpool)
	service := app.NewService(repository, producer, logger)
	finance := app.NewFinance(repository)
	handler := api.NewHandler(service, finance, cfg.ExpiryHorizonDays)
	router := api.NewRouter(handler, cfg.JWTSecret)

	// Start the scheduled expiry scan
	jobs := app.NewJobs(repository, producer, logger, cfg.ExpiryHorizonDays)
	scheduler := app.NewScheduler(jobs, logger, cfg.ExpiryScanSchedule)
	scheduler.Start()

	// Configure and start the HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for an OS signal
	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Let in-flight cron jobs finish before the server stops
	<-scheduler.Stop().Done()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
