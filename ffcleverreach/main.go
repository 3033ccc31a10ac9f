package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/natserract/ffcleverreach/pkg/config"
	"github.com/natserract/ffcleverreach/pkg/feeds"
	"github.com/natserract/ffcleverreach/pkg/integration"
	"github.com/natserract/ffcleverreach/pkg/logsink"
	"github.com/natserract/ffcleverreach/pkg/postgres"
	"github.com/natserract/ffcleverreach/pkg/server"
	"github.com/natserract/ffcleverreach/pkg/settings"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Postgres is only opened when a backend needs it
	var db *postgres.DB
	if cfg.SettingsBackend == config.BackendPostgres || cfg.SubmissionLogBackend == config.BackendPostgres {
		db, err = postgres.New(postgres.NewConfig(), logger)
		if err != nil {
			logger.Error("Failed to connect to database", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.InitSchema(ctx); err != nil {
			logger.Error("Failed to initialize schema", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("Database connection established")
	}

	var querier settings.Querier
	if db != nil {
		querier = db
	}
	options, closeOptions, err := settings.OpenStore(ctx, cfg, querier, logger)
	if err != nil {
		logger.Error("Failed to initialize settings store", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to initialize settings store: %v\n", err)
		os.Exit(1)
	}
	defer closeOptions()

	var sink logsink.Sink = logsink.NewZapSink(logger)
	if cfg.SubmissionLogBackend == config.BackendPostgres {
		sink = logsink.Multi{sink, logsink.NewPostgresSink(db, logger)}
	}

	repo := settings.NewRepository(options, logger)
	in := integration.New(cfg, repo, integration.NewClientFactory(cfg, repo, logger), sink, logger)
	srv := server.New(in, feeds.NewStore(options, logger), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.HTTPAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server stopped", zap.Error(err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}
}
