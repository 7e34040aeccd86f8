package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/probolabs/probo-sync/internal/client"
	"github.com/probolabs/probo-sync/internal/config"
	"github.com/probolabs/probo-sync/internal/database"
	"github.com/probolabs/probo-sync/internal/recorder"
	"github.com/probolabs/probo-sync/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/trader.local.yaml", "path to config file")
	flag.Parse()

	// .env is optional; real deployments inject env vars directly
	_ = godotenv.Load()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting trader",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"api_url", cfg.Engine.APIURL,
		"ws_url", cfg.Engine.WSURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Optional market-data recorder
	opts := []client.Option{client.WithLogger(logger)}
	var rec *recorder.Recorder

	if cfg.Database.Enabled() {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)

		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		rec = recorder.New(cfg.Recorder, pool, logger)
		if err := rec.Start(ctx); err != nil {
			logger.Error("failed to start recorder", "error", err)
			os.Exit(1)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			rec.Stop(stopCtx)
		}()

		opts = append(opts, client.WithObserver(rec))
	} else {
		logger.Info("database disabled, recording off")
	}

	// Create and start the trading client
	trader := client.New(*cfg, opts...)
	if err := trader.Start(ctx); err != nil {
		logger.Error("failed to start trader", "error", err)
		os.Exit(1)
	}
	defer trader.Close()

	logger.Info("trader running",
		"client_id", trader.ClientID(),
		"debug_url", fmt.Sprintf("http://localhost:%d/health", cfg.Debug.Port),
	)

	// Debug/metrics HTTP surface
	debugServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Debug.Port),
		Handler: newDebugHandler(cfg.Debug, trader, logger),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting debug server", "port", cfg.Debug.Port)
		if err := debugServer.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("debug server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return debugServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("shutdown with error", "error", err)
	}

	logger.Info("trader stopped")
}
