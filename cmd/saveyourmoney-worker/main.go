package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"saveyourmoney/internal/amqp"
	"saveyourmoney/internal/config"
	"saveyourmoney/internal/sheets"
	gsheet "saveyourmoney/internal/sheets/google"
	mem "saveyourmoney/internal/sheets/memory"
	"saveyourmoney/internal/storage"
	"saveyourmoney/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting saveyourmoney-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	// Mirror destination: Google Sheets when configured, otherwise an
	// in-memory sink so the queue still drains during local development.
	var sheet sheets.EntryAppender
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		sheet = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		sheet = mem.New()
		logger.Info("Google Sheets disabled - mirroring to memory")
	}

	mirror := worker.NewMirrorWorker(store, sheet)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	// Reconnect loop: a dropped broker connection is retried until the
	// context is cancelled.
	for {
		err := runOnce(ctx, cfg, mirror)
		if err == nil || errors.Is(err, context.Canceled) {
			break
		}
		logger.Error("Worker run failed, retrying", "error", err, "retry_in", cfg.WorkerRetryInterval)

		select {
		case <-ctx.Done():
			logger.Info("Worker stopped")
			return
		case <-time.After(cfg.WorkerRetryInterval):
		}
	}

	logger.Info("Worker stopped gracefully")
}

func runOnce(ctx context.Context, cfg *config.Config, mirror *worker.MirrorWorker) error {
	events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer events.Close()

	if err := events.SetPrefetch(cfg.WorkerPrefetch); err != nil {
		return err
	}

	return mirror.Run(ctx, events)
}
