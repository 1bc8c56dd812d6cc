package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"kharcha/internal/cli"
	"kharcha/internal/log"
	"kharcha/internal/mail/gmail"
	"kharcha/internal/services"
	"kharcha/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting kharcha-worker",
		log.FieldWindowDays, cfg.SyncWindowDays,
		"interval", cfg.SyncInterval.String())

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient := cli.InitAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	gmailSvc := gmail.NewService(repo, cfg.BaseURL)
	syncer := services.NewSyncService(repo, gmailSvc, amqpClient, int64(cfg.GmailPageSize))

	// Typed-nil guard: a nil *amqp.Client must stay a nil interface.
	var events worker.EventConsumer
	if amqpClient != nil {
		events = amqpClient
	}

	w := worker.New(events, syncer, cfg.SyncWindowDays, cfg.SyncInterval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	expenses, syncs := w.Counters()
	logger.Info("Worker shutdown complete", "expense_events", expenses, "sync_events", syncs)
}
