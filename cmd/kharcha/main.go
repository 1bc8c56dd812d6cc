package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"kharcha/internal/cli"
	apphttp "kharcha/internal/http"
	"kharcha/internal/log"
	"kharcha/internal/mail/gmail"
	"kharcha/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	amqpClient := cli.InitAMQP(logger, cfg)

	gmailSvc := gmail.NewService(repo, cfg.BaseURL)
	expenses := services.NewExpenseService(repo, amqpClient)
	syncer := services.NewSyncService(repo, gmailSvc, amqpClient, int64(cfg.GmailPageSize))

	srv := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		SyncWindowDays: cfg.SyncWindowDays,
		OAuthStateTTL:  cfg.OAuthStateTTL,
	}, expenses, syncer, repo, gmailSvc)

	// Server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := expenses.Close(); err != nil {
			logger.Error("Cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting kharcha server",
		"port", cfg.Port,
		log.FieldWindowDays, cfg.SyncWindowDays,
		"gmail", gmailSvc.Status(context.Background()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
