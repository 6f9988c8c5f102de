package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pennywise/internal/amqp"
	"pennywise/internal/cli"
	apphttp "pennywise/internal/http"
	"pennywise/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	store, cleanup := cli.OpenStore(logger, cfg)
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("Storage cleanup error", "error", err)
		}
	}()

	// Single-user mode: make sure the demo account exists before serving.
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash demo password", "error", err)
		os.Exit(1)
	}
	userID, err := store.EnsureUser(context.Background(), cfg.DemoUsername, cfg.DemoEmail, string(hash))
	if err != nil {
		logger.Error("Failed to ensure demo user", "error", err, "username", cfg.DemoUsername)
		os.Exit(1)
	}
	logger.Info("Demo user ready", "username", cfg.DemoUsername, "user_id", userID)

	// Event publishing is optional; an empty URL runs without a broker.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", "error", err, "exchange", cfg.AMQPExchange)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	svc := services.NewExpenseService(store, publisher)

	srv := apphttp.NewServer(":"+cfg.Port, svc, userID)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting pennywise server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	slog.Info("Server stopped gracefully")
}
