package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blackmichael/solana-twitter/internal/config"
	"github.com/blackmichael/solana-twitter/internal/domain"
	"github.com/blackmichael/solana-twitter/internal/httpserver"
	"github.com/blackmichael/solana-twitter/internal/metrics"
	"github.com/blackmichael/solana-twitter/internal/sqlite"
	"github.com/blackmichael/solana-twitter/internal/stream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// Set up repository (implements SlotAllocator, AccountReader and Ledger)
	repo, err := sqlite.NewRepository(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("create repository: %w", err)
	}
	defer repo.Close()
	logger.Info("opened database", "path", cfg.DatabasePath)

	m := metrics.New()
	hub := stream.NewHub(m, logger)

	tweetService := domain.NewTweetService(
		cfg.ServiceConfig(),
		repo,
		domain.Ed25519Verifier{},
		domain.SystemClock,
		hub,
		m,
		logger,
	)

	// Set up graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	server := httpserver.NewServer(cfg, tweetService, hub, m.Handler(), logger)
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Info("server started",
		"port", cfg.Port,
		"program_id", cfg.ProgramID,
		"tweet_rent", tweetService.TweetRent(),
	)

	var serveErr error
	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig)
	case serveErr = <-errCh:
		logger.Error("http server exited with error", "error", serveErr)
	}

	// Hijacked websocket connections are not tracked by Shutdown.
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("error shutting down http server", "error", err)
	}

	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	return nil
}
