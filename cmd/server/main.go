package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/romangod6/niente/config"
	"github.com/romangod6/niente/internal/api"
	"github.com/romangod6/niente/internal/auth"
	"github.com/romangod6/niente/internal/service"
	"github.com/romangod6/niente/internal/storage"
	"github.com/romangod6/niente/internal/utils"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run owns every resource it opens, so deferred closes happen before main exits.
func run() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := utils.NewLogger(utils.LoggerOptions{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()
	slog.SetDefault(logger.Logger)

	authCfg := auth.Config{
		Secret:   cfg.Auth.Secret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      cfg.Auth.TokenTTL,
	}

	if cfg.Auth.IssueTokenFor != "" {
		token, err := auth.NewIssuer(authCfg).Issue(cfg.Auth.IssueTokenFor, "")
		if err != nil {
			logger.Error("failed to issue token", slog.String("error", err.Error()))
			return err
		}
		fmt.Println(token)
		return nil
	}

	if cfg.Auth.Secret == "" {
		logger.Warn("auth secret not set, guarded article routes will deny all requests")
	}

	// Initialize storage
	store, err := openStore(cfg.Database, logger.Logger)
	if err != nil {
		logger.Error("failed to initialize storage", slog.String("error", err.Error()))
		return err
	}
	defer store.Close()

	// Initialize database tables
	if err := store.Initialize(context.Background()); err != nil {
		logger.Error("failed to initialize database tables", slog.String("error", err.Error()))
		return err
	}

	articles := service.NewArticleService(store, logger.Logger)
	server := api.NewServer(cfg, store, articles, auth.NewVerifier(authCfg), logger.Logger)

	// Start the API server
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting API server", slog.Int("port", cfg.Server.Port))
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown
	return waitForShutdown(server, serveErr, logger.Logger)
}

func openStore(cfg config.DatabaseConfig, logger *slog.Logger) (storage.Store, error) {
	opts := storage.Options{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		LogLevel:        cfg.LogLevel,
		Logger:          logger,
	}

	switch cfg.Driver {
	case "postgres":
		return storage.NewPostgresStore(cfg.URL, opts)
	case "sqlite":
		return storage.NewSQLiteStore(cfg.URL, opts)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func waitForShutdown(server *api.Server, serveErr <-chan error, logger *slog.Logger) error {
	// Handle system signals for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
	case err, ok := <-serveErr:
		if ok {
			logger.Error("API server failed", slog.String("error", err.Error()))
			return err
		}
	}
	logger.Info("shutting down...")

	// Graceful server shutdown
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("error shutting down server", slog.String("error", err.Error()))
		return err
	}
	logger.Info("server shut down gracefully")
	return nil
}
