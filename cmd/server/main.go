// Command server runs the contract register HTTP API: workbook import with
// preview-before-commit, contract CRUD with filtering and pagination, and a
// JSON-snapshot-backed in-memory repository.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/contractreg/contractreg/internal/config"
	"github.com/contractreg/contractreg/internal/logging"
	"github.com/contractreg/contractreg/internal/repository"
	"github.com/contractreg/contractreg/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting contract register", "config", cfg.String())

	if err := run(cfg); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := repository.NewFileStore(cfg.Storage.SnapshotPath)
	repo, err := repository.New(ctx, store)
	if err != nil {
		return err
	}
	slog.Info("repository restored", "records", repo.Count(), "snapshot", cfg.Storage.SnapshotPath)

	srv := web.NewServer(repo, cfg)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", cfg.Server.Addr())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("shutdown complete")
	return nil
}
