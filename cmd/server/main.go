package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hearthledger/hearthledger/internal/api"
	"github.com/hearthledger/hearthledger/internal/auth"
	"github.com/hearthledger/hearthledger/internal/config"
	"github.com/hearthledger/hearthledger/internal/service"
	"github.com/hearthledger/hearthledger/internal/storage/sqlite"
	"github.com/hearthledger/hearthledger/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// No .env is fine; system env and the config file still apply.
	_ = godotenv.Load()

	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.toml"))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level)

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration())
	authenticator := auth.NewPasswordAuthenticator(store)

	server := api.NewServer(
		service.NewAuthService(authenticator, jwtManager, store),
		service.NewObligationService(store),
		service.NewLedgerService(store),
		service.NewHouseholdService(store),
		jwtManager,
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("Shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
