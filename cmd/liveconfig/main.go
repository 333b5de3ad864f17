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

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/liveconfig/internal/adapter/driven/gemini"
	"github.com/ericfisherdev/liveconfig/internal/adapter/driven/storage"
	httphandler "github.com/ericfisherdev/liveconfig/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/liveconfig/internal/adapter/driving/web"
	"github.com/ericfisherdev/liveconfig/internal/application"
	"github.com/ericfisherdev/liveconfig/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"storage_backend", cfg.StorageBackend,
		"encryption", cfg.HasSecretKey(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the document store (SQLite is migrated on open).
	backend, err := storage.Open(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			slog.Error("error closing storage", "error", closeErr)
		}
	}()

	// 4. Load the document into the service. Mutations re-read storage first
	// because liveconfigctl may write to the same store.
	verifier := gemini.NewVerifier(cfg.GeminiBaseURL, cfg.GeminiTimeout)
	svc, err := application.NewConfigService(ctx, backend.Store, slog.Default(),
		application.WithKeyVerifier(verifier),
		application.WithReloadBeforeWrite(),
	)
	if err != nil {
		return err
	}

	// 5. Pick up hand edits of the jsonfile backend.
	if backend.File != nil && cfg.StorageWatch {
		go func() {
			err := backend.File.Watch(ctx, slog.Default(), func() {
				if err := svc.Reload(ctx); err != nil {
					slog.Error("failed to reload config document", "error", err)
				}
			})
			if err != nil {
				slog.Error("storage watcher stopped", "error", err)
			}
		}()
	}

	// 6. Register API and GUI routes.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(svc, slog.Default()))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(svc, slog.Default()))

	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("liveconfig started", "listen_addr", cfg.ListenAddr)

	// 7. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
