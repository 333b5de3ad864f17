package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/liveconfig/internal/adapter/driven/gemini"
	"github.com/ericfisherdev/liveconfig/internal/adapter/driven/storage"
	"github.com/ericfisherdev/liveconfig/internal/adapter/driving/cli"
	"github.com/ericfisherdev/liveconfig/internal/application"
	"github.com/ericfisherdev/liveconfig/internal/config"
)

func main() {
	root := cli.NewRootCommand(openService)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openService wires the configured store into a ConfigService. Info logs are
// suppressed so command output stays clean.
func openService(ctx context.Context) (*application.ConfigService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if os.Getenv("LIVECONFIG_DEBUG") != "" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := backend.Close(); err != nil {
			logger.Error("error closing storage", "error", err)
		}
	}

	svc, err := application.NewConfigService(ctx, backend.Store, logger,
		application.WithKeyVerifier(gemini.NewVerifier(cfg.GeminiBaseURL, cfg.GeminiTimeout)),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}
