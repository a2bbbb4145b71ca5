package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faceverify/faceverify/internal/api"
	"github.com/faceverify/faceverify/internal/config"
	"github.com/faceverify/faceverify/internal/face"
	"github.com/faceverify/faceverify/internal/provider"
	"github.com/faceverify/faceverify/internal/service"
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
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting face verification API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("provider", cfg.ProviderType),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A provider that fails to start leaves the API up: /health reports
	// model_loaded=false and /verify_faces answers 503.
	initCtx, cancelInit := context.WithTimeout(ctx, 30*time.Second)
	embeddingProvider, err := face.NewEmbeddingProvider(initCtx, cfg)
	cancelInit()
	if err != nil {
		logger.Error("face model not loaded", slog.Any("error", err))
		embeddingProvider = nil
	} else {
		logger.Info("face model loaded", slog.String("model", embeddingProvider.Name()))
		defer closeProvider(logger, embeddingProvider)
	}

	verifier := service.NewVerificationService(embeddingProvider).WithThreshold(cfg.SamePersonThreshold)

	router := api.NewRouter(logger, &api.Dependencies{
		Service:      verifier,
		RateLimitMax: cfg.RateLimitMax,
	})
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")
	return nil
}

func closeProvider(logger *slog.Logger, p provider.EmbeddingProvider) {
	closer, ok := p.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Error("close face model", slog.Any("error", err))
	}
}
