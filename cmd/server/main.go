package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"notes-api/internal/auth"
	"notes-api/internal/config"
	"notes-api/internal/database"
	"notes-api/internal/logging"
	"notes-api/internal/markdown"
	"notes-api/internal/render"
	"notes-api/internal/routes"
)

func main() {
	configPath := flag.String("config", os.Getenv("NOTES_CONFIG"), "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	auth.Configure(cfg.Auth)

	// Init database
	if err := database.InitDB(cfg.Database.Path, cfg.Database.LogLevel,
		cfg.Auth.BootstrapUsername, cfg.Auth.BootstrapPassword, logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderer := render.New(markdown.New(), render.Options{
		TTL:                 cfg.Render.TTL,
		MaxSize:             cfg.Render.MaxSize,
		LargeInputThreshold: cfg.Render.LargeInputThreshold,
		SweepInterval:       cfg.Render.SweepInterval,
		LargeWorkers:        cfg.Render.LargeWorkers,
		Logger:              logger.Named("render"),
	})
	renderer.Start(ctx)
	defer renderer.Stop()

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: routes.SetupRoutes(renderer, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
