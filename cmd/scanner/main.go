package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"facescanner/internal/app"
	"facescanner/internal/config"
	"facescanner/internal/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Face Scanner failed: %v", err)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	lg := logger.NewLogger(cfg)
	defer lg.Close()

	// Ctrl+C ends the loop like the quit key does.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(cfg, lg)
	if err != nil {
		lg.Error("Failed to start: %v", err)
		return fmt.Errorf("startup: %w", err)
	}
	defer application.Close()

	return application.Run(ctx)
}
