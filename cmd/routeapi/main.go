package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/lucasjlepore/igc-route/config"
	"github.com/lucasjlepore/igc-route/httpapi"
	"github.com/lucasjlepore/igc-route/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogDir)
	logger.Info("route api starting",
		"addr", cfg.ListenAddr(),
		"default_level", cfg.DefaultLevel.String(),
		"max_upload_bytes", cfg.MaxUploadBytes,
		"auth", cfg.BearerToken != "",
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := httpapi.New(cfg, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Errorf("server error: %v", err)
		log.Fatalf("server error: %v", err)
	}
}
