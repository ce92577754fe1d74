// Package main - Entry point for the booking-cost HTTP server
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"booking-cost/adapters/storage"
	"booking-cost/api"
	"booking-cost/internal/config"
	"booking-cost/internal/logging"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "Path to config file")
	addr := flag.String("addr", "", "Server address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	listen := cfg.Server.Addr
	if *addr != "" {
		listen = *addr
	}

	service, err := storage.Open(storage.Backend(cfg.Availability.Storage), map[string]string{
		"path": cfg.Availability.StoragePath,
	})
	if err != nil {
		logging.Error("failed to open exception store", zap.Error(err))
		os.Exit(1)
	}

	server := api.NewServer(api.Options{
		Version:         version,
		DefaultCurrency: cfg.Pricing.DefaultCurrency,
		MaxRangeDays:    cfg.Availability.MaxRangeDays,
		ReadTimeout:     time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		Service:         service,
		Logger:          logging.Named("api"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("booking-cost server starting",
		zap.String("version", version),
		zap.String("addr", listen))

	serveErr := server.ListenAndServe(ctx, listen)
	if closer, ok := service.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logging.Warn("failed to close exception store", zap.Error(err))
		}
	}
	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		logging.Error("server stopped", zap.Error(serveErr))
		os.Exit(1)
	}
	logging.Info("server stopped")
}
