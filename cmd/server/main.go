package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mandi-backend/internal/bill"
	"mandi-backend/internal/config"
	"mandi-backend/internal/database"
	"mandi-backend/internal/financial"
	"mandi-backend/internal/logging"
	"mandi-backend/internal/server"
	"mandi-backend/internal/store"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.AppEnv, cfg.LogLevel)

	db, err := database.Open(cfg.DatabaseDSN, log)
	if err != nil {
		logging.LogError(log, "main", "database.Open", nil, err)
		os.Exit(1)
	}

	opts := server.Options{
		JWTSecret:      cfg.JWTSecret,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Financial: financial.Settings{
			InventoryValuePerKg: cfg.InventoryValuePerKg,
			GSTRate:             cfg.GSTRate,
		},
	}
	if cfg.MinIO.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		blobs, err := bill.NewMinIOStore(ctx, cfg.MinIO)
		cancel()
		if err != nil {
			logging.LogError(log, "main", "bill.NewMinIOStore", cfg.MinIO.Endpoint, err)
			os.Exit(1)
		}
		opts.Blobs = blobs
	}

	app := server.New(store.New(db), log, opts).Fiber()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.WithField("port", cfg.HTTPPort).Info("server listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
