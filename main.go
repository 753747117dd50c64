package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"mifoto-print/app"
	"mifoto-print/config"
	"mifoto-print/db"
	"mifoto-print/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if _, err := logger.Init(cfg.LoggerMode()); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	handler, err := app.Initialize(ctx, cfg)
	cancel()
	if err != nil {
		logger.L().Fatalf("❌ Failed to initialize application: %v", err)
	}
	defer db.CloseDB()

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker)
	addr := "0.0.0.0:" + cfg.Port
	logger.L().Infof("🚀 Server starting on %s", addr)
	logger.L().Infof("Sizes endpoint: GET http://localhost:%s/sizes", cfg.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		logger.L().Fatalf("❌ Server failed to start: %v", err)
	}
}
