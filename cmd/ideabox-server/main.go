package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/existflow/ideabox/internal/config"
	"github.com/existflow/ideabox/internal/db"
	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		FilePath:   cfg.LogFile,
		MaxSize:    10 * 1024 * 1024, // 10MB
		MaxAge:     7,
		MaxBackups: 5,
		Console:    cfg.LogConsole,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	srv := server.New(cfg, store)
	defer func() {
		if err := srv.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
	}()

	log.Printf("ideabox server starting on :%s (%s, %s)", cfg.Port, cfg.Environment, cfg.Database.Driver)
	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		logger.Error("Server failed", logger.F("error", err))
		log.Printf("Server failed: %v", err)
		return
	}
	logger.Info("Server stopped")
}
