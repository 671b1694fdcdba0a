package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"dashsync/config"
	"dashsync/internal/dashboard"
	"dashsync/logger"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	// Graceful context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// run sync engine
	if err := dashboard.Run(ctx, cfg, log); err != nil {
		log.Fatal("dashboard sync failed", zap.Error(err))
	}

	log.Info("dashsync stopped")
}
