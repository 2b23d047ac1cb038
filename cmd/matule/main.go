package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/matule/internal/app"
	"github.com/fjod/matule/internal/config"
	"github.com/fjod/matule/internal/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := config.LoadDotEnv(config.EnvFile()); err != nil {
		logrus.Fatalf("Failed to read env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Logs go to stderr so they do not interleave with shell output.
	log, err := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("Failed to create logger: %v", err)
	}
	shutdownTracing := logger.SetupTracing()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	a.Start(ctx)

	route, err := a.Sessions.LastRoute(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to read last route")
	}
	log.WithFields(logrus.Fields{"mode": a.Mode.Label(), "route": route}).Info("Matule shell ready")

	shell := NewShell(a, os.Stdout)
	if err := shell.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.WithError(err).Error("Shell stopped")
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout+time.Second)
	defer cancel()
	if err := a.Close(closeCtx); err != nil {
		log.WithError(err).Warn("Failed to close store")
	}
	if err := shutdownTracing(closeCtx); err != nil {
		log.WithError(err).Warn("tracer shutdown failed")
	}
}
