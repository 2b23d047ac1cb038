package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/matule/internal/catalog"
	"github.com/fjod/matule/internal/config"
	"github.com/fjod/matule/internal/logger"
	"github.com/fjod/matule/internal/mockapi"
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

	log, err := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("Failed to create logger: %v", err)
	}

	shutdownTracing := logger.SetupTracing()

	products, err := catalog.Bundled()
	if err != nil {
		log.Fatalf("Failed to load bundled products: %v", err)
	}

	server := mockapi.New(mockapi.Config{
		JWTSecret:      []byte(cfg.JWTSecret),
		RequestTimeout: cfg.RequestTimeout,
	}, products, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Mock API starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.WithError(err).Warn("tracer shutdown failed")
	}

	log.Info("server exited")
}
