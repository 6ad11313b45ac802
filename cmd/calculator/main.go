package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppfellow/enhanced-calculator/internal/config"
	"github.com/deppfellow/enhanced-calculator/internal/handler"
	"github.com/deppfellow/enhanced-calculator/internal/logger"
	"github.com/deppfellow/enhanced-calculator/internal/router"
	"github.com/deppfellow/enhanced-calculator/internal/server"
	"github.com/deppfellow/enhanced-calculator/internal/service"
)

const DefaultContextTimeout = 10

func main() {
	bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		bootstrap.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService := logger.NewLoggerService(cfg.Observability)

	log, closeLogs, err := logger.NewLoggerWithService(cfg.Observability, os.Stdout, loggerService)
	if err != nil {
		loggerService.Shutdown()
		bootstrap.Fatal().Err(err).Msg("failed to initialize logger")
	}
	defer func() {
		if err := closeLogs(); err != nil {
			bootstrap.Error().Err(err).Msg("failed to close log files")
		}
	}()

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	services, err := service.NewService()
	if err != nil {
		log.Fatal().Err(err).Msg("could not create services")
	}

	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("failed to start server")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
