package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/legal_queries/backend/internal/config"
	httpapi "github.com/legal_queries/backend/internal/http"
	"github.com/legal_queries/backend/internal/notify"
	"github.com/legal_queries/backend/internal/roster"
	"github.com/legal_queries/backend/internal/service"
	"github.com/legal_queries/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "legal-queries-backend").Logger()

	lawyers, err := roster.Load(cfg.RosterPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.RosterPath).Msg("failed to load roster")
	}
	logger.Info().Int("lawyers", len(lawyers)).Msg("roster loaded")

	var sender notify.Sender
	if cfg.NotifyAPIURL == "" {
		sender = &notify.MockSender{}
		logger.Info().Msg("using mock email sender")
	} else {
		sender = notify.HTTPSender{BaseURL: cfg.NotifyAPIURL, APIKey: cfg.NotifyAPIKey}
	}

	svc := &service.AssignmentService{
		Store: store.New(lawyers),
		Notifier: &notify.Dispatcher{
			Sender:        sender,
			From:          cfg.NotifyFrom,
			Confirmations: cfg.Confirmations(),
			MaxRetries:    cfg.NotifyMaxRetries,
			RetryDelay:    cfg.NotifyRetryDelay,
			Logger:        logger,
		},
		AutoNotifyUrgent: cfg.AutoNotifyUrgent,
		Logger:           logger,
	}

	router := httpapi.Router(cfg, svc, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
