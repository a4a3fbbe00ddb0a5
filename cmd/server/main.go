package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/config"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/infra"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/repository"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/router"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty, every protected route will reject requests")
	}
	if cfg.MomoSecretKey == "" {
		log.Warn().Msg("MOMO_SECRET_KEY is empty, payment callbacks will be rejected")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paymentCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("momo"))
	momo := infra.NewMomoClient(cfg, paymentCB)
	svcs := router.NewServices(cfg, db, rdb, momo)
	accounts := repository.NewAccountRepository(db)

	// Notifications are mirrored by mail only when SMTP is configured.
	var mailer worker.Mailer
	if cfg.SMTPHost != "" {
		mailer = infra.NewMailer(cfg)
	}
	workerHandlers := &worker.WorkerHandlers{
		Notification: worker.NewNotificationWorker(repository.NewNotificationRepository(db), accounts, mailer),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)

	worker.StartScheduler(ctx, worker.SchedulerConfig{
		Inventory:  svcs.Ledger,
		Promotions: svcs.Promotions,
		Accounts:   accounts,
		Notifier:   worker.NewDispatcher(rdb),
		Interval:   cfg.LowStockCheckInterval,
	})

	r := router.New(cfg, db, rdb, svcs, momo, paymentCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("back-office API listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
