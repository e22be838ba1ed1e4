package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/family-support/backend/internal/config"
	"github.com/family-support/backend/internal/db"
	"github.com/family-support/backend/internal/dispatch"
	httpapi "github.com/family-support/backend/internal/http"
	"github.com/family-support/backend/internal/notify"
	"github.com/family-support/backend/internal/outreach"
	"github.com/family-support/backend/internal/service"
	"github.com/family-support/backend/internal/store"
	"github.com/family-support/backend/internal/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "family-support-backend").Logger()

	ctx := context.Background()

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer pg.Close()
		st = pg
	} else {
		st = store.NewMemory()
		logger.Info().Msg("using in-memory store")
	}

	if err := st.SeedEmailTemplates(ctx, templates.Seed()); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed email templates")
	}

	var jobStore dispatch.JobStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		jobStore = dispatch.NewRedisStore(rdb)
	} else {
		jobStore = dispatch.NewMemoryStore()
		logger.Info().Msg("using in-memory job store")
	}

	var sender notify.Sender
	if cfg.EmailAPIURL == "" {
		sender = notify.LogSender{Logger: logger}
		logger.Info().Msg("using log notification sender")
	} else {
		sender = notify.HTTPSender{BaseURL: cfg.EmailAPIURL, Token: cfg.EmailAPIToken}
	}

	queue := dispatch.NewQueue(jobStore, logger)
	processor := &dispatch.Processor{
		Dir:        st,
		Sender:     sender,
		FromEmail:  cfg.FromEmail,
		AlertEmail: cfg.AlertEmail,
		Logger:     logger,
	}
	pool := dispatch.NewWorkerPool(jobStore, processor, cfg.WorkerCount, cfg.QueuePollInterval, logger)
	pool.Start(ctx)
	defer pool.Stop()

	supportLink := cfg.FrontendURL + "/support-resources"
	svc := httpapi.Services{
		Intakes:   service.NewIntakeService(st, queue, cfg.AlertEmail, cfg.AlertPhone, logger),
		Signals:   service.NewSignalService(st, queue, cfg.AlertEmail, logger),
		Bookings:  service.NewBookingService(st, queue, logger),
		Referrals: service.NewReferralService(st, queue, logger),
		Outreach:  outreach.NewService(st, sender, supportLink, logger),
		Queue:     queue,
		Store:     st,
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
	pool.Stop()
	logger.Info().Msg("server stopped")
}
