// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"line-reservation-bot/internal/config"
	"line-reservation-bot/internal/domain/intake"
	"line-reservation-bot/internal/domain/ports/adapter"
	"line-reservation-bot/internal/domain/ports/repository"
	"line-reservation-bot/internal/infra/adapters/line"
	tele "line-reservation-bot/internal/infra/adapters/telegram"
	pg "line-reservation-bot/internal/infra/db/postgres"
	"line-reservation-bot/internal/infra/logging"
	"line-reservation-bot/internal/infra/memory"
	"line-reservation-bot/internal/infra/metrics"
	red "line-reservation-bot/internal/infra/redis"
	"line-reservation-bot/internal/infra/sched"
	"line-reservation-bot/internal/infra/web"
	"line-reservation-bot/internal/infra/worker"
	"line-reservation-bot/internal/usecase"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs, replies are logged instead of sent")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("config")
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit, cfg.App.Locale)

	// ---- Prompt catalog ----
	catalog, err := intake.LoadCatalog(cfg.App.Locale)
	if err != nil {
		logger.Fatal().Err(err).Msg("catalog")
	}
	machine := intake.NewMachine(catalog)

	// ---- Conversation state: Redis when configured, else in-process ----
	var (
		store       repository.ConversationStore
		locker      repository.Locker
		memStore    *memory.StateRepo
		intakeOpts  []usecase.IntakeOption
		redisClient *red.Client
	)
	if cfg.Redis.URL != "" {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		store = red.NewStateRepo(redisClient, cfg.Conversation.TTL, logger)
		locker = red.NewLocker(redisClient, cfg.Conversation.LockTimeout, logger)
		intakeOpts = append(intakeOpts, usecase.WithRateLimit(red.NewRateLimiter(redisClient), cfg.Conversation.RateLimit, red.IntakeRateKey))
		logger.Info().Msg("conversation state: redis")
	} else {
		memStore = memory.NewStateRepo(cfg.Conversation.TTL)
		store = memStore
		locker = memory.NewKeyedLocker()
		logger.Info().Msg("conversation state: memory")
	}

	// ---- Reservations: Postgres when configured, else in-process ----
	var (
		reservations repository.ReservationRepository
		poolStats    sched.PoolStats
	)
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		if err := pg.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("postgres schema")
		}
		reservations = pg.NewReservationRepo(pool)
		poolStats = func() (int32, int32, int32) {
			s := pool.Stat()
			return s.TotalConns(), s.IdleConns(), s.AcquiredConns()
		}
	} else {
		logger.Warn().Msg("database.url not set; reservations are kept in memory only")
		reservations = memory.NewReservationRepo()
	}

	// ---- Telegram: staff notifications and optional second channel ----
	var (
		notifier adapter.StaffNotifier = tele.NewLogNotifier(logger)
		bot      *tele.Bot
	)
	if cfg.Telegram.Token != "" {
		bot, err = tele.NewBot(cfg.Telegram.Token, cfg.Telegram.AdminIDs, catalog, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		notifier = bot
	}
	intakeOpts = append(intakeOpts, usecase.WithStaffNotifier(notifier), usecase.WithDevLogging(cfg.Runtime.Dev))

	// ---- Use cases ----
	intakeUC := usecase.NewIntakeUseCase(machine, store, locker, reservations, logger, intakeOpts...)
	reservationUC := usecase.NewReservationUseCase(reservations, logger)

	// ---- Per-user worker pool ----
	workers := worker.NewPool(cfg.Conversation.Workers, cfg.Conversation.QueueSize, logger)
	workers.Start(context.Background())

	// ---- LINE ----
	var messenger adapter.Messenger
	if cfg.Line.AccessToken != "" {
		messenger, err = line.NewClient(cfg.Line.APIBase, cfg.Line.AccessToken, cfg.Line.Timeout, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("line client")
		}
	} else {
		messenger = line.NewNoopMessenger(logger)
	}

	// ---- HTTP ----
	srv := web.NewServer(cfg, intakeUC, reservationUC, messenger, workers, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	if bot != nil && cfg.Telegram.Polling {
		bot.EnableIntake(intakeUC, workers)
		go func() {
			if err := bot.StartPolling(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}

	// ---- Sweeper ----
	var expiring sched.ExpiringStore
	if memStore != nil {
		expiring = memStore
	}
	sweeper := sched.NewSweeper(cfg.Conversation.SweepInterval, expiring, poolStats, logger)
	go func() { _ = sweeper.Run(ctx) }()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	workers.Stop()
	logger.Info().Msg("bye")
}
