package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zentale/story-system/internal/api"
	"github.com/zentale/story-system/internal/core/service"
	"github.com/zentale/story-system/internal/infrastructure/ai"
	"github.com/zentale/story-system/internal/infrastructure/config"
	storymongo "github.com/zentale/story-system/internal/infrastructure/db/mongo"
	storyredis "github.com/zentale/story-system/internal/infrastructure/db/redis"
	"github.com/zentale/story-system/internal/infrastructure/identity"
	"github.com/zentale/story-system/internal/infrastructure/queue"
	"github.com/zentale/story-system/internal/infrastructure/scheduler"
	"github.com/zentale/story-system/internal/infrastructure/storage"
	"github.com/zentale/story-system/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Stores ---
	mongoClient, db, err := storymongo.Connect(ctx, storymongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}

	rdb, err := storyredis.Connect(ctx, storyredis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}

	accountRepo := storymongo.NewAccountRepository(db)
	storyRepo := storymongo.NewStoryRepository(db)
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("account index creation failed")
	}
	if err := storyRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("story index creation failed")
	}

	// --- Providers ---
	generator := ai.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	speech := ai.NewElevenLabsClient(cfg.ElevenLabs.APIKey, cfg.ElevenLabs.BaseURL)
	media, err := storage.NewS3MediaStore(ctx, storage.Config{
		Region:    cfg.Media.Region,
		Bucket:    cfg.Media.Bucket,
		AccessKey: cfg.Media.AccessKey,
		SecretKey: cfg.Media.SecretKey,
		Endpoint:  cfg.Media.Endpoint,
		URLTTL:    cfg.Media.URLTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("media store setup failed")
	}

	// --- Services ---
	accountService := service.NewAccountService(accountRepo, log)
	storyService := service.NewStoryService(accountRepo, storyRepo, generator, speech, media, log)
	billingService := service.NewBillingService(accountRepo, storyredis.NewEventLedger(rdb), log)
	sweepService := service.NewSweepService(accountRepo, queue.NewPool(cfg.SweepWorkers, log), log)

	// --- Scheduler ---
	sched := scheduler.New(cfg.SweepSchedule, sweepService, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.SweepSchedule).Msg("invalid sweep schedule")
	}

	// --- HTTP server ---
	e := api.NewRouter(api.RouterDeps{
		Accounts:     accountService,
		Stories:      storyService,
		Billing:      billingService,
		Verifier:     identity.NewJWTVerifier(cfg.JWTSecret),
		WebhookToken: cfg.BillingWebhookToken,
		Mongo:        db,
		Redis:        rdb,
		Logger:       log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	sched.Stop()
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}

	log.Info().Msg("stopped")
}
