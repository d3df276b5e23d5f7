package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gratefultolord/community_bot/internal/access"
	"github.com/gratefultolord/community_bot/internal/bot"
	"github.com/gratefultolord/community_bot/internal/cache"
	"github.com/gratefultolord/community_bot/internal/config"
	"github.com/gratefultolord/community_bot/internal/db"
	"github.com/gratefultolord/community_bot/internal/logger"
	"github.com/gratefultolord/community_bot/internal/moderation"
	"github.com/gratefultolord/community_bot/internal/notify"
	"github.com/gratefultolord/community_bot/internal/rate"
	"github.com/gratefultolord/community_bot/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	if err := run(cfg, zapLogger); err != nil && !isCanceled(err) {
		zapLogger.Fatal("bot stopped", zap.Error(err))
	}
	zapLogger.Info("bot stopped")
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.New(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database.Conn); err != nil {
		return err
	}

	profileRepo := db.NewProfileRepository(database.Conn)
	reportRepo := db.NewReportRepository(database.Conn)

	if err := profileRepo.Seed(); err != nil {
		zapLogger.Warn("seeding directory failed", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Кэш и лимитер деградируют сами, падать не нужно
		zapLogger.Warn("redis unavailable at startup", zap.Error(err))
	}

	profileCache := cache.NewProfiles(redisClient, cfg.ProfileCacheTTL, zapLogger)
	limiter := rate.NewLimiter(cache.NewWindowStore(redisClient), cfg.RateLimitPerSecond)

	client, err := telegram.New(cfg.BotToken, cfg.MaxRetries, cfg.RetryBackoff, zapLogger)
	if err != nil {
		return err
	}

	policy := access.NewPolicy(cfg.SuperAdminID, cfg.AdminIDs)
	notifier := notify.New(client, zapLogger)
	moderator := moderation.NewService(profileRepo, profileCache, zapLogger)

	router := bot.New(
		client,
		profileRepo,
		reportRepo,
		profileCache,
		moderator,
		limiter,
		notifier,
		policy,
		bot.Options{
			MinProfileLength: cfg.MinProfileLength,
			MaxProfileLength: cfg.MaxProfileLength,
			ForbiddenWords:   cfg.ForbiddenWords,
			SpamThreshold:    cfg.SpamThreshold,
		},
		zapLogger,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Listen(gctx, router.Handlers())
	})

	zapLogger.Info("bot started", zap.String("env", cfg.Env))

	return g.Wait()
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
