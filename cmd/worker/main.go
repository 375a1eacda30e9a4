package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	lifecycleUsecases "hardhat/internal/application/lifecycle/usecases"
	"hardhat/internal/infrastructure/cache"
	"hardhat/internal/infrastructure/config"
	"hardhat/internal/infrastructure/database"
	"hardhat/internal/infrastructure/repository"
	"hardhat/internal/infrastructure/scheduler"
	"hardhat/internal/shared/logger"
)

// Standalone rollover worker. Deployments that scale the HTTP server
// horizontally run this as a single instance and start the server with
// --skip-rollover.
func main() {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.NewLogger()
	log.Infow("starting rollover worker", "environment", env)

	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer database.Close()

	var stateCache lifecycleUsecases.CacheInvalidator
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Warnw("redis unavailable, cache invalidation disabled",
			"address", cfg.Redis.GetAddr(), "error", err)
		redisClient.Close()
	} else {
		defer redisClient.Close()
		stateCache = cache.NewRedisPlanStateCache(redisClient, log)
		log.Infow("redis connection established", "address", cfg.Redis.GetAddr())
	}

	planRepo := repository.NewPlanRepository(database.Get(), log)
	stateRepo := repository.NewPlanStateRepository(database.Get(), log)
	suppressionRepo := repository.NewSuppressionRepository(database.Get(), log)

	rolloverUC := lifecycleUsecases.NewRolloverPeriodsUseCase(
		stateRepo, planRepo, stateCache, cfg.Entitlement.DefaultPlanSlug, log)

	rolloverScheduler := scheduler.NewRolloverScheduler(
		rolloverUC,
		suppressionRepo,
		time.Duration(cfg.Entitlement.RolloverIntervalMinutes)*time.Minute,
		time.Duration(cfg.Entitlement.SuppressionRetentionDays)*24*time.Hour,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rolloverScheduler.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	log.Infow("received signal, shutting down", "signal", sig)
	rolloverScheduler.Stop()
	log.Infow("rollover worker stopped")
}
