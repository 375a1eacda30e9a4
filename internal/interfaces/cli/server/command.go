package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	lifecycleUsecases "hardhat/internal/application/lifecycle/usecases"
	"hardhat/internal/infrastructure/cache"
	"hardhat/internal/infrastructure/catalogseed"
	"hardhat/internal/infrastructure/config"
	"hardhat/internal/infrastructure/database"
	"hardhat/internal/infrastructure/migration"
	"hardhat/internal/infrastructure/repository"
	"hardhat/internal/infrastructure/scheduler"
	httpRouter "hardhat/internal/interfaces/http"
	"hardhat/internal/shared/logger"
)

var (
	env          string
	skipSeed     bool
	skipRollover bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the Hardhat entitlement server with the specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "Skip seeding the plan catalog on startup")
	cmd.Flags().BoolVar(&skipRollover, "skip-rollover", false, "Do not run the rollover scheduler in this process")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	log := logger.NewLogger()
	log.Infow("starting server", "environment", env)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
	}

	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer database.Close()

	migrationManager := migration.NewManager(env, cfg.Database.Driver)
	if err := migrationManager.Migrate(database.Get(), migration.AutoMigrateModels()...); err != nil {
		log.Fatalw("database migration failed", "error", err)
	}

	planRepo := repository.NewPlanRepository(database.Get(), log)

	if !skipSeed {
		seeder := catalogseed.NewSeeder(planRepo, log)
		if err := seeder.Seed(context.Background(), cfg.Entitlement.CatalogSeedPath); err != nil {
			log.Fatalw("catalog seed failed", "error", err,
				"path", cfg.Entitlement.CatalogSeedPath)
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Warnw("redis unavailable, plan state cache disabled",
			"address", cfg.Redis.GetAddr(), "error", err)
		redisClient.Close()
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Infow("redis connection established", "address", cfg.Redis.GetAddr())
	}

	router := httpRouter.NewRouter(database.Get(), redisClient, cfg, log)
	router.SetupRoutes()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !skipRollover {
		stateRepo := repository.NewPlanStateRepository(database.Get(), log)
		suppressionRepo := repository.NewSuppressionRepository(database.Get(), log)

		var stateCache lifecycleUsecases.CacheInvalidator
		if redisClient != nil {
			stateCache = cache.NewRedisPlanStateCache(redisClient, log)
		}

		rolloverUC := lifecycleUsecases.NewRolloverPeriodsUseCase(
			stateRepo, planRepo, stateCache, cfg.Entitlement.DefaultPlanSlug, log)

		rolloverScheduler := scheduler.NewRolloverScheduler(
			rolloverUC,
			suppressionRepo,
			time.Duration(cfg.Entitlement.RolloverIntervalMinutes)*time.Minute,
			time.Duration(cfg.Entitlement.SuppressionRetentionDays)*24*time.Hour,
			log,
		)
		rolloverScheduler.Start(ctx)
		defer rolloverScheduler.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
