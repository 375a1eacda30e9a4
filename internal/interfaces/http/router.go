// Package http wires the HTTP surface: repositories, use cases, handlers,
// and routes.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	alertingUsecases "hardhat/internal/application/alerting/usecases"
	catalogUsecases "hardhat/internal/application/catalog/usecases"
	entUsecases "hardhat/internal/application/entitlement/usecases"
	lifecycleUsecases "hardhat/internal/application/lifecycle/usecases"
	upgradeUsecases "hardhat/internal/application/upgrade/usecases"
	"hardhat/internal/domain/alerting"
	"hardhat/internal/infrastructure/auth"
	"hardhat/internal/infrastructure/cache"
	"hardhat/internal/infrastructure/config"
	"hardhat/internal/infrastructure/email"
	"hardhat/internal/infrastructure/repository"
	"hardhat/internal/interfaces/http/handlers"
	"hardhat/internal/interfaces/http/middleware"
	shareddb "hardhat/internal/shared/db"
	"hardhat/internal/shared/logger"
	"hardhat/internal/shared/services/markdown"
)

// Router represents the HTTP router configuration
type Router struct {
	engine             *gin.Engine
	entitlementHandler *handlers.EntitlementHandler
	accountHandler     *handlers.AccountHandler
	planHandler        *handlers.PlanHandler
	webhookHandler     *handlers.WebhookHandler
	adminPlanHandler   *handlers.AdminPlanHandler
	authMiddleware     *middleware.AuthMiddleware
	allowedOrigins     []string
	logger             logger.Interface
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) *Router {
	engine := gin.New()

	planRepo := repository.NewPlanRepository(db, log)
	usageRepo := repository.NewUsageRepository(db, log)
	stateRepo := repository.NewPlanStateRepository(db, log)
	sessionRepo := repository.NewCheckoutSessionRepository(db, log)
	suppressionRepo := repository.NewSuppressionRepository(db, log)

	var stateCache entUsecases.PlanStateCache
	if redisClient != nil {
		stateCache = cache.NewRedisPlanStateCache(redisClient, log)
	}

	var notifier alerting.Notifier
	if cfg.Email.Enabled {
		notifier = email.NewSMTPAlertNotifier(email.SMTPConfig{
			Host:        cfg.Email.SMTPHost,
			Port:        cfg.Email.SMTPPort,
			Username:    cfg.Email.SMTPUser,
			Password:    cfg.Email.SMTPPassword,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
			AlertTo:     cfg.Email.AlertTo,
		}, log)
	}
	alertsUC := alertingUsecases.NewEvaluateThresholdUseCase(suppressionRepo, notifier, log)

	ent := cfg.Entitlement
	canUseUC := entUsecases.NewCanUseUseCase(stateRepo, planRepo, usageRepo, stateCache, ent.DefaultPlanSlug, log)
	recordUsageUC := entUsecases.NewRecordUsageUseCase(stateRepo, planRepo, usageRepo, stateCache, alertsUC, ent.DefaultPlanSlug, log)
	historyUC := entUsecases.NewGetUsageHistoryUseCase(usageRepo, log)
	getPlanStateUC := entUsecases.NewGetPlanStateUseCase(stateRepo, planRepo, ent.DefaultPlanSlug, log)

	activateTrialUC := lifecycleUsecases.NewActivateTrialUseCase(
		stateRepo, planRepo, stateCache, ent.TrialPlanSlug, ent.DefaultPlanSlug, ent.TrialDays, log)
	txManager := shareddb.NewTransactionManager(db)
	completeCheckoutUC := lifecycleUsecases.NewCompleteCheckoutUseCase(
		stateRepo, sessionRepo, planRepo, stateCache, txManager, ent.DefaultPlanSlug, log)

	upgradeUC := upgradeUsecases.NewResolveUpgradeUseCase(
		stateRepo, planRepo, ent.TrialPlanSlug, ent.DefaultPlanSlug, log)

	renderer := markdown.NewMarkdownService()
	listPlansUC := catalogUsecases.NewListPlansUseCase(planRepo, renderer, log)
	publishPlanUC := catalogUsecases.NewPublishPlanUseCase(planRepo, log)
	retirePlanUC := catalogUsecases.NewRetirePlanUseCase(planRepo, log)

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret)

	return &Router{
		engine:             engine,
		entitlementHandler: handlers.NewEntitlementHandler(canUseUC, recordUsageUC, historyUC, upgradeUC),
		accountHandler:     handlers.NewAccountHandler(getPlanStateUC, activateTrialUC),
		planHandler:        handlers.NewPlanHandler(listPlansUC),
		webhookHandler:     handlers.NewWebhookHandler(completeCheckoutUC),
		adminPlanHandler:   handlers.NewAdminPlanHandler(publishPlanUC, retirePlanUC),
		authMiddleware:     middleware.NewAuthMiddleware(jwtService, log),
		allowedOrigins:     cfg.Server.AllowedOrigins,
		logger:             log,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.SecurityHeaders())
	r.engine.Use(middleware.CORS(r.allowedOrigins))
	r.engine.Use(middleware.APIVersion())

	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.engine.Group("/api/v1")

	v1.GET("/plans", r.planHandler.ListPlans)
	v1.POST("/webhooks/checkout", r.webhookHandler.CheckoutCompleted)

	entitlements := v1.Group("/entitlements")
	entitlements.Use(r.authMiddleware.RequireAuth())
	{
		entitlements.GET("/:feature", r.entitlementHandler.CheckEntitlement)
		entitlements.POST("/:feature/usage", r.entitlementHandler.RecordUsage)
		entitlements.GET("/:feature/history", r.entitlementHandler.GetUsageHistory)
	}

	account := v1.Group("/account")
	account.Use(r.authMiddleware.RequireAuth())
	{
		account.GET("/plan", r.accountHandler.GetPlanState)
		account.POST("/trial", r.accountHandler.ActivateTrial)
	}

	admin := v1.Group("/admin")
	admin.Use(r.authMiddleware.RequireAuth(), r.authMiddleware.RequireAdmin())
	{
		admin.POST("/plans", r.adminPlanHandler.PublishPlan)
		admin.POST("/plans/:slug/retire", r.adminPlanHandler.RetirePlan)
	}
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
