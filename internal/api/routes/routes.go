package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"gosovereign-backend/internal/api/handlers"
	"gosovereign-backend/internal/api/middleware"
	"gosovereign-backend/internal/auth"
	"gosovereign-backend/internal/config"
	"gosovereign-backend/internal/repository"
	"gosovereign-backend/internal/service"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Create router
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg))

	// Initialize repositories
	storeRepo := repository.NewStoreRepository(db)
	logRepo := repository.NewDeploymentLogRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize provider clients
	hostingClient := service.NewVercelClient(cfg)
	githubService := service.NewGitHubService(cfg)
	emailService := service.NewEmailService(cfg)

	// Bulk redeploys draw from a shared Redis token bucket when Redis is
	// configured, otherwise fall back to a fixed per-instance delay.
	var pacer service.DeployPacer = service.NewFixedDelayPacer(0)
	if cfg.RedisURL != "" {
		redisPacer, err := service.NewRedisTokenBucketPacer(cfg.RedisURL, 0, 1)
		if err != nil {
			logrus.Warnf("Redis pacer initialization failed, using fixed delay: %v", err)
		} else {
			pacer = redisPacer
		}
	}

	// Initialize validator
	validate := validator.New()

	// Initialize services
	storeService := service.NewStoreService(storeRepo, logRepo, validate)
	domainService := service.NewDomainService(cfg, hostingClient, storeRepo)
	deployService := service.NewDeployService(cfg, storeRepo, logRepo, userRepo,
		hostingClient, githubService, emailService, pacer)

	// Initialize auth
	authService := auth.NewAuthService(cfg)
	authMiddleware := auth.NewAuthMiddleware(authService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	storeHandler := handlers.NewStoreHandler(storeService)
	deployHandler := handlers.NewDeployHandler(deployService)
	adminHandler := handlers.NewAdminHandler(deployService)
	domainHandler := handlers.NewDomainHandler(storeService, domainService)

	// Health check routes
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/live", healthHandler.Live)

	// Swagger documentation route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")

	// Domain management is called by deployed stores with the derived admin
	// credential, not a platform session, so it sits outside RequireAuth
	domains := v1.Group("/stores/:id/domains")
	{
		domains.GET("", domainHandler.GetDomains)
		domains.POST("", domainHandler.AddDomain)
		domains.DELETE("", domainHandler.RemoveDomain)
	}

	authed := v1.Group("")
	authed.Use(authMiddleware.RequireAuth())
	{
		// Store routes
		stores := authed.Group("/stores")
		{
			stores.POST("", storeHandler.CreateStore)
			stores.GET("", storeHandler.ListStores)
			stores.GET("/:id", storeHandler.GetStore)
			stores.PUT("/:id", storeHandler.UpdateStore)
			stores.GET("/:id/deployment-logs", storeHandler.GetDeploymentLogs)
		}

		// Deployment routes
		authed.POST("/deploy", deployHandler.Deploy)
		authed.GET("/deploy/status", deployHandler.Status)

		// Admin routes
		admin := authed.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.POST("/redeploy", adminHandler.Redeploy)
		}
	}

	return router
}
