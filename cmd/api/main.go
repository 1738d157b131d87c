package main

import (
	stdlog "log"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scopecraft/estimation-api/internal/cache"
	"github.com/scopecraft/estimation-api/internal/config"
	"github.com/scopecraft/estimation-api/internal/database"
	"github.com/scopecraft/estimation-api/internal/handler"
	"github.com/scopecraft/estimation-api/internal/logger"
	"github.com/scopecraft/estimation-api/internal/metrics"
	"github.com/scopecraft/estimation-api/internal/middleware"
	"github.com/scopecraft/estimation-api/internal/migration"
	"github.com/scopecraft/estimation-api/internal/repository"
	"github.com/scopecraft/estimation-api/internal/service"
)

const Version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Msg("Estimation API starting")

	metrics.Init()

	db, err := database.Connect(database.Config{
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		DBName:          cfg.DBName,
		SSLMode:         cfg.DBSSLMode,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	if err := migration.NewMigrator(db).Run(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Repositories
	rateRepo := repository.NewRateRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	// Services
	lookupCache := cache.NewCache(time.Duration(cfg.CacheTTLSeconds) * time.Second)
	defer lookupCache.Stop()

	estimateService := service.NewEstimateService(rateRepo, settingsRepo, projectRepo, lookupCache)
	webhookService := service.NewWebhookService()
	exporter := service.NewExcelExporter()

	// Handlers
	estimateHandler := handler.NewEstimateHandler(estimateService, webhookService)
	projectHandler := handler.NewProjectHandler(projectRepo, estimateService, exporter)
	roleHandler := handler.NewRoleHandler(rateRepo, estimateService)
	settingsHandler := handler.NewSettingsHandler(settingsRepo, estimateService)
	healthHandler := handler.NewHealthHandler(db, Version)

	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(gin.Recovery())

	// Public endpoints
	r.GET("/health", healthHandler.Health)

	r.GET("/debug/memory", func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		c.JSON(200, gin.H{
			"alloc_mb":      m.Alloc / 1024 / 1024,
			"sys_mb":        m.Sys / 1024 / 1024,
			"heap_alloc_mb": m.HeapAlloc / 1024 / 1024,
			"heap_objects":  m.HeapObjects,
			"goroutines":    runtime.NumGoroutine(),
			"gc_runs":       m.NumGC,
		})
	})

	r.GET("/debug/metrics", func(c *gin.Context) {
		c.JSON(200, metrics.Get().Snapshot())
	})

	// Protected API
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	api := r.Group("/api/v1")
	api.Use(limiter.Middleware())
	api.Use(middleware.BearerAuth(middleware.AuthConfig{TokenAPI: cfg.TokenAPI}))
	api.Use(middleware.CompanyID())
	{
		api.POST("/estimates/calculate", estimateHandler.Calculate)

		api.POST("/projects", projectHandler.Create)
		api.GET("/projects", projectHandler.List)
		api.GET("/projects/:id", projectHandler.Get)
		api.PATCH("/projects/:id", projectHandler.Update)
		api.DELETE("/projects/:id", projectHandler.Delete)
		api.POST("/projects/:id/estimate", projectHandler.Estimate)
		api.GET("/projects/:id/estimate/export", projectHandler.ExportEstimate)

		api.GET("/resource-roles", roleHandler.List)
		api.POST("/resource-roles", roleHandler.Create)
		api.PATCH("/resource-roles/:id", roleHandler.Update)
		api.DELETE("/resource-roles/:id", roleHandler.Delete)

		api.GET("/settings/estimation", settingsHandler.Get)
		api.PATCH("/settings/estimation", settingsHandler.Update)
	}

	log.Info().Str("port", cfg.Port).Msg("Server starting")

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
		os.Exit(1)
	}
}
