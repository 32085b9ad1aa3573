package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/unidocs/unidocs-api/api/swagger"
	"github.com/unidocs/unidocs-api/internal/handler"
	"github.com/unidocs/unidocs-api/internal/middleware"
	"github.com/unidocs/unidocs-api/internal/models"
	"github.com/unidocs/unidocs-api/internal/repository"
	"github.com/unidocs/unidocs-api/internal/service"
	"github.com/unidocs/unidocs-api/pkg/cache"
	"github.com/unidocs/unidocs-api/pkg/config"
	"github.com/unidocs/unidocs-api/pkg/database"
	"github.com/unidocs/unidocs-api/pkg/logger"
	corsmiddleware "github.com/unidocs/unidocs-api/pkg/middleware/cors"
	reqidmiddleware "github.com/unidocs/unidocs-api/pkg/middleware/requestid"
)

// @title UniDocs API
// @version 1.0.0
// @description Document lifecycle and moderation backend
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	txRunner := database.NewTxRunner(db, logr)

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, listing cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	validate := validator.New()
	metricsService := service.NewMetricsService()

	documentRepo := repository.NewDocumentRepository(db)
	moderationRepo := repository.NewModerationRepository(db)
	reportRepo := repository.NewReportRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	faqRepo := repository.NewFAQRepository(db)
	userRepo := repository.NewUserRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	moderationService := service.NewModerationService(metricsService.InstrumentTx(txRunner, "moderation"), documentRepo, moderationRepo, cacheRepo, logr)
	reportService := service.NewReportService(metricsService.InstrumentTx(txRunner, "report"), documentRepo, reportRepo, cacheRepo, validate, logr)
	ratingService := service.NewRatingService(metricsService.InstrumentTx(txRunner, "rating"), documentRepo, ratingRepo, faqRepo, cacheRepo, logr)

	cacheTTL := time.Duration(0)
	if cfg.Cache.Enabled {
		cacheTTL = cfg.Cache.TTL
	}
	documentService := service.NewDocumentService(documentRepo, reportRepo, cacheRepo, cacheTTL, logr)
	exportService := service.NewExportService(moderationRepo, cfg.Exports.MaxRows, logr)

	authHandler := handler.NewAuthHandler(authService)
	documentHandler := handler.NewDocumentHandler(documentService)
	moderationHandler := handler.NewModerationHandler(moderationService)
	reportHandler := handler.NewReportHandler(reportService)
	ratingHandler := handler.NewRatingHandler(ratingService)
	exportHandler := handler.NewExportHandler(exportService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := txRunner.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)

		documents := api.Group("/documents")
		documents.Use(middleware.OptionalJWT(authService))
		{
			documents.GET("", documentHandler.List)
			documents.GET("/search", documentHandler.Search)
			documents.GET("/:id", documentHandler.Get)
		}

		authed := api.Group("/documents")
		authed.Use(middleware.JWT(authService))
		{
			authed.POST("/:id/reports", reportHandler.Report)
			authed.POST("/:id/ratings", ratingHandler.Submit)
			authed.PUT("/:id/ratings", ratingHandler.Update)
			authed.DELETE("/:id/ratings", ratingHandler.Delete)
		}

		faqs := api.Group("/faqs")
		{
			faqs.GET("", ratingHandler.ListFAQs)
			faqs.POST("/:id/ratings", middleware.JWT(authService), ratingHandler.SubmitFAQ)
			faqs.DELETE("/:id/ratings", middleware.JWT(authService), ratingHandler.DeleteFAQ)
		}

		moderation := api.Group("/moderation")
		moderation.Use(middleware.JWT(authService))
		{
			moderation.POST("/documents/:id", middleware.RequireRoles(models.RoleModerator, models.RoleAdmin), moderationHandler.Moderate)
			moderation.GET("/documents/status/:status", middleware.RequireRoles(models.RoleModerator, models.RoleAdmin), documentHandler.ListByStatus)
			if cfg.Exports.Enabled {
				moderation.GET("/export", middleware.RequireRoles(models.RoleAdmin), exportHandler.ModerationActivity)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}

	if err := cacheRepo.Close(); err != nil {
		logr.Warn("cache close failed", zap.Error(err))
	}
	if err := txRunner.Close(); err != nil {
		logr.Error("database close failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
