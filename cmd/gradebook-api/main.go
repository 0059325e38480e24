package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/gradebook-api/api/swagger"
	"github.com/noah-isme/gradebook-api/internal/handler"
	"github.com/noah-isme/gradebook-api/internal/repository"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/pkg/cache"
	"github.com/noah-isme/gradebook-api/pkg/config"
	"github.com/noah-isme/gradebook-api/pkg/database"
	"github.com/noah-isme/gradebook-api/pkg/logger"
)

// @title Gradebook API
// @version 1.0.0
// @description Grade book aggregation, statistics and course progression.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	checks := map[string]handler.ReadinessCheck{"database": database.HealthCheck(db)}
	cacheRepo := repository.NewCacheRepository(nil, logr)
	cacheEnabled := false
	if cfg.Statistics.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, statistics cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(client, logr)
			checks["redis"] = cache.HealthCheck(client)
			cacheEnabled = true
		}
	}
	defer cacheRepo.Close() //nolint:errcheck

	policy := service.GradingPolicy{
		Scale:           cfg.GradeScale(),
		Thresholds:      cfg.Grading.PassThresholds,
		LeaderboardSize: cfg.Grading.LeaderboardSize,
	}
	if err := policy.Scale.Validate(); err != nil {
		logr.Fatal("invalid grading scale", zap.Error(err))
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Statistics.CacheTTL, logr, cacheEnabled)

	scoreRepo := repository.NewScoreRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	authSvc := service.NewAuthService(cfg.JWT.Secret)
	gradeSvc := service.NewGradeService(scoreRepo, evaluationRepo, courseRepo, rosterRepo, cacheSvc, policy, validate, logr)
	statsSvc := service.NewStatisticsService(scoreRepo, evaluationRepo, courseRepo, rosterRepo, cacheSvc, metricsSvc, policy, cfg.Statistics.CacheTTL, logr)
	progressionSvc := service.NewProgressionService(sessionRepo, courseRepo, metricsSvc, service.ProgressionOptions{
		QueueBuffer: cfg.Progression.QueueBuffer,
		MaxRetries:  cfg.Progression.MaxRetries,
		RetryDelay:  cfg.Progression.RetryDelay,
	}, validate, logr)
	exportSvc := service.NewExportService(statsSvc, cfg.Exports.Decimals, logr)

	progressionSvc.Start(ctx)
	defer progressionSvc.Stop()

	router := newRouter(cfg, logr, metricsSvc, authSvc, handlers{
		grades:      handler.NewGradeHandler(gradeSvc),
		statistics:  handler.NewStatisticsHandler(statsSvc),
		dashboard:   handler.NewDashboardHandler(statsSvc),
		progression: handler.NewProgressionHandler(progressionSvc),
		exports:     handler.NewExportHandler(exportSvc),
		metrics:     handler.NewMetricsHandler(metricsSvc, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
