package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/gradebook-api/internal/handler"
	"github.com/noah-isme/gradebook-api/internal/middleware"
	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/pkg/config"
	"github.com/noah-isme/gradebook-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gradebook-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gradebook-api/pkg/middleware/requestid"

	"go.uber.org/zap"
)

type handlers struct {
	grades      *handler.GradeHandler
	statistics  *handler.StatisticsHandler
	dashboard   *handler.DashboardHandler
	progression *handler.ProgressionHandler
	exports     *handler.ExportHandler
	metrics     *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, verifier middleware.TokenVerifier, h handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	staff := []models.UserRole{models.RoleTeacher, models.RoleAdmin}
	api := r.Group(cfg.APIPrefix, middleware.JWT(verifier), middleware.WithResponseMeta())
	api.GET("/metrics/summary", middleware.RequireRoles(models.RoleAdmin), h.metrics.Summary)

	scores := api.Group("/scores", middleware.RequireRoles(staff...))
	scores.POST("", h.grades.Upsert)
	scores.POST("/quick", h.grades.QuickGrade)

	courses := api.Group("/courses/:id")
	courses.GET("/students/:studentId/average", middleware.RequireStaffOrSelf("studentId", staff...), h.grades.StudentAverage)

	teaching := courses.Group("", middleware.RequireRoles(staff...))
	teaching.GET("/statistics", h.statistics.Course)
	teaching.GET("/evaluations/:evaluationId/statistics", h.statistics.Evaluation)
	teaching.GET("/leaderboard", h.statistics.Leaderboard)
	teaching.GET("/dashboard", h.dashboard.Course)
	teaching.POST("/sessions", h.progression.AppendSession)
	teaching.GET("/progression", h.progression.Progress)
	teaching.GET("/export", h.exports.Course)

	return r
}
