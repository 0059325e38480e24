package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/handler"
	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/pkg/config"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

type staticVerifier map[string]*models.JWTClaims

func (v staticVerifier) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := v[token]; ok {
		return claims, nil
	}
	return nil, appErrors.ErrUnauthorized
}

type noopProgression struct{}

func (noopProgression) AppendSession(context.Context, service.AppendSessionRequest) (*service.AppendSessionResult, error) {
	return &service.AppendSessionResult{}, nil
}

func (noopProgression) Progress(_ context.Context, courseID string) (*models.ProgressionView, error) {
	return &models.ProgressionView{CourseID: courseID}, nil
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api/v1"}
	verifier := staticVerifier{
		"teacher": {UserID: "t-1", Role: models.RoleTeacher},
		"student": {UserID: "stu-1", Role: models.RoleStudent},
	}
	return newRouter(cfg, zap.NewNop(), metrics, verifier, handlers{
		grades:      handler.NewGradeHandler(nil),
		statistics:  handler.NewStatisticsHandler(nil),
		dashboard:   handler.NewDashboardHandler(nil),
		progression: handler.NewProgressionHandler(noopProgression{}),
		exports:     handler.NewExportHandler(nil),
		metrics:     handler.NewMetricsHandler(metrics, nil),
	})
}

func do(r http.Handler, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestRouterPublicEndpoints(t *testing.T) {
	r := testRouter()
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ready", ""))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/metrics", ""))
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/docs/index.html", ""))
}

func TestRouterProtectsCourseRoutes(t *testing.T) {
	r := testRouter()
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/v1/courses/math/progression", ""))
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/v1/courses/math/progression", "forged"))
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/v1/courses/math/progression", "student"))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/courses/math/progression", "teacher"))
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/api/v1/scores", "student"))
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/v1/metrics/summary", "teacher"))
}
