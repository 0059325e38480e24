package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

type statisticsService interface {
	Course(ctx context.Context, courseID string) (*models.CourseStatisticsView, bool, error)
	Evaluation(ctx context.Context, courseID, evaluationID string) (*models.EvaluationStatisticsView, bool, error)
	Leaderboard(ctx context.Context, courseID string, limit int) ([]models.LeaderboardEntry, bool, error)
}

// StatisticsHandler serves the statistics panel.
type StatisticsHandler struct {
	stats statisticsService
}

// NewStatisticsHandler constructs the statistics handler.
func NewStatisticsHandler(stats statisticsService) *StatisticsHandler {
	return &StatisticsHandler{stats: stats}
}

// Course godoc
// @Summary Course statistics
// @Description Averages, distribution, pass rates, participation, leaderboard and per-evaluation breakdown.
// @Tags Statistics
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/statistics [get]
func (h *StatisticsHandler) Course(c *gin.Context) {
	courseID, err := courseParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, hit, err := h.stats.Course(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, stats, hit)
}

// Evaluation godoc
// @Summary Evaluation statistics
// @Tags Statistics
// @Produce json
// @Param id path string true "Course ID"
// @Param evaluationId path string true "Evaluation ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/evaluations/{evaluationId}/statistics [get]
func (h *StatisticsHandler) Evaluation(c *gin.Context) {
	courseID, err := courseParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, hit, err := h.stats.Evaluation(c.Request.Context(), courseID, c.Param("evaluationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, stats, hit)
}

// Leaderboard godoc
// @Summary Course leaderboard
// @Tags Statistics
// @Produce json
// @Param id path string true "Course ID"
// @Param limit query int false "Number of entries, defaults to the configured size"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/leaderboard [get]
func (h *StatisticsHandler) Leaderboard(c *gin.Context) {
	courseID, err := courseParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, hit, err := h.stats.Leaderboard(c.Request.Context(), courseID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, entries, hit)
}
