package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

type gradeService interface {
	Upsert(ctx context.Context, req service.UpsertScoreRequest) (*service.UpsertScoreResult, error)
	QuickGrade(ctx context.Context, req service.QuickGradeRequest) (*service.QuickGradeResult, error)
	StudentAverage(ctx context.Context, courseID, studentID string) (*models.StudentAverageView, error)
}

// GradeHandler exposes the grading grid endpoints.
type GradeHandler struct {
	grades gradeService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades gradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Upsert godoc
// @Summary Save a score
// @Description Creates or replaces the score of a student on an evaluation and returns the refreshed course average.
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body service.UpsertScoreRequest true "Score payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scores [post]
func (h *GradeHandler) Upsert(c *gin.Context) {
	var req service.UpsertScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	result, err := h.grades.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// QuickGrade godoc
// @Summary Quick-grade an evaluation
// @Description Saves one evaluation for many students, atomically or with partialOnError.
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body service.QuickGradeRequest true "Quick grading sheet"
// @Success 200 {object} response.Envelope
// @Router /scores/quick [post]
func (h *GradeHandler) QuickGrade(c *gin.Context) {
	var req service.QuickGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	result, err := h.grades.QuickGrade(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// StudentAverage godoc
// @Summary Student course average
// @Tags Scores
// @Produce json
// @Param id path string true "Course ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/students/{studentId}/average [get]
func (h *GradeHandler) StudentAverage(c *gin.Context) {
	courseID, err := courseParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	avg, err := h.grades.StudentAverage(c.Request.Context(), courseID, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, avg, nil)
}
