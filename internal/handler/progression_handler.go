package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

type progressionService interface {
	AppendSession(ctx context.Context, req service.AppendSessionRequest) (*service.AppendSessionResult, error)
	Progress(ctx context.Context, courseID string) (*models.ProgressionView, error)
}

// ProgressionHandler exposes session logging and course progression.
type ProgressionHandler struct {
	progression progressionService
}

// NewProgressionHandler constructs the handler.
func NewProgressionHandler(progression progressionService) *ProgressionHandler {
	return &ProgressionHandler{progression: progression}
}

// AppendSession godoc
// @Summary Log a session
// @Tags Progression
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.AppendSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/sessions [post]
func (h *ProgressionHandler) AppendSession(c *gin.Context) {
	courseID, err := courseParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AppendSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	req.CourseID = courseID
	result, err := h.progression.AppendSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, result, nil)
}

// Progress godoc
// @Summary Course progression
// @Tags Progression
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /courses/{id}/progression [get]
func (h *ProgressionHandler) Progress(c *gin.Context) {
	courseID, err := courseParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.progression.Progress(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
