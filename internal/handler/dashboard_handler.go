package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

type dashboardService interface {
	Dashboard(ctx context.Context, courseID string) (*models.DashboardSummary, bool, error)
}

// DashboardHandler serves the course summary cards.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Course godoc
// @Summary Course dashboard cards
// @Tags Dashboard
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/dashboard [get]
func (h *DashboardHandler) Course(c *gin.Context) {
	courseID, err := courseParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, hit, err := h.service.Dashboard(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, summary, hit)
}
