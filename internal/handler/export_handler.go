package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

type exportService interface {
	CourseReport(ctx context.Context, courseID, format string) (*service.ExportResult, error)
}

// ExportHandler streams rendered course reports.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Course godoc
// @Summary Export course statistics
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Course ID"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Router /courses/{id}/export [get]
func (h *ExportHandler) Course(c *gin.Context) {
	courseID, err := courseParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.CourseReport(c.Request.Context(), courseID, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Body)
}
