package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

type fakeProgressionSrv struct {
	last        service.AppendSessionRequest
	progressErr error
}

func (f *fakeProgressionSrv) AppendSession(_ context.Context, req service.AppendSessionRequest) (*service.AppendSessionResult, error) {
	f.last = req
	return &service.AppendSessionResult{Session: models.Session{ID: "s-1", CourseID: req.CourseID, DurationHours: req.DurationHours}}, nil
}

func (f *fakeProgressionSrv) Progress(_ context.Context, courseID string) (*models.ProgressionView, error) {
	if f.progressErr != nil {
		return nil, f.progressErr
	}
	return &models.ProgressionView{CourseID: courseID, PlannedHours: 20, HoursCompleted: 5, Progression: 25}, nil
}

func TestProgressionHandlerAppendSessionUsesPathCourse(t *testing.T) {
	srv := &fakeProgressionSrv{}
	handler := NewProgressionHandler(srv)
	c, rec := jsonContext(http.MethodPost, "/courses/math/sessions", `{"course_id":"other","date":"2024-09-04","duration_hours":1.5}`,
		gin.Param{Key: "id", Value: "math"})

	handler.AppendSession(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "math", srv.last.CourseID)
	assert.Equal(t, 1.5, srv.last.DurationHours)
}

func TestProgressionHandlerProgress(t *testing.T) {
	handler := NewProgressionHandler(&fakeProgressionSrv{})
	c, rec := newTestContext(http.MethodGet, "/courses/math/progression", gin.Param{Key: "id", Value: "math"})

	handler.Progress(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25.0, decodeEnvelope(t, rec).Data["progression"])
}

func TestProgressionHandlerInvalidTarget(t *testing.T) {
	handler := NewProgressionHandler(&fakeProgressionSrv{progressErr: appErrors.Clone(appErrors.ErrInvalidTarget, "")})
	c, rec := newTestContext(http.MethodGet, "/courses/draft/progression", gin.Param{Key: "id", Value: "draft"})

	handler.Progress(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_TARGET", decodeEnvelope(t, rec).Error["code"])
}
