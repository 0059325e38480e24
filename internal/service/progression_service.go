package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/gradebook"
	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
	"github.com/noah-isme/gradebook-api/pkg/jobs"
)

const (
	progressionQueueName = "progression"
	progressionJobType   = "progression.recompute"
	sessionDateLayout    = "2006-01-02"

	// A full queue is waited on this long before the request recomputes inline.
	defaultEnqueueTimeout = 500 * time.Millisecond
)

type sessionRepo interface {
	Append(ctx context.Context, session *models.Session) error
	ListByCourse(ctx context.Context, courseID string) ([]models.Session, error)
}

type courseWriter interface {
	courseReader
	UpdateProgression(ctx context.Context, courseID string, progression float64) error
}

// AppendSessionRequest logs one instructional session.
type AppendSessionRequest struct {
	CourseID      string  `json:"-" validate:"required"`
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	DurationHours float64 `json:"duration_hours" validate:"gt=0,lte=24"`
	Topic         *string `json:"topic,omitempty" validate:"omitempty,max=200"`
}

// AppendSessionResult returns the stored session with the course progress it leads to.
type AppendSessionResult struct {
	Session     models.Session          `json:"session"`
	Progression *models.ProgressionView `json:"progression,omitempty"`
}

// ProgressionOptions tunes the recompute queue.
type ProgressionOptions struct {
	QueueBuffer int
	MaxRetries  int
	RetryDelay  time.Duration
}

// ProgressionService logs sessions and keeps the stored course progression current.
// Stored values are written by a single queue worker, each pass recomputing from the full
// session sum, so concurrent session logs can never interleave partial updates.
type ProgressionService struct {
	sessions  sessionRepo
	courses   courseWriter
	metrics   *MetricsService
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time

	enqueueTimeout time.Duration
}

// NewProgressionService constructs the service and its recompute queue. Call Start before use.
func NewProgressionService(sessions sessionRepo, courses courseWriter, metrics *MetricsService, opts ProgressionOptions, validate *validator.Validate, logger *zap.Logger) *ProgressionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ProgressionService{
		sessions:  sessions,
		courses:   courses,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,

		enqueueTimeout: defaultEnqueueTimeout,
	}
	s.queue = jobs.NewQueue(progressionQueueName, s.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: opts.QueueBuffer,
		MaxRetries: opts.MaxRetries,
		RetryDelay: opts.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start runs the recompute worker until ctx is cancelled or Stop is called.
func (s *ProgressionService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop halts the recompute worker.
func (s *ProgressionService) Stop() {
	s.queue.Stop()
}

// AppendSession stores a session log and schedules a progression recompute for its course.
func (s *ProgressionService) AppendSession(ctx context.Context, req AppendSessionRequest) (*AppendSessionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	date, err := time.Parse(sessionDateLayout, req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session date")
	}
	course, err := findCourse(ctx, s.courses, req.CourseID)
	if err != nil {
		return nil, err
	}

	session := &models.Session{CourseID: course.ID, Date: date, DurationHours: req.DurationHours, Topic: req.Topic}
	if session.Topic != nil && strings.TrimSpace(*session.Topic) == "" {
		session.Topic = nil
	}
	if err := s.sessions.Append(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to log session")
	}

	enqueueCtx, cancel := context.WithTimeout(ctx, s.enqueueTimeout)
	_, err = s.queue.Enqueue(enqueueCtx, jobs.Job{
		ID:      uuid.NewString(),
		Key:     course.ID,
		Type:    progressionJobType,
		Payload: course.ID,
	})
	cancel()
	if err != nil {
		s.logger.Warn("progression queue unavailable, recomputing inline", zap.String("course_id", course.ID), zap.Error(err))
		if _, err := s.Recompute(ctx, course.ID); err != nil {
			s.logger.Error("inline progression recompute failed", zap.String("course_id", course.ID), zap.Error(err))
		}
	}

	result := &AppendSessionResult{Session: *session}
	view, err := s.Progress(ctx, course.ID)
	if err == nil {
		result.Progression = view
	} else if !errors.Is(err, gradebook.ErrInvalidTarget) {
		return nil, err
	}
	return result, nil
}

// Recompute derives the progression of a course from all its sessions and stores it.
func (s *ProgressionService) Recompute(ctx context.Context, courseID string) (float64, error) {
	view, err := s.Progress(ctx, courseID)
	if err != nil {
		return 0, err
	}
	if err := s.courses.UpdateProgression(ctx, courseID, view.Progression); err != nil {
		s.metrics.RecordProgressionUpdate(false)
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store progression")
	}
	s.metrics.RecordProgressionUpdate(true)
	s.logger.Info("progression updated", zap.String("course_id", courseID), zap.Float64("progression", view.Progression))
	return view.Progression, nil
}

// Progress computes a course's completion from its sessions without storing it.
func (s *ProgressionService) Progress(ctx context.Context, courseID string) (*models.ProgressionView, error) {
	course, err := findCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	logs := models.SessionLogs(sessions)
	target := course.Target()

	progression, err := gradebook.Progression(logs, target)
	if err != nil {
		return nil, appErrors.FromEngine(err)
	}
	remaining, err := gradebook.RemainingHours(logs, target)
	if err != nil {
		return nil, appErrors.FromEngine(err)
	}
	return &models.ProgressionView{
		CourseID:       course.ID,
		PlannedHours:   target.PlannedHours,
		HoursCompleted: gradebook.HoursCompleted(logs, course.ID),
		RemainingHours: remaining,
		Progression:    progression,
		Sessions:       len(sessions),
		ComputedAt:     s.now().UTC(),
	}, nil
}

func (s *ProgressionService) handle(ctx context.Context, job jobs.Job) error {
	courseID, ok := job.Payload.(string)
	if !ok || courseID == "" {
		s.logger.Error("discarding malformed progression job", zap.String("job_id", job.ID))
		return nil
	}
	_, err := s.Recompute(ctx, courseID)
	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Status < 500 {
		// Missing courses and invalid targets will not heal on retry.
		s.logger.Warn("progression recompute skipped", zap.String("course_id", courseID), zap.Error(err))
		return nil
	}
	return err
}
