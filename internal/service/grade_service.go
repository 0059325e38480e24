package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/gradebook"
	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

type scoreRepo interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Score, error)
	ListByStudent(ctx context.Context, courseID, studentID string) ([]models.Score, error)
	Upsert(ctx context.Context, score *models.Score) error
	BulkUpsert(ctx context.Context, scores []models.Score) error
}

type evaluationReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Evaluation, error)
	FindByID(ctx context.Context, id string) (*models.Evaluation, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type rosterReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.RosterEntry, error)
}

const (
	QuickGradeAtomic         = "atomic"
	QuickGradePartialOnError = "partialOnError"
)

// UpsertScoreRequest is the grading grid payload for one cell.
type UpsertScoreRequest struct {
	StudentID    string   `json:"student_id" validate:"required"`
	CourseID     string   `json:"course_id" validate:"required"`
	EvaluationID string   `json:"evaluation_id" validate:"required"`
	Value        float64  `json:"value" validate:"gte=0"`
	Weight       *float64 `json:"weight,omitempty" validate:"omitempty,gt=0"`
	Comment      *string  `json:"comment,omitempty" validate:"omitempty,max=500"`
}

// UpsertScoreResult returns the saved score with the student's refreshed average.
type UpsertScoreResult struct {
	Score   models.Score              `json:"score"`
	Average models.StudentAverageView `json:"average"`
}

// QuickGradeItem is one student's value in a quick-grading sheet.
type QuickGradeItem struct {
	StudentID string  `json:"student_id" validate:"required"`
	Value     float64 `json:"value" validate:"gte=0"`
	Comment   *string `json:"comment,omitempty" validate:"omitempty,max=500"`
}

// QuickGradeRequest saves one evaluation for many students at once.
type QuickGradeRequest struct {
	CourseID     string           `json:"course_id" validate:"required"`
	EvaluationID string           `json:"evaluation_id" validate:"required"`
	Mode         string           `json:"mode" validate:"omitempty,oneof=atomic partialOnError"`
	Items        []QuickGradeItem `json:"items" validate:"required,min=1,dive"`
}

// QuickGradeResult summarises a quick-grading save.
type QuickGradeResult struct {
	SuccessCount int                 `json:"success_count"`
	Failures     []QuickGradeFailure `json:"failures,omitempty"`
}

// QuickGradeFailure captures a rejected item in partialOnError mode.
type QuickGradeFailure struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

// GradeService backs the grading grid and quick-grading save flows.
type GradeService struct {
	scores      scoreRepo
	evaluations evaluationReader
	courses     courseReader
	roster      rosterReader
	cache       *CacheService
	policy      GradingPolicy
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewGradeService constructs GradeService.
func NewGradeService(scores scoreRepo, evaluations evaluationReader, courses courseReader, roster rosterReader, cache *CacheService, policy GradingPolicy, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		scores:      scores,
		evaluations: evaluations,
		courses:     courses,
		roster:      roster,
		cache:       cache,
		policy:      policy,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// Upsert saves one score, replacing any prior value for the same student and evaluation.
func (s *GradeService) Upsert(ctx context.Context, req UpsertScoreRequest) (*UpsertScoreResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}
	course, evaluation, err := s.loadScope(ctx, req.CourseID, req.EvaluationID)
	if err != nil {
		return nil, err
	}
	scale := s.policy.Options(course).Scale
	if err := checkValue(req.Value, scale); err != nil {
		return nil, err
	}

	score := &models.Score{
		StudentID:      req.StudentID,
		CourseID:       course.ID,
		EvaluationID:   evaluation.ID,
		EvaluationName: evaluation.Name,
		Value:          req.Value,
		Weight:         req.Weight,
		Comment:        req.Comment,
		RecordedAt:     s.now().UTC(),
	}
	if err := s.scores.Upsert(ctx, score); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save score")
	}
	s.cache.InvalidateCourse(ctx, course.ID)

	average, err := s.average(ctx, course, req.StudentID)
	if err != nil {
		return nil, err
	}
	return &UpsertScoreResult{Score: *score, Average: *average}, nil
}

// QuickGrade saves an evaluation for several enrolled students. Atomic mode (the default)
// rejects the whole sheet on the first invalid item; partialOnError saves what it can.
func (s *GradeService) QuickGrade(ctx context.Context, req QuickGradeRequest) (*QuickGradeResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quick grade payload")
	}
	course, evaluation, err := s.loadScope(ctx, req.CourseID, req.EvaluationID)
	if err != nil {
		return nil, err
	}
	roster, err := s.roster.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	enrolled := make(map[string]struct{}, len(roster))
	for _, r := range roster {
		enrolled[r.StudentID] = struct{}{}
	}
	scale := s.policy.Options(course).Scale
	atomic := req.Mode == "" || req.Mode == QuickGradeAtomic
	recordedAt := s.now().UTC()

	result := &QuickGradeResult{}
	var batch []models.Score
	for _, item := range req.Items {
		reason := ""
		if _, ok := enrolled[item.StudentID]; !ok {
			reason = "student not enrolled in course"
		} else if err := checkValue(item.Value, scale); err != nil {
			reason = err.Error()
		}
		if reason != "" {
			if atomic {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s: %s", item.StudentID, reason))
			}
			result.Failures = append(result.Failures, QuickGradeFailure{StudentID: item.StudentID, Reason: reason})
			continue
		}
		score := models.Score{
			StudentID:      item.StudentID,
			CourseID:       course.ID,
			EvaluationID:   evaluation.ID,
			EvaluationName: evaluation.Name,
			Value:          item.Value,
			Comment:        item.Comment,
			RecordedAt:     recordedAt,
		}
		if atomic {
			batch = append(batch, score)
			continue
		}
		if err := s.scores.Upsert(ctx, &score); err != nil {
			s.logger.Warn("quick grade item failed", zap.String("course_id", course.ID), zap.String("student_id", item.StudentID), zap.Error(err))
			result.Failures = append(result.Failures, QuickGradeFailure{StudentID: item.StudentID, Reason: "failed to save score"})
			continue
		}
		result.SuccessCount++
	}
	if atomic {
		if err := s.scores.BulkUpsert(ctx, batch); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save scores")
		}
		result.SuccessCount = len(batch)
	}
	if result.SuccessCount > 0 {
		s.cache.InvalidateCourse(ctx, course.ID)
	}
	s.logger.Info("quick grade saved",
		zap.String("course_id", course.ID),
		zap.String("evaluation_id", evaluation.ID),
		zap.Int("saved", result.SuccessCount),
		zap.Int("failed", len(result.Failures)))
	return result, nil
}

// StudentAverage returns a student's weighted course average. A student without usable
// scores is reported as ungraded rather than as an error.
func (s *GradeService) StudentAverage(ctx context.Context, courseID, studentID string) (*models.StudentAverageView, error) {
	if strings.TrimSpace(courseID) == "" || strings.TrimSpace(studentID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course and student required")
	}
	course, err := findCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}
	return s.average(ctx, course, studentID)
}

func (s *GradeService) average(ctx context.Context, course *models.Course, studentID string) (*models.StudentAverageView, error) {
	evaluations, err := s.evaluations.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluations")
	}
	scores, err := s.scores.ListByStudent(ctx, course.ID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scores")
	}
	avg, err := gradebook.StudentCourseAverage(models.ScoreRecords(scores), models.EvaluationSpecs(evaluations), studentID, course.ID)
	view := studentAverageView(avg, err, s.policy.Options(course).Scale, "")
	return &view, nil
}

func (s *GradeService) loadScope(ctx context.Context, courseID, evaluationID string) (*models.Course, *models.Evaluation, error) {
	course, err := findCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, nil, err
	}
	evaluation, err := s.evaluations.FindByID(ctx, evaluationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	if evaluation.CourseID != course.ID {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "evaluation does not belong to course")
	}
	return course, evaluation, nil
}

func findCourse(ctx context.Context, courses courseReader, courseID string) (*models.Course, error) {
	course, err := courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// checkValue rejects values outside [0, scale.Max]; the engine itself accepts any number.
func checkValue(value float64, scale gradebook.Scale) *appErrors.Error {
	if value < 0 || value > scale.Max {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("value %.2f outside scale 0-%.0f", value, scale.Max))
	}
	return nil
}
