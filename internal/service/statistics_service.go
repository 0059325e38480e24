package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/gradebook"
	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

// StatisticsService serves the statistics panel, leaderboards and dashboard cards.
// Every read recomputes from the current snapshot unless a cached view of the course's
// current cache generation exists; saving a score starts a new generation.
type StatisticsService struct {
	scores      scoreRepo
	evaluations evaluationReader
	courses     courseReader
	roster      rosterReader
	cache       *CacheService
	metrics     *MetricsService
	policy      GradingPolicy
	cacheTTL    time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewStatisticsService constructs a statistics service.
func NewStatisticsService(scores scoreRepo, evaluations evaluationReader, courses courseReader, roster rosterReader, cache *CacheService, metrics *MetricsService, policy GradingPolicy, cacheTTL time.Duration, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{
		scores:      scores,
		evaluations: evaluations,
		courses:     courses,
		roster:      roster,
		cache:       cache,
		metrics:     metrics,
		policy:      policy,
		cacheTTL:    cacheTTL,
		logger:      logger,
		now:         time.Now,
	}
}

type courseSnapshot struct {
	course      *models.Course
	evaluations []models.Evaluation
	roster      []models.RosterEntry
	scores      []models.Score
}

// Course returns the full statistics of a course. The boolean reports a cache hit.
func (s *StatisticsService) Course(ctx context.Context, courseID string) (*models.CourseStatisticsView, bool, error) {
	key, cacheable := s.cache.CourseKey(ctx, courseID, courseStatsView)
	var cached models.CourseStatisticsView
	if cacheable && s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	snap, err := s.load(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	opts := s.policy.Options(snap.course)
	names := rosterNames(snap.roster)

	start := time.Now()
	stats := gradebook.CourseStats(
		models.ScoreRecords(snap.scores),
		models.EvaluationSpecs(snap.evaluations),
		models.RosterIDs(snap.roster),
		snap.course.ID,
		opts,
	)
	s.metrics.ObserveStatistics("course", time.Since(start))

	view := &models.CourseStatisticsView{
		CourseID:            snap.course.ID,
		CourseName:          snap.course.Name,
		ScaleMax:            opts.Scale.Max,
		ClassStatisticsView: classView(stats.ClassStatistics),
		Students:            make([]models.StudentAverageView, 0, len(stats.Students)),
		Leaderboard:         leaderboardView(stats.Leaderboard, names),
		Evaluations:         make([]models.EvaluationStatisticsView, 0, len(stats.Evaluations)),
		GeneratedAt:         s.now().UTC(),
	}
	for _, avg := range stats.Students {
		view.Students = append(view.Students, studentAverageView(avg, nil, opts.Scale, names[avg.StudentID]))
	}
	for _, ev := range stats.Evaluations {
		view.Evaluations = append(view.Evaluations, evaluationView(ev, names))
	}

	if cacheable {
		s.cache.Set(ctx, key, view, s.cacheTTL)
	}
	return view, false, nil
}

// Evaluation returns the class statistics of a single evaluation of a course.
func (s *StatisticsService) Evaluation(ctx context.Context, courseID, evaluationID string) (*models.EvaluationStatisticsView, bool, error) {
	key, cacheable := s.cache.CourseKey(ctx, courseID, evaluationStatsView(evaluationID))
	var cached models.EvaluationStatisticsView
	if cacheable && s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	snap, err := s.load(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	var spec *gradebook.EvaluationSpec
	for _, ev := range snap.evaluations {
		if ev.ID == evaluationID {
			converted := ev.Spec()
			spec = &converted
			break
		}
	}
	if spec == nil {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found in course")
	}

	start := time.Now()
	stats := gradebook.EvaluationStats(models.ScoreRecords(snap.scores), models.RosterIDs(snap.roster), *spec, s.policy.Options(snap.course))
	s.metrics.ObserveStatistics("evaluation", time.Since(start))

	view := evaluationView(stats, rosterNames(snap.roster))
	if cacheable {
		s.cache.Set(ctx, key, view, s.cacheTTL)
	}
	return &view, false, nil
}

// Leaderboard returns the top ranked students of a course. A non-positive limit uses
// the configured leaderboard size.
func (s *StatisticsService) Leaderboard(ctx context.Context, courseID string, limit int) ([]models.LeaderboardEntry, bool, error) {
	stats, hit, err := s.Course(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	if limit <= 0 {
		limit = s.policy.LeaderboardSize
	}
	return gradebook.TopK(stats.Leaderboard, limit), hit, nil
}

// Dashboard builds the summary cards of a course.
func (s *StatisticsService) Dashboard(ctx context.Context, courseID string) (*models.DashboardSummary, bool, error) {
	stats, hit, err := s.Course(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	// Progression is written through outside the statistics cache, so read it fresh.
	course, err := findCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, false, err
	}

	summary := &models.DashboardSummary{
		CourseID:      stats.CourseID,
		CourseName:    stats.CourseName,
		Participation: stats.Participation,
		TopStudents:   gradebook.TopK(stats.Leaderboard, s.policy.LeaderboardSize),
	}
	if stats.Summary != nil {
		mean := stats.Summary.Mean
		summary.ClassAverage = &mean
	}
	if len(stats.PassRates) > 0 {
		rate := stats.PassRates[0]
		summary.PassRate = &rate
	}
	if course.PlannedHours > 0 {
		progression := course.Progression
		summary.Progression = &progression
	}
	for _, st := range stats.Students {
		if st.Status == models.AverageUngraded {
			summary.UngradedStudents++
		}
	}
	for _, ev := range stats.Evaluations {
		if ev.Summary != nil {
			summary.EvaluationsGraded++
		}
	}
	return summary, hit, nil
}

func (s *StatisticsService) load(ctx context.Context, courseID string) (*courseSnapshot, error) {
	course, err := findCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Options(course).Scale.Validate(); err != nil {
		return nil, appErrors.FromEngine(err)
	}

	snap := &courseSnapshot{course: course}
	start := time.Now()
	if snap.evaluations, err = s.evaluations.ListByCourse(ctx, course.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluations")
	}
	s.metrics.ObserveDBQuery("evaluations_by_course", time.Since(start))

	start = time.Now()
	if snap.roster, err = s.roster.ListByCourse(ctx, course.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	s.metrics.ObserveDBQuery("roster_by_course", time.Since(start))

	start = time.Now()
	if snap.scores, err = s.scores.ListByCourse(ctx, course.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scores")
	}
	s.metrics.ObserveDBQuery("scores_by_course", time.Since(start))

	s.logger.Debug("statistics snapshot loaded",
		zap.String("course_id", course.ID),
		zap.Int("scores", len(snap.scores)),
		zap.Int("roster", len(snap.roster)))
	return snap, nil
}
