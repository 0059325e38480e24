package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/gradebook"
	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

type mockScoreRepo struct {
	mu        sync.Mutex
	scores    []models.Score
	upsertErr error
	bulkErr   error
	bulkCalls int
}

func (m *mockScoreRepo) ListByCourse(ctx context.Context, courseID string) ([]models.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Score
	for _, s := range m.scores {
		if s.CourseID == courseID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockScoreRepo) ListByStudent(ctx context.Context, courseID, studentID string) ([]models.Score, error) {
	all, _ := m.ListByCourse(ctx, courseID)
	var out []models.Score
	for _, s := range all {
		if s.StudentID == studentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockScoreRepo) Upsert(ctx context.Context, score *models.Score) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(*score)
	return nil
}

func (m *mockScoreRepo) BulkUpsert(ctx context.Context, scores []models.Score) error {
	m.bulkCalls++
	if m.bulkErr != nil {
		return m.bulkErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range scores {
		m.put(s)
	}
	return nil
}

func (m *mockScoreRepo) put(score models.Score) {
	for i, existing := range m.scores {
		if existing.StudentID == score.StudentID && existing.CourseID == score.CourseID && existing.EvaluationID == score.EvaluationID {
			m.scores[i] = score
			return
		}
	}
	m.scores = append(m.scores, score)
}

type mockEvaluationReader struct {
	evaluations []models.Evaluation
}

func (m *mockEvaluationReader) ListByCourse(ctx context.Context, courseID string) ([]models.Evaluation, error) {
	var out []models.Evaluation
	for _, e := range m.evaluations {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEvaluationReader) FindByID(ctx context.Context, id string) (*models.Evaluation, error) {
	for i := range m.evaluations {
		if m.evaluations[i].ID == id {
			ev := m.evaluations[i]
			return &ev, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockCourseRepo struct {
	mu        sync.Mutex
	courses   map[string]*models.Course
	updateErr error
	updates   int
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	course, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *course
	return &copied, nil
}

func (m *mockCourseRepo) UpdateProgression(ctx context.Context, courseID string, progression float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	course, ok := m.courses[courseID]
	if !ok {
		return sql.ErrNoRows
	}
	course.Progression = progression
	m.updates++
	return nil
}

func (m *mockCourseRepo) progression(courseID string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.courses[courseID].Progression
}

type mockRosterReader struct {
	roster map[string][]models.RosterEntry
}

func (m *mockRosterReader) ListByCourse(ctx context.Context, courseID string) ([]models.RosterEntry, error) {
	return m.roster[courseID], nil
}

type mockCacheRepo struct {
	mu       sync.Mutex
	entries  map[string][]byte
	counters map[string]int64
	deleted  []string
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{entries: make(map[string][]byte), counters: make(map[string]int64)}
}

func (m *mockCacheRepo) Counter(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key], nil
}

func (m *mockCacheRepo) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
	return m.counters[key], nil
}

func (m *mockCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *mockCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	m.deleted = append(m.deleted, pattern)
	return nil
}

type gradebookFixture struct {
	scores      *mockScoreRepo
	evaluations *mockEvaluationReader
	courses     *mockCourseRepo
	roster      *mockRosterReader
	cacheRepo   *mockCacheRepo
	cache       *CacheService
	metrics     *MetricsService
}

func ptrFloat(v float64) *float64 {
	return &v
}

// newGradebookFixture seeds a 0-20 course: ana 10 (quiz, x1) and 16 (exam, x2) for 14,
// ben 18 on both, cleo 8 on the quiz only and dan without scores.
func newGradebookFixture() *gradebookFixture {
	recorded := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
	score := func(student, evaluation, name string, value float64) models.Score {
		return models.Score{ID: student + evaluation, StudentID: student, CourseID: "math", EvaluationID: evaluation, EvaluationName: name, Value: value, RecordedAt: recorded}
	}
	metrics := NewMetricsService()
	cacheRepo := newMockCacheRepo()
	return &gradebookFixture{
		scores: &mockScoreRepo{scores: []models.Score{
			score("ana", "quiz", "Quiz", 10),
			score("ana", "exam", "Exam", 16),
			score("ben", "quiz", "Quiz", 18),
			score("ben", "exam", "Exam", 18),
			score("cleo", "quiz", "Quiz", 8),
		}},
		evaluations: &mockEvaluationReader{evaluations: []models.Evaluation{
			{ID: "quiz", CourseID: "math", Name: "Quiz", Weight: 1, Kind: gradebook.KindQuiz},
			{ID: "exam", CourseID: "math", Name: "Exam", Weight: 2, Kind: gradebook.KindExam},
			{ID: "essay", CourseID: "bio", Name: "Essay", Weight: 1, Kind: gradebook.KindHomework},
		}},
		courses: &mockCourseRepo{courses: map[string]*models.Course{
			"math": {ID: "math", Name: "Mathematics", PlannedHours: 20, Progression: 25},
			"bio":  {ID: "bio", Name: "Biology", PlannedHours: 10, GradeScaleMax: ptrFloat(100)},
		}},
		roster: &mockRosterReader{roster: map[string][]models.RosterEntry{
			"math": {{StudentID: "ana", FullName: "Ana"}, {StudentID: "ben", FullName: "Ben"}, {StudentID: "cleo", FullName: "Cleo"}, {StudentID: "dan", FullName: "Dan"}},
			"bio":  {{StudentID: "ana", FullName: "Ana"}},
		}},
		cacheRepo: cacheRepo,
		cache:     NewCacheService(cacheRepo, metrics, time.Minute, zap.NewNop(), true),
		metrics:   metrics,
	}
}

func (f *gradebookFixture) gradeService() *GradeService {
	svc := NewGradeService(f.scores, f.evaluations, f.courses, f.roster, f.cache, DefaultGradingPolicy(), validator.New(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 10, 2, 9, 0, 0, 0, time.UTC) }
	return svc
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected typed error, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestGradeServiceUpsertReturnsRefreshedAverage(t *testing.T) {
	f := newGradebookFixture()
	svc := f.gradeService()

	result, err := svc.Upsert(context.Background(), UpsertScoreRequest{StudentID: "dan", CourseID: "math", EvaluationID: "quiz", Value: 12})
	require.NoError(t, err)
	assert.Equal(t, "Quiz", result.Score.EvaluationName)
	assert.Equal(t, models.AverageGraded, result.Average.Status)
	require.NotNil(t, result.Average.Average)
	assert.InDelta(t, 12, *result.Average.Average, 1e-9)
	assert.Equal(t, string(gradebook.BandFair), result.Average.Band)
	assert.Equal(t, "Fair", result.Average.Appreciation)
	assert.Equal(t, []string{"stats:math:*"}, f.cacheRepo.deleted)
}

func TestGradeServiceUpsertReplacesPriorValue(t *testing.T) {
	f := newGradebookFixture()
	svc := f.gradeService()

	result, err := svc.Upsert(context.Background(), UpsertScoreRequest{StudentID: "ana", CourseID: "math", EvaluationID: "quiz", Value: 16})
	require.NoError(t, err)
	require.NotNil(t, result.Average.Average)
	assert.InDelta(t, 16, *result.Average.Average, 1e-9)
	assert.Equal(t, 2, result.Average.Scored)
}

func TestGradeServiceUpsertValidation(t *testing.T) {
	f := newGradebookFixture()
	svc := f.gradeService()
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertScoreRequest{StudentID: "ana", CourseID: "math", EvaluationID: "quiz", Value: 21})
	requireAppError(t, err, appErrors.ErrValidation.Code)

	_, err = svc.Upsert(ctx, UpsertScoreRequest{StudentID: "ana", CourseID: "math", EvaluationID: "quiz", Value: -1})
	requireAppError(t, err, appErrors.ErrValidation.Code)

	_, err = svc.Upsert(ctx, UpsertScoreRequest{StudentID: "ana", CourseID: "math", EvaluationID: "essay", Value: 10})
	requireAppError(t, err, appErrors.ErrValidation.Code)

	_, err = svc.Upsert(ctx, UpsertScoreRequest{StudentID: "ana", CourseID: "math", EvaluationID: "oral", Value: 10})
	requireAppError(t, err, appErrors.ErrNotFound.Code)

	_, err = svc.Upsert(ctx, UpsertScoreRequest{StudentID: "ana", CourseID: "history", EvaluationID: "quiz", Value: 10})
	requireAppError(t, err, appErrors.ErrNotFound.Code)

	assert.Len(t, f.scores.scores, 5)
}

func TestGradeServiceUpsertUsesInstitutionScale(t *testing.T) {
	f := newGradebookFixture()
	svc := f.gradeService()

	result, err := svc.Upsert(context.Background(), UpsertScoreRequest{StudentID: "ana", CourseID: "bio", EvaluationID: "essay", Value: 85})
	require.NoError(t, err)
	assert.Equal(t, string(gradebook.BandExcellent), result.Average.Band)
}

func TestGradeServiceQuickGradeAtomicRejectsSheet(t *testing.T) {
	f := newGradebookFixture()
	svc := f.gradeService()

	_, err := svc.QuickGrade(context.Background(), QuickGradeRequest{
		CourseID:     "math",
		EvaluationID: "exam",
		Items:        []QuickGradeItem{{StudentID: "cleo", Value: 11}, {StudentID: "zoe", Value: 12}},
	})
	requireAppError(t, err, appErrors.ErrValidation.Code)
	assert.Zero(t, f.scores.bulkCalls)
	assert.Empty(t, f.cacheRepo.deleted)
}

func TestGradeServiceQuickGradeAtomicSavesBatch(t *testing.T) {
	f := newGradebookFixture()
	svc := f.gradeService()

	result, err := svc.QuickGrade(context.Background(), QuickGradeRequest{
		CourseID:     "math",
		EvaluationID: "exam",
		Mode:         QuickGradeAtomic,
		Items:        []QuickGradeItem{{StudentID: "cleo", Value: 11}, {StudentID: "dan", Value: 9}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, f.scores.bulkCalls)
	assert.Len(t, f.scores.scores, 7)
}

func TestGradeServiceQuickGradePartialOnError(t *testing.T) {
	f := newGradebookFixture()
	svc := f.gradeService()

	result, err := svc.QuickGrade(context.Background(), QuickGradeRequest{
		CourseID:     "math",
		EvaluationID: "exam",
		Mode:         QuickGradePartialOnError,
		Items: []QuickGradeItem{
			{StudentID: "cleo", Value: 11},
			{StudentID: "dan", Value: 25},
			{StudentID: "zoe", Value: 10},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, "dan", result.Failures[0].StudentID)
	assert.Equal(t, "zoe", result.Failures[1].StudentID)
	assert.Equal(t, []string{"stats:math:*"}, f.cacheRepo.deleted)
}

func TestGradeServiceStudentAverage(t *testing.T) {
	f := newGradebookFixture()
	svc := f.gradeService()
	ctx := context.Background()

	ana, err := svc.StudentAverage(ctx, "math", "ana")
	require.NoError(t, err)
	require.NotNil(t, ana.Average)
	assert.InDelta(t, 14, *ana.Average, 1e-9)
	assert.Equal(t, "Good", ana.Appreciation)

	dan, err := svc.StudentAverage(ctx, "math", "dan")
	require.NoError(t, err)
	assert.Equal(t, models.AverageUngraded, dan.Status)
	assert.Equal(t, string(gradebook.ReasonNoData), dan.Reason)
	assert.Nil(t, dan.Average)
}

func TestGradeServiceUpsertRejectsZeroWeight(t *testing.T) {
	f := newGradebookFixture()
	svc := f.gradeService()

	_, err := svc.Upsert(context.Background(), UpsertScoreRequest{StudentID: "dan", CourseID: "math", EvaluationID: "quiz", Value: 12, Weight: ptrFloat(0)})
	requireAppError(t, err, appErrors.ErrValidation.Code)
	assert.Len(t, f.scores.scores, 5)
}

func TestGradeServiceUpsertKeepsExplicitWeight(t *testing.T) {
	f := newGradebookFixture()
	svc := f.gradeService()

	// quiz 10 at x3 and exam 16 at x2 gives 12.4
	result, err := svc.Upsert(context.Background(), UpsertScoreRequest{StudentID: "ana", CourseID: "math", EvaluationID: "quiz", Value: 10, Weight: ptrFloat(3)})
	require.NoError(t, err)
	require.NotNil(t, result.Score.Weight)
	assert.Equal(t, 3.0, *result.Score.Weight)
	require.NotNil(t, result.Average.Average)
	assert.InDelta(t, 12.4, *result.Average.Average, 1e-9)
}

func TestGradeServiceZeroCoefficientLeavesStudentUngraded(t *testing.T) {
	f := newGradebookFixture()
	f.evaluations.evaluations = append(f.evaluations.evaluations,
		models.Evaluation{ID: "formative", CourseID: "math", Name: "Formative", Weight: 0, Kind: gradebook.KindHomework})
	svc := f.gradeService()

	result, err := svc.Upsert(context.Background(), UpsertScoreRequest{StudentID: "ben", CourseID: "math", EvaluationID: "formative", Value: 2})
	require.NoError(t, err)
	assert.Equal(t, models.AverageUngraded, result.Average.Status)
	assert.Equal(t, string(gradebook.ReasonInvalidWeight), result.Average.Reason)
	assert.Nil(t, result.Average.Average)
}
