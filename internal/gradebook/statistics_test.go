package gradebook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func courseFixture() ([]ScoreRecord, []EvaluationSpec, []string) {
	specs := []EvaluationSpec{
		{ID: "quiz", CourseID: "math", Name: "Quiz", Weight: 1, Kind: KindQuiz},
		{ID: "exam", CourseID: "math", Name: "Exam", Weight: 2, Kind: KindExam},
	}
	records := []ScoreRecord{
		{StudentID: "ana", CourseID: "math", EvaluationID: "quiz", Value: 10},
		{StudentID: "ana", CourseID: "math", EvaluationID: "exam", Value: 16},
		{StudentID: "ben", CourseID: "math", EvaluationID: "quiz", Value: 18},
		{StudentID: "ben", CourseID: "math", EvaluationID: "exam", Value: 18},
		{StudentID: "cleo", CourseID: "math", EvaluationID: "quiz", Value: 8},
		{StudentID: "ana", CourseID: "physics", EvaluationID: "lab", Value: 2},
	}
	roster := []string{"ana", "ben", "cleo", "dan"}
	return records, specs, roster
}

func TestStudentCourseAverage(t *testing.T) {
	records, specs, _ := courseFixture()

	avg, err := StudentCourseAverage(records, specs, "ana", "math")
	require.NoError(t, err)
	assert.True(t, avg.Graded)
	assert.Equal(t, 2, avg.Scored)
	assert.InDelta(t, 14.0, avg.Average, 1e-9)

	avg, err = StudentCourseAverage(records, specs, "dan", "math")
	assert.ErrorIs(t, err, ErrNoData)
	assert.False(t, avg.Graded)
	assert.Equal(t, ReasonNoData, Reason(err))
}

func TestStudentCourseAverageUsesLatestRecord(t *testing.T) {
	_, specs, _ := courseFixture()
	early := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
	records := []ScoreRecord{
		{StudentID: "ana", CourseID: "math", EvaluationID: "quiz", Value: 4, RecordedAt: early},
		{StudentID: "ana", CourseID: "math", EvaluationID: "quiz", Value: 12, RecordedAt: early.Add(time.Hour)},
	}
	avg, err := StudentCourseAverage(records, specs, "ana", "math")
	require.NoError(t, err)
	assert.Equal(t, 1, avg.Scored)
	assert.Equal(t, 12.0, avg.Average)
}

func TestCourseStatsExcludesUngradedFromClassFigures(t *testing.T) {
	records, specs, roster := courseFixture()
	stats := CourseStats(records, specs, roster, "math", DefaultOptions())

	require.Len(t, stats.Students, 4)
	assert.Equal(t, "dan", stats.Students[3].StudentID)
	assert.False(t, stats.Students[3].Graded)

	require.NotNil(t, stats.Summary)
	assert.Equal(t, 3, stats.Summary.Count)
	// ana 14, ben 18, cleo 8
	assert.InDelta(t, 40.0/3, stats.Summary.Mean, 1e-9)
	assert.Equal(t, 3, stats.Distribution.Total)

	assert.Equal(t, 3, stats.Participation.Graded)
	assert.Equal(t, 4, stats.Participation.Enrolled)
	assert.InDelta(t, 75.0, stats.Participation.Rate, 1e-9)

	require.Len(t, stats.Leaderboard, 3)
	assert.Equal(t, "ben", stats.Leaderboard[0].StudentID)
	assert.Equal(t, "ana", stats.Leaderboard[1].StudentID)
	assert.Equal(t, "cleo", stats.Leaderboard[2].StudentID)

	require.Len(t, stats.PassRates, 4)
	assert.InDelta(t, 200.0/3, stats.PassRates[0].Rate, 1e-9)
}

func TestCourseStatsInvalidWeightOnlyAffectsThatStudent(t *testing.T) {
	records, specs, roster := courseFixture()
	records = append(records, ScoreRecord{StudentID: "dan", CourseID: "math", EvaluationID: "quiz", Value: 15, Weight: weightOf(-1)})
	stats := CourseStats(records, specs, roster, "math", DefaultOptions())

	require.NotNil(t, stats.Summary)
	assert.Equal(t, 3, stats.Summary.Count)
	assert.False(t, stats.Students[3].Graded)
	assert.Len(t, stats.Leaderboard, 3)

	_, err := StudentCourseAverage(records, specs, "dan", "math")
	assert.Equal(t, ReasonInvalidWeight, Reason(err))
}

func TestCourseStatsEmptyCourse(t *testing.T) {
	stats := CourseStats(nil, nil, []string{"ana"}, "math", DefaultOptions())
	assert.Nil(t, stats.Summary)
	assert.Empty(t, stats.Leaderboard)
	assert.Equal(t, 0.0, stats.Participation.Rate)
	for _, rate := range stats.PassRates {
		assert.Equal(t, 0.0, rate.Rate)
	}

	stats = CourseStats(nil, nil, nil, "math", DefaultOptions())
	assert.Equal(t, 0, stats.Participation.Enrolled)
	assert.Equal(t, 0.0, stats.Participation.Rate)
}

func TestCourseStatsEvaluationBreakdown(t *testing.T) {
	records, specs, roster := courseFixture()
	records = append(records, ScoreRecord{StudentID: "ben", CourseID: "math", EvaluationName: "Oral", Value: 13})
	stats := CourseStats(records, specs, roster, "math", DefaultOptions())

	require.Len(t, stats.Evaluations, 3)
	quiz := stats.Evaluations[0]
	assert.Equal(t, "quiz", quiz.EvaluationID)
	require.NotNil(t, quiz.Summary)
	assert.Equal(t, 3, quiz.Summary.Count)
	assert.InDelta(t, 75.0, quiz.Participation.Rate, 1e-9)
	assert.Equal(t, "ben", quiz.Leaderboard[0].StudentID)

	exam := stats.Evaluations[1]
	assert.Equal(t, 2, exam.Summary.Count)
	assert.Equal(t, KindExam, exam.Kind)

	oral := stats.Evaluations[2]
	assert.Equal(t, "Oral", oral.EvaluationName)
	assert.Equal(t, 1, oral.Summary.Count)
}

func TestEvaluationStatsMatchesLegacyNames(t *testing.T) {
	spec := EvaluationSpec{ID: "final", CourseID: "math", Name: "Final Exam", Weight: 3}
	records := []ScoreRecord{
		{StudentID: "ana", CourseID: "math", EvaluationName: "final exam", Value: 12},
		{StudentID: "ben", CourseID: "math", EvaluationID: "final", Value: 16},
		{StudentID: "cleo", CourseID: "math", EvaluationID: "other", Value: 20},
	}
	stats := EvaluationStats(records, []string{"ana", "ben", "cleo"}, spec, DefaultOptions())
	require.NotNil(t, stats.Summary)
	assert.Equal(t, 2, stats.Summary.Count)
	assert.Equal(t, 1, bandCount(stats.Distribution, BandExcellent))
	assert.Equal(t, 1, bandCount(stats.Distribution, BandFair))
	assert.InDelta(t, 200.0/3, stats.Participation.Rate, 1e-9)
}

func TestCourseStatsCustomThresholds(t *testing.T) {
	records, specs, roster := courseFixture()
	opts := Options{Scale: DefaultScale(), Thresholds: []float64{8, 15}}
	stats := CourseStats(records, specs, roster, "math", opts)
	require.Len(t, stats.PassRates, 2)
	assert.Equal(t, 100.0, stats.PassRates[0].Rate)
	assert.InDelta(t, 100.0/3, stats.PassRates[1].Rate, 1e-9)
}

func TestDedupeRecordsKeepsFirstPosition(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := DedupeRecords([]ScoreRecord{
		{StudentID: "a", CourseID: "c", EvaluationID: "e1", Value: 1, RecordedAt: at.Add(time.Hour)},
		{StudentID: "b", CourseID: "c", EvaluationID: "e1", Value: 2, RecordedAt: at},
		{StudentID: "a", CourseID: "c", EvaluationID: "e1", Value: 3, RecordedAt: at},
	})
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].StudentID)
	assert.Equal(t, 1.0, records[0].Value)
}

func TestParticipation(t *testing.T) {
	assert.Equal(t, ParticipationRate{Graded: 3, Enrolled: 4, Rate: 75}, Participation(3, 4))
	assert.Equal(t, ParticipationRate{}, Participation(0, 0))
}
