package service

import (
	"github.com/noah-isme/gradebook-api/internal/gradebook"
	"github.com/noah-isme/gradebook-api/internal/models"
)

// GradingPolicy is the configured grading scale. Thresholds are expressed on Scale.Max
// and are rescaled when an institution grades on a different ceiling.
type GradingPolicy struct {
	Scale           gradebook.Scale
	Thresholds      []float64
	LeaderboardSize int
}

// DefaultGradingPolicy grades on 0-20 with the band cut points as pass thresholds.
func DefaultGradingPolicy() GradingPolicy {
	return GradingPolicy{Scale: gradebook.DefaultScale(), LeaderboardSize: 5}
}

// Options returns the engine options for a course, applying its institution's ceiling.
func (p GradingPolicy) Options(course *models.Course) gradebook.Options {
	scale := p.Scale
	if course != nil && course.GradeScaleMax != nil && *course.GradeScaleMax > 0 {
		scale.Max = *course.GradeScaleMax
	}
	opts := gradebook.Options{Scale: scale}
	if len(p.Thresholds) > 0 && p.Scale.Max > 0 {
		ratio := scale.Max / p.Scale.Max
		opts.Thresholds = make([]float64, len(p.Thresholds))
		for i, t := range p.Thresholds {
			opts.Thresholds[i] = t * ratio
		}
	}
	return opts
}

func summaryView(s *gradebook.Summary) *models.SummaryView {
	if s == nil {
		return nil
	}
	return &models.SummaryView{Count: s.Count, Min: s.Min, Max: s.Max, Mean: s.Mean, Median: s.Median, StdDev: s.StdDev}
}

func classView(stats gradebook.ClassStatistics) models.ClassStatisticsView {
	view := models.ClassStatisticsView{
		Summary:      summaryView(stats.Summary),
		Distribution: make([]models.BandView, 0, len(stats.Distribution.Bands)),
		PassRates:    make([]models.PassRateView, 0, len(stats.PassRates)),
		Participation: models.ParticipationView{
			Graded:   stats.Participation.Graded,
			Enrolled: stats.Participation.Enrolled,
			Rate:     stats.Participation.Rate,
		},
	}
	for _, b := range stats.Distribution.Bands {
		view.Distribution = append(view.Distribution, models.BandView{Band: string(b.Band), Label: b.Label, Min: b.Min, Count: b.Count})
	}
	for _, p := range stats.PassRates {
		view.PassRates = append(view.PassRates, models.PassRateView{Threshold: p.Threshold, Passed: p.Passed, Rate: p.Rate})
	}
	return view
}

func leaderboardView(ranked []gradebook.RankedStudent, names map[string]string) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(ranked))
	for _, r := range ranked {
		entries = append(entries, models.LeaderboardEntry{Rank: r.Rank, StudentID: r.StudentID, StudentName: names[r.StudentID], Average: r.Average})
	}
	return entries
}

func studentAverageView(avg gradebook.StudentAverage, err error, scale gradebook.Scale, name string) models.StudentAverageView {
	view := models.StudentAverageView{StudentID: avg.StudentID, StudentName: name, Scored: avg.Scored}
	if !avg.Graded {
		view.Status = models.AverageUngraded
		switch {
		case err != nil:
			view.Reason = string(gradebook.Reason(err))
		case avg.Scored == 0:
			view.Reason = string(gradebook.ReasonNoData)
		default:
			view.Reason = string(gradebook.ReasonInvalidWeight)
		}
		return view
	}
	value := avg.Average
	band := scale.Classify(value)
	view.Status = models.AverageGraded
	view.Average = &value
	view.Band = string(band)
	view.Appreciation = band.Label()
	return view
}

func evaluationView(stats gradebook.EvaluationStatistics, names map[string]string) models.EvaluationStatisticsView {
	return models.EvaluationStatisticsView{
		EvaluationID:        stats.EvaluationID,
		EvaluationName:      stats.EvaluationName,
		Kind:                string(stats.Kind),
		Weight:              stats.Weight,
		ClassStatisticsView: classView(stats.ClassStatistics),
		Leaderboard:         leaderboardView(stats.Leaderboard, names),
	}
}

func rosterNames(roster []models.RosterEntry) map[string]string {
	names := make(map[string]string, len(roster))
	for _, r := range roster {
		names[r.StudentID] = r.FullName
	}
	return names
}
