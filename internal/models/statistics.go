package models

import "time"

// AverageStatus distinguishes a computed average from a missing one.
type AverageStatus string

const (
	AverageGraded   AverageStatus = "graded"
	AverageUngraded AverageStatus = "ungraded"
)

// StudentAverageView is a student's course average as displayed by grading screens.
// Average is nil when the student is ungraded; it is never reported as zero.
type StudentAverageView struct {
	StudentID    string        `json:"student_id"`
	StudentName  string        `json:"student_name,omitempty"`
	Status       AverageStatus `json:"status"`
	Reason       string        `json:"reason,omitempty"`
	Average      *float64      `json:"average,omitempty"`
	Scored       int           `json:"scored"`
	Band         string        `json:"band,omitempty"`
	Appreciation string        `json:"appreciation,omitempty"`
}

// SummaryView holds descriptive statistics.
type SummaryView struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// BandView is one bucket of a grade distribution.
type BandView struct {
	Band  string  `json:"band"`
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Count int     `json:"count"`
}

// PassRateView is the share of scores at or above a threshold.
type PassRateView struct {
	Threshold float64 `json:"threshold"`
	Passed    int     `json:"passed"`
	Rate      float64 `json:"rate"`
}

// ParticipationView relates graded students to the enrolled roster.
type ParticipationView struct {
	Graded   int     `json:"graded"`
	Enrolled int     `json:"enrolled"`
	Rate     float64 `json:"rate"`
}

// LeaderboardEntry is a ranked student.
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name,omitempty"`
	Average     float64 `json:"average"`
}

// ClassStatisticsView is the shared aggregate block of course and evaluation statistics.
type ClassStatisticsView struct {
	Summary       *SummaryView      `json:"summary,omitempty"`
	Distribution  []BandView        `json:"distribution"`
	PassRates     []PassRateView    `json:"pass_rates"`
	Participation ParticipationView `json:"participation"`
}

// EvaluationStatisticsView is the class view of one evaluation.
type EvaluationStatisticsView struct {
	EvaluationID   string  `json:"evaluation_id,omitempty"`
	EvaluationName string  `json:"evaluation_name"`
	Kind           string  `json:"kind,omitempty"`
	Weight         float64 `json:"weight,omitempty"`
	ClassStatisticsView
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// CourseStatisticsView is the class view of a course.
type CourseStatisticsView struct {
	CourseID   string  `json:"course_id"`
	CourseName string  `json:"course_name,omitempty"`
	ScaleMax   float64 `json:"scale_max"`
	ClassStatisticsView
	Students    []StudentAverageView       `json:"students"`
	Leaderboard []LeaderboardEntry         `json:"leaderboard"`
	Evaluations []EvaluationStatisticsView `json:"evaluations"`
	GeneratedAt time.Time                  `json:"generated_at"`
}

// ProgressionView reports course completion against its planned hours.
type ProgressionView struct {
	CourseID       string    `json:"course_id"`
	PlannedHours   float64   `json:"planned_hours"`
	HoursCompleted float64   `json:"hours_completed"`
	RemainingHours float64   `json:"remaining_hours"`
	Progression    float64   `json:"progression"`
	Sessions       int       `json:"sessions"`
	ComputedAt     time.Time `json:"computed_at"`
}

// DashboardSummary feeds the dashboard summary cards of a course.
type DashboardSummary struct {
	CourseID          string             `json:"course_id"`
	CourseName        string             `json:"course_name,omitempty"`
	ClassAverage      *float64           `json:"class_average,omitempty"`
	PassRate          *PassRateView      `json:"pass_rate,omitempty"`
	Participation     ParticipationView  `json:"participation"`
	Progression       *float64           `json:"progression,omitempty"`
	TopStudents       []LeaderboardEntry `json:"top_students"`
	UngradedStudents  int                `json:"ungraded_students"`
	EvaluationsGraded int                `json:"evaluations_graded"`
}
