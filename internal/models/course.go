package models

import (
	"time"

	"github.com/noah-isme/gradebook-api/internal/gradebook"
)

// Course is a teaching unit with its planned hours and cached progression.
// Progression is a write-through copy; sessions remain the source of truth.
type Course struct {
	ID            string    `db:"id" json:"id"`
	InstitutionID string    `db:"institution_id" json:"institution_id"`
	Name          string    `db:"name" json:"name"`
	PlannedHours  float64   `db:"planned_hours" json:"planned_hours"`
	Progression   float64   `db:"progression" json:"progression"`
	GradeScaleMax *float64  `db:"grade_scale_max" json:"grade_scale_max,omitempty"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Target returns the planned-hours target used for progression.
func (c Course) Target() gradebook.CourseTarget {
	return gradebook.CourseTarget{CourseID: c.ID, PlannedHours: c.PlannedHours}
}

// Session is a logged instructional session.
type Session struct {
	ID            string    `db:"id" json:"id"`
	CourseID      string    `db:"course_id" json:"course_id"`
	Date          time.Time `db:"date" json:"date"`
	DurationHours float64   `db:"duration_hours" json:"duration_hours"`
	Topic         *string   `db:"topic" json:"topic,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// SessionLogs converts rows into engine session logs.
func SessionLogs(sessions []Session) []gradebook.SessionLog {
	logs := make([]gradebook.SessionLog, 0, len(sessions))
	for _, s := range sessions {
		logs = append(logs, gradebook.SessionLog{CourseID: s.CourseID, Date: s.Date, DurationHours: s.DurationHours})
	}
	return logs
}

// RosterEntry is a student enrolled in a course.
type RosterEntry struct {
	StudentID string `db:"student_id" json:"student_id"`
	FullName  string `db:"full_name" json:"full_name"`
}

// RosterIDs returns the student ids in roster order.
func RosterIDs(roster []RosterEntry) []string {
	ids := make([]string, 0, len(roster))
	for _, r := range roster {
		ids = append(ids, r.StudentID)
	}
	return ids
}
