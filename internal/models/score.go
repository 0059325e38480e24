package models

import (
	"time"

	"github.com/noah-isme/gradebook-api/internal/gradebook"
)

// Score is the current value a student holds on an evaluation of a course.
// The (student_id, course_id, evaluation_id) tuple is unique; saving again replaces the value.
type Score struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	CourseID       string    `db:"course_id" json:"course_id"`
	EvaluationID   string    `db:"evaluation_id" json:"evaluation_id"`
	EvaluationName string    `db:"evaluation_name" json:"evaluation_name"`
	Value          float64   `db:"value" json:"value"`
	Weight         *float64  `db:"weight" json:"weight,omitempty"`
	Comment        *string   `db:"comment" json:"comment,omitempty"`
	RecordedAt     time.Time `db:"recorded_at" json:"recorded_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Record converts the row into the engine's input type.
func (s Score) Record() gradebook.ScoreRecord {
	record := gradebook.ScoreRecord{
		StudentID:      s.StudentID,
		CourseID:       s.CourseID,
		EvaluationID:   s.EvaluationID,
		EvaluationName: s.EvaluationName,
		Value:          s.Value,
		RecordedAt:     s.RecordedAt,
	}
	if s.Weight != nil {
		w := *s.Weight
		record.Weight = &w
	}
	if s.Comment != nil {
		record.Comment = *s.Comment
	}
	return record
}

// ScoreRecords converts rows into engine records.
func ScoreRecords(scores []Score) []gradebook.ScoreRecord {
	records := make([]gradebook.ScoreRecord, 0, len(scores))
	for _, s := range scores {
		records = append(records, s.Record())
	}
	return records
}

// Evaluation is a graded activity of a course with its coefficient.
type Evaluation struct {
	ID        string                   `db:"id" json:"id"`
	CourseID  string                   `db:"course_id" json:"course_id"`
	Name      string                   `db:"name" json:"name"`
	Weight    float64                  `db:"weight" json:"weight"`
	Kind      gradebook.EvaluationKind `db:"kind" json:"kind"`
	CreatedAt time.Time                `db:"created_at" json:"created_at"`
}

// Spec converts the row into the engine's evaluation spec.
func (e Evaluation) Spec() gradebook.EvaluationSpec {
	return gradebook.EvaluationSpec{ID: e.ID, CourseID: e.CourseID, Name: e.Name, Weight: e.Weight, Kind: e.Kind}
}

// EvaluationSpecs converts rows into engine specs.
func EvaluationSpecs(evaluations []Evaluation) []gradebook.EvaluationSpec {
	specs := make([]gradebook.EvaluationSpec, 0, len(evaluations))
	for _, e := range evaluations {
		specs = append(specs, e.Spec())
	}
	return specs
}
