package gradebook

import (
	"sort"
	"strings"
	"time"
)

// DefaultWeight applies when neither the record nor its evaluation carries a coefficient.
const DefaultWeight = 1.0

// EvaluationKind tags an evaluation with its category.
type EvaluationKind string

const (
	KindQuiz      EvaluationKind = "quiz"
	KindExam      EvaluationKind = "exam"
	KindPractical EvaluationKind = "practical"
	KindOral      EvaluationKind = "oral"
	KindHomework  EvaluationKind = "homework"
	KindProject   EvaluationKind = "project"
)

// ScoreRecord is one raw score entry for a student on an evaluation.
// A nil Weight means "use the evaluation coefficient".
type ScoreRecord struct {
	StudentID      string
	CourseID       string
	EvaluationID   string
	EvaluationName string
	Value          float64
	Weight         *float64
	RecordedAt     time.Time
	Comment        string
}

// EvaluationSpec describes an evaluation of a course and its coefficient.
type EvaluationSpec struct {
	ID       string
	CourseID string
	Name     string
	Weight   float64
	Kind     EvaluationKind
}

// SessionLog is an instructional session delivered for a course.
type SessionLog struct {
	CourseID      string
	Date          time.Time
	DurationHours float64
}

// CourseTarget is the number of instructional hours planned for a course.
type CourseTarget struct {
	CourseID     string
	PlannedHours float64
}

// evaluationKey identifies the evaluation a record belongs to.
// Legacy records without an id fall back to a normalised name.
func (r ScoreRecord) evaluationKey() string {
	if r.EvaluationID != "" {
		return r.EvaluationID
	}
	return "name:" + normaliseName(r.EvaluationName)
}

func (e EvaluationSpec) key() string {
	if e.ID != "" {
		return e.ID
	}
	return "name:" + normaliseName(e.Name)
}

func normaliseName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DedupeRecords keeps a single current record per (student, course, evaluation).
// The latest RecordedAt wins; on equal timestamps the later input wins.
// The relative order of surviving records follows their first appearance.
func DedupeRecords(records []ScoreRecord) []ScoreRecord {
	type slot struct {
		pos    int
		record ScoreRecord
	}
	index := make(map[string]*slot, len(records))
	order := make([]string, 0, len(records))
	for _, record := range records {
		key := record.StudentID + "\x00" + record.CourseID + "\x00" + record.evaluationKey()
		existing, ok := index[key]
		if !ok {
			index[key] = &slot{pos: len(order), record: record}
			order = append(order, key)
			continue
		}
		if !record.RecordedAt.Before(existing.record.RecordedAt) {
			existing.record = record
		}
	}
	result := make([]ScoreRecord, 0, len(order))
	for _, key := range order {
		result = append(result, index[key].record)
	}
	return result
}

// specIndex resolves evaluation specs by id and by legacy name.
type specIndex struct {
	byID   map[string]EvaluationSpec
	byName map[string]EvaluationSpec
}

func newSpecIndex(specs []EvaluationSpec) specIndex {
	idx := specIndex{
		byID:   make(map[string]EvaluationSpec, len(specs)),
		byName: make(map[string]EvaluationSpec, len(specs)),
	}
	for _, spec := range specs {
		if spec.ID != "" {
			idx.byID[spec.ID] = spec
		}
		if name := normaliseName(spec.Name); name != "" {
			idx.byName[name] = spec
		}
	}
	return idx
}

func (idx specIndex) lookup(record ScoreRecord) (EvaluationSpec, bool) {
	if record.EvaluationID != "" {
		spec, ok := idx.byID[record.EvaluationID]
		return spec, ok
	}
	spec, ok := idx.byName[normaliseName(record.EvaluationName)]
	return spec, ok
}

// weight returns the coefficient applied to a record: its own weight when set,
// otherwise the matching evaluation's weight, otherwise DefaultWeight.
// Non-positive coefficients are returned as-is so the calculator rejects them.
func (idx specIndex) weight(record ScoreRecord) float64 {
	if record.Weight != nil {
		return *record.Weight
	}
	if spec, ok := idx.lookup(record); ok {
		return spec.Weight
	}
	return DefaultWeight
}

// groupByEvaluation buckets records by evaluation key, keeping keys in first-seen order.
func groupByEvaluation(records []ScoreRecord) ([]string, map[string][]ScoreRecord) {
	groups := make(map[string][]ScoreRecord)
	keys := make([]string, 0)
	for _, record := range records {
		key := record.evaluationKey()
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], record)
	}
	return keys, groups
}

func sortedCopy(values []float64) []float64 {
	out := append([]float64(nil), values...)
	sort.Float64s(out)
	return out
}
