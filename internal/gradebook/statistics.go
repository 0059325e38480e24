package gradebook

import "errors"

// UngradedReason explains why a student has no average.
type UngradedReason string

const (
	ReasonNoData        UngradedReason = "no_data"
	ReasonInvalidWeight UngradedReason = "invalid_weight"
)

// Options parameterises the statistics façade.
type Options struct {
	Scale Scale
	// Thresholds for pass rates. Empty means the band cut points of Scale.
	Thresholds []float64
}

// DefaultOptions uses the 0-20 scale and its cut points as thresholds.
func DefaultOptions() Options {
	return Options{Scale: DefaultScale()}
}

func (o Options) thresholds() []float64 {
	if len(o.Thresholds) > 0 {
		return o.Thresholds
	}
	return o.Scale.DefaultThresholds()
}

// ParticipationRate relates students holding at least one score to the enrolled population.
type ParticipationRate struct {
	Graded   int
	Enrolled int
	// Rate is a percentage in [0, 100]; zero when nobody is enrolled.
	Rate float64
}

// Participation computes graded/enrolled as a percentage.
func Participation(graded, enrolled int) ParticipationRate {
	p := ParticipationRate{Graded: graded, Enrolled: enrolled}
	if enrolled > 0 {
		p.Rate = 100 * float64(graded) / float64(enrolled)
	}
	return p
}

// ClassStatistics aggregates one set of scores. Summary is nil when no score is available.
type ClassStatistics struct {
	Summary       *Summary
	Distribution  Distribution
	PassRates     []PassRate
	Participation ParticipationRate
}

// EvaluationStatistics is the class view of a single evaluation.
type EvaluationStatistics struct {
	EvaluationID   string
	EvaluationName string
	Kind           EvaluationKind
	Weight         float64
	ClassStatistics
	Leaderboard []RankedStudent
}

// CourseStatistics is the class view of a whole course.
type CourseStatistics struct {
	CourseID string
	// Students follows roster order, then scored students missing from the roster.
	Students []StudentAverage
	ClassStatistics
	Leaderboard []RankedStudent
	Evaluations []EvaluationStatistics
}

func classStatistics(values []float64, graded, enrolled int, opts Options) ClassStatistics {
	stats := ClassStatistics{
		Distribution:  Distribute(values, opts.Scale),
		PassRates:     PassRates(values, opts.thresholds()),
		Participation: Participation(graded, enrolled),
	}
	if summary, err := Summarize(values); err == nil {
		stats.Summary = &summary
	}
	return stats
}

func matchesEvaluation(record ScoreRecord, spec EvaluationSpec) bool {
	if record.EvaluationID != "" {
		return record.EvaluationID == spec.ID
	}
	return normaliseName(record.EvaluationName) == normaliseName(spec.Name)
}

// EvaluationStats groups the course records of one evaluation, classifies them and
// builds a leaderboard on raw values. Roster is the enrolled population of the course.
func EvaluationStats(records []ScoreRecord, roster []string, spec EvaluationSpec, opts Options) EvaluationStatistics {
	enrolled := rosterSet(roster)
	values := make([]float64, 0)
	scores := make([]StudentAverage, 0)
	graded := 0
	for _, record := range DedupeRecords(records) {
		if spec.CourseID != "" && record.CourseID != spec.CourseID {
			continue
		}
		if !matchesEvaluation(record, spec) {
			continue
		}
		values = append(values, record.Value)
		scores = append(scores, StudentAverage{StudentID: record.StudentID, Average: record.Value, Scored: 1, Graded: true})
		if _, ok := enrolled[record.StudentID]; ok {
			graded++
		}
	}
	return EvaluationStatistics{
		EvaluationID:    spec.ID,
		EvaluationName:  spec.Name,
		Kind:            spec.Kind,
		Weight:          spec.Weight,
		ClassStatistics: classStatistics(values, graded, len(enrolled), opts),
		Leaderboard:     Rank(scores),
	}
}

// StudentCourseAverage averages a student's current records in a course, resolving
// weights from the evaluation specs. On failure the returned average is ungraded and the
// error is ErrNoData or ErrInvalidWeight.
func StudentCourseAverage(records []ScoreRecord, specs []EvaluationSpec, studentID, courseID string) (StudentAverage, error) {
	own := make([]ScoreRecord, 0)
	for _, record := range records {
		if record.StudentID == studentID && record.CourseID == courseID {
			own = append(own, record)
		}
	}
	own = DedupeRecords(own)
	result := StudentAverage{StudentID: studentID, Scored: len(own)}
	avg, err := RecordsAverage(own, specs)
	if err != nil {
		return result, err
	}
	result.Average = avg
	result.Graded = true
	return result, nil
}

// Reason maps an average error onto the ungraded display state.
func Reason(err error) UngradedReason {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidWeight):
		return ReasonInvalidWeight
	default:
		return ReasonNoData
	}
}

// CourseStats computes per-student averages, class statistics over graded students only,
// the course leaderboard and a per-evaluation breakdown. Ungraded students stay in the
// participation denominator and never abort the computation for the rest of the class.
func CourseStats(records []ScoreRecord, specs []EvaluationSpec, roster []string, courseID string, opts Options) CourseStatistics {
	course := make([]ScoreRecord, 0, len(records))
	for _, record := range records {
		if record.CourseID == courseID {
			course = append(course, record)
		}
	}
	course = DedupeRecords(course)

	enrolled := rosterSet(roster)
	students := make([]string, 0, len(enrolled))
	seen := make(map[string]struct{}, len(roster))
	for _, id := range roster {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		students = append(students, id)
	}
	for _, record := range course {
		if _, ok := seen[record.StudentID]; ok {
			continue
		}
		seen[record.StudentID] = struct{}{}
		students = append(students, record.StudentID)
	}

	averages := make([]StudentAverage, 0, len(students))
	values := make([]float64, 0, len(students))
	graded := 0
	for _, id := range students {
		avg, _ := StudentCourseAverage(course, specs, id, courseID)
		averages = append(averages, avg)
		if !avg.Graded {
			continue
		}
		values = append(values, avg.Average)
		if _, ok := enrolled[id]; ok {
			graded++
		}
	}

	return CourseStatistics{
		CourseID:        courseID,
		Students:        averages,
		ClassStatistics: classStatistics(values, graded, len(enrolled), opts),
		Leaderboard:     Rank(averages),
		Evaluations:     evaluationBreakdown(course, specs, roster, courseID, opts),
	}
}

// evaluationBreakdown covers every spec of the course, then evaluations only seen in records.
func evaluationBreakdown(records []ScoreRecord, specs []EvaluationSpec, roster []string, courseID string, opts Options) []EvaluationStatistics {
	idx := newSpecIndex(specs)
	covered := make(map[string]struct{}, len(specs))
	result := make([]EvaluationStatistics, 0, len(specs))
	for _, spec := range specs {
		if spec.CourseID != "" && spec.CourseID != courseID {
			continue
		}
		covered[spec.key()] = struct{}{}
		result = append(result, EvaluationStats(records, roster, spec, opts))
	}
	keys, groups := groupByEvaluation(records)
	for _, key := range keys {
		if _, ok := covered[key]; ok {
			continue
		}
		first := groups[key][0]
		if spec, ok := idx.lookup(first); ok {
			if _, done := covered[spec.key()]; done {
				continue
			}
		}
		orphan := EvaluationSpec{ID: first.EvaluationID, CourseID: courseID, Name: first.EvaluationName}
		covered[key] = struct{}{}
		result = append(result, EvaluationStats(records, roster, orphan, opts))
	}
	return result
}

func rosterSet(roster []string) map[string]struct{} {
	set := make(map[string]struct{}, len(roster))
	for _, id := range roster {
		set[id] = struct{}{}
	}
	return set
}
