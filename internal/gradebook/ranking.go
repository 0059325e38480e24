package gradebook

import "sort"

// StudentAverage is a student's computed average. Graded is false when the student has no usable scores,
// in which case Average is meaningless and must not be displayed as zero.
type StudentAverage struct {
	StudentID string
	Average   float64
	Scored    int
	Graded    bool
}

// RankedStudent is a leaderboard row.
type RankedStudent struct {
	Rank      int
	StudentID string
	Average   float64
}

// Rank orders graded students by average descending. Ties keep their input order
// and ranks run 1..N without gaps or shared positions. Ungraded entries are skipped.
func Rank(averages []StudentAverage) []RankedStudent {
	graded := make([]StudentAverage, 0, len(averages))
	for _, a := range averages {
		if a.Graded {
			graded = append(graded, a)
		}
	}
	sort.SliceStable(graded, func(i, j int) bool {
		return graded[i].Average > graded[j].Average
	})
	ranked := make([]RankedStudent, len(graded))
	for i, a := range graded {
		ranked[i] = RankedStudent{Rank: i + 1, StudentID: a.StudentID, Average: a.Average}
	}
	return ranked
}

// TopK returns the first k rows of a leaderboard, in engine or view form.
// A non-positive k returns all rows.
func TopK[T any](ranked []T, k int) []T {
	if k <= 0 || k >= len(ranked) {
		return ranked
	}
	return ranked[:k]
}
