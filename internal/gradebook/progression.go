package gradebook

// HoursCompleted sums the positive session durations logged for a course.
func HoursCompleted(sessions []SessionLog, courseID string) float64 {
	var total float64
	for _, s := range sessions {
		if s.CourseID != courseID || !(s.DurationHours > 0) {
			continue
		}
		total += s.DurationHours
	}
	return total
}

// Progression returns the completion percentage of a course, clamped to [0, 100].
// It always recomputes from the full session sum so it never decreases as sessions are appended.
func Progression(sessions []SessionLog, target CourseTarget) (float64, error) {
	if !(target.PlannedHours > 0) {
		return 0, ErrInvalidTarget
	}
	pct := 100 * HoursCompleted(sessions, target.CourseID) / target.PlannedHours
	switch {
	case pct > 100:
		return 100, nil
	case pct < 0:
		return 0, nil
	default:
		return pct, nil
	}
}

// RemainingHours is the number of planned hours not yet delivered, never negative.
func RemainingHours(sessions []SessionLog, target CourseTarget) (float64, error) {
	if !(target.PlannedHours > 0) {
		return 0, ErrInvalidTarget
	}
	remaining := target.PlannedHours - HoursCompleted(sessions, target.CourseID)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}
