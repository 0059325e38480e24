package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

// RosterRepository lists the students enrolled in a course.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository creates a new roster repository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// ListByCourse returns active enrollments ordered by student name.
func (r *RosterRepository) ListByCourse(ctx context.Context, courseID string) ([]models.RosterEntry, error) {
	const query = `SELECT st.id AS student_id, st.full_name
        FROM course_enrollments ce
        JOIN students st ON st.id = ce.student_id
        WHERE ce.course_id = $1 AND ce.status = 'ACTIVE'
        ORDER BY st.full_name ASC, st.id ASC`
	var roster []models.RosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, courseID); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return roster, nil
}
