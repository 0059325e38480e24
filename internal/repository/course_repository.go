package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

// CourseRepository reads course targets and stores the derived progression.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns the course with its institution grade ceiling. sql.ErrNoRows is returned unwrapped when missing.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT c.id, c.institution_id, c.name, c.planned_hours, c.progression, i.grade_scale_max, c.updated_at
        FROM courses c
        LEFT JOIN institutions i ON i.id = c.institution_id
        WHERE c.id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// UpdateProgression overwrites the cached progression of a course.
func (r *CourseRepository) UpdateProgression(ctx context.Context, courseID string, progression float64) error {
	const query = `UPDATE courses SET progression = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, progression, time.Now().UTC(), courseID)
	if err != nil {
		return fmt.Errorf("update progression: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
