package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

// EvaluationRepository reads evaluation definitions and their coefficients.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository creates a new evaluation repository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// ListByCourse returns the evaluations of a course in creation order.
func (r *EvaluationRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Evaluation, error) {
	const query = `SELECT id, course_id, name, weight, kind, created_at FROM evaluations WHERE course_id = $1 ORDER BY created_at ASC, name ASC`
	var evaluations []models.Evaluation
	if err := r.db.SelectContext(ctx, &evaluations, query, courseID); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evaluations, nil
}

// FindByID returns a single evaluation. sql.ErrNoRows is returned unwrapped when missing.
func (r *EvaluationRepository) FindByID(ctx context.Context, id string) (*models.Evaluation, error) {
	const query = `SELECT id, course_id, name, weight, kind, created_at FROM evaluations WHERE id = $1`
	var evaluation models.Evaluation
	if err := r.db.GetContext(ctx, &evaluation, query, id); err != nil {
		return nil, err
	}
	return &evaluation, nil
}
