package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

const scoreColumns = `s.id, s.student_id, s.course_id, s.evaluation_id, e.name AS evaluation_name, s.value, s.weight, s.comment, s.recorded_at, s.created_at, s.updated_at`

const upsertScoreQuery = `INSERT INTO scores (id, student_id, course_id, evaluation_id, value, weight, comment, recorded_at, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :evaluation_id, :value, :weight, :comment, :recorded_at, :created_at, :updated_at)
        ON CONFLICT (student_id, course_id, evaluation_id)
        DO UPDATE SET value = EXCLUDED.value, weight = EXCLUDED.weight, comment = EXCLUDED.comment, recorded_at = EXCLUDED.recorded_at, updated_at = EXCLUDED.updated_at`

// ScoreRepository persists the current score of each (student, course, evaluation).
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// ListByCourse returns every current score of a course.
func (r *ScoreRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Score, error) {
	query := `SELECT ` + scoreColumns + `
        FROM scores s
        JOIN evaluations e ON e.id = s.evaluation_id
        WHERE s.course_id = $1
        ORDER BY s.recorded_at ASC`
	var scores []models.Score
	if err := r.db.SelectContext(ctx, &scores, query, courseID); err != nil {
		return nil, fmt.Errorf("list course scores: %w", err)
	}
	return scores, nil
}

// ListByStudent returns a student's current scores in a course.
func (r *ScoreRepository) ListByStudent(ctx context.Context, courseID, studentID string) ([]models.Score, error) {
	query := `SELECT ` + scoreColumns + `
        FROM scores s
        JOIN evaluations e ON e.id = s.evaluation_id
        WHERE s.course_id = $1 AND s.student_id = $2
        ORDER BY s.recorded_at ASC`
	var scores []models.Score
	if err := r.db.SelectContext(ctx, &scores, query, courseID, studentID); err != nil {
		return nil, fmt.Errorf("list student scores: %w", err)
	}
	return scores, nil
}

// Upsert inserts a score or replaces the value held for the same tuple.
func (r *ScoreRepository) Upsert(ctx context.Context, score *models.Score) error {
	stampScore(score, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, upsertScoreQuery, score); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

// BulkUpsert inserts or replaces multiple scores in a transaction.
func (r *ScoreRepository) BulkUpsert(ctx context.Context, scores []models.Score) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := range scores {
		stampScore(&scores[i], now)
		if _, err := tx.NamedExecContext(ctx, upsertScoreQuery, scores[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk upsert score: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scores: %w", err)
	}
	return nil
}

func stampScore(score *models.Score, now time.Time) {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	if score.CreatedAt.IsZero() {
		score.CreatedAt = now
	}
	if score.RecordedAt.IsZero() {
		score.RecordedAt = now
	}
	score.UpdatedAt = now
}
