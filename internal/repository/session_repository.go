package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradebook-api/internal/models"
)

// SessionRepository stores the append-only session log of courses.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Append inserts a session log entry.
func (r *SessionRepository) Append(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO sessions (id, course_id, date, duration_hours, topic, created_at)
        VALUES (:id, :course_id, :date, :duration_hours, :topic, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("append session: %w", err)
	}
	return nil
}

// ListByCourse returns every session logged for a course, oldest first.
func (r *SessionRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Session, error) {
	const query = `SELECT id, course_id, date, duration_hours, topic, created_at FROM sessions WHERE course_id = $1 ORDER BY date ASC, created_at ASC`
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, courseID); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
