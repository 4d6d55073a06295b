package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/msomdec/study-zen/internal/domain"
)

// SessionRepository implements domain.SessionRepository using SQLite.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new SQLite-backed SessionRepository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db.x}
}

const sessionColumns = `id, user_id, date, type, duration_minutes, created_at`

func (r *SessionRepository) Create(ctx context.Context, record *domain.SessionRecord) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO session_records (user_id, date, type, duration_minutes, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		record.UserID, record.Date, record.Type, record.DurationMinutes, now,
	)
	if err != nil {
		return fmt.Errorf("insert session record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get session record id: %w", err)
	}

	record.ID = id
	record.CreatedAt = now
	return nil
}

// ListByUser returns the user's records, newest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID int64) ([]domain.SessionRecord, error) {
	var records []domain.SessionRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT `+sessionColumns+` FROM session_records
		 WHERE user_id = ?
		 ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list session records: %w", err)
	}
	return records, nil
}

func (r *SessionRepository) ListByUserAndDate(ctx context.Context, userID int64, date string) ([]domain.SessionRecord, error) {
	var records []domain.SessionRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT `+sessionColumns+` FROM session_records
		 WHERE user_id = ? AND date = ?
		 ORDER BY id DESC`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("list session records by date: %w", err)
	}
	return records, nil
}
