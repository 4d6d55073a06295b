package domain

import (
	"context"
	"time"
)

// DateKeyLayout is the calendar-day key format used for session records.
const DateKeyLayout = "2006-01-02"

// SessionRecord is a persisted log entry for one naturally completed focus session.
type SessionRecord struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	Date            string    `db:"date"`             // YYYY-MM-DD in the configured time zone
	Type            string    `db:"type"`             // Preset label, e.g. "Focus"
	DurationMinutes int       `db:"duration_minutes"` // Configured length, not wall-clock time
	CreatedAt       time.Time `db:"created_at"`
}

// DateKey formats t as a session record day key in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// SessionStats summarises a user's completed sessions.
type SessionStats struct {
	TotalSessions  int
	SessionsToday  int
	TotalMinutes   int
	CurrentStreak  int // Consecutive days with at least one session, ending today or yesterday
	LastSessionDay string
}

// SessionRepository defines persistence operations for session records.
// Records are append-only: nothing updates or deletes them.
type SessionRepository interface {
	Create(ctx context.Context, record *SessionRecord) error
	ListByUser(ctx context.Context, userID int64) ([]SessionRecord, error)
	ListByUserAndDate(ctx context.Context, userID int64, date string) ([]SessionRecord, error)
}
