package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/msomdec/study-zen/internal/domain"
)

// SettingsRepository implements domain.SettingsRepository using SQLite.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new SQLite-backed SettingsRepository.
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db.x}
}

func (r *SettingsRepository) Get(ctx context.Context, userID int64) (*domain.UserSettings, error) {
	s := &domain.UserSettings{}
	err := r.db.GetContext(ctx, s,
		`SELECT user_id, notifications_enabled, sounds_enabled, telegram_chat_id FROM user_settings WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user settings: %w", err)
	}
	return s, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, settings *domain.UserSettings) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO user_settings (user_id, notifications_enabled, sounds_enabled, telegram_chat_id)
		 VALUES (:user_id, :notifications_enabled, :sounds_enabled, :telegram_chat_id)
		 ON CONFLICT(user_id) DO UPDATE SET
		 notifications_enabled = excluded.notifications_enabled,
		 sounds_enabled = excluded.sounds_enabled,
		 telegram_chat_id = excluded.telegram_chat_id`,
		settings,
	)
	if err != nil {
		return fmt.Errorf("upsert user settings: %w", err)
	}
	return nil
}
