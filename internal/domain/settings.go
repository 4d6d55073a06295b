package domain

import "context"

// UserSettings holds per-user preferences. Both flags default to true.
// TelegramChatID is zero until the user links a chat.
type UserSettings struct {
	UserID               int64 `db:"user_id"`
	NotificationsEnabled bool  `db:"notifications_enabled"`
	SoundsEnabled        bool  `db:"sounds_enabled"`
	TelegramChatID       int64 `db:"telegram_chat_id"`
}

// DefaultSettings returns the settings used for a user who never saved any.
func DefaultSettings(userID int64) UserSettings {
	return UserSettings{UserID: userID, NotificationsEnabled: true, SoundsEnabled: true}
}

type SettingsRepository interface {
	// Get returns ErrNotFound when the user has never saved settings.
	Get(ctx context.Context, userID int64) (*UserSettings, error)
	Upsert(ctx context.Context, settings *UserSettings) error
}
