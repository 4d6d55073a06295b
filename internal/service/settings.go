package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/msomdec/study-zen/internal/domain"
)

// SettingsService reads and stores per-user preferences.
type SettingsService struct {
	settings domain.SettingsRepository
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(settings domain.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the user's settings, or the defaults if none were saved.
func (s *SettingsService) Get(ctx context.Context, userID int64) (domain.UserSettings, error) {
	saved, err := s.settings.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DefaultSettings(userID), nil
		}
		return domain.UserSettings{}, fmt.Errorf("get settings: %w", err)
	}
	return *saved, nil
}

// Update stores the user's settings.
func (s *SettingsService) Update(ctx context.Context, settings domain.UserSettings) (domain.UserSettings, error) {
	if settings.UserID == 0 {
		return domain.UserSettings{}, fmt.Errorf("%w: user is required", domain.ErrInvalidInput)
	}
	if err := s.settings.Upsert(ctx, &settings); err != nil {
		return domain.UserSettings{}, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}

// TelegramChat returns the chat the user's completions are pushed to, or
// zero when none is linked or notifications are off.
func (s *SettingsService) TelegramChat(ctx context.Context, userID int64) (int64, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !settings.NotificationsEnabled {
		return 0, nil
	}
	return settings.TelegramChatID, nil
}
