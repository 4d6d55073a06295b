package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/study-zen/internal/domain"
	"github.com/msomdec/study-zen/internal/service"
)

func TestSettingsService_GetDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewSettingsService(db.Settings())
	user := createUser(t, db, "defaults@example.com")

	settings, err := svc.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !settings.NotificationsEnabled || !settings.SoundsEnabled {
		t.Fatalf("expected both flags enabled by default, got %+v", settings)
	}
	if settings.UserID != user.ID {
		t.Fatalf("expected user ID %d, got %d", user.ID, settings.UserID)
	}
}

func TestSettingsService_UpdateAndGet(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewSettingsService(db.Settings())
	user := createUser(t, db, "update@example.com")
	ctx := context.Background()

	_, err := svc.Update(ctx, domain.UserSettings{UserID: user.ID, NotificationsEnabled: false, SoundsEnabled: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	settings, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if settings.NotificationsEnabled {
		t.Fatal("expected notifications disabled")
	}
	if !settings.SoundsEnabled {
		t.Fatal("expected sounds enabled")
	}

}

func TestSettingsService_TelegramChat(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewSettingsService(db.Settings())
	ctx := context.Background()
	linked := createUser(t, db, "linked@example.com")
	muted := createUser(t, db, "muted@example.com")
	unlinked := createUser(t, db, "unlinked@example.com")

	if _, err := svc.Update(ctx, domain.UserSettings{UserID: linked.ID, NotificationsEnabled: true, TelegramChatID: 1001}); err != nil {
		t.Fatalf("Update linked: %v", err)
	}
	if _, err := svc.Update(ctx, domain.UserSettings{UserID: muted.ID, NotificationsEnabled: false, TelegramChatID: 1002}); err != nil {
		t.Fatalf("Update muted: %v", err)
	}

	tests := []struct {
		name   string
		userID int64
		want   int64
	}{
		{"linked", linked.ID, 1001},
		{"notifications off", muted.ID, 0},
		{"never linked", unlinked.ID, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.TelegramChat(ctx, tc.userID)
			if err != nil {
				t.Fatalf("TelegramChat: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected chat %d, got %d", tc.want, got)
			}
		})
	}
}

func TestSettingsService_Update_MissingUser(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewSettingsService(db.Settings())

	_, err := svc.Update(context.Background(), domain.UserSettings{SoundsEnabled: true})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
