package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/msomdec/study-zen/internal/domain"
	"github.com/msomdec/study-zen/internal/service"
	"github.com/msomdec/study-zen/internal/timer"
)

// stillClock never ticks on its own.
type stillClock struct{}

func (stillClock) Now() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
func (stillClock) Every(time.Duration, func()) (stop func()) { return func() {} }

func newTestTimerService(t *testing.T) (*service.TimerService, *service.SettingsService, *domain.User) {
	t.Helper()
	db := newTestDB(t)
	settings := service.NewSettingsService(db.Settings())
	svc := service.NewTimerService(settings, timer.Deps{Clock: stillClock{}})
	t.Cleanup(svc.Shutdown)
	return svc, settings, createUser(t, db, "timer@example.com")
}

func TestTimerService_GetReturnsSameTimer(t *testing.T) {
	svc, _, user := newTestTimerService(t)
	ctx := context.Background()

	first, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first != second {
		t.Fatal("expected the same timer for the same user")
	}
	if svc.Active() != 1 {
		t.Fatalf("expected 1 active timer, got %d", svc.Active())
	}

	s := first.Snapshot()
	if s.Phase != timer.PhaseIdle || s.Minutes != 25 || s.Preset != "Focus" {
		t.Fatalf("expected idle 25 min Focus timer, got %+v", s)
	}
}

func TestTimerService_LoadsAndAppliesSoundSetting(t *testing.T) {
	svc, settings, user := newTestTimerService(t)
	ctx := context.Background()

	saved, err := settings.Update(ctx, domain.UserSettings{UserID: user.ID, NotificationsEnabled: true, SoundsEnabled: false})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	tm, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tm.Snapshot().SoundsEnabled {
		t.Fatal("expected timer to start with sounds disabled")
	}

	saved.SoundsEnabled = true
	svc.ApplySettings(saved)
	if !tm.Snapshot().SoundsEnabled {
		t.Fatal("expected ApplySettings to enable sounds")
	}
}

func TestTimerService_ReleaseIdle(t *testing.T) {
	svc, _, user := newTestTimerService(t)
	ctx := context.Background()

	first, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !svc.ReleaseIdle(user.ID) {
		t.Fatal("expected an untouched timer to be released")
	}
	if svc.Active() != 0 {
		t.Fatalf("expected 0 active timers, got %d", svc.Active())
	}

	second, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first == second {
		t.Fatal("expected a fresh timer after ReleaseIdle")
	}
	if svc.ReleaseIdle(user.ID + 1) {
		t.Fatal("expected no release for a user without a timer")
	}
}

// handClock records the tick callback so tests can fire it.
type handClock struct {
	mu   sync.Mutex
	tick func()
}

func (c *handClock) Now() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }

func (c *handClock) Every(_ time.Duration, fn func()) (stop func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick = fn
	return func() {}
}

func (c *handClock) fire(n int) {
	c.mu.Lock()
	fn := c.tick
	c.mu.Unlock()
	for range n {
		fn()
	}
}

func TestTimerService_ReleaseIdle_KeepsTimersInUse(t *testing.T) {
	tests := []struct {
		name  string
		setup func(tm *timer.Timer, clock *handClock)
	}{
		{"running", func(tm *timer.Timer, clock *handClock) { tm.Toggle() }},
		{"paused", func(tm *timer.Timer, clock *handClock) {
			tm.Toggle()
			clock.fire(10)
			tm.Toggle()
		}},
		{"completed", func(tm *timer.Timer, clock *handClock) {
			tm.Adjust(-24)
			tm.Toggle()
			clock.fire(60)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			clock := &handClock{}
			svc := service.NewTimerService(service.NewSettingsService(db.Settings()), timer.Deps{Clock: clock})
			t.Cleanup(svc.Shutdown)
			user := createUser(t, db, "inuse@example.com")

			tm, err := svc.Get(context.Background(), user.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			tc.setup(tm, clock)

			if svc.ReleaseIdle(user.ID) {
				t.Fatalf("expected %s timer to be kept", tc.name)
			}
			if svc.Active() != 1 {
				t.Fatalf("expected 1 active timer, got %d", svc.Active())
			}
		})
	}
}

func TestTimerService_Shutdown(t *testing.T) {
	svc, _, user := newTestTimerService(t)
	ctx := context.Background()

	tm, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	tm.Toggle()

	svc.Shutdown()
	if tm.Snapshot().Running() {
		t.Fatal("expected timer to stop on shutdown")
	}
	if _, err := svc.Get(ctx, user.ID); !errors.Is(err, service.ErrTimerShutdown) {
		t.Fatalf("expected ErrTimerShutdown, got %v", err)
	}
}
