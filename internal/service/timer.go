package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/msomdec/study-zen/internal/domain"
	"github.com/msomdec/study-zen/internal/timer"
)

// ErrTimerShutdown is returned by Get once Shutdown has been called.
var ErrTimerShutdown = errors.New("timer service is shut down")

// TimerService owns one focus timer per user.
type TimerService struct {
	settings *SettingsService
	deps     timer.Deps

	mu     sync.Mutex
	timers map[int64]*timer.Timer
	closed bool
}

// NewTimerService creates a TimerService. deps are shared by every timer.
func NewTimerService(settings *SettingsService, deps timer.Deps) *TimerService {
	return &TimerService{
		settings: settings,
		deps:     deps,
		timers:   make(map[int64]*timer.Timer),
	}
}

// Get returns the user's timer, creating it on first use.
func (s *TimerService) Get(ctx context.Context, userID int64) (*timer.Timer, error) {
	s.mu.Lock()
	t, ok := s.timers[userID]
	closed := s.closed
	s.mu.Unlock()
	if ok {
		return t, nil
	}
	if closed {
		return nil, ErrTimerShutdown
	}

	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.timers[userID]; ok {
		return existing, nil
	}
	t = timer.New(userID, s.deps, settings.SoundsEnabled)
	s.timers[userID] = t
	slog.Debug("timer created", "user_id", userID)
	return t, nil
}

// ApplySettings pushes changed preferences into the user's live timer.
func (s *TimerService) ApplySettings(settings domain.UserSettings) {
	s.mu.Lock()
	t, ok := s.timers[settings.UserID]
	s.mu.Unlock()
	if ok {
		t.SetSoundsEnabled(settings.SoundsEnabled)
	}
}

// ReleaseIdle closes and forgets the user's timer if it is idle with its
// full configured duration left, and reports whether it did. Running,
// paused and completed timers are kept.
func (s *TimerService) ReleaseIdle(userID int64) bool {
	s.mu.Lock()
	t, ok := s.timers[userID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	snap := t.Snapshot()
	if snap.Phase != timer.PhaseIdle || snap.Remaining() != time.Duration(snap.ConfiguredMinutes)*time.Minute {
		s.mu.Unlock()
		return false
	}
	delete(s.timers, userID)
	s.mu.Unlock()

	t.Close()
	slog.Debug("timer released", "user_id", userID)
	return true
}

// Active returns the number of live timers.
func (s *TimerService) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Shutdown closes every timer and waits for their side effects.
func (s *TimerService) Shutdown() {
	s.mu.Lock()
	timers := make([]*timer.Timer, 0, len(s.timers))
	for _, t := range s.timers {
		timers = append(timers, t)
	}
	s.timers = make(map[int64]*timer.Timer)
	s.closed = true
	s.mu.Unlock()

	for _, t := range timers {
		t.Close()
	}
}
