package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/msomdec/study-zen/internal/domain"
)

// ErrUnknownPreset is returned by SelectPreset for a label that is not offered.
var ErrUnknownPreset = errors.New("unknown preset")

// effectTimeout bounds each fire-and-forget side effect.
const effectTimeout = 10 * time.Second

// Phase is the countdown state.
type Phase string

const (
	PhaseIdle      Phase = "idle"      // Not ticking; also the paused state
	PhaseRunning   Phase = "running"   // Ticking once per second
	PhaseCompleted Phase = "completed" // Reached zero; summary pending
)

// Summary describes a naturally completed session.
type Summary struct {
	Minutes int
	Preset  string
	Message string
}

// Headline renders the summary line, e.g. "25 min · Focus session".
func (s Summary) Headline() string {
	return fmt.Sprintf("%d min · %s session", s.Minutes, s.Preset)
}

// Snapshot is a point-in-time copy of a timer's state.
type Snapshot struct {
	UserID            int64
	Version           uint64 // Increases with every change
	Phase             Phase
	Preset            string
	ConfiguredMinutes int
	Minutes           int
	Seconds           int
	SoundsEnabled     bool
	Summary           *Summary // Set only in PhaseCompleted
}

// Running reports whether the countdown is ticking.
func (s Snapshot) Running() bool {
	return s.Phase == PhaseRunning
}

// Remaining returns the time left on the countdown.
func (s Snapshot) Remaining() time.Duration {
	return time.Duration(s.Minutes)*time.Minute + time.Duration(s.Seconds)*time.Second
}

// Display formats the remaining time as MM:SS.
func (s Snapshot) Display() string {
	return formatClock(s.Minutes, s.Seconds)
}

// Deps are the collaborators a Timer calls out to. Any port may be nil.
type Deps struct {
	Sessions SessionRecorder
	Notifier Notifier
	Haptics  Haptics
	Sounds   SoundPlayer
	Observer Observer
	Clock    Clock          // Defaults to SystemClock
	Location *time.Location // Time zone for session date keys; defaults to time.Local
	Pick     func(n int) int
}

// Timer is a focus countdown owned by a single user.
// All methods are safe for concurrent use.
type Timer struct {
	userID int64
	deps   Deps

	mu            sync.Mutex
	phase         Phase
	preset        Preset
	configured    int
	minutes       int
	seconds       int
	summary       *Summary
	soundsEnabled bool
	version       uint64
	closed        bool

	// gen identifies the current tick source; ticks from older sources are dropped.
	gen      uint64
	stopTick func()

	effects sync.WaitGroup
}

// New creates an idle timer loaded with the default preset.
func New(userID int64, deps Deps, soundsEnabled bool) *Timer {
	if deps.Clock == nil {
		deps.Clock = SystemClock()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Pick == nil {
		deps.Pick = rand.IntN
	}

	return &Timer{
		userID:        userID,
		deps:          deps,
		phase:         PhaseIdle,
		preset:        DefaultPreset,
		configured:    DefaultPreset.Minutes,
		minutes:       DefaultPreset.Minutes,
		soundsEnabled: soundsEnabled,
	}
}

// UserID returns the owner of the timer.
func (t *Timer) UserID() int64 {
	return t.userID
}

// Snapshot returns the current state.
func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// SelectPreset loads a preset. A running countdown is stopped first.
func (t *Timer) SelectPreset(label string) (Snapshot, error) {
	p, ok := LookupPreset(label)
	if !ok {
		return t.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownPreset, label)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return t.snapshotLocked(), nil
	}

	t.stopTickLocked()
	t.preset = p
	t.configured = p.Minutes
	t.loadConfiguredLocked()
	return t.changedLocked(), nil
}

// Adjust changes the configured duration by delta minutes, clamped to
// [MinMinutes, MaxMinutes]. It is a no-op while running.
func (t *Timer) Adjust(delta int) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.phase == PhaseRunning {
		return t.snapshotLocked()
	}

	t.configured = clampMinutes(t.configured + delta)
	t.loadConfiguredLocked()
	return t.changedLocked()
}

// Toggle starts or pauses the countdown. Pausing keeps the remaining time.
// Starting with nothing left reloads the configured duration.
func (t *Timer) Toggle() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return t.snapshotLocked()
	}

	if t.phase == PhaseRunning {
		t.stopTickLocked()
		t.phase = PhaseIdle
		return t.changedLocked()
	}

	if t.minutes == 0 && t.seconds == 0 {
		t.minutes = t.configured
	}
	t.summary = nil
	t.phase = PhaseRunning
	t.startTickLocked()
	return t.changedLocked()
}

// Reset stops the countdown and restores the configured duration.
func (t *Timer) Reset() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return t.snapshotLocked()
	}

	t.stopTickLocked()
	t.loadConfiguredLocked()
	return t.changedLocked()
}

// StartAnother acknowledges a completion and loads the configured duration
// for the next run.
func (t *Timer) StartAnother() Snapshot {
	return t.Reset()
}

// Dismiss acknowledges a completion without reloading: the timer stays at
// 00:00 until the next Toggle.
func (t *Timer) Dismiss() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.phase != PhaseCompleted {
		return t.snapshotLocked()
	}

	t.summary = nil
	t.phase = PhaseIdle
	return t.changedLocked()
}

// SetSoundsEnabled updates the tick cue preference.
func (t *Timer) SetSoundsEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.soundsEnabled == enabled {
		return
	}
	t.soundsEnabled = enabled
	t.changedLocked()
}

// Wait blocks until all in-flight side effects have finished.
func (t *Timer) Wait() {
	t.effects.Wait()
}

// Close stops the tick source, turns every later call into a no-op and waits
// for in-flight side effects.
func (t *Timer) Close() {
	t.mu.Lock()
	if !t.closed {
		t.stopTickLocked()
		if t.phase == PhaseRunning {
			t.phase = PhaseIdle
		}
		t.closed = true
	}
	t.mu.Unlock()

	t.effects.Wait()
}

func (t *Timer) tick(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || gen != t.gen || t.phase != PhaseRunning {
		return
	}

	if t.seconds > 0 {
		t.seconds--
	} else if t.minutes > 0 {
		t.minutes--
		t.seconds = 59
	}

	if t.minutes == 0 && t.seconds == 0 {
		t.completeLocked()
		return
	}

	if t.minutes == 0 && t.seconds <= 3 && t.soundsEnabled {
		t.goEffect("tick sound", func(ctx context.Context) error {
			if t.deps.Sounds == nil {
				return nil
			}
			return t.deps.Sounds.Play(ctx, t.userID, ClipTick)
		})
	}

	t.changedLocked()
}

// completeLocked runs the natural completion protocol. It is only reachable
// from the running phase and leaves it in the same critical section, so a
// run can complete at most once.
func (t *Timer) completeLocked() {
	t.stopTickLocked()
	t.phase = PhaseCompleted
	t.minutes, t.seconds = 0, 0

	summary := &Summary{
		Minutes: t.configured,
		Preset:  t.preset.Label,
		Message: completionMessages[t.deps.Pick(len(completionMessages))],
	}
	t.summary = summary

	record := &domain.SessionRecord{
		UserID:          t.userID,
		Date:            domain.DateKey(t.deps.Clock.Now().In(t.deps.Location)),
		Type:            summary.Preset,
		DurationMinutes: summary.Minutes,
	}
	t.goEffect("save session", func(ctx context.Context) error {
		if t.deps.Sessions == nil {
			return nil
		}
		return t.deps.Sessions.Create(ctx, record)
	})

	notification := Notification{
		Title: "🎉 Session Complete!",
		Body:  fmt.Sprintf("%d-min %s session done. %s", summary.Minutes, summary.Preset, summary.Message),
		Sound: "default",
	}
	t.goEffect("notify", func(ctx context.Context) error {
		if t.deps.Notifier == nil {
			return nil
		}
		return t.deps.Notifier.Notify(ctx, t.userID, notification)
	})
	t.goEffect("vibrate", func(ctx context.Context) error {
		if t.deps.Haptics == nil {
			return nil
		}
		return t.deps.Haptics.Vibrate(ctx, t.userID, completionVibration)
	})
	t.goEffect("completion sound", func(ctx context.Context) error {
		if t.deps.Sounds == nil {
			return nil
		}
		return t.deps.Sounds.Play(ctx, t.userID, ClipComplete)
	})

	slog.Info("focus session completed", "user_id", t.userID, "preset", summary.Preset, "minutes", summary.Minutes)
	t.changedLocked()
}

// goEffect runs fn in the background. Failures are logged and dropped.
func (t *Timer) goEffect(name string, fn func(ctx context.Context) error) {
	t.effects.Add(1)
	go func() {
		defer t.effects.Done()
		ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			slog.Error("timer side effect failed", "effect", name, "user_id", t.userID, "error", err)
		}
	}()
}

func (t *Timer) loadConfiguredLocked() {
	t.phase = PhaseIdle
	t.summary = nil
	t.minutes = t.configured
	t.seconds = 0
}

// startTickLocked replaces any existing tick source with a fresh one.
func (t *Timer) startTickLocked() {
	t.stopTickLocked()
	t.gen++
	gen := t.gen
	t.stopTick = t.deps.Clock.Every(TickInterval, func() { t.tick(gen) })
}

func (t *Timer) stopTickLocked() {
	if t.stopTick != nil {
		t.stopTick()
		t.stopTick = nil
	}
	t.gen++
}

func (t *Timer) changedLocked() Snapshot {
	t.version++
	s := t.snapshotLocked()
	if t.deps.Observer != nil {
		t.deps.Observer.TimerChanged(s)
	}
	return s
}

func (t *Timer) snapshotLocked() Snapshot {
	s := Snapshot{
		UserID:            t.userID,
		Version:           t.version,
		Phase:             t.phase,
		Preset:            t.preset.Label,
		ConfiguredMinutes: t.configured,
		Minutes:           t.minutes,
		Seconds:           t.seconds,
		SoundsEnabled:     t.soundsEnabled,
	}
	if t.summary != nil {
		summary := *t.summary
		s.Summary = &summary
	}
	return s
}
