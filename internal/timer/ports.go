package timer

import (
	"context"
	"time"

	"github.com/msomdec/study-zen/internal/domain"
)

// SessionRecorder persists a completed session. The store assigns the ID.
type SessionRecorder interface {
	Create(ctx context.Context, record *domain.SessionRecord) error
}

// Notification is a locally scheduled alert shown when a session completes.
type Notification struct {
	Title string
	Body  string
	Sound string // Sound hint for the platform, e.g. "default"
}

// Notifier delivers completion notifications.
type Notifier interface {
	Notify(ctx context.Context, userID int64, n Notification) error
}

// Haptics plays a vibration pattern (alternating wait/vibrate durations).
type Haptics interface {
	Vibrate(ctx context.Context, userID int64, pattern []time.Duration) error
}

// Clip identifies a short audio cue.
type Clip string

const (
	ClipTick     Clip = "tick"
	ClipComplete Clip = "complete"
)

// SoundPlayer plays audio cues.
type SoundPlayer interface {
	Play(ctx context.Context, userID int64, clip Clip) error
}

// Observer receives every state change. TimerChanged is called with the
// timer's lock held, so it must not block or call back into the timer.
type Observer interface {
	TimerChanged(s Snapshot)
}

// Clock supplies wall time and the periodic tick source.
type Clock interface {
	Now() time.Time
	// Every calls fn every d until the returned stop function is called.
	// stop must not wait for an in-flight fn to return.
	Every(d time.Duration, fn func()) (stop func())
}
