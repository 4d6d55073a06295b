package notify

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/msomdec/study-zen/internal/live"
	"github.com/msomdec/study-zen/internal/timer"
)

// ErrNotDelivered is returned when the user has no open stream to receive a cue.
var ErrNotDelivered = errors.New("no open stream")

// Browser delivers notifications, sounds and vibrations to the user's open
// timer pages through the live hub.
type Browser struct {
	hub *live.Hub
}

// NewBrowser creates a Browser adapter publishing to hub.
func NewBrowser(hub *live.Hub) *Browser {
	return &Browser{hub: hub}
}

func (b *Browser) Notify(ctx context.Context, userID int64, n timer.Notification) error {
	return b.publish(userID, live.Event{Kind: live.EventNotification, Notification: &n})
}

func (b *Browser) Play(ctx context.Context, userID int64, clip timer.Clip) error {
	return b.publish(userID, live.Event{Kind: live.EventSound, Clip: clip})
}

func (b *Browser) Vibrate(ctx context.Context, userID int64, pattern []time.Duration) error {
	return b.publish(userID, live.Event{Kind: live.EventVibrate, Pattern: slices.Clone(pattern)})
}

func (b *Browser) publish(userID int64, e live.Event) error {
	if b.hub.Publish(userID, e) == 0 {
		return ErrNotDelivered
	}
	return nil
}
