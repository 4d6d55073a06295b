package live

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/study-zen/internal/timer"
)

// EventKind identifies what an Event carries.
type EventKind string

const (
	EventTimer        EventKind = "timer"
	EventNotification EventKind = "notification"
	EventSound        EventKind = "sound"
	EventVibrate      EventKind = "vibrate"
)

// Event is a message pushed to a user's open streams.
type Event struct {
	Kind         EventKind
	Timer        *timer.Snapshot
	Notification *timer.Notification
	Clip         timer.Clip
	Pattern      []time.Duration
}

// Hub fans events out to every stream a user has open.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int64]map[uuid.UUID]chan Event
	buffer int
	closed bool
}

// NewHub creates a hub whose subscriber channels hold up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[int64]map[uuid.UUID]chan Event),
		buffer: buffer,
	}
}

// Subscribe registers a stream for userID. The returned cancel function
// unregisters it and closes the channel; it is safe to call more than once.
// After Close the channel is returned already closed.
func (h *Hub) Subscribe(userID int64) (<-chan Event, func()) {
	id := uuid.New()
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[uuid.UUID]chan Event)
	}
	h.subs[userID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[userID][id]; !ok {
				return // Closed by Close
			}
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers e to userID's streams and returns how many received it.
func (h *Hub) Publish(userID int64, e Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, ch := range h.subs[userID] {
		select {
		case ch <- e:
			delivered++
		default:
			slog.Debug("dropped live event for slow subscriber", "user_id", userID, "subscriber", id, "kind", e.Kind)
		}
	}
	return delivered
}

// Close ends every open stream. Later subscriptions are closed immediately
// and publishing becomes a no-op.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for userID, subs := range h.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(h.subs, userID)
	}
}

// Subscribers returns the number of open streams for userID.
func (h *Hub) Subscribers(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// TimerChanged publishes timer state. It satisfies timer.Observer.
func (h *Hub) TimerChanged(s timer.Snapshot) {
	h.Publish(s.UserID, Event{Kind: EventTimer, Timer: &s})
}
