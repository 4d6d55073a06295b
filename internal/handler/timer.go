package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/study-zen/internal/domain"
	"github.com/msomdec/study-zen/internal/live"
	"github.com/msomdec/study-zen/internal/service"
	"github.com/msomdec/study-zen/internal/timer"
	"github.com/msomdec/study-zen/internal/view"
)

// TimerHandler serves the focus timer page, its live stream and the timer
// actions.
type TimerHandler struct {
	timers   *service.TimerService
	sessions *service.SessionService
	hub      *live.Hub
	loc      *time.Location
}

// NewTimerHandler creates a new TimerHandler. loc decides which calendar
// day counts as today.
func NewTimerHandler(timers *service.TimerService, sessions *service.SessionService, hub *live.Hub, loc *time.Location) *TimerHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TimerHandler{timers: timers, sessions: sessions, hub: hub, loc: loc}
}

// HandleGet returns the timer snapshot.
// GET /api/timer
func (h *TimerHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(t *timer.Timer) (timer.Snapshot, error) {
		return t.Snapshot(), nil
	})
}

// HandleToggle starts or pauses the countdown.
// POST /api/timer/toggle
func (h *TimerHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(t *timer.Timer) (timer.Snapshot, error) {
		return t.Toggle(), nil
	})
}

// HandleReset restores the configured duration.
// POST /api/timer/reset
func (h *TimerHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(t *timer.Timer) (timer.Snapshot, error) {
		return t.Reset(), nil
	})
}

// HandleContinue acknowledges a completion and re-arms the timer.
// POST /api/timer/continue
func (h *TimerHandler) HandleContinue(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(t *timer.Timer) (timer.Snapshot, error) {
		return t.StartAnother(), nil
	})
}

// HandleDismiss hides the completion summary.
// POST /api/timer/dismiss
func (h *TimerHandler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(t *timer.Timer) (timer.Snapshot, error) {
		return t.Dismiss(), nil
	})
}

// HandlePreset loads a preset.
// POST /api/timer/preset
// Request: {"preset":"Short"}
func (h *TimerHandler) HandlePreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Preset string `json:"preset"`
	}
	if err := readActionBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	h.act(w, r, func(t *timer.Timer) (timer.Snapshot, error) {
		return t.SelectPreset(req.Preset)
	})
}

// HandleAdjust changes the configured duration by whole minutes.
// POST /api/timer/adjust
// Request: {"delta":5}
func (h *TimerHandler) HandleAdjust(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := readActionBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	h.act(w, r, func(t *timer.Timer) (timer.Snapshot, error) {
		return t.Adjust(req.Delta), nil
	})
}

// HandlePage renders the timer page.
// GET /timer
func (h *TimerHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	t, err := h.timers.Get(r.Context(), user.ID)
	if err != nil {
		slog.Error("get timer for page", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	today, err := h.sessions.ListForDay(r.Context(), user.ID, h.today())
	if err != nil {
		slog.Error("list today's sessions", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page := view.TimerPage(view.TimerPageData{
		DisplayName: user.DisplayName,
		Timer:       t.Snapshot(),
		Presets:     timer.Presets(),
		TodayCount:  len(today),
	})
	if err := page.Render(r.Context(), w); err != nil {
		slog.Debug("render timer page", "user_id", user.ID, "error", err)
	}
}

// HandleStream keeps the timer page in sync: timer signals, the completion
// summary, browser cues and today's session count.
// GET /timer/stream
func (h *TimerHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	ctx := r.Context()

	t, err := h.timers.Get(ctx, user.ID)
	if err != nil {
		slog.Error("get timer for stream", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Subscribe before taking the first snapshot so no change is missed.
	events, cancel := h.hub.Subscribe(user.ID)
	defer func() {
		cancel()
		if h.hub.Subscribers(user.ID) == 0 {
			h.timers.ReleaseIdle(user.ID)
		}
	}()

	sessions, err := h.sessions.Subscribe(ctx, user.ID)
	if err != nil {
		slog.Error("subscribe to sessions", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	stream := &timerStream{sse: sse}
	if err := stream.timer(t.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			err = stream.event(e)
		case list, ok := <-sessions:
			if !ok {
				return
			}
			err = sse.MarshalAndPatchSignals(map[string]int{"todayCount": service.CountForDay(list, h.today())})
		}
		if err != nil {
			slog.Debug("timer stream closed", "user_id", user.ID, "error", err)
			return
		}
	}
}

func (h *TimerHandler) today() string {
	return domain.DateKey(time.Now().In(h.loc))
}

// act runs fn against the caller's timer and writes the resulting snapshot,
// as JSON or, for datastar requests, as a signal patch.
func (h *TimerHandler) act(w http.ResponseWriter, r *http.Request, fn func(t *timer.Timer) (timer.Snapshot, error)) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	t, err := h.timers.Get(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err, "get timer")
		return
	}

	snapshot, err := fn(t)
	if err != nil {
		handleServiceError(w, err, "timer action")
		return
	}

	if isDatastarRequest(r) {
		sse := datastar.NewSSE(w, r)
		if err := sse.MarshalAndPatchSignals(toTimerSignals(snapshot)); err != nil {
			slog.Debug("patch timer signals", "user_id", user.ID, "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"timer": toTimerDTO(snapshot)})
}

// timerStream writes hub events to one datastar connection.
type timerStream struct {
	sse         *datastar.ServerSentEventGenerator
	lastVersion uint64
	lastPhase   timer.Phase
	started     bool
}

func (s *timerStream) event(e live.Event) error {
	switch e.Kind {
	case live.EventTimer:
		if e.Timer == nil {
			return nil
		}
		return s.timer(*e.Timer)
	case live.EventNotification:
		if e.Notification == nil {
			return nil
		}
		return s.script("window.studyZen.notify(%s, %s)", jsString(e.Notification.Title), jsString(e.Notification.Body))
	case live.EventSound:
		return s.script("window.studyZen.play(%s)", jsString(string(e.Clip)))
	case live.EventVibrate:
		pattern := make([]int64, len(e.Pattern))
		for i, d := range e.Pattern {
			pattern[i] = d.Milliseconds()
		}
		b, _ := json.Marshal(pattern)
		return s.script("navigator.vibrate && navigator.vibrate(%s)", b)
	}
	return nil
}

// timer patches signals for snapshots newer than the last one sent, and the
// summary fragment whenever the phase enters or leaves completed.
func (s *timerStream) timer(snap timer.Snapshot) error {
	if s.started && snap.Version <= s.lastVersion {
		return nil
	}
	if err := s.sse.MarshalAndPatchSignals(toTimerSignals(snap)); err != nil {
		return err
	}

	completed := snap.Phase == timer.PhaseCompleted
	wasCompleted := s.lastPhase == timer.PhaseCompleted
	if !s.started || completed != wasCompleted {
		if err := s.sse.PatchElementTempl(
			view.CompletionSummary(snap.Summary),
			datastar.WithSelectorID(view.SummaryElementID),
		); err != nil {
			return err
		}
	}

	s.started = true
	s.lastVersion = snap.Version
	s.lastPhase = snap.Phase
	return nil
}

func (s *timerStream) script(format string, args ...any) error {
	return s.sse.ExecuteScript(fmt.Sprintf(format, args...))
}

func jsString(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}

func isDatastarRequest(r *http.Request) bool {
	return r.Header.Get("Datastar-Request") == "true"
}

// readActionBody decodes the action payload: datastar signals for page
// requests, plain JSON otherwise. An empty body is not an error.
func readActionBody(r *http.Request, dst any) error {
	if isDatastarRequest(r) {
		return datastar.ReadSignals(r, dst)
	}
	if r.ContentLength == 0 {
		return nil
	}
	return readJSON(r, dst)
}
