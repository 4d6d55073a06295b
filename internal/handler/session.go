package handler

import (
	"net/http"
	"time"

	"github.com/msomdec/study-zen/internal/domain"
	"github.com/msomdec/study-zen/internal/service"
)

// SessionHandler serves the completed session log.
type SessionHandler struct {
	sessions *service.SessionService
	loc      *time.Location
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService, loc *time.Location) *SessionHandler {
	if loc == nil {
		loc = time.Local
	}
	return &SessionHandler{sessions: sessions, loc: loc}
}

// HandleList returns the user's sessions, newest first.
// GET /api/sessions[?date=YYYY-MM-DD]
// Response: {"sessions": [...]}
func (h *SessionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var (
		list []domain.SessionRecord
		err  error
	)
	if day := r.URL.Query().Get("date"); day != "" {
		list, err = h.sessions.ListForDay(r.Context(), user.ID, day)
	} else {
		list, err = h.sessions.ListByUser(r.Context(), user.ID)
	}
	if err != nil {
		handleServiceError(w, err, "list sessions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": toSessionDTOs(list)})
}

// HandleStats returns totals and the current streak.
// GET /api/sessions/stats
func (h *SessionHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	stats, err := h.sessions.Stats(r.Context(), user.ID, time.Now().In(h.loc))
	if err != nil {
		handleServiceError(w, err, "session stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"stats": toStatsDTO(stats)})
}
