package handler

import (
	"net/http"

	"github.com/msomdec/study-zen/internal/service"
)

// SettingsHandler serves the user's preferences.
type SettingsHandler struct {
	settings *service.SettingsService
	timers   *service.TimerService
}

// NewSettingsHandler creates a new SettingsHandler. Saved preferences are
// pushed into the user's live timer.
func NewSettingsHandler(settings *service.SettingsService, timers *service.TimerService) *SettingsHandler {
	return &SettingsHandler{settings: settings, timers: timers}
}

// HandleGet returns the user's settings.
// GET /api/settings
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	settings, err := h.settings.Get(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err, "get settings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"settings": toSettingsDTO(settings)})
}

// HandleUpdate changes the fields present in the request.
// PUT /api/settings
// Request: {"notificationsEnabled":false,"soundsEnabled":true,"telegramChatId":123456}
// A telegramChatId of 0 unlinks the chat.
func (h *SettingsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req struct {
		NotificationsEnabled *bool  `json:"notificationsEnabled"`
		SoundsEnabled        *bool  `json:"soundsEnabled"`
		TelegramChatID       *int64 `json:"telegramChatId"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	settings, err := h.settings.Get(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err, "get settings")
		return
	}
	if req.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *req.NotificationsEnabled
	}
	if req.SoundsEnabled != nil {
		settings.SoundsEnabled = *req.SoundsEnabled
	}
	if req.TelegramChatID != nil {
		settings.TelegramChatID = *req.TelegramChatID
	}

	settings, err = h.settings.Update(r.Context(), settings)
	if err != nil {
		handleServiceError(w, err, "update settings")
		return
	}
	h.timers.ApplySettings(settings)

	writeJSON(w, http.StatusOK, map[string]any{"settings": toSettingsDTO(settings)})
}
