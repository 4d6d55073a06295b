package handler

import (
	"net/http"
	"time"

	"github.com/msomdec/study-zen/internal/live"
	"github.com/msomdec/study-zen/internal/service"
)

// Services bundles what the HTTP layer needs.
type Services struct {
	Auth     *service.AuthService
	Timers   *service.TimerService
	Sessions *service.SessionService
	Settings *service.SettingsService
	Tasks    *service.TaskService
	Hub      *live.Hub

	// LoginLimiter throttles login attempts per client IP; nil disables it.
	LoginLimiter *service.TokenBucket

	// Health is pinged by /healthz; nil reports healthy.
	Health Pinger

	Location     *time.Location
	CookieSecure bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, s Services) {
	authHandler := NewAuthHandler(s.Auth, s.CookieSecure)
	timerHandler := NewTimerHandler(s.Timers, s.Sessions, s.Hub, s.Location)
	sessionHandler := NewSessionHandler(s.Sessions, s.Location)
	settingsHandler := NewSettingsHandler(s.Settings, s.Timers)
	taskHandler := NewTaskHandler(s.Tasks)

	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(s.Auth, h)
	}

	mux.HandleFunc("GET /healthz", NewHealthHandler(s.Health))

	// Auth
	var login http.Handler = http.HandlerFunc(authHandler.HandleLogin)
	if s.LoginLimiter != nil {
		login = RateLimit(s.LoginLimiter, login)
	}
	mux.Handle("POST /api/auth/login", login)
	mux.HandleFunc("POST /api/auth/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /api/auth/logout", authHandler.HandleLogout)
	mux.Handle("GET /api/auth/me", OptionalAuth(s.Auth, http.HandlerFunc(authHandler.HandleMe)))

	// Timer
	mux.Handle("GET /api/timer", protected(timerHandler.HandleGet))
	mux.Handle("POST /api/timer/toggle", protected(timerHandler.HandleToggle))
	mux.Handle("POST /api/timer/reset", protected(timerHandler.HandleReset))
	mux.Handle("POST /api/timer/continue", protected(timerHandler.HandleContinue))
	mux.Handle("POST /api/timer/dismiss", protected(timerHandler.HandleDismiss))
	mux.Handle("POST /api/timer/preset", protected(timerHandler.HandlePreset))
	mux.Handle("POST /api/timer/adjust", protected(timerHandler.HandleAdjust))
	mux.Handle("GET /timer", protected(timerHandler.HandlePage))
	mux.Handle("GET /timer/stream", protected(timerHandler.HandleStream))
	mux.Handle("GET /{$}", http.RedirectHandler("/timer", http.StatusSeeOther))

	// Sessions
	mux.Handle("GET /api/sessions", protected(sessionHandler.HandleList))
	mux.Handle("GET /api/sessions/stats", protected(sessionHandler.HandleStats))

	// Settings
	mux.Handle("GET /api/settings", protected(settingsHandler.HandleGet))
	mux.Handle("PUT /api/settings", protected(settingsHandler.HandleUpdate))

	// Planner
	mux.Handle("GET /api/tasks", protected(taskHandler.HandleList))
	mux.Handle("POST /api/tasks", protected(taskHandler.HandleCreate))
	mux.Handle("PATCH /api/tasks/{id}", protected(taskHandler.HandleUpdate))
	mux.Handle("DELETE /api/tasks/{id}", protected(taskHandler.HandleDelete))
}
