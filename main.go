package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/study-zen/internal/config"
	"github.com/msomdec/study-zen/internal/handler"
	"github.com/msomdec/study-zen/internal/live"
	"github.com/msomdec/study-zen/internal/notify"
	"github.com/msomdec/study-zen/internal/repository/sqlite"
	"github.com/msomdec/study-zen/internal/service"
	"github.com/msomdec/study-zen/internal/timer"
)

func main() {
	level := new(slog.LevelVar)
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if l, err := cfg.SlogLevel(); err == nil {
		level.Set(l)
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	authService := service.NewAuthService(db.Users(), cfg.JWTSecret, cfg.BcryptCost)
	sessionService := service.NewSessionService(db.Sessions())
	settingsService := service.NewSettingsService(db.Settings())
	taskService := service.NewTaskService(db.Tasks())

	hub := live.NewHub(64)
	browser := notify.NewBrowser(hub)

	var notifier timer.Notifier = browser
	if cfg.TelegramEnabled() {
		bot, err := notify.NewTelegramBot(cfg.TelegramToken)
		if err != nil {
			slog.Error("failed to connect telegram bot", "error", err)
			os.Exit(1)
		}
		notifier = notify.Multi{browser, notify.NewTelegram(bot, settingsService.TelegramChat)}
		slog.Info("telegram notifications enabled")
	}

	timerService := service.NewTimerService(settingsService, timer.Deps{
		Sessions: sessionService,
		Notifier: notifier,
		Haptics:  browser,
		Sounds:   browser,
		Observer: hub,
		Location: cfg.Location,
	})

	loginLimiter := service.NewTokenBucket(0.2, 5) // Burst of 5, then one attempt every 5s
	defer loginLimiter.Stop()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Services{
		Auth:         authService,
		Timers:       timerService,
		Sessions:     sessionService,
		Settings:     settingsService,
		Tasks:        taskService,
		Hub:          hub,
		LoginLimiter: loginLimiter,
		Health:       db.SqlDB,
		Location:     cfg.Location,
		CookieSecure: cfg.CookieSecure,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.RequestLogger(handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "timezone", cfg.Location.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// SSE streams never go idle on their own.
	srv.RegisterOnShutdown(hub.Close)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Let in-flight completions finish saving before the database closes.
	timerService.Shutdown()
	slog.Info("server stopped")
}
