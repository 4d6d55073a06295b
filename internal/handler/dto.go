package handler

import (
	"time"

	"github.com/msomdec/study-zen/internal/domain"
	"github.com/msomdec/study-zen/internal/timer"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339),
	}
}

// SummaryDTO is the JSON representation of a completion summary.
type SummaryDTO struct {
	Minutes  int    `json:"minutes"`
	Preset   string `json:"preset"`
	Message  string `json:"message"`
	Headline string `json:"headline"`
}

// TimerDTO is the JSON representation of a timer snapshot.
type TimerDTO struct {
	Phase             string      `json:"phase"`
	Running           bool        `json:"running"`
	Preset            string      `json:"preset"`
	ConfiguredMinutes int         `json:"configuredMinutes"`
	Minutes           int         `json:"minutes"`
	Seconds           int         `json:"seconds"`
	Display           string      `json:"display"`
	SoundsEnabled     bool        `json:"soundsEnabled"`
	Version           uint64      `json:"version"`
	Summary           *SummaryDTO `json:"summary"`
}

func toTimerDTO(s timer.Snapshot) TimerDTO {
	dto := TimerDTO{
		Phase:             string(s.Phase),
		Running:           s.Running(),
		Preset:            s.Preset,
		ConfiguredMinutes: s.ConfiguredMinutes,
		Minutes:           s.Minutes,
		Seconds:           s.Seconds,
		Display:           s.Display(),
		SoundsEnabled:     s.SoundsEnabled,
		Version:           s.Version,
	}
	if s.Summary != nil {
		dto.Summary = &SummaryDTO{
			Minutes:  s.Summary.Minutes,
			Preset:   s.Summary.Preset,
			Message:  s.Summary.Message,
			Headline: s.Summary.Headline(),
		}
	}
	return dto
}

// timerSignals are the datastar signals the timer page binds to.
type timerSignals struct {
	Display           string `json:"display"`
	Running           bool   `json:"running"`
	Phase             string `json:"phase"`
	Preset            string `json:"preset"`
	ConfiguredMinutes int    `json:"configuredMinutes"`
	SoundsEnabled     bool   `json:"soundsEnabled"`
}

func toTimerSignals(s timer.Snapshot) timerSignals {
	return timerSignals{
		Display:           s.Display(),
		Running:           s.Running(),
		Phase:             string(s.Phase),
		Preset:            s.Preset,
		ConfiguredMinutes: s.ConfiguredMinutes,
		SoundsEnabled:     s.SoundsEnabled,
	}
}

// SessionDTO is the JSON representation of a session record.
type SessionDTO struct {
	ID              int64  `json:"id"`
	Date            string `json:"date"`
	Type            string `json:"type"`
	DurationMinutes int    `json:"durationMinutes"`
	CreatedAt       string `json:"createdAt"`
}

func toSessionDTOs(records []domain.SessionRecord) []SessionDTO {
	dtos := make([]SessionDTO, len(records))
	for i, r := range records {
		dtos[i] = SessionDTO{
			ID:              r.ID,
			Date:            r.Date,
			Type:            r.Type,
			DurationMinutes: r.DurationMinutes,
			CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		}
	}
	return dtos
}

// StatsDTO is the JSON representation of session statistics.
type StatsDTO struct {
	TotalSessions  int    `json:"totalSessions"`
	SessionsToday  int    `json:"sessionsToday"`
	TotalMinutes   int    `json:"totalMinutes"`
	CurrentStreak  int    `json:"currentStreak"`
	LastSessionDay string `json:"lastSessionDay"`
}

func toStatsDTO(s domain.SessionStats) StatsDTO {
	return StatsDTO(s)
}

// SettingsDTO is the JSON representation of user settings.
type SettingsDTO struct {
	NotificationsEnabled bool  `json:"notificationsEnabled"`
	SoundsEnabled        bool  `json:"soundsEnabled"`
	TelegramChatID       int64 `json:"telegramChatId"`
}

func toSettingsDTO(s domain.UserSettings) SettingsDTO {
	return SettingsDTO{
		NotificationsEnabled: s.NotificationsEnabled,
		SoundsEnabled:        s.SoundsEnabled,
		TelegramChatID:       s.TelegramChatID,
	}
}

// TaskDTO is the JSON representation of a planner task.
type TaskDTO struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toTaskDTO(t *domain.Task) TaskDTO {
	return TaskDTO{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
}

func toTaskDTOs(tasks []domain.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = toTaskDTO(&tasks[i])
	}
	return dtos
}
