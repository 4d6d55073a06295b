// Package view holds the templ components for the StudyZen pages.
// Edit the .templ files and run `templ generate`; *_templ.go is generated.
package view

import (
	"encoding/json"
	"fmt"

	"github.com/msomdec/study-zen/internal/timer"
)

// SummaryElementID is the element the completion summary is patched into.
const SummaryElementID = "completion-summary"

// TimerPageData is everything the timer page renders initially. Later
// changes arrive over the /timer/stream SSE connection.
type TimerPageData struct {
	DisplayName string
	Timer       timer.Snapshot
	Presets     []timer.Preset
	TodayCount  int
}

// pageSignals seeds the datastar signals the page binds to.
func pageSignals(data TimerPageData) (string, error) {
	b, err := json.Marshal(map[string]any{
		"display":           data.Timer.Display(),
		"running":           data.Timer.Running(),
		"phase":             string(data.Timer.Phase),
		"preset":            data.Timer.Preset,
		"configuredMinutes": data.Timer.ConfiguredMinutes,
		"soundsEnabled":     data.Timer.SoundsEnabled,
		"todayCount":        data.TodayCount,
		"delta":             0,
	})
	if err != nil {
		return "", fmt.Errorf("marshal signals: %w", err)
	}
	return string(b), nil
}

func toggleLabel(s timer.Snapshot) string {
	if s.Running() {
		return "Pause"
	}
	return "Start"
}
