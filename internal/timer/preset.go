package timer

import (
	"fmt"
	"slices"
	"time"
)

const (
	MinMinutes = 1
	MaxMinutes = 90

	// TickInterval is the countdown resolution.
	TickInterval = time.Second
)

// Preset is a named quick-select countdown duration.
type Preset struct {
	Label   string
	Minutes int
}

var presets = []Preset{
	{Label: "Focus", Minutes: 25},
	{Label: "Short", Minutes: 5},
	{Label: "Long", Minutes: 15},
}

// DefaultPreset is loaded into every new timer.
var DefaultPreset = presets[0]

// Presets returns the available presets in display order.
func Presets() []Preset {
	return slices.Clone(presets)
}

// LookupPreset finds a preset by its label.
func LookupPreset(label string) (Preset, bool) {
	for _, p := range presets {
		if p.Label == label {
			return p, true
		}
	}
	return Preset{}, false
}

// completionMessages is the encouragement pool for the completion summary.
var completionMessages = []string{
	"Amazing work! Every minute of focus builds your future. 🌟",
	"Session done! Consistency is the key to mastery. 💪",
	"You crushed it! Rest a moment, then keep going. 🔥",
	"Fantastic focus! Your brain is getting stronger. 🧠",
	"Well done! Progress is progress, no matter how small. ✅",
}

// CompletionMessages returns the encouragement message pool.
func CompletionMessages() []string {
	return slices.Clone(completionMessages)
}

// completionVibration is the wait/vibrate pattern played on completion.
var completionVibration = []time.Duration{
	0,
	400 * time.Millisecond,
	100 * time.Millisecond,
	400 * time.Millisecond,
	100 * time.Millisecond,
	600 * time.Millisecond,
}

func clampMinutes(m int) int {
	return min(MaxMinutes, max(MinMinutes, m))
}

func formatClock(minutes, seconds int) string {
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
