package report

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary = lipgloss.Color("#8B5CF6") // Vivid Purple
	Teal    = lipgloss.Color("#14B8A6")
	Accent  = lipgloss.Color("#F97316") // Orange
	Success = lipgloss.Color("#22C55E") // Green
	Error   = lipgloss.Color("#F43F5E") // Rose
	Text    = lipgloss.Color("#F8FAFC")
	TextDim = lipgloss.Color("#94A3B8") // Slate
	Border  = lipgloss.Color("#334155")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	dimStyle = lipgloss.NewStyle().
			Foreground(TextDim)

	goalStyle = lipgloss.NewStyle().
			Foreground(Teal).
			Bold(true)

	totalStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)

	barFilled = lipgloss.NewStyle().Background(Accent)
	barEmpty  = lipgloss.NewStyle().Background(Border)
)

// Delta thresholds for coloring a step penalty.
const (
	lowDrift  = 0.3
	highDrift = 0.6
)

func deltaStyle(delta float64) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch {
	case delta < lowDrift:
		return s.Foreground(Success)
	case delta < highDrift:
		return s.Foreground(Accent)
	default:
		return s.Foreground(Error)
	}
}
