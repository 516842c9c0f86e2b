// Package tui holds the interactive terminal pieces of padup: prompts, the
// shortlet browser and the KYC review screen.
package tui

import "github.com/charmbracelet/lipgloss"

// Styles used by the screens and by command output.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Item     lipgloss.Style
	Key      lipgloss.Style
	Value    lipgloss.Style
	Help     lipgloss.Style
}

// Colors pick a light and a dark variant so listings stay readable on
// either terminal background.
var (
	brand  = lipgloss.AdaptiveColor{Light: "#B4236E", Dark: "#F25D94"}
	accent = lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#9F8CFF"}
	good   = lipgloss.AdaptiveColor{Light: "#0B7A3B", Dark: "#43BF6D"}
	caveat = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#F2C94C"}
	dim    = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	text   = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#DADADA"}
)

func DefaultStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{
		Title:    s.Bold(true).Foreground(brand).MarginLeft(2).MarginTop(1),
		Subtitle: s.Bold(true).Foreground(accent).MarginLeft(2),
		Success:  s.Bold(true).Foreground(good),
		Warning:  s.Bold(true).Foreground(caveat),
		Muted:    s.Foreground(dim),
		Selected: s.Bold(true).Foreground(brand).PaddingLeft(2),
		Item:     s.PaddingLeft(4),
		Key:      s.Bold(true).Foreground(accent),
		Value:    s.Foreground(text),
		Help:     s.Foreground(dim).MarginLeft(2).MarginTop(1),
	}
}

// PlainStyles keep the layout of DefaultStyles without color or emphasis,
// for --no-color and for tests.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{
		Title:    s.MarginLeft(2).MarginTop(1),
		Subtitle: s.MarginLeft(2),
		Success:  s,
		Warning:  s,
		Muted:    s,
		Selected: s.PaddingLeft(2),
		Item:     s.PaddingLeft(4),
		Key:      s,
		Value:    s,
		Help:     s.MarginLeft(2).MarginTop(1),
	}
}
