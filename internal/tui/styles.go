package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/justestif/moodtunes/internal/emotion"
)

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF5F5F")
	ColorGreen   = lipgloss.Color("#5FD787")
	ColorYellow  = lipgloss.Color("#FFD75F")
	ColorCyan    = lipgloss.Color("#5FD7FF")
	ColorBlue    = lipgloss.Color("#5F87FF")
	ColorMagenta = lipgloss.Color("#D787FF")
	ColorGray    = lipgloss.Color("#808080")
	ColorWhite   = lipgloss.Color("#FFFFFF")
)

// emotionColors gives each emotion its accent.
var emotionColors = map[emotion.Emotion]lipgloss.Color{
	emotion.Happy:   ColorYellow,
	emotion.Sad:     ColorBlue,
	emotion.Angry:   ColorRed,
	emotion.Calm:    ColorGreen,
	emotion.Excited: ColorMagenta,
	emotion.Neutral: ColorGray,
}

// Base styles reused by the views.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	PlayingStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorGray)
)

// EmotionStyle returns the accent style for e.
func EmotionStyle(e emotion.Emotion) lipgloss.Style {
	c, ok := emotionColors[e]
	if !ok {
		c = ColorGray
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}
