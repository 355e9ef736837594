package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.Color("#AB8BFF")
	colorText    = lipgloss.Color("#CECEFB")
	colorMuted   = lipgloss.Color("#9CA4AB")
	colorError   = lipgloss.Color("#EF4444")
	colorSpinner = lipgloss.Color("#D6C7FF")

	heroStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true).
			MarginBottom(1)

	gradientStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	searchStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true).
			MarginTop(1)

	rankStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			Width(3)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)
)
