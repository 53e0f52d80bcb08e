package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/prabalesh/aideck/internal/models"
)

var (
	// Base styles
	BaseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	CardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			MarginRight(1)

	DialogStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("36")).
			Padding(1, 2)

	// Header styles
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Underline(true)

	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	// Tab styles
	TabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Margin(0, 1)

	ActiveTabStyle = TabStyle.
			Foreground(lipgloss.Color("36")).
			Bold(true).
			Underline(true)

	InactiveTabStyle = TabStyle.
				Foreground(lipgloss.Color("241"))

	// Data styles
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	FocusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("36")).
			Bold(true)

	// Status styles
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	// Notification banners
	SuccessBannerStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("28")).
				Foreground(lipgloss.Color("230")).
				Padding(0, 1)

	ErrorBannerStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("124")).
				Foreground(lipgloss.Color("230")).
				Padding(0, 1)

	// Badges
	BadgeStyle = lipgloss.NewStyle().Padding(0, 1)

	// Chart series
	CPUSeriesStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	MemorySeriesStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	GPUSeriesStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

// LevelStyle colours a log line by severity.
func LevelStyle(level models.Level) lipgloss.Style {
	switch level {
	case models.LevelError:
		return ErrorStyle
	case models.LevelWarning:
		return WarningStyle
	default:
		return InfoStyle
	}
}

func StatusBadge(status models.ModelStatus) string {
	style := BadgeStyle.Foreground(lipgloss.Color("230"))
	switch status {
	case models.StatusActive:
		style = style.Background(lipgloss.Color("28"))
	case models.StatusInstalled:
		style = style.Background(lipgloss.Color("25"))
	default:
		style = style.Background(lipgloss.Color("240"))
	}
	return style.Render(string(status))
}

func TypeBadge(t models.ModelType) string {
	style := BadgeStyle.Foreground(lipgloss.Color("230"))
	if t == models.ModelCloud {
		style = style.Background(lipgloss.Color("97"))
	} else {
		style = style.Background(lipgloss.Color("94"))
	}
	return style.Render(string(t))
}
