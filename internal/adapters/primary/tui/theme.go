package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lorrc/voice2ticket/internal/core/domain"
)

// Theme defines the color palette of the console. All colors are ANSI
// 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Accent     lipgloss.Color

	// Focused form field.
	FocusForeground lipgloss.Color

	// Notification levels.
	Success lipgloss.Color
	Info    lipgloss.Color
	Error   lipgloss.Color

	// Ticket priorities.
	PriorityHigh   lipgloss.Color
	PriorityMedium lipgloss.Color
	PriorityLow    lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText:       lipgloss.Color("252"),
	FaintText:        lipgloss.Color("243"),
	Accent:           lipgloss.Color("39"),
	FocusForeground:  lipgloss.Color("214"),
	Success:          lipgloss.Color("42"),
	Info:             lipgloss.Color("75"),
	Error:            lipgloss.Color("203"),
	PriorityHigh:     lipgloss.Color("196"),
	PriorityMedium:   lipgloss.Color("220"),
	PriorityLow:      lipgloss.Color("114"),
	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("245"),
}

// LevelColor returns the color of a notification level.
func (theme Theme) LevelColor(level domain.NotificationLevel) lipgloss.Color {
	switch level {
	case domain.LevelSuccess:
		return theme.Success
	case domain.LevelError:
		return theme.Error
	default:
		return theme.Info
	}
}

// PriorityColor returns the color of a ticket priority. Unknown values
// use NormalText.
func (theme Theme) PriorityColor(priority domain.TicketPriority) lipgloss.Color {
	switch priority {
	case domain.PriorityHigh:
		return theme.PriorityHigh
	case domain.PriorityMedium:
		return theme.PriorityMedium
	case domain.PriorityLow:
		return theme.PriorityLow
	default:
		return theme.NormalText
	}
}
