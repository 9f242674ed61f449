package tui

import "github.com/charmbracelet/lipgloss"

// Palette used by the simulation view.
var (
	ColorTitle  = lipgloss.Color("42")
	ColorLabel  = lipgloss.Color("246")
	ColorValue  = lipgloss.Color("255")
	ColorMuted  = lipgloss.Color("241")
	ColorDone   = lipgloss.Color("35")
	ColorCancel = lipgloss.Color("208")
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(ColorTitle).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(ColorLabel).Width(34)
	valueStyle  = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	doneStyle   = lipgloss.NewStyle().Foreground(ColorDone).Bold(true)
	cancelStyle = lipgloss.NewStyle().Foreground(ColorCancel).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(ColorMuted).MarginTop(1)
)
