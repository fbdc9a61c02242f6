package tui

import "github.com/charmbracelet/lipgloss"

// Dot-matrix palette
var (
	colorAmber  = lipgloss.Color("214")
	colorYellow = lipgloss.Color("11")
	colorBlack  = lipgloss.Color("0")
	colorRed    = lipgloss.Color("1")
	colorGray   = lipgloss.Color("8")
)

var (
	styleBoard     = lipgloss.NewStyle().Foreground(colorAmber).Background(colorBlack)
	styleCountdown = lipgloss.NewStyle().Foreground(colorYellow).Background(colorBlack).Bold(true)
	styleAlert     = lipgloss.NewStyle().Foreground(colorYellow).Background(colorBlack).Bold(true).Blink(true)
	styleClock     = lipgloss.NewStyle().Foreground(colorYellow).Background(colorBlack).Bold(true)
	styleMuted     = lipgloss.NewStyle().Foreground(colorGray)
	styleError     = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

var styleFrame = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorGray).
	Background(colorBlack).
	Padding(0, 1)
