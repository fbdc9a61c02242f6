package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameTick returns a tea.Cmd that sends a frame tick after d.
func frameTick(d time.Duration) tea.Cmd {
	if d <= 0 {
		return func() tea.Msg {
			return frameTickMsg(time.Now())
		}
	}
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}
