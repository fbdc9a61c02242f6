package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mobil-koeln/tubeboard/internal/models"
	"github.com/mobil-koeln/tubeboard/internal/output"
)

// View renders the board and the footer.
func (m Model) View() string {
	lines := output.BoardLines(m.view, m.board)

	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		switch line.Kind {
		case output.LineArrival:
			rendered = append(rendered, renderRow(line))
		case output.LineAlert:
			rendered = append(rendered, styleAlert.Render(line.Text))
		case output.LineClock:
			rendered = append(rendered, styleClock.Render(line.Text))
		default:
			rendered = append(rendered, styleBoard.Render(line.Text))
		}
	}

	board := styleFrame.Render(lipgloss.JoinVertical(lipgloss.Left, rendered...))
	return lipgloss.JoinVertical(lipgloss.Left, board, m.renderFooter())
}

// renderRow styles the countdown apart from rank and destination
func renderRow(line output.BoardLine) string {
	countdown := line.Row.Countdown
	head := strings.TrimSuffix(line.Text, countdown)
	return styleBoard.Render(head) + styleCountdown.Render(countdown)
}

func (m Model) renderFooter() string {
	if m.prompting {
		dir := styleMuted.Render(fmt.Sprintf("[%s]", m.direction))
		return m.input.View() + " " + dir + "\n" + m.help.View(promptKeys{m.keys})
	}

	var status string
	switch {
	case m.view.Mode == models.ModeOffline:
		status = m.spinner.View() + " " + styleMuted.Render("waiting for network")
	case m.view.Stale:
		status = styleError.Render("refresh failed, showing last arrivals")
	}

	if status == "" {
		return m.help.View(m.keys)
	}
	return status + "\n" + m.help.View(m.keys)
}
