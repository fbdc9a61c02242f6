package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobil-koeln/tubeboard/internal/models"
)

// Update handles all messages and key events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case frameTickMsg:
		return m.handleFrame()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Pass remaining messages to textinput when prompting
	if m.prompting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleFrame() (tea.Model, tea.Cmd) {
	v, err := m.sched.Tick(m.ctx)
	m.view = v
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	return m, frameTick(m.frame)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompting {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		m.sched.ForceRefresh()
		return m, nil

	case key.Matches(msg, m.keys.Station):
		m.prompting = true
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	}

	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		m.prompting = false
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Direction):
		if m.direction == models.DirectionInbound {
			m.direction = models.DirectionOutbound
		} else {
			m.direction = models.DirectionInbound
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		name := strings.TrimSpace(m.input.Value())
		m.prompting = false
		m.input.Blur()
		if name != "" && m.switcher != nil {
			m.switcher.Switch(name, string(m.direction))
			m.sched.CheckStation()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
