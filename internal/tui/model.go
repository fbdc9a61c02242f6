package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobil-koeln/tubeboard/internal/models"
	"github.com/mobil-koeln/tubeboard/internal/output"
)

// Scheduler is the part of the refresh scheduler the board drives
type Scheduler interface {
	Tick(ctx context.Context) (models.ViewState, error)
	ForceRefresh()
	CheckStation()
}

// Switcher changes the requested station from the keyboard
type Switcher interface {
	Switch(name, direction string)
}

// Model is the root Bubble Tea model for the board.
type Model struct {
	ctx      context.Context
	sched    Scheduler
	switcher Switcher
	frame    time.Duration
	board    output.BoardOptions

	width  int
	height int

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	// station prompt
	input     textinput.Model
	prompting bool
	direction models.Direction

	view models.ViewState
	err  error
}

// Option configures the Model
type Option func(*Model)

// WithSwitcher enables the change-station prompt
func WithSwitcher(s Switcher) Option {
	return func(m *Model) {
		m.switcher = s
	}
}

// WithFrameInterval sets how often the scheduler is ticked
func WithFrameInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.frame = d
		}
	}
}

// WithBoardOptions sets the board layout
func WithBoardOptions(o output.BoardOptions) Option {
	return func(m *Model) {
		m.board = o
	}
}

// New creates a new board model.
func New(ctx context.Context, sched Scheduler, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Station name..."
	ti.CharLimit = 60
	ti.Width = 30

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleBoard

	m := Model{
		ctx:       ctx,
		sched:     sched,
		frame:     100 * time.Millisecond,
		board:     output.BoardOptions{Width: output.DefaultWidth, Rows: models.DisplayRows},
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		input:     ti,
		direction: models.DirectionInbound,
		view:      models.ViewState{Mode: models.ModeOffline, Now: time.Now()},
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.keys.Station.SetEnabled(m.switcher != nil)
	return m
}

// Init starts the frame ticker and the offline spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(frameTick(0), m.spinner.Tick)
}

// Err returns the fatal scheduler error that ended the program, if any
func (m Model) Err() error {
	return m.err
}

// State returns the view of the last frame
func (m Model) State() models.ViewState {
	return m.view
}
