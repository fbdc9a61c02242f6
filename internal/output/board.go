package output

import (
	"fmt"
	"io"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode/utf8"

	"github.com/mobil-koeln/tubeboard/internal/models"
)

const (
	// DefaultWidth is the board width in columns
	DefaultWidth = 56

	MsgTrainApproaching = "*** STAND BACK - TRAIN APPROACHING ***"
	MsgNotInService     = "Not in service"
	MsgOffline          = "Waiting for network"
)

// LineKind tells a renderer how to style a board line
type LineKind int

const (
	LineBlank LineKind = iota
	LineArrival
	LineMessage
	LineAlert
	LineClock
)

// BoardLine is one laid-out line of the board, already padded to width
type BoardLine struct {
	Kind LineKind
	Text string
	Row  *models.ArrivalRow
}

// BoardOptions configures the board layout
type BoardOptions struct {
	Colors   *Colors
	Width    int
	Rows     int
	Location *time.Location
}

func (o BoardOptions) normalized() BoardOptions {
	if o.Colors == nil {
		o.Colors = NewColors(ColorNever)
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Rows <= 0 || o.Rows > models.DisplayRows {
		o.Rows = models.DisplayRows
	}
	if o.Location == nil {
		o.Location = London()
	}
	return o
}

// London returns the Europe/London zone the clock is shown in
func London() *time.Location {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		return time.UTC
	}
	return loc
}

// FormatClock renders t in loc as HH:MM:SS during the second half of each
// second and HH MM SS during the first, so the separators blink at 1 Hz
func FormatClock(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	if t.Nanosecond() > 500*int(time.Millisecond) {
		return t.Format("15:04:05")
	}
	return t.Format("15 04 05")
}

// WelcomeMessage is shown while a served station has no arrivals
func WelcomeMessage(station string) string {
	if station == "" {
		return "Welcome"
	}
	return fmt.Sprintf("Welcome to %s Station", station)
}

// BoardLines lays out v as Rows arrival lines, a message line and the clock
func BoardLines(v models.ViewState, opts BoardOptions) []BoardLine {
	opts = opts.normalized()
	lines := make([]BoardLine, 0, opts.Rows+2)

	blank := BoardLine{Kind: LineBlank, Text: strings.Repeat(" ", opts.Width)}
	message := func(s string) BoardLine {
		return BoardLine{Kind: LineMessage, Text: Center(s, opts.Width)}
	}

	switch v.Mode {
	case models.ModeArrivals:
		for i := range v.Arrivals {
			if i >= opts.Rows {
				break
			}
			row := v.Arrivals[i]
			lines = append(lines, BoardLine{Kind: LineArrival, Text: FormatRow(row, opts.Width), Row: &row})
		}
	case models.ModeNotInService:
		lines = append(lines, message(v.StationName), message(MsgNotInService))
	case models.ModeOffline:
		lines = append(lines, message(MsgOffline))
	default:
		lines = append(lines, message(WelcomeMessage(v.StationName)))
	}

	for len(lines) < opts.Rows {
		lines = append(lines, blank)
	}
	if v.Mode == models.ModeArrivals && v.Approaching {
		lines = append(lines, BoardLine{Kind: LineAlert, Text: Center(MsgTrainApproaching, opts.Width)})
	} else {
		lines = append(lines, blank)
	}
	lines = append(lines, BoardLine{Kind: LineClock, Text: Center(FormatClock(v.Now, opts.Location), opts.Width)})
	return lines
}

// RenderBoard writes the board for v
func RenderBoard(w io.Writer, v models.ViewState, opts BoardOptions) {
	opts = opts.normalized()
	c := opts.Colors

	for _, line := range BoardLines(v, opts) {
		switch line.Kind {
		case LineArrival:
			_, _ = fmt.Fprintln(w, colorRow(c, *line.Row, opts.Width))
		case LineAlert:
			_, _ = fmt.Fprintln(w, c.Alert("%s", line.Text))
		case LineClock:
			_, _ = fmt.Fprintln(w, c.Clock("%s", line.Text))
		case LineMessage:
			_, _ = fmt.Fprintln(w, c.Dest("%s", line.Text))
		default:
			_, _ = fmt.Fprintln(w, line.Text)
		}
	}
}

// FormatRow lays out "rank destination ... countdown" in width columns,
// truncating the destination if needed
func FormatRow(row models.ArrivalRow, width int) string {
	rank, dest, countdown := rowParts(row, width)
	pad := width - utf8.RuneCountInString(rank) - utf8.RuneCountInString(dest) - utf8.RuneCountInString(countdown)
	return rank + dest + strings.Repeat(" ", max(pad, 0)) + countdown
}

func colorRow(c *Colors, row models.ArrivalRow, width int) string {
	rank, dest, countdown := rowParts(row, width)
	pad := width - utf8.RuneCountInString(rank) - utf8.RuneCountInString(dest) - utf8.RuneCountInString(countdown)
	return c.Rank("%s", rank) + c.Dest("%s", dest) + strings.Repeat(" ", max(pad, 0)) + c.Countdown("%s", countdown)
}

func rowParts(row models.ArrivalRow, width int) (rank, dest, countdown string) {
	rank = fmt.Sprintf("%d ", row.Rank)
	countdown = row.Countdown
	room := width - utf8.RuneCountInString(rank) - utf8.RuneCountInString(countdown) - 1
	dest = Truncate(row.Destination, room)
	return rank, dest, countdown
}

// Truncate shortens s to at most n runes
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Center pads s on both sides to width, truncating if it does not fit
func Center(s string, width int) string {
	s = Truncate(s, width)
	gap := width - utf8.RuneCountInString(s)
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}
