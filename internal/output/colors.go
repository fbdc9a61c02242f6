package output

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode represents the color output mode
type ColorMode int

const (
	// ColorAuto enables colors if output is a TTY
	ColorAuto ColorMode = iota
	// ColorAlways forces colors on
	ColorAlways
	// ColorNever disables colors
	ColorNever
)

// Colors holds the color functions for the board and listings
type Colors struct {
	Time      func(format string, a ...interface{}) string
	Rank      func(format string, a ...interface{}) string
	Dest      func(format string, a ...interface{}) string
	Countdown func(format string, a ...interface{}) string
	Clock     func(format string, a ...interface{}) string
	Alert     func(format string, a ...interface{}) string
	Line      func(format string, a ...interface{}) string
	Platform  func(format string, a ...interface{}) string
	Header    func(format string, a ...interface{}) string
	Muted     func(format string, a ...interface{}) string
	Warn      func(format string, a ...interface{}) string
}

// NewColors creates a new Colors instance based on the color mode
func NewColors(mode ColorMode) *Colors {
	enabled := false
	switch mode {
	case ColorAlways:
		enabled = true
		color.NoColor = false
	case ColorAuto:
		enabled = IsTerminal(os.Stdout)
	}

	paint := func(attrs ...color.Attribute) func(string, ...interface{}) string {
		if !enabled {
			return plain
		}
		return color.New(attrs...).SprintfFunc()
	}

	// dot-matrix amber on black
	return &Colors{
		Time:      paint(color.FgWhite, color.Bold),
		Rank:      paint(color.FgYellow),
		Dest:      paint(color.FgHiYellow),
		Countdown: paint(color.FgHiYellow, color.Bold),
		Clock:     paint(color.FgHiYellow, color.Bold),
		Alert:     paint(color.FgHiYellow, color.BlinkSlow),
		Line:      paint(color.FgCyan, color.Bold),
		Platform:  paint(color.FgMagenta),
		Header:    paint(color.FgWhite, color.Bold),
		Muted:     paint(color.FgHiBlack),
		Warn:      paint(color.FgRed, color.Bold),
	}
}

// plain formats without escape codes. A bare string is returned as is so a
// literal % survives.
func plain(format string, a ...interface{}) string {
	if len(a) == 0 {
		return format
	}
	return fmt.Sprintf(format, a...)
}

// ParseColorMode parses a color mode string
func ParseColorMode(s string) ColorMode {
	switch s {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
