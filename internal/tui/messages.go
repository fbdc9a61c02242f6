package tui

import "time"

// frameTickMsg drives one scheduler tick.
type frameTickMsg time.Time
