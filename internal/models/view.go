package models

import "time"

// DisplayMode selects which screen the board renders
type DisplayMode string

const (
	ModeOffline      DisplayMode = "OFFLINE"
	ModeNotInService DisplayMode = "NOT_IN_SERVICE"
	ModeWelcome      DisplayMode = "WELCOME"
	ModeArrivals     DisplayMode = "ARRIVALS"
)

// ArrivalRow is one rendered arrival line
type ArrivalRow struct {
	Rank        int           `json:"rank"`
	Destination string        `json:"destination"`
	Countdown   string        `json:"countdown"`
	Remaining   time.Duration `json:"remaining"`
	Approaching bool          `json:"approaching"`
}

// ViewState is the snapshot handed to a renderer once per tick
type ViewState struct {
	Mode        DisplayMode  `json:"mode"`
	StationName string       `json:"stationName,omitempty"`
	Arrivals    []ArrivalRow `json:"arrivals"`
	Approaching bool         `json:"approaching"`
	Stale       bool         `json:"stale,omitempty"`
	Now         time.Time    `json:"now"`
}
