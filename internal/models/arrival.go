package models

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"
)

const (
	// DueThreshold is the remaining time at or below which no countdown is shown
	// and a freshly fetched arrival counts as approaching.
	DueThreshold = 30 * time.Second

	// StickyApproachThreshold is the remaining time below which a displayed
	// arrival is flagged approaching until its set is replaced.
	StickyApproachThreshold = 15 * time.Second

	// DisplayRows is the number of arrivals shown on the board
	DisplayRows = 3

	// towardsPlaceholder is sent by TfL when the destination is unknown
	towardsPlaceholder = "Check Front of Train"
)

// ArrivalRecord is one upcoming train. ExpectedArrival is fixed at creation;
// countdowns are always recomputed from it.
type ArrivalRecord struct {
	ID                 string    `json:"id"`
	LineID             string    `json:"lineId,omitempty"`
	DestinationName    string    `json:"destinationName"`
	Towards            string    `json:"towards,omitempty"`
	PlatformName       string    `json:"platformName,omitempty"`
	SecondsToStation   int       `json:"timeToStation"`
	FetchedAt          time.Time `json:"fetchedAt"`
	ExpectedArrival    time.Time `json:"expectedArrival"`
	ApproachingAtFetch bool      `json:"approachingAtFetch"`
}

// Remaining returns the time left until the expected arrival
func (a ArrivalRecord) Remaining(now time.Time) time.Duration {
	return a.ExpectedArrival.Sub(now)
}

// Countdown returns the countdown label at now
func (a ArrivalRecord) Countdown(now time.Time) string {
	return FormatCountdown(a.Remaining(now).Seconds())
}

// Destination returns the display label for the arrival
func (a ArrivalRecord) Destination() string {
	if name := FormatDestination(a.DestinationName); name != "" {
		return name
	}
	if a.Towards != "" && a.Towards != towardsPlaceholder {
		return FormatDestination(a.Towards)
	}
	return ""
}

// ArrivalResponse represents the raw JSON for one TfL arrival prediction
type ArrivalResponse struct {
	ID                  string `json:"id"`
	NaptanID            string `json:"naptanId"`
	StationName         string `json:"stationName"`
	LineID              string `json:"lineId"`
	LineName            string `json:"lineName"`
	PlatformName        string `json:"platformName"`
	Direction           string `json:"direction"`
	DestinationNaptanID string `json:"destinationNaptanId"`
	DestinationName     string `json:"destinationName"`
	TimeToStation       int    `json:"timeToStation"`
	CurrentLocation     string `json:"currentLocation"`
	Towards             string `json:"towards"`
	ExpectedArrival     string `json:"expectedArrival"`
	ModeName            string `json:"modeName"`
}

// ToArrivalRecord converts the raw response using the fetch-time wall clock
func (r *ArrivalResponse) ToArrivalRecord(fetchedAt time.Time) ArrivalRecord {
	tts := r.TimeToStation
	if tts < 0 {
		tts = 0
	}
	wait := time.Duration(tts) * time.Second
	return ArrivalRecord{
		ID:                 r.ID,
		LineID:             r.LineID,
		DestinationName:    r.DestinationName,
		Towards:            r.Towards,
		PlatformName:       r.PlatformName,
		SecondsToStation:   tts,
		FetchedAt:          fetchedAt,
		ExpectedArrival:    fetchedAt.Add(wait),
		ApproachingAtFetch: wait < DueThreshold,
	}
}

// ArrivalSet is the ordered set of arrivals from one refresh.
// It is replaced wholesale and never mutated in place.
type ArrivalSet struct {
	Records   []ArrivalRecord `json:"arrivals"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// NewArrivalSet converts raw arrivals and orders them by time to station
func NewArrivalSet(resp []ArrivalResponse, fetchedAt time.Time) ArrivalSet {
	records := make([]ArrivalRecord, 0, len(resp))
	for i := range resp {
		records = append(records, resp[i].ToArrivalRecord(fetchedAt))
	}
	slices.SortStableFunc(records, func(a, b ArrivalRecord) int {
		return a.SecondsToStation - b.SecondsToStation
	})
	return ArrivalSet{Records: records, FetchedAt: fetchedAt}
}

// Len returns the number of records
func (s ArrivalSet) Len() int {
	return len(s.Records)
}

// IsEmpty reports whether the set holds no arrivals
func (s ArrivalSet) IsEmpty() bool {
	return len(s.Records) == 0
}

// Top returns at most the first n records
func (s ArrivalSet) Top(n int) []ArrivalRecord {
	if n > len(s.Records) {
		n = len(s.Records)
	}
	return s.Records[:n]
}

// FormatCountdown renders the remaining seconds as a board label.
// Anything at or below 30s is due and renders empty.
func FormatCountdown(remainingSeconds float64) string {
	switch {
	case math.IsNaN(remainingSeconds):
		return ""
	case remainingSeconds > 60:
		return fmt.Sprintf("%d mins", int(math.Ceil(remainingSeconds/60)))
	case remainingSeconds > 30:
		return "1 min"
	default:
		return ""
	}
}

var (
	stationSuffixes = []string{
		" Underground Station",
		" DLR Station",
		" Rail Station",
		" Station",
	}
	parentheticalRegex = regexp.MustCompile(`\s*\([^()]*\)$`)
)

// FormatDestination strips station suffixes and trailing line qualifiers.
// It repeats until nothing changes, so applying it twice is a no-op.
func FormatDestination(name string) string {
	out := strings.TrimSpace(name)
	for {
		prev := out
		out = parentheticalRegex.ReplaceAllString(out, "")
		for _, suffix := range stationSuffixes {
			if trimmed, ok := strings.CutSuffix(out, suffix); ok && strings.TrimSpace(trimmed) != "" {
				out = trimmed
				break
			}
		}
		out = strings.TrimSpace(out)
		if out == prev {
			return out
		}
	}
}
