package models

import (
	"encoding/json"
	"slices"
	"strings"
)

// Direction is the travel direction requested for a station
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// ParseDirection maps free text onto a Direction, defaulting to inbound
func ParseDirection(s string) Direction {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionOutbound:
		return DirectionOutbound
	default:
		return DirectionInbound
	}
}

// StationQuery is an immutable request for a station.
// RequestedOn is an opaque token that is only compared for equality.
type StationQuery struct {
	Name        string    `json:"name"`
	Direction   Direction `json:"direction"`
	RequestedOn string    `json:"requestedOn,omitempty"`
}

// NewStationQuery builds a query with a normalized name and direction
func NewStationQuery(name, direction, requestedOn string) StationQuery {
	return StationQuery{
		Name:        strings.TrimSpace(name),
		Direction:   ParseDirection(direction),
		RequestedOn: requestedOn,
	}
}

// StationStatus tags a Station as found or not found
type StationStatus string

const (
	StationNotFound StationStatus = "not_found"
	StationFound    StationStatus = "found"
)

// Station is the result of resolving a StationQuery.
// A not-found station is a valid result and renders as "not in service".
type Station struct {
	Status    StationStatus `json:"status"`
	ID        string        `json:"id,omitempty"`
	Name      string        `json:"name"`
	Lines     []string      `json:"lines,omitempty"`
	Direction Direction     `json:"direction"`
	Query     StationQuery  `json:"query"`
}

// NotFound returns the not-found station for a query
func NotFound(q StationQuery) Station {
	return Station{
		Status:    StationNotFound,
		Name:      q.Name,
		Direction: q.Direction,
		Query:     q,
	}
}

// FoundStation returns a resolved station
func FoundStation(q StationQuery, id, name string, lines []string) Station {
	return Station{
		Status:    StationFound,
		ID:        id,
		Name:      name,
		Lines:     slices.Clone(lines),
		Direction: q.Direction,
		Query:     q,
	}
}

// Found reports whether the station was resolved to a stop id
func (s Station) Found() bool {
	return s.Status == StationFound && s.ID != ""
}

// LineIDs returns the serviceable lines joined for a multi-line request
func (s Station) LineIDs() string {
	return strings.Join(s.Lines, ",")
}

// DisplayName returns the station name without station suffixes
func (s Station) DisplayName() string {
	return FormatDestination(s.Name)
}

// StopPointMatch is one entry of a stop point search
type StopPointMatch struct {
	ID    string   `json:"id"`
	IcsID string   `json:"icsId"`
	Name  string   `json:"name"`
	Modes []string `json:"modes"`
}

// StopPointSearchResponse represents the raw JSON for /StopPoint/Search
type StopPointSearchResponse struct {
	Query   string           `json:"query"`
	Total   int              `json:"total"`
	Matches []StopPointMatch `json:"matches"`
}

// BestMatch returns the first match, if any
func (r *StopPointSearchResponse) BestMatch() (StopPointMatch, bool) {
	if r == nil || len(r.Matches) == 0 {
		return StopPointMatch{}, false
	}
	return r.Matches[0], true
}

// Identifier is a line reference inside a stop point
type Identifier struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// LineModeGroup groups the line ids of a stop point by mode
type LineModeGroup struct {
	ModeName       string   `json:"modeName"`
	LineIdentifier []string `json:"lineIdentifier"`
}

// StopPointResponse represents the raw JSON for /StopPoint/{id}
type StopPointResponse struct {
	NaptanID       string              `json:"naptanId"`
	ID             string              `json:"id"`
	CommonName     string              `json:"commonName"`
	StopType       string              `json:"stopType"`
	Modes          []string            `json:"modes"`
	Lines          []Identifier        `json:"lines"`
	LineModeGroups []LineModeGroup     `json:"lineModeGroups"`
	Children       []StopPointResponse `json:"children"`
}

// StopID returns the naptan id, falling back to id
func (r *StopPointResponse) StopID() string {
	if r.NaptanID != "" {
		return r.NaptanID
	}
	return r.ID
}

// IsInterchange reports whether the stop point groups several physical
// stations, so arrivals for mode must be requested from a child
func (r *StopPointResponse) IsInterchange(mode string) bool {
	if len(r.Children) == 0 {
		return false
	}
	return r.StopType == "TransportInterchange" ||
		strings.HasPrefix(r.StopID(), "HUB") ||
		!r.HasMode(mode)
}

// HasMode reports whether the stop point serves the given mode
func (r *StopPointResponse) HasMode(mode string) bool {
	return slices.Contains(r.Modes, mode)
}

// LinesForMode returns the line ids served in the given mode.
// Without line mode groups every line is returned.
func (r *StopPointResponse) LinesForMode(mode string) []string {
	for _, g := range r.LineModeGroups {
		if g.ModeName == mode {
			return slices.Clone(g.LineIdentifier)
		}
	}

	lines := make([]string, 0, len(r.Lines))
	for _, l := range r.Lines {
		if l.ID != "" && !slices.Contains(lines, l.ID) {
			lines = append(lines, l.ID)
		}
	}
	return lines
}

// ChildForMode finds the shallowest child stop serving the given mode
func (r *StopPointResponse) ChildForMode(mode string) (*StopPointResponse, bool) {
	for i := range r.Children {
		if r.Children[i].HasMode(mode) {
			return &r.Children[i], true
		}
	}
	for i := range r.Children {
		if found, ok := r.Children[i].ChildForMode(mode); ok {
			return found, true
		}
	}
	return nil, false
}

// StationRequestResponse represents the station-selection service payload
type StationRequestResponse struct {
	Station   string          `json:"station"`
	Direction string          `json:"direction"`
	UpdatedOn json.RawMessage `json:"updated_on"`
}

// ToStationQuery converts the payload to a StationQuery
func (r *StationRequestResponse) ToStationQuery() StationQuery {
	return NewStationQuery(r.Station, r.Direction, normalizeToken(r.UpdatedOn))
}

// normalizeToken turns a JSON string or number into a comparable token
func normalizeToken(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	tok := strings.TrimSpace(string(raw))
	if tok == "null" {
		return ""
	}
	return tok
}
