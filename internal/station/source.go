package station

import (
	"context"
	"fmt"
	"sync"

	"github.com/mobil-koeln/tubeboard/internal/models"
)

// StaticToken is the request token of a station fixed by configuration
const StaticToken = "static"

// RequestFetcher reads the requested station from a remote service
type RequestFetcher interface {
	GetStationRequest(ctx context.Context, sourceURL string) (models.StationQuery, error)
}

// HTTPSource reads the requested station from the station-selection service
type HTTPSource struct {
	fetcher RequestFetcher
	url     string
}

// NewHTTPSource returns a source polling url
func NewHTTPSource(fetcher RequestFetcher, url string) *HTTPSource {
	return &HTTPSource{fetcher: fetcher, url: url}
}

// Current returns the station currently requested by the service
func (s *HTTPSource) Current(ctx context.Context) (models.StationQuery, error) {
	return s.fetcher.GetStationRequest(ctx, s.url)
}

// StaticSource always returns the same query, so it never signals a change
type StaticSource struct {
	query models.StationQuery
}

// NewStaticSource returns a source for a configured station
func NewStaticSource(name, direction string) *StaticSource {
	return &StaticSource{query: models.NewStationQuery(name, direction, StaticToken)}
}

// Current returns the configured query
func (s *StaticSource) Current(context.Context) (models.StationQuery, error) {
	return s.query, nil
}

// SwitchableSource overlays a manually chosen station on top of another
// source. The override wins until Clear is called or the base source
// requests a different station than it did at the time of the switch.
type SwitchableSource struct {
	base RequestSource

	mu       sync.Mutex
	override *models.StationQuery
	switches int

	// last base token seen, and the one the override is pinned to
	baseToken   string
	baseSeen    bool
	pinned      string
	pinnedKnown bool
}

// RequestSource returns the currently requested station
type RequestSource interface {
	Current(ctx context.Context) (models.StationQuery, error)
}

// NewSwitchableSource wraps base
func NewSwitchableSource(base RequestSource) *SwitchableSource {
	return &SwitchableSource{base: base}
}

// Switch requests name in direction. Every switch gets a fresh token so the
// scheduler treats it as a change even when the name repeats.
func (s *SwitchableSource) Switch(name, direction string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.switches++
	q := models.NewStationQuery(name, direction, fmt.Sprintf("manual-%d", s.switches))
	s.override = &q
	s.pinned = s.baseToken
	s.pinnedKnown = s.baseSeen
}

// Clear drops the override so the base source is used again
func (s *SwitchableSource) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = nil
}

// Current returns the override if set, otherwise the base query. A new base
// token drops the override.
func (s *SwitchableSource) Current(ctx context.Context) (models.StationQuery, error) {
	q, err := s.base.Current(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if s.override != nil {
			return *s.override, nil
		}
		return q, err
	}

	s.baseToken = q.RequestedOn
	s.baseSeen = true

	if s.override == nil {
		return q, nil
	}
	if !s.pinnedKnown {
		s.pinned = q.RequestedOn
		s.pinnedKnown = true
	}
	if q.RequestedOn != s.pinned {
		s.override = nil
		return q, nil
	}
	return *s.override, nil
}
