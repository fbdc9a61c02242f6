// Package station resolves a free-text station request into a stop id and
// the lines that serve it.
package station

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mobil-koeln/tubeboard/internal/api"
	"github.com/mobil-koeln/tubeboard/internal/models"
)

// StopPointAPI is the part of the TfL client the resolver needs
type StopPointAPI interface {
	SearchStopPoints(ctx context.Context, query, mode string) (*models.StopPointSearchResponse, error)
	GetStopPoint(ctx context.Context, id string) (*models.StopPointResponse, error)
}

// Resolver maps StationQuery values to Station values. It never retries;
// the caller owns retry cadence.
type Resolver struct {
	api    StopPointAPI
	mode   string
	logger *zap.Logger
}

// Option configures the Resolver
type Option func(*Resolver)

// WithMode sets the rail mode stations are resolved for
func WithMode(mode string) Option {
	return func(r *Resolver) {
		if mode != "" {
			r.mode = mode
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver backed by a StopPointAPI
func NewResolver(stops StopPointAPI, opts ...Option) *Resolver {
	r := &Resolver{
		api:    stops,
		mode:   api.DefaultMode,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mode returns the rail mode the resolver searches in
func (r *Resolver) Mode() string {
	return r.mode
}

// Resolve searches for the query, descends into interchange groupings and
// returns the station with its line set. No match is a NotFound station,
// not an error.
func (r *Resolver) Resolve(ctx context.Context, q models.StationQuery) (models.Station, error) {
	if q.Name == "" {
		return models.Station{}, api.ErrMissingField("station")
	}

	log := r.logger.With(zap.String("station", q.Name), zap.String("direction", string(q.Direction)))

	search, err := r.api.SearchStopPoints(ctx, q.Name, r.mode)
	if err != nil {
		return models.Station{}, fmt.Errorf("search stop points: %w", err)
	}
	match, ok := search.BestMatch()
	if !ok {
		log.Info("no stop point matches station")
		return models.NotFound(q), nil
	}

	stop, err := r.api.GetStopPoint(ctx, match.ID)
	if err != nil {
		return models.Station{}, fmt.Errorf("get stop point %s: %w", match.ID, err)
	}

	target := stop
	if stop.IsInterchange(r.mode) {
		child, ok := stop.ChildForMode(r.mode)
		if !ok {
			log.Warn("interchange has no stop for mode", zap.String("id", stop.StopID()), zap.String("mode", r.mode))
			return models.NotFound(q), nil
		}
		target = child
	}

	lines := stop.LinesForMode(r.mode)
	if len(lines) == 0 {
		log.Warn("stop point serves no lines for mode", zap.String("id", target.StopID()), zap.String("mode", r.mode))
		return models.NotFound(q), nil
	}

	name := target.CommonName
	if name == "" {
		name = stop.CommonName
	}
	if name == "" {
		name = match.Name
	}

	st := models.FoundStation(q, target.StopID(), name, lines)
	log.Info("station resolved",
		zap.String("id", st.ID),
		zap.String("name", st.Name),
		zap.Strings("lines", st.Lines),
	)
	return st, nil
}
