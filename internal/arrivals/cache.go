// Package arrivals holds the arrival set of the resolved station.
package arrivals

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/mobil-koeln/tubeboard/internal/models"
)

// ErrStationNotFound is returned when refreshing a station without a stop id
var ErrStationNotFound = errors.New("station has no stop id")

// ArrivalsAPI is the part of the TfL client the cache needs
type ArrivalsAPI interface {
	GetArrivals(ctx context.Context, lineIDs []string, stopID string, direction models.Direction) ([]models.ArrivalResponse, error)
}

// Cache holds the latest ArrivalSet. The set is swapped atomically, so
// readers never observe a partially updated set.
type Cache struct {
	api     ArrivalsAPI
	now     func() time.Time
	logger  *zap.Logger
	current atomic.Pointer[models.ArrivalSet]
}

// Option configures the Cache
type Option func(*Cache)

// WithClock sets the wall clock used to stamp fetched records
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCache creates an empty cache
func NewCache(arrivals ArrivalsAPI, opts ...Option) *Cache {
	c := &Cache{
		api:    arrivals,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.current.Store(&models.ArrivalSet{})
	return c
}

// Refresh fetches arrivals for the station and replaces the held set.
// On failure the held set is kept.
func (c *Cache) Refresh(ctx context.Context, st models.Station) (models.ArrivalSet, error) {
	set, err := c.Fetch(ctx, st)
	if err != nil {
		return models.ArrivalSet{}, err
	}
	c.Store(set)
	return set, nil
}

// Fetch requests arrivals for every line of the station in its direction and
// returns them ordered by time to station, without touching the held set.
func (c *Cache) Fetch(ctx context.Context, st models.Station) (models.ArrivalSet, error) {
	if !st.Found() {
		return models.ArrivalSet{}, ErrStationNotFound
	}

	fetchedAt := c.now()
	resp, err := c.api.GetArrivals(ctx, st.Lines, st.ID, st.Direction)
	if err != nil {
		c.logger.Warn("arrival fetch failed",
			zap.String("station", st.ID),
			zap.Error(err),
		)
		return models.ArrivalSet{}, fmt.Errorf("refresh arrivals for %s: %w", st.ID, err)
	}

	set := models.NewArrivalSet(resp, fetchedAt)
	c.logger.Debug("arrivals fetched",
		zap.String("station", st.ID),
		zap.String("lines", st.LineIDs()),
		zap.Int("count", set.Len()),
	)
	return set, nil
}

// Current returns the held set
func (c *Cache) Current() models.ArrivalSet {
	return *c.current.Load()
}

// Store replaces the held set
func (c *Cache) Store(set models.ArrivalSet) {
	c.current.Store(&set)
}

// Invalidate empties the held set
func (c *Cache) Invalidate() {
	c.current.Store(&models.ArrivalSet{})
}
