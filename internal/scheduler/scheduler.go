// Package scheduler drives the board: it waits for connectivity, resolves the
// requested station, refreshes arrivals on two independent TTLs and produces
// a ViewState snapshot on every tick.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/mobil-koeln/tubeboard/internal/api"
	"github.com/mobil-koeln/tubeboard/internal/models"
)

// Phase is the scheduler lifecycle state
type Phase int

const (
	PhaseAwaitingConnectivity Phase = iota
	PhaseResolvingStation
	PhaseServing
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingConnectivity:
		return "awaiting-connectivity"
	case PhaseResolvingStation:
		return "resolving-station"
	case PhaseServing:
		return "serving"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Prober classifies network connectivity
type Prober interface {
	Probe(ctx context.Context) api.Connectivity
}

// RequestSource returns the currently requested station
type RequestSource interface {
	Current(ctx context.Context) (models.StationQuery, error)
}

// Resolver resolves a query into a station
type Resolver interface {
	Resolve(ctx context.Context, q models.StationQuery) (models.Station, error)
}

// ArrivalStore fetches and holds the arrival set
type ArrivalStore interface {
	Fetch(ctx context.Context, st models.Station) (models.ArrivalSet, error)
	Current() models.ArrivalSet
	Store(set models.ArrivalSet)
	Invalidate()
}

// Config holds the scheduler intervals
type Config struct {
	// Tick is the frame interval used by Run
	Tick time.Duration
	// StationTTL is how often the requested station token is re-read
	StationTTL time.Duration
	// ArrivalTTL is how often arrivals are refreshed
	ArrivalTTL time.Duration
	// ProbeInterval is how often connectivity is probed while offline
	ProbeInterval time.Duration
	// RetryDelay spaces retries after a failed arrival refresh
	RetryDelay time.Duration
}

// DefaultConfig returns the intervals used by the board
func DefaultConfig() Config {
	return Config{
		Tick:          100 * time.Millisecond,
		StationTTL:    5 * time.Minute,
		ArrivalTTL:    30 * time.Second,
		ProbeInterval: 5 * time.Second,
		RetryDelay:    5 * time.Second,
	}
}

// FatalError is returned by Tick when the station cannot be resolved at
// startup. The board cannot recover from it.
type FatalError struct {
	Query models.StationQuery
	Err   error
}

func (e *FatalError) Error() string {
	if e.Query.Name == "" {
		return fmt.Sprintf("startup station resolution failed: %v", e.Err)
	}
	return fmt.Sprintf("startup station resolution failed for %q: %v", e.Query.Name, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// RefreshState is the scheduler-owned refresh bookkeeping
type RefreshState struct {
	LastStationCheck    time.Time
	LastArrivalRefresh  time.Time
	ForceRefreshPending bool
	Station             models.Station
	Token               string
}

// Scheduler is the control loop behind the board. Tick must be called from a
// single goroutine; network work runs as background tasks whose results are
// applied at the start and end of a tick.
type Scheduler struct {
	cfg      Config
	prober   Prober
	source   RequestSource
	resolver Resolver
	arrivals ArrivalStore
	now      func() time.Time
	logger   *zap.Logger
	inline   bool

	tasks   conc.WaitGroup
	results chan result
	force   atomic.Bool
	recheck atomic.Bool
	fatal   error

	phase       Phase
	state       RefreshState
	approaching []bool
	generation  uint64
	forceSeq    uint64

	probing    bool
	resolving  bool
	checking   bool
	refreshing bool
	lastProbe  time.Time

	refreshFailed   bool
	lastRefreshFail time.Time
}

// Option configures the Scheduler
type Option func(*Scheduler)

// WithClock sets the wall clock
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithInlineTasks runs network work synchronously inside Tick
func WithInlineTasks() Option {
	return func(s *Scheduler) {
		s.inline = true
	}
}

// New creates a scheduler in the awaiting-connectivity phase
func New(cfg Config, prober Prober, source RequestSource, resolver Resolver, arrivals ArrivalStore, opts ...Option) *Scheduler {
	def := DefaultConfig()
	if cfg.Tick <= 0 {
		cfg.Tick = def.Tick
	}
	if cfg.StationTTL <= 0 {
		cfg.StationTTL = def.StationTTL
	}
	if cfg.ArrivalTTL <= 0 {
		cfg.ArrivalTTL = def.ArrivalTTL
	}
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = def.ProbeInterval
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}

	s := &Scheduler{
		cfg:      cfg,
		prober:   prober,
		source:   source,
		resolver: resolver,
		arrivals: arrivals,
		now:      time.Now,
		logger:   zap.NewNop(),
		results:  make(chan result, 8),
		phase:    PhaseAwaitingConnectivity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase returns the current lifecycle phase
func (s *Scheduler) Phase() Phase {
	return s.phase
}

// State returns a copy of the refresh bookkeeping
func (s *Scheduler) State() RefreshState {
	return s.state
}

// ForceRefresh requests an arrival refresh on the next tick.
// It is safe to call from any goroutine.
func (s *Scheduler) ForceRefresh() {
	s.force.Store(true)
}

// CheckStation re-reads the requested station on the next tick instead of
// waiting for the station TTL. It is safe to call from any goroutine.
func (s *Scheduler) CheckStation() {
	s.recheck.Store(true)
}

// Tick advances the state machine and returns the view for this frame. The
// error is non-nil only when startup resolution failed; it is a *FatalError.
func (s *Scheduler) Tick(ctx context.Context) (models.ViewState, error) {
	if s.fatal != nil {
		return s.view(s.now()), s.fatal
	}

	s.drain(ctx)
	if s.force.Swap(false) {
		s.requestRefresh()
	}
	if s.fatal == nil {
		s.step(ctx, s.now())
		s.drain(ctx)
	}
	return s.view(s.now()), s.fatal
}

// Wait blocks until background tasks have finished
func (s *Scheduler) Wait() {
	s.tasks.Wait()
}

// Run ticks at the configured frame rate and hands every view to render
// until ctx is cancelled or a fatal error occurs.
func (s *Scheduler) Run(ctx context.Context, render func(models.ViewState)) error {
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()
	defer s.Wait()

	for {
		view, err := s.Tick(ctx)
		if err != nil {
			return err
		}
		if render != nil {
			render(view)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) step(ctx context.Context, now time.Time) {
	switch s.phase {
	case PhaseAwaitingConnectivity:
		if !s.probing && (s.lastProbe.IsZero() || now.Sub(s.lastProbe) >= s.cfg.ProbeInterval) {
			s.lastProbe = now
			s.probing = true
			s.spawn(func() {
				s.results <- probeResult{conn: s.prober.Probe(ctx)}
			})
		}

	case PhaseResolvingStation:
		if !s.resolving {
			s.resolving = true
			s.spawn(func() {
				q, err := s.source.Current(ctx)
				if err != nil {
					s.results <- resolveResult{query: q, err: fmt.Errorf("read station request: %w", err), startup: true}
					return
				}
				st, err := s.resolver.Resolve(ctx, q)
				s.results <- resolveResult{query: q, station: st, err: err, startup: true}
			})
		}

	case PhaseServing:
		s.stepServing(ctx, now)
	}
}

func (s *Scheduler) stepServing(ctx context.Context, now time.Time) {
	if !s.checking && !s.resolving && (s.recheck.Swap(false) || now.Sub(s.state.LastStationCheck) >= s.cfg.StationTTL) {
		s.state.LastStationCheck = now
		s.checking = true
		s.spawn(func() {
			q, err := s.source.Current(ctx)
			s.results <- tokenResult{query: q, err: err}
		})
	}

	if s.resolving || s.refreshing || !s.state.Station.Found() {
		return
	}
	due := s.state.ForceRefreshPending || now.Sub(s.state.LastArrivalRefresh) >= s.cfg.ArrivalTTL
	if !due {
		return
	}
	if s.refreshFailed && now.Sub(s.lastRefreshFail) < s.cfg.RetryDelay {
		return
	}

	s.refreshing = true
	gen, seq := s.generation, s.forceSeq
	st := s.state.Station
	s.spawn(func() {
		set, err := s.arrivals.Fetch(ctx, st)
		s.results <- refreshResult{generation: gen, forceSeq: seq, set: set, err: err}
	})
}

// requestRefresh marks a refresh as pending. A refresh already in flight
// does not satisfy it.
func (s *Scheduler) requestRefresh() {
	s.forceSeq++
	s.state.ForceRefreshPending = true
}

func (s *Scheduler) spawn(task func()) {
	if s.inline {
		task()
		return
	}
	s.tasks.Go(task)
}

// drain applies every finished task result without blocking
func (s *Scheduler) drain(ctx context.Context) {
	for {
		select {
		case r := <-s.results:
			r.apply(ctx, s)
		default:
			return
		}
	}
}

// replaceSet swaps the arrival set and resets the sticky approach flags
func (s *Scheduler) replaceSet(set *models.ArrivalSet) {
	if set == nil {
		s.arrivals.Invalidate()
		s.approaching = nil
		return
	}
	s.arrivals.Store(*set)
	s.approaching = make([]bool, min(set.Len(), models.DisplayRows))
}

// stationChanged clears everything tied to the previous station before the
// new one is resolved
func (s *Scheduler) stationChanged(ctx context.Context, q models.StationQuery) {
	s.logger.Info("requested station changed",
		zap.String("previous", s.state.Token),
		zap.String("token", q.RequestedOn),
		zap.String("station", q.Name),
	)
	s.generation++
	s.replaceSet(nil)
	s.refreshFailed = false
	s.requestRefresh()

	s.resolving = true
	s.spawn(func() {
		st, err := s.resolver.Resolve(ctx, q)
		s.results <- resolveResult{query: q, station: st, err: err}
	})
}

type result interface {
	apply(ctx context.Context, s *Scheduler)
}

type probeResult struct {
	conn api.Connectivity
}

func (r probeResult) apply(_ context.Context, s *Scheduler) {
	s.probing = false
	if r.conn != api.Online {
		s.logger.Debug("network offline, waiting")
		return
	}
	if s.phase == PhaseAwaitingConnectivity {
		s.logger.Info("network online, resolving station")
		s.phase = PhaseResolvingStation
	}
}

type resolveResult struct {
	query   models.StationQuery
	station models.Station
	err     error
	startup bool
}

func (r resolveResult) apply(_ context.Context, s *Scheduler) {
	s.resolving = false
	now := s.now()

	if r.err != nil {
		if r.startup {
			s.logger.Error("station resolution failed at startup", zap.Error(r.err))
			s.fatal = &FatalError{Query: r.query, Err: r.err}
			return
		}
		// keep serving the previous station; the token is left unchanged so
		// the next identity check retries the resolution
		s.logger.Error("station re-resolution failed", zap.String("station", r.query.Name), zap.Error(r.err))
		return
	}

	s.state.Station = r.station
	s.state.Token = r.query.RequestedOn
	s.state.LastStationCheck = now
	s.requestRefresh()
	if r.startup {
		s.phase = PhaseServing
		s.replaceSet(nil)
	}
	if !r.station.Found() {
		s.logger.Warn("station not in service", zap.String("station", r.query.Name))
	}
}

type tokenResult struct {
	query models.StationQuery
	err   error
}

func (r tokenResult) apply(ctx context.Context, s *Scheduler) {
	s.checking = false
	if r.err != nil {
		s.logger.Warn("station request check failed", zap.Error(r.err))
		return
	}
	if r.query.RequestedOn == s.state.Token {
		return
	}
	if s.resolving {
		return
	}
	s.stationChanged(ctx, r.query)
}

type refreshResult struct {
	generation uint64
	forceSeq   uint64
	set        models.ArrivalSet
	err        error
}

func (r refreshResult) apply(_ context.Context, s *Scheduler) {
	s.refreshing = false
	if r.generation != s.generation {
		s.logger.Debug("discarding arrivals for previous station")
		return
	}
	if r.err != nil {
		if errors.Is(r.err, context.Canceled) {
			return
		}
		s.refreshFailed = true
		s.lastRefreshFail = s.now()
		s.logger.Warn("arrival refresh failed, keeping previous arrivals", zap.Error(r.err))
		return
	}

	s.replaceSet(&r.set)
	s.refreshFailed = false
	if r.forceSeq == s.forceSeq {
		s.state.ForceRefreshPending = false
	}
	s.state.LastArrivalRefresh = s.now()
}
