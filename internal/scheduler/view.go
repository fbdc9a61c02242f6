package scheduler

import (
	"time"

	"github.com/mobil-koeln/tubeboard/internal/models"
)

// view builds the snapshot for one frame. Countdowns are recomputed from the
// expected arrival instants; approach flags only ever go from false to true
// until the set is replaced.
func (s *Scheduler) view(now time.Time) models.ViewState {
	v := models.ViewState{Now: now, Arrivals: []models.ArrivalRow{}}

	switch {
	case s.phase == PhaseAwaitingConnectivity:
		v.Mode = models.ModeOffline
		return v
	case s.phase == PhaseResolvingStation:
		v.Mode = models.ModeWelcome
		return v
	case !s.state.Station.Found():
		v.Mode = models.ModeNotInService
		v.StationName = s.state.Station.DisplayName()
		return v
	}

	v.StationName = s.state.Station.DisplayName()
	v.Stale = s.refreshFailed

	top := s.arrivals.Current().Top(models.DisplayRows)
	if len(top) == 0 {
		v.Mode = models.ModeWelcome
		return v
	}

	if len(s.approaching) < len(top) {
		grown := make([]bool, len(top))
		copy(grown, s.approaching)
		s.approaching = grown
	}

	v.Mode = models.ModeArrivals
	for i, rec := range top {
		remaining := rec.Remaining(now)
		if remaining < models.StickyApproachThreshold {
			s.approaching[i] = true
		}
		approaching := rec.ApproachingAtFetch || s.approaching[i]

		v.Arrivals = append(v.Arrivals, models.ArrivalRow{
			Rank:        i + 1,
			Destination: rec.Destination(),
			Countdown:   models.FormatCountdown(remaining.Seconds()),
			Remaining:   remaining,
			Approaching: approaching,
		})
		if approaching {
			v.Approaching = true
		}
	}
	return v
}
