// Package viewmodel derives the screen-facing projections from the package
// set. Everything here is a pure function of its inputs; nothing mutates the
// store.
package viewmodel

import (
	"sort"
	"time"

	"gitlab.com/swifttrack/driver-app/internal/model"
)

// ETAProvider supplies per-package arrival estimates. When it has none, the
// stop falls back to the window start.
type ETAProvider interface {
	EstimatedArrival(packageID string) (time.Time, bool)
}

// TrafficSignal flags stops delayed by external conditions.
type TrafficSignal interface {
	Delayed(packageID string) bool
}

// StaticETAProvider serves a fixed estimate table.
type StaticETAProvider map[string]time.Time

func (p StaticETAProvider) EstimatedArrival(packageID string) (time.Time, bool) {
	eta, ok := p[packageID]
	return eta, ok
}

// StaticTrafficSignal flags a fixed set of packages.
type StaticTrafficSignal map[string]bool

func (s StaticTrafficSignal) Delayed(packageID string) bool { return s[packageID] }

// RouteOptions carries the upstream inputs the derivation cannot compute.
type RouteOptions struct {
	// ExplicitSequence preserves input ordering. When false the stops are
	// ordered by window start, then priority, then package id.
	ExplicitSequence bool
	ETA              ETAProvider
	Traffic          TrafficSignal
	// DistanceKm maps package id to distance from the previous stop.
	DistanceKm map[string]float64
	Now        time.Time
}

// BuildRoute derives the ordered stop sequence for one driver and day.
// Delivered and failed packages project to completed stops; exactly one
// non-completed stop is current (the earliest), delayed when the clock has
// passed its window end or traffic flagged it; the rest are upcoming.
func BuildRoute(routeID, driverID string, date time.Time, pkgs []*model.Package, opts RouteOptions) model.Route {
	ordered := make([]*model.Package, len(pkgs))
	copy(ordered, pkgs)
	if !opts.ExplicitSequence {
		sort.SliceStable(ordered, func(i, j int) bool {
			a, b := ordered[i], ordered[j]
			if !a.TimeWindow.Start.Equal(b.TimeWindow.Start) {
				return a.TimeWindow.Start.Before(b.TimeWindow.Start)
			}
			if a.Priority.Rank() != b.Priority.Rank() {
				return a.Priority.Rank() < b.Priority.Rank()
			}
			return a.ID < b.ID
		})
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	stops := make([]model.Stop, 0, len(ordered))
	currentAssigned := false
	for i, p := range ordered {
		stop := model.Stop{
			PackageID:     p.ID,
			SequenceIndex: i,
			CustomerName:  p.Customer.Name,
			Address:       p.Customer.Address,
			TimeWindow:    p.TimeWindow,
		}
		if opts.DistanceKm != nil {
			stop.DistanceFromPrevKm = opts.DistanceKm[p.ID]
		}
		if opts.ETA != nil {
			if eta, ok := opts.ETA.EstimatedArrival(p.ID); ok {
				stop.EstimatedArrival = eta
			}
		}
		if stop.EstimatedArrival.IsZero() {
			stop.EstimatedArrival = p.TimeWindow.Start
		}

		switch {
		case p.Status.Terminal():
			stop.Status = model.StopCompleted
		case !currentAssigned:
			currentAssigned = true
			stop.Status = model.StopCurrent
			if now.After(p.TimeWindow.End) || (opts.Traffic != nil && opts.Traffic.Delayed(p.ID)) {
				stop.Status = model.StopDelayed
			}
		default:
			stop.Status = model.StopUpcoming
		}
		stops = append(stops, stop)
	}

	return model.Route{
		RouteID:  routeID,
		DriverID: driverID,
		Date:     date,
		Stops:    stops,
	}
}
