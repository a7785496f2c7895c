package analytics

import (
	"sort"

	"fleetsmart/internal/pipeline"
)

// OperationalKPIs are the fleet-wide efficiency metrics. Any metric whose
// source column was absent or entirely null reports 0.
type OperationalKPIs struct {
	OnTimeRate       float64 `json:"on_time_rate"`
	FleetUtilization float64 `json:"fleet_utilization"`
	AverageIdleHours float64 `json:"average_idle_hours"`
	FleetMPG         float64 `json:"fleet_mpg"`
	AverageDowntime  float64 `json:"average_downtime"`
	UniqueTrucks     int     `json:"unique_trucks"`
	TripsPerTruck    float64 `json:"trips_per_truck"`
}

// OperationalKPIs aggregates the operational view. On-time rate and
// utilization are percentages; fleet MPG is total miles over total
// gallons burned.
func (e *Engine) OperationalKPIs() OperationalKPIs {
	view := e.Operational()
	if view.IsEmpty() {
		return OperationalKPIs{}
	}

	var kpis OperationalKPIs
	var onTime int
	var miles, gallons, idle float64
	trucks := make(map[int]struct{})
	utilization := make([]*float64, 0, len(view.Facts))
	downtime := make([]*float64, 0, len(view.Facts))
	for _, fact := range view.Facts {
		if fact.OnTime {
			onTime++
		}
		miles += fact.ActualDistanceMiles
		gallons += fact.FuelGallonsUsed
		idle += fact.IdleTimeHours
		trucks[fact.TruckID] = struct{}{}
		utilization = append(utilization, fact.UtilizationRate)
		downtime = append(downtime, fact.DowntimeHours)
	}

	total := float64(len(view.Facts))
	kpis.OnTimeRate = float64(onTime) / total * 100
	kpis.AverageIdleHours = idle / total
	if gallons > 0 {
		kpis.FleetMPG = miles / gallons
	}
	if view.TruckSchema.HasUtilization {
		kpis.FleetUtilization = meanOfPtrs(utilization) * 100
	}
	if view.TruckSchema.HasDowntime {
		kpis.AverageDowntime = meanOfPtrs(downtime)
	}
	kpis.UniqueTrucks = len(trucks)
	if len(trucks) > 0 {
		kpis.TripsPerTruck = total / float64(len(trucks))
	}
	return kpis
}

// RouteOnTime is the per-route punctuality rollup
type RouteOnTime struct {
	RouteName  string  `json:"route_name"`
	Trips      int     `json:"trips"`
	OnTimeRate float64 `json:"on_time_rate"`
}

// WorstRoutesByOnTime ranks routes by ascending on-time rate, excluding
// routes under the minimum sample size, bounded to the configured top N.
func (e *Engine) WorstRoutesByOnTime() []RouteOnTime {
	view := e.Operational()

	type rollup struct {
		trips  int
		onTime int
	}
	byRoute := make(map[string]*rollup)
	order := make([]string, 0)
	for _, fact := range view.Facts {
		r, ok := byRoute[fact.RouteName]
		if !ok {
			r = &rollup{}
			byRoute[fact.RouteName] = r
			order = append(order, fact.RouteName)
		}
		r.trips++
		if fact.OnTime {
			r.onTime++
		}
	}

	routes := make([]RouteOnTime, 0, len(order))
	for _, name := range order {
		r := byRoute[name]
		if r.trips < e.cfg.MinRouteTrips {
			continue
		}
		routes = append(routes, RouteOnTime{
			RouteName:  name,
			Trips:      r.trips,
			OnTimeRate: float64(r.onTime) / float64(r.trips) * 100,
		})
	}
	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].OnTimeRate < routes[j].OnTimeRate
	})
	if len(routes) > e.cfg.TopN {
		routes = routes[:e.cfg.TopN]
	}
	return routes
}

// monthlyTripCounts groups operational facts per dispatch month, used by
// trend reporting.
func monthlyTripCounts(facts []pipeline.TripFact) map[string]int {
	counts := make(map[string]int)
	for _, fact := range facts {
		if fact.Month.IsZero() {
			continue
		}
		counts[fact.Month.Format("2006-01")]++
	}
	return counts
}

// TripVolumeByMonth returns trip counts keyed by "YYYY-MM", ascending
func (e *Engine) TripVolumeByMonth() []MonthlyTripVolume {
	view := e.Operational()
	counts := monthlyTripCounts(view.Facts)

	months := make([]MonthlyTripVolume, 0, len(counts))
	for month, trips := range counts {
		months = append(months, MonthlyTripVolume{Month: month, Trips: trips})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return months
}

// MonthlyTripVolume is one month of dispatch activity
type MonthlyTripVolume struct {
	Month string `json:"month"`
	Trips int    `json:"trips"`
}
