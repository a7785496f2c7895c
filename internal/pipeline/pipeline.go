package pipeline

import (
	"log/slog"
	"sort"
	"strconv"
	"time"

	"fleetsmart/internal/tablestore"
	"fleetsmart/pkg/contracts/domain"
)

// Window is the inclusive analysis period applied to the financial view
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, inclusive on both ends
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Pipeline assembles the denormalized fact views from the cleaned table
// mapping. Views are memoized on first use and never mutated afterwards;
// every derived read returns fresh slices.
type Pipeline struct {
	logger *slog.Logger
	window Window

	drivers      []domain.Driver
	trucks       []domain.Truck
	routes       []domain.Route
	loads        []domain.Load
	trips        []domain.Trip
	events       []domain.DeliveryEvent
	fuel         []domain.FuelPurchase
	maintenance  []domain.MaintenanceRecord
	incidents    []domain.SafetyIncident
	driverMetric []domain.DriverMonthlyMetric
	truckMetric  []domain.TruckUtilizationMetric
	driverAvail  DriverMetricAvailability
	truckAvail   TruckMetricAvailability

	operational *OperationalView
	financial   *FinancialView
	driverView  *DriverView
	truckCosts  []TruckCostFact
}

// New decodes the cleaned tables and prepares a pipeline over them. The
// tables themselves are not retained; the pipeline works from its own
// typed snapshot.
func New(tables map[string]*tablestore.Table, window Window, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{logger: logger, window: window}
	p.drivers = decodeDrivers(tables["drivers"])
	p.trucks = decodeTrucks(tables["trucks"])
	p.routes = decodeRoutes(tables["routes"])
	p.loads = decodeLoads(tables["loads"])
	p.trips = decodeTrips(tables["trips"])
	p.events = decodeDeliveryEvents(tables["delivery_events"])
	p.fuel = decodeFuelPurchases(tables["fuel_purchases"])
	p.maintenance = decodeMaintenanceRecords(tables["maintenance_records"])
	p.incidents = decodeSafetyIncidents(tables["safety_incidents"])
	p.driverMetric, p.driverAvail = decodeDriverMonthly(tables["driver_monthly_metrics"])
	p.truckMetric, p.truckAvail = decodeTruckMonthly(tables["truck_utilization_metrics"])

	logger.Info("pipeline snapshot decoded",
		"drivers", len(p.drivers),
		"trucks", len(p.trucks),
		"routes", len(p.routes),
		"loads", len(p.loads),
		"trips", len(p.trips),
		"delivery_events", len(p.events),
	)

	return p
}

// Drivers returns the decoded driver records
func (p *Pipeline) Drivers() []domain.Driver { return p.drivers }

// Trucks returns the decoded truck records
func (p *Pipeline) Trucks() []domain.Truck { return p.trucks }

// FuelPurchases returns the decoded fuel purchase records
func (p *Pipeline) FuelPurchases() []domain.FuelPurchase { return p.fuel }

// MaintenanceRecords returns the decoded maintenance records
func (p *Pipeline) MaintenanceRecords() []domain.MaintenanceRecord { return p.maintenance }

// SafetyIncidents returns the decoded safety incident records
func (p *Pipeline) SafetyIncidents() []domain.SafetyIncident { return p.incidents }

// TruckMonthly returns the decoded truck utilization metric rows
func (p *Pipeline) TruckMonthly() ([]domain.TruckUtilizationMetric, TruckMetricAvailability) {
	return p.truckMetric, p.truckAvail
}

// Operational builds the trip-level fact view. If any of the four core
// tables (trips, loads, delivery events, routes) is missing or empty, the
// whole view is empty: a partial view would silently mislead aggregates.
func (p *Pipeline) Operational() OperationalView {
	if p.operational != nil {
		return copyOperational(*p.operational)
	}

	view := OperationalView{DriverSchema: p.driverAvail, TruckSchema: p.truckAvail}
	if len(p.trips) == 0 || len(p.loads) == 0 || len(p.events) == 0 || len(p.routes) == 0 {
		p.logger.Warn("operational view unavailable: a core table is missing or empty",
			"trips", len(p.trips),
			"loads", len(p.loads),
			"delivery_events", len(p.events),
			"routes", len(p.routes),
		)
		p.operational = &view
		return copyOperational(view)
	}

	loadsByID := make(map[int]domain.Load, len(p.loads))
	for _, load := range p.loads {
		if _, exists := loadsByID[load.LoadID]; !exists {
			loadsByID[load.LoadID] = load
		}
	}

	type eventKey struct{ loadID, tripID int }
	eventsByKey := make(map[eventKey]domain.DeliveryEvent, len(p.events))
	for _, event := range p.events {
		key := eventKey{event.LoadID, event.TripID}
		if _, exists := eventsByKey[key]; !exists {
			eventsByKey[key] = event
		}
	}

	routesByID := make(map[int]domain.Route, len(p.routes))
	for _, route := range p.routes {
		if _, exists := routesByID[route.RouteID]; !exists {
			routesByID[route.RouteID] = route
		}
	}

	type monthKey struct {
		id    int
		month time.Time
	}
	driverMetrics := make(map[monthKey]domain.DriverMonthlyMetric, len(p.driverMetric))
	for _, m := range p.driverMetric {
		key := monthKey{m.DriverID, m.Month}
		if _, exists := driverMetrics[key]; !exists {
			driverMetrics[key] = m
		}
	}
	truckMetrics := make(map[monthKey]domain.TruckUtilizationMetric, len(p.truckMetric))
	for _, m := range p.truckMetric {
		key := monthKey{m.TruckID, m.Month}
		if _, exists := truckMetrics[key]; !exists {
			truckMetrics[key] = m
		}
	}

	facts := make([]TripFact, 0, len(p.trips))
	for _, trip := range p.trips {
		fact := TripFact{
			TripID:              trip.TripID,
			LoadID:              trip.LoadID,
			DriverID:            trip.DriverID,
			TruckID:             trip.TruckID,
			RouteID:             trip.RouteID,
			DispatchDate:        trip.DispatchDate,
			ActualDistanceMiles: trip.ActualDistanceMiles,
			IdleTimeHours:       trip.IdleTimeHours,
			FuelGallonsUsed:     trip.FuelGallonsUsed,
			RouteName:           "Unknown to Unknown",
		}
		if trip.DispatchDate != nil {
			fact.Month = domain.MonthOf(*trip.DispatchDate)
		}

		if load, ok := loadsByID[trip.LoadID]; ok {
			fact.HasLoad = true
			fact.Revenue = load.Revenue
			fact.FuelSurcharge = load.FuelSurcharge
			fact.AccessorialCharges = load.AccessorialCharges
		}
		if event, ok := eventsByKey[eventKey{trip.LoadID, trip.TripID}]; ok {
			fact.ScheduledDatetime = event.ScheduledDatetime
			fact.ActualDatetime = event.ActualDatetime
		}
		if route, ok := routesByID[trip.RouteID]; ok {
			fact.HasRoute = true
			fact.RouteName = route.Name()
		}

		if !fact.Month.IsZero() {
			if m, ok := driverMetrics[monthKey{trip.DriverID, fact.Month}]; ok {
				if p.driverAvail.HasIdleHours {
					fact.AverageIdleHours = m.AverageIdleHours
				}
				if p.driverAvail.HasMPG {
					fact.AverageMPG = m.AverageMPG
				}
			}
			if m, ok := truckMetrics[monthKey{trip.TruckID, fact.Month}]; ok {
				if p.truckAvail.HasUtilization {
					fact.UtilizationRate = m.UtilizationRate
				}
				if p.truckAvail.HasDowntime {
					fact.DowntimeHours = m.DowntimeHours
				}
			}
		}

		facts = append(facts, fact)
	}

	view.Facts = facts
	p.operational = &view
	p.logger.Info("operational view ready", "trips", len(facts))
	return copyOperational(view)
}

// Financial builds the windowed financial fact view: loads inner-joined
// with trips (a trip without a load is meaningless), left-joined with
// routes, restricted to the analysis window on the load date.
func (p *Pipeline) Financial() FinancialView {
	if p.financial != nil {
		return copyFinancial(*p.financial)
	}

	view := FinancialView{WindowStart: p.window.Start, WindowEnd: p.window.End}

	tripsByLoad := make(map[int]domain.Trip, len(p.trips))
	for _, trip := range p.trips {
		if _, exists := tripsByLoad[trip.LoadID]; !exists {
			tripsByLoad[trip.LoadID] = trip
		}
	}
	routesByID := make(map[int]domain.Route, len(p.routes))
	for _, route := range p.routes {
		if _, exists := routesByID[route.RouteID]; !exists {
			routesByID[route.RouteID] = route
		}
	}

	facts := make([]FinancialFact, 0, len(p.loads))
	for _, load := range p.loads {
		trip, ok := tripsByLoad[load.LoadID]
		if !ok {
			continue
		}
		if load.LoadDate == nil || !p.window.Contains(*load.LoadDate) {
			continue
		}

		fact := FinancialFact{
			LoadID:              load.LoadID,
			TripID:              trip.TripID,
			DriverID:            trip.DriverID,
			TruckID:             trip.TruckID,
			RouteID:             trip.RouteID,
			LoadDate:            load.LoadDate,
			Revenue:             load.Revenue,
			FuelSurcharge:       load.FuelSurcharge,
			AccessorialCharges:  load.AccessorialCharges,
			ActualDistanceMiles: trip.ActualDistanceMiles,
			RouteName:           "Unknown to Unknown",
		}
		if route, ok := routesByID[trip.RouteID]; ok {
			fact.HasRoute = true
			fact.RouteName = route.Name()
			fact.BaseRatePerMile = route.BaseRatePerMile
		}
		facts = append(facts, fact)
	}

	view.Facts = facts
	p.financial = &view
	p.logger.Info("financial view ready",
		"loads", len(facts),
		"window_start", p.window.Start.Format("2006-01-02"),
		"window_end", p.window.End.Format("2006-01-02"),
	)
	return copyFinancial(view)
}

// Driver builds the driver monthly fact view: metric rows enriched with
// display names and incident counts. Metric values default to 0 where the
// source cell was null; missing incident counts default to 0.
func (p *Pipeline) Driver() DriverView {
	if p.driverView != nil {
		return copyDriver(*p.driverView)
	}

	view := DriverView{Schema: p.driverAvail}
	if len(p.driverMetric) == 0 {
		p.logger.Warn("driver view unavailable: driver_monthly_metrics missing or empty")
		p.driverView = &view
		return copyDriver(view)
	}

	namesByID := make(map[int]string, len(p.drivers))
	for _, d := range p.drivers {
		if _, exists := namesByID[d.DriverID]; !exists {
			namesByID[d.DriverID] = d.FullName()
		}
	}

	incidentCounts := make(map[int]int, len(p.incidents))
	for _, incident := range p.incidents {
		incidentCounts[incident.DriverID]++
	}

	facts := make([]DriverMonthlyFact, 0, len(p.driverMetric))
	for _, m := range p.driverMetric {
		fact := DriverMonthlyFact{
			DriverID:           m.DriverID,
			Month:              m.Month,
			TotalRevenue:       floatOrZero(m.TotalRevenue),
			AverageMPG:         floatOrZero(m.AverageMPG),
			AverageIdleHours:   floatOrZero(m.AverageIdleHours),
			OnTimeDeliveryRate: floatOrZero(m.OnTimeDeliveryRate),
			IncidentCount:      incidentCounts[m.DriverID],
		}
		if name, ok := namesByID[m.DriverID]; ok {
			fact.Name = name
		} else {
			fact.Name = "Driver " + strconv.Itoa(m.DriverID)
		}
		facts = append(facts, fact)
	}

	view.Facts = facts
	p.driverView = &view
	p.logger.Info("driver view ready", "rows", len(facts))
	return copyDriver(view)
}

// TruckCosts aggregates fuel and maintenance spend per truck, ordered by
// truck id. The missing side of either cost defaults to 0.
func (p *Pipeline) TruckCosts() []TruckCostFact {
	if p.truckCosts != nil {
		out := make([]TruckCostFact, len(p.truckCosts))
		copy(out, p.truckCosts)
		return out
	}

	unitsByID := make(map[int]string, len(p.trucks))
	for _, truck := range p.trucks {
		if _, exists := unitsByID[truck.TruckID]; !exists {
			unitsByID[truck.TruckID] = truck.UnitNumber
		}
	}

	type costs struct{ fuel, maintenance float64 }
	byTruck := make(map[int]*costs)
	for _, fp := range p.fuel {
		c, ok := byTruck[fp.TruckID]
		if !ok {
			c = &costs{}
			byTruck[fp.TruckID] = c
		}
		c.fuel += fp.TotalCost
	}
	for _, m := range p.maintenance {
		c, ok := byTruck[m.TruckID]
		if !ok {
			c = &costs{}
			byTruck[m.TruckID] = c
		}
		c.maintenance += m.TotalCost
	}

	facts := make([]TruckCostFact, 0, len(byTruck))
	for truckID, c := range byTruck {
		unit, ok := unitsByID[truckID]
		if !ok || unit == "" {
			unit = "Unknown"
		}
		facts = append(facts, TruckCostFact{
			TruckID:         truckID,
			UnitNumber:      unit,
			FuelCost:        c.fuel,
			MaintenanceCost: c.maintenance,
			TotalCost:       c.fuel + c.maintenance,
		})
	}
	sort.Slice(facts, func(i, j int) bool { return facts[i].TruckID < facts[j].TruckID })

	p.truckCosts = facts
	out := make([]TruckCostFact, len(facts))
	copy(out, facts)
	return out
}

// The copy helpers hand callers their own Facts backing array so a
// caller sorting or truncating a view cannot corrupt the memoized one.

func copyOperational(v OperationalView) OperationalView {
	v.Facts = append([]TripFact(nil), v.Facts...)
	return v
}

func copyFinancial(v FinancialView) FinancialView {
	v.Facts = append([]FinancialFact(nil), v.Facts...)
	return v
}

func copyDriver(v DriverView) DriverView {
	v.Facts = append([]DriverMonthlyFact(nil), v.Facts...)
	return v
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
