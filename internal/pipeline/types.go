package pipeline

import (
	"time"
)

// TripFact is one row of the denormalized operational view: a trip joined
// with its load, delivery event, route and any monthly metrics. Enrichment
// fields are pointers; nil means the enrichment source had no value for
// this trip.
type TripFact struct {
	TripID   int `json:"trip_id"`
	LoadID   int `json:"load_id"`
	DriverID int `json:"driver_id"`
	TruckID  int `json:"truck_id"`
	RouteID  int `json:"route_id"`

	DispatchDate *time.Time `json:"dispatch_date,omitempty"`
	// Month is DispatchDate truncated to month granularity; zero when the
	// dispatch date is missing.
	Month time.Time `json:"month"`

	ActualDistanceMiles float64 `json:"actual_distance_miles"`
	IdleTimeHours       float64 `json:"idle_time_hours"`
	FuelGallonsUsed     float64 `json:"fuel_gallons_used"`

	HasLoad            bool    `json:"has_load"`
	Revenue            float64 `json:"revenue"`
	FuelSurcharge      float64 `json:"fuel_surcharge"`
	AccessorialCharges float64 `json:"accessorial_charges"`

	ScheduledDatetime *time.Time `json:"scheduled_datetime,omitempty"`
	ActualDatetime    *time.Time `json:"actual_datetime,omitempty"`

	HasRoute  bool   `json:"has_route"`
	RouteName string `json:"route_name"`

	// Driver monthly metrics, joined by (driver_id, month)
	AverageIdleHours *float64 `json:"average_idle_hours,omitempty"`
	AverageMPG       *float64 `json:"average_mpg,omitempty"`

	// Truck monthly metrics, joined by (truck_id, month)
	UtilizationRate *float64 `json:"utilization_rate,omitempty"`
	DowntimeHours   *float64 `json:"downtime_hours,omitempty"`

	// OnTime is the externally visible on-time flag, filled by the metric
	// engine. False covers both "late" and "timestamps missing" by policy.
	OnTime bool `json:"on_time"`
}

// DriverMetricAvailability flags which driver monthly metric columns were
// present in the source table. Absent columns are not joined in at all.
type DriverMetricAvailability struct {
	HasRevenue    bool `json:"has_revenue"`
	HasMPG        bool `json:"has_mpg"`
	HasIdleHours  bool `json:"has_idle_hours"`
	HasOnTimeRate bool `json:"has_on_time_rate"`
}

// TruckMetricAvailability flags which truck monthly metric columns were
// present in the source table.
type TruckMetricAvailability struct {
	HasUtilization bool `json:"has_utilization"`
	HasDowntime    bool `json:"has_downtime"`
	HasMPG         bool `json:"has_mpg"`
}

// OperationalView is the trip-level fact view plus the capability flags of
// its monthly enrichments.
type OperationalView struct {
	Facts        []TripFact               `json:"facts"`
	DriverSchema DriverMetricAvailability `json:"driver_schema"`
	TruckSchema  TruckMetricAvailability  `json:"truck_schema"`
}

// IsEmpty reports whether the view holds no facts
func (v OperationalView) IsEmpty() bool {
	return len(v.Facts) == 0
}

// FinancialFact is one row of the financial view: a load inner-joined with
// its trip and left-joined with the route. Per-mile ratios are filled by
// the metric engine; nil marks a guarded zero-distance division.
type FinancialFact struct {
	LoadID   int `json:"load_id"`
	TripID   int `json:"trip_id"`
	DriverID int `json:"driver_id"`
	TruckID  int `json:"truck_id"`
	RouteID  int `json:"route_id"`

	LoadDate *time.Time `json:"load_date,omitempty"`

	Revenue            float64 `json:"revenue"`
	FuelSurcharge      float64 `json:"fuel_surcharge"`
	AccessorialCharges float64 `json:"accessorial_charges"`

	ActualDistanceMiles float64 `json:"actual_distance_miles"`

	HasRoute        bool    `json:"has_route"`
	RouteName       string  `json:"route_name"`
	BaseRatePerMile float64 `json:"base_rate_per_mile"`

	Profit         float64  `json:"profit"`
	RevenuePerMile *float64 `json:"revenue_per_mile,omitempty"`
	CostPerMile    *float64 `json:"cost_per_mile,omitempty"`
	ProfitPerMile  *float64 `json:"profit_per_mile,omitempty"`
}

// FinancialView is the windowed financial fact view
type FinancialView struct {
	Facts []FinancialFact `json:"facts"`
	// WindowStart and WindowEnd are the inclusive analysis bounds applied
	// to the load date.
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

// IsEmpty reports whether the view holds no facts
func (v FinancialView) IsEmpty() bool {
	return len(v.Facts) == 0
}

// DriverMonthlyFact is one row of the driver view: a driver monthly metric
// row with the driver's name and incident count joined on. Metric values
// default to 0 when the source cell was null; the availability set records
// which metric columns existed at all.
type DriverMonthlyFact struct {
	DriverID           int       `json:"driver_id"`
	Month              time.Time `json:"month"`
	Name               string    `json:"name"`
	TotalRevenue       float64   `json:"total_revenue"`
	AverageMPG         float64   `json:"average_mpg"`
	AverageIdleHours   float64   `json:"average_idle_hours"`
	OnTimeDeliveryRate float64   `json:"on_time_delivery_rate"`
	IncidentCount      int       `json:"incident_count"`
}

// DriverView is the driver monthly fact view
type DriverView struct {
	Facts  []DriverMonthlyFact      `json:"facts"`
	Schema DriverMetricAvailability `json:"schema"`
}

// IsEmpty reports whether the view holds no facts
func (v DriverView) IsEmpty() bool {
	return len(v.Facts) == 0
}

// TruckCostFact aggregates fuel and maintenance spend for one truck
type TruckCostFact struct {
	TruckID         int     `json:"truck_id"`
	UnitNumber      string  `json:"unit_number"`
	FuelCost        float64 `json:"fuel_cost"`
	MaintenanceCost float64 `json:"maintenance_cost"`
	TotalCost       float64 `json:"total_cost"`
}
