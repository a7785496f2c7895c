package domain

import (
	"strings"
	"time"
)

// Driver represents a driver master record
type Driver struct {
	DriverID         int        `json:"driver_id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	HireDate         *time.Time `json:"hire_date,omitempty"`
	EmploymentStatus string     `json:"employment_status"`
}

// FullName returns the display name for the driver, or "Unknown Driver"
// when both name parts are empty.
func (d Driver) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(d.FirstName) + " " + strings.TrimSpace(d.LastName))
	if name == "" {
		return "Unknown Driver"
	}
	return name
}

// Truck represents a truck master record
type Truck struct {
	TruckID         int     `json:"truck_id"`
	UnitNumber      string  `json:"unit_number"`
	ModelYear       int     `json:"model_year"`
	OdometerReading float64 `json:"odometer_reading"`
}

// Age returns the truck age in years relative to the given calendar year.
func (t Truck) Age(currentYear int) int {
	return currentYear - t.ModelYear
}

// Route represents a route master record
type Route struct {
	RouteID              int     `json:"route_id"`
	OriginCity           string  `json:"origin_city"`
	OriginState          string  `json:"origin_state"`
	DestinationCity      string  `json:"destination_city"`
	DestinationState     string  `json:"destination_state"`
	TypicalDistanceMiles float64 `json:"typical_distance_miles"`
	BaseRatePerMile      float64 `json:"base_rate_per_mile"`
}

// Name renders the human-readable route name. Missing endpoints render as
// the literal "Unknown" rather than propagating emptiness downstream.
func (r Route) Name() string {
	origin := r.OriginCity
	if origin == "" {
		origin = "Unknown"
	}
	destination := r.DestinationCity
	if destination == "" {
		destination = "Unknown"
	}
	return origin + " to " + destination
}

// Load represents a load (shipment) record; the monetary source of truth.
type Load struct {
	LoadID             int        `json:"load_id"`
	Revenue            float64    `json:"revenue"`
	FuelSurcharge      float64    `json:"fuel_surcharge"`
	AccessorialCharges float64    `json:"accessorial_charges"`
	LoadDate           *time.Time `json:"load_date,omitempty"`
}

// Trip is the central fact record; every other join hangs off it.
type Trip struct {
	TripID              int        `json:"trip_id"`
	LoadID              int        `json:"load_id"`
	DriverID            int        `json:"driver_id"`
	TruckID             int        `json:"truck_id"`
	RouteID             int        `json:"route_id"`
	DispatchDate        *time.Time `json:"dispatch_date,omitempty"`
	ActualDistanceMiles float64    `json:"actual_distance_miles"`
	IdleTimeHours       float64    `json:"idle_time_hours"`
	FuelGallonsUsed     float64    `json:"fuel_gallons_used"`
}

// DeliveryEvent carries the scheduled and actual delivery timestamps for a
// trip; the source of the on-time flag.
type DeliveryEvent struct {
	LoadID            int        `json:"load_id"`
	TripID            int        `json:"trip_id"`
	ScheduledDatetime *time.Time `json:"scheduled_datetime,omitempty"`
	ActualDatetime    *time.Time `json:"actual_datetime,omitempty"`
}

// FuelPurchase represents a single fuel purchase for a truck
type FuelPurchase struct {
	TruckID        int        `json:"truck_id"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
	Gallons        float64    `json:"gallons"`
	TotalCost      float64    `json:"total_cost"`
	PricePerGallon float64    `json:"price_per_gallon"`
}

// MaintenanceRecord represents a single maintenance event for a truck
type MaintenanceRecord struct {
	TruckID         int        `json:"truck_id"`
	MaintenanceDate *time.Time `json:"maintenance_date,omitempty"`
	MaintenanceType string     `json:"maintenance_type"`
	TotalCost       float64    `json:"total_cost"`
	DowntimeHours   float64    `json:"downtime_hours"`
}

// SafetyIncident represents a recorded safety incident for a driver
type SafetyIncident struct {
	DriverID        int        `json:"driver_id"`
	IncidentDate    *time.Time `json:"incident_date,omitempty"`
	PreventableFlag bool       `json:"preventable_flag"`
	AtFaultFlag     bool       `json:"at_fault_flag"`
	DamageCost      float64    `json:"damage_cost"`
}

// DriverMonthlyMetric is a pre-aggregated monthly fact for a driver. Metric
// columns are optional in the source; absent metrics are nil, not zero.
type DriverMonthlyMetric struct {
	DriverID           int       `json:"driver_id"`
	Month              time.Time `json:"month"`
	TotalRevenue       *float64  `json:"total_revenue,omitempty"`
	AverageMPG         *float64  `json:"average_mpg,omitempty"`
	AverageIdleHours   *float64  `json:"average_idle_hours,omitempty"`
	OnTimeDeliveryRate *float64  `json:"on_time_delivery_rate,omitempty"`
}

// TruckUtilizationMetric is a pre-aggregated monthly fact for a truck.
type TruckUtilizationMetric struct {
	TruckID         int       `json:"truck_id"`
	Month           time.Time `json:"month"`
	UtilizationRate *float64  `json:"utilization_rate,omitempty"`
	DowntimeHours   *float64  `json:"downtime_hours,omitempty"`
	AverageMPG      *float64  `json:"average_mpg,omitempty"`
}

// MonthOf truncates a timestamp to month granularity in UTC. Both sides of
// every temporal join must pass through this, or (entity, month) keys will
// silently never match.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
