package alerts

// Thresholds is the alert rule configuration. Comparisons are strict:
// a "below" rule fires strictly under its value, an "above" rule strictly
// over it, so a KPI sitting exactly on a threshold never alerts.
type Thresholds struct {
	// On-time delivery rate, percent, below
	OnTimeRateCritical float64 `json:"on_time_rate_critical" yaml:"on_time_rate_critical"`
	OnTimeRateWarning  float64 `json:"on_time_rate_warning" yaml:"on_time_rate_warning"`

	// Average idle hours per trip, above
	IdleHoursWarning float64 `json:"idle_hours_warning" yaml:"idle_hours_warning"`

	// Fleet miles per gallon, below
	FleetMPGWarning float64 `json:"fleet_mpg_warning" yaml:"fleet_mpg_warning"`

	// Average downtime hours, above
	DowntimeHoursCritical float64 `json:"downtime_hours_critical" yaml:"downtime_hours_critical"`

	// Fleet utilization, percent, below
	UtilizationWarning float64 `json:"utilization_warning" yaml:"utilization_warning"`

	// Truck odometer miles, above
	HighMileage float64 `json:"high_mileage" yaml:"high_mileage"`

	// Truck age in years, above
	HighTruckAge int `json:"high_truck_age" yaml:"high_truck_age"`

	// Total maintenance spend, dollars, above
	MaintenanceCostWarning float64 `json:"maintenance_cost_warning" yaml:"maintenance_cost_warning"`

	// Safety incidents for a single driver, above
	IncidentCountCritical int `json:"incident_count_critical" yaml:"incident_count_critical"`

	// Profit margin, percent, below
	ProfitMarginWarning float64 `json:"profit_margin_warning" yaml:"profit_margin_warning"`

	// Efficiency score marking a low performer, below
	LowScoreWarning float64 `json:"low_score_warning" yaml:"low_score_warning"`
}

// DefaultThresholds returns the documented default rule set
func DefaultThresholds() Thresholds {
	return Thresholds{
		OnTimeRateCritical:     85,
		OnTimeRateWarning:      90,
		IdleHoursWarning:       5,
		FleetMPGWarning:        6.0,
		DowntimeHoursCritical:  8,
		UtilizationWarning:     80,
		HighMileage:            500000,
		HighTruckAge:           10,
		MaintenanceCostWarning: 50000,
		IncidentCountCritical:  8,
		ProfitMarginWarning:    15,
		LowScoreWarning:        20,
	}
}
