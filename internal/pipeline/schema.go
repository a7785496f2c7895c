package pipeline

import (
	"strconv"
	"time"

	"fleetsmart/internal/tablestore"
	"fleetsmart/pkg/contracts/domain"
)

// Schema describes the columns a decoder expects from a cleaned table.
// Required columns must exist for decoding to proceed; optional columns
// are surfaced as availability flags instead of being probed at every
// call site.
type Schema struct {
	Table    string
	Required []string
	Optional []string
}

// Check reports whether the table satisfies the schema and which optional
// columns are present.
func (s Schema) Check(t *tablestore.Table) (ok bool, optional map[string]bool) {
	optional = make(map[string]bool, len(s.Optional))
	for _, col := range s.Optional {
		optional[col] = t != nil && t.HasColumn(col)
	}
	if t == nil {
		return false, optional
	}
	for _, col := range s.Required {
		if !t.HasColumn(col) {
			return false, optional
		}
	}
	return true, optional
}

// Table schemas. Metric columns on the monthly tables are optional by
// design: a metric that was never measured is omitted from joins and
// scores, not null-filled.
var (
	driverSchema = Schema{
		Table:    "drivers",
		Required: []string{"driver_id"},
		Optional: []string{"first_name", "last_name", "hire_date", "employment_status"},
	}
	truckSchema = Schema{
		Table:    "trucks",
		Required: []string{"truck_id"},
		Optional: []string{"unit_number", "model_year", "odometer_reading"},
	}
	routeSchema = Schema{
		Table:    "routes",
		Required: []string{"route_id"},
		Optional: []string{"origin_city", "origin_state", "destination_city", "destination_state", "typical_distance_miles", "base_rate_per_mile"},
	}
	loadSchema = Schema{
		Table:    "loads",
		Required: []string{"load_id"},
		Optional: []string{"revenue", "fuel_surcharge", "accessorial_charges", "load_date"},
	}
	tripSchema = Schema{
		Table:    "trips",
		Required: []string{"trip_id", "load_id"},
		Optional: []string{"driver_id", "truck_id", "route_id", "dispatch_date", "actual_distance_miles", "idle_time_hours", "fuel_gallons_used"},
	}
	deliveryEventSchema = Schema{
		Table:    "delivery_events",
		Required: []string{"load_id", "trip_id"},
		Optional: []string{"scheduled_datetime", "actual_datetime"},
	}
	fuelPurchaseSchema = Schema{
		Table:    "fuel_purchases",
		Required: []string{"truck_id"},
		Optional: []string{"purchase_date", "gallons", "total_cost", "price_per_gallon"},
	}
	maintenanceSchema = Schema{
		Table:    "maintenance_records",
		Required: []string{"truck_id"},
		Optional: []string{"maintenance_date", "maintenance_type", "total_cost", "downtime_hours"},
	}
	safetyIncidentSchema = Schema{
		Table:    "safety_incidents",
		Required: []string{"driver_id"},
		Optional: []string{"incident_date", "preventable_flag", "at_fault_flag", "damage_cost"},
	}
	driverMonthlySchema = Schema{
		Table:    "driver_monthly_metrics",
		Required: []string{"driver_id", "month"},
		Optional: []string{"total_revenue", "average_mpg", "average_idle_hours", "on_time_delivery_rate"},
	}
	truckMonthlySchema = Schema{
		Table:    "truck_utilization_metrics",
		Required: []string{"truck_id", "month"},
		Optional: []string{"utilization_rate", "downtime_hours", "average_mpg"},
	}
)

// rowReader reads typed values out of one table row by column name,
// tolerating nulls and representation drift (ids stored as text, months
// stored as dates).
type rowReader struct {
	table *tablestore.Table
	row   tablestore.Row
}

func (r rowReader) value(col string) (tablestore.Value, bool) {
	idx := r.table.ColumnIndex(col)
	if idx < 0 {
		return tablestore.Value{}, false
	}
	cell := r.row[idx]
	if cell.Null {
		return tablestore.Value{}, false
	}
	return cell, true
}

// Int reads an integer identifier
func (r rowReader) Int(col string) (int, bool) {
	cell, ok := r.value(col)
	if !ok {
		return 0, false
	}
	switch cell.Kind {
	case tablestore.KindNumber:
		return int(cell.Number), true
	case tablestore.KindText:
		if n, err := strconv.Atoi(cell.Text); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Float reads a numeric value
func (r rowReader) Float(col string) (float64, bool) {
	cell, ok := r.value(col)
	if !ok {
		return 0, false
	}
	switch cell.Kind {
	case tablestore.KindNumber:
		return cell.Number, true
	case tablestore.KindText:
		if f, err := strconv.ParseFloat(cell.Text, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// FloatPtr reads a numeric value as a nullable pointer
func (r rowReader) FloatPtr(col string) *float64 {
	if f, ok := r.Float(col); ok {
		return &f
	}
	return nil
}

// Text reads a textual value
func (r rowReader) Text(col string) (string, bool) {
	cell, ok := r.value(col)
	if !ok || cell.Kind != tablestore.KindText {
		return "", false
	}
	return cell.Text, true
}

// Time reads a temporal value
func (r rowReader) Time(col string) (time.Time, bool) {
	cell, ok := r.value(col)
	if !ok || cell.Kind != tablestore.KindTime {
		return time.Time{}, false
	}
	return cell.Time, true
}

// TimePtr reads a temporal value as a nullable pointer
func (r rowReader) TimePtr(col string) *time.Time {
	if t, ok := r.Time(col); ok {
		return &t
	}
	return nil
}

// Month reads a calendar-month key, accepting either a coerced time cell
// or a textual "2006-01"/"2006-01-02" value, truncated to month.
func (r rowReader) Month(col string) (time.Time, bool) {
	cell, ok := r.value(col)
	if !ok {
		return time.Time{}, false
	}
	switch cell.Kind {
	case tablestore.KindTime:
		return domain.MonthOf(cell.Time), true
	case tablestore.KindText:
		for _, layout := range []string{"2006-01", "2006-01-02", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, cell.Text); err == nil {
				return domain.MonthOf(t), true
			}
		}
	}
	return time.Time{}, false
}

// Bool reads a boolean-ish value: true/false text, yes/no, or 0/1 numbers
func (r rowReader) Bool(col string) (bool, bool) {
	cell, ok := r.value(col)
	if !ok {
		return false, false
	}
	switch cell.Kind {
	case tablestore.KindNumber:
		return cell.Number != 0, true
	case tablestore.KindText:
		switch cell.Text {
		case "true", "True", "TRUE", "yes", "Yes", "Y", "1":
			return true, true
		case "false", "False", "FALSE", "no", "No", "N", "0":
			return false, true
		}
	}
	return false, false
}
