package pipeline

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetsmart/internal/tablestore"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timeVal(t time.Time) tablestore.Value {
	return tablestore.TimeValue(t)
}

func defaultWindow() Window {
	return Window{Start: day(2022, 1, 1), End: day(2024, 12, 31)}
}

func tripsTable(rows ...tablestore.Row) *tablestore.Table {
	return &tablestore.Table{
		Name: "trips",
		Columns: []tablestore.Column{
			{Name: "trip_id", Kind: tablestore.KindNumber},
			{Name: "load_id", Kind: tablestore.KindNumber},
			{Name: "driver_id", Kind: tablestore.KindNumber},
			{Name: "truck_id", Kind: tablestore.KindNumber},
			{Name: "route_id", Kind: tablestore.KindNumber},
			{Name: "dispatch_date", Kind: tablestore.KindTime},
			{Name: "actual_distance_miles", Kind: tablestore.KindNumber},
			{Name: "idle_time_hours", Kind: tablestore.KindNumber},
			{Name: "fuel_gallons_used", Kind: tablestore.KindNumber},
		},
		Rows: rows,
	}
}

func tripRow(tripID, loadID, driverID, truckID, routeID int, dispatch time.Time, miles, idle, gallons float64) tablestore.Row {
	return tablestore.Row{
		tablestore.NumberValue(float64(tripID)),
		tablestore.NumberValue(float64(loadID)),
		tablestore.NumberValue(float64(driverID)),
		tablestore.NumberValue(float64(truckID)),
		tablestore.NumberValue(float64(routeID)),
		timeVal(dispatch),
		tablestore.NumberValue(miles),
		tablestore.NumberValue(idle),
		tablestore.NumberValue(gallons),
	}
}

func loadsTable(rows ...tablestore.Row) *tablestore.Table {
	return &tablestore.Table{
		Name: "loads",
		Columns: []tablestore.Column{
			{Name: "load_id", Kind: tablestore.KindNumber},
			{Name: "revenue", Kind: tablestore.KindNumber},
			{Name: "fuel_surcharge", Kind: tablestore.KindNumber},
			{Name: "accessorial_charges", Kind: tablestore.KindNumber},
			{Name: "load_date", Kind: tablestore.KindTime},
		},
		Rows: rows,
	}
}

func loadRow(loadID int, revenue, surcharge, accessorial float64, date tablestore.Value) tablestore.Row {
	return tablestore.Row{
		tablestore.NumberValue(float64(loadID)),
		tablestore.NumberValue(revenue),
		tablestore.NumberValue(surcharge),
		tablestore.NumberValue(accessorial),
		date,
	}
}

func eventsTable(rows ...tablestore.Row) *tablestore.Table {
	return &tablestore.Table{
		Name: "delivery_events",
		Columns: []tablestore.Column{
			{Name: "load_id", Kind: tablestore.KindNumber},
			{Name: "trip_id", Kind: tablestore.KindNumber},
			{Name: "scheduled_datetime", Kind: tablestore.KindTime},
			{Name: "actual_datetime", Kind: tablestore.KindTime},
		},
		Rows: rows,
	}
}

func routesTable(rows ...tablestore.Row) *tablestore.Table {
	return &tablestore.Table{
		Name: "routes",
		Columns: []tablestore.Column{
			{Name: "route_id", Kind: tablestore.KindNumber},
			{Name: "origin_city", Kind: tablestore.KindText},
			{Name: "origin_state", Kind: tablestore.KindText},
			{Name: "destination_city", Kind: tablestore.KindText},
			{Name: "destination_state", Kind: tablestore.KindText},
			{Name: "typical_distance_miles", Kind: tablestore.KindNumber},
			{Name: "base_rate_per_mile", Kind: tablestore.KindNumber},
		},
		Rows: rows,
	}
}

func routeRow(routeID int, origin, destination string, miles, rate float64) tablestore.Row {
	return tablestore.Row{
		tablestore.NumberValue(float64(routeID)),
		tablestore.TextValue(origin),
		tablestore.TextValue("TX"),
		tablestore.TextValue(destination),
		tablestore.TextValue("GA"),
		tablestore.NumberValue(miles),
		tablestore.NumberValue(rate),
	}
}

func coreTables() map[string]*tablestore.Table {
	return map[string]*tablestore.Table{
		"trips": tripsTable(
			tripRow(1, 10, 100, 200, 300, day(2023, 3, 5), 480, 2.5, 80),
			tripRow(2, 11, 101, 201, 999, day(2023, 3, 20), 520, 1.0, 85),
		),
		"loads": loadsTable(
			loadRow(10, 2400, 120, 50, timeVal(day(2023, 3, 4))),
			loadRow(11, 2600, 130, 0, timeVal(day(2023, 3, 19))),
		),
		"delivery_events": eventsTable(
			tablestore.Row{
				tablestore.NumberValue(10), tablestore.NumberValue(1),
				timeVal(time.Date(2023, 3, 6, 10, 0, 0, 0, time.UTC)),
				timeVal(time.Date(2023, 3, 6, 10, 15, 0, 0, time.UTC)),
			},
		),
		"routes": routesTable(
			routeRow(300, "Dallas", "Atlanta", 780, 2.10),
		),
	}
}

func TestOperational_AllOrEmpty(t *testing.T) {
	tables := coreTables()
	delete(tables, "routes")

	p := New(tables, defaultWindow(), slog.Default())
	view := p.Operational()

	assert.True(t, view.IsEmpty(), "a missing core table empties the whole view")
}

func TestOperational_Joins(t *testing.T) {
	p := New(coreTables(), defaultWindow(), slog.Default())
	view := p.Operational()

	require.Len(t, view.Facts, 2)

	first := view.Facts[0]
	assert.True(t, first.HasLoad)
	assert.Equal(t, 2400.0, first.Revenue)
	assert.True(t, first.HasRoute)
	assert.Equal(t, "Dallas to Atlanta", first.RouteName)
	require.NotNil(t, first.ScheduledDatetime)
	require.NotNil(t, first.ActualDatetime)
	assert.Equal(t, day(2023, 3, 1), first.Month)

	// trip 2 points at an unknown route and has no delivery event
	second := view.Facts[1]
	assert.True(t, second.HasLoad)
	assert.False(t, second.HasRoute)
	assert.Equal(t, "Unknown to Unknown", second.RouteName)
	assert.Nil(t, second.ScheduledDatetime)
	assert.Nil(t, second.ActualDatetime)
}

func TestOperational_MonthlyMetricJoin(t *testing.T) {
	tables := coreTables()
	tables["driver_monthly_metrics"] = &tablestore.Table{
		Name: "driver_monthly_metrics",
		Columns: []tablestore.Column{
			{Name: "driver_id", Kind: tablestore.KindNumber},
			{Name: "month", Kind: tablestore.KindText},
			{Name: "average_idle_hours", Kind: tablestore.KindNumber},
		},
		Rows: []tablestore.Row{
			{tablestore.NumberValue(100), tablestore.TextValue("2023-03"), tablestore.NumberValue(3.5)},
			{tablestore.NumberValue(100), tablestore.TextValue("2023-04"), tablestore.NumberValue(9.0)},
		},
	}

	p := New(tables, defaultWindow(), slog.Default())
	view := p.Operational()

	assert.True(t, view.DriverSchema.HasIdleHours)
	assert.False(t, view.DriverSchema.HasMPG, "column never present stays unavailable")

	require.Len(t, view.Facts, 2)

	// trip 1 dispatched in March by driver 100 picks up the March row only
	require.NotNil(t, view.Facts[0].AverageIdleHours)
	assert.Equal(t, 3.5, *view.Facts[0].AverageIdleHours)

	// driver 101 has no metric rows
	assert.Nil(t, view.Facts[1].AverageIdleHours)
}

func TestFinancial_WindowAndInnerJoin(t *testing.T) {
	tables := coreTables()
	tables["loads"] = loadsTable(
		loadRow(10, 2400, 120, 50, timeVal(day(2023, 3, 4))),
		loadRow(11, 2600, 130, 0, timeVal(day(2021, 12, 31))),             // before window
		loadRow(12, 1000, 0, 0, timeVal(day(2024, 12, 31))),               // last day, inclusive
		loadRow(13, 900, 0, 0, tablestore.NullValue(tablestore.KindTime)), // undated
		loadRow(14, 800, 0, 0, timeVal(day(2023, 6, 1))),                  // no trip
	)
	tables["trips"] = tripsTable(
		tripRow(1, 10, 100, 200, 300, day(2023, 3, 5), 480, 2.5, 80),
		tripRow(2, 11, 101, 201, 300, day(2021, 12, 31), 520, 1.0, 85),
		tripRow(3, 12, 100, 200, 999, day(2024, 12, 31), 300, 0.5, 50),
		tripRow(4, 13, 101, 201, 300, day(2023, 5, 1), 410, 1.5, 70),
	)

	p := New(tables, defaultWindow(), slog.Default())
	view := p.Financial()

	require.Len(t, view.Facts, 2)
	assert.Equal(t, 10, view.Facts[0].LoadID)
	assert.Equal(t, "Dallas to Atlanta", view.Facts[0].RouteName)
	assert.Equal(t, 2.10, view.Facts[0].BaseRatePerMile)

	assert.Equal(t, 12, view.Facts[1].LoadID, "window end date is inclusive")
	assert.False(t, view.Facts[1].HasRoute)

	// the join never amplifies rows
	assert.LessOrEqual(t, len(view.Facts), len(p.loads))
	assert.LessOrEqual(t, len(view.Facts), len(p.trips))
}

func TestDriver_NameAndIncidentEnrichment(t *testing.T) {
	tables := map[string]*tablestore.Table{
		"drivers": {
			Name: "drivers",
			Columns: []tablestore.Column{
				{Name: "driver_id", Kind: tablestore.KindNumber},
				{Name: "first_name", Kind: tablestore.KindText},
				{Name: "last_name", Kind: tablestore.KindText},
			},
			Rows: []tablestore.Row{
				{tablestore.NumberValue(100), tablestore.TextValue("Maria"), tablestore.TextValue("Santos")},
			},
		},
		"driver_monthly_metrics": {
			Name: "driver_monthly_metrics",
			Columns: []tablestore.Column{
				{Name: "driver_id", Kind: tablestore.KindNumber},
				{Name: "month", Kind: tablestore.KindText},
				{Name: "total_revenue", Kind: tablestore.KindNumber},
				{Name: "average_mpg", Kind: tablestore.KindNumber},
			},
			Rows: []tablestore.Row{
				{tablestore.NumberValue(100), tablestore.TextValue("2023-03"), tablestore.NumberValue(18000), tablestore.NumberValue(6.8)},
				{tablestore.NumberValue(101), tablestore.TextValue("2023-03"), tablestore.NullValue(tablestore.KindNumber), tablestore.NumberValue(7.1)},
			},
		},
		"safety_incidents": {
			Name: "safety_incidents",
			Columns: []tablestore.Column{
				{Name: "driver_id", Kind: tablestore.KindNumber},
				{Name: "damage_cost", Kind: tablestore.KindNumber},
			},
			Rows: []tablestore.Row{
				{tablestore.NumberValue(100), tablestore.NumberValue(500)},
				{tablestore.NumberValue(100), tablestore.NumberValue(1200)},
			},
		},
	}

	p := New(tables, defaultWindow(), slog.Default())
	view := p.Driver()

	require.Len(t, view.Facts, 2)
	assert.True(t, view.Schema.HasRevenue)
	assert.False(t, view.Schema.HasIdleHours)

	assert.Equal(t, "Maria Santos", view.Facts[0].Name)
	assert.Equal(t, 18000.0, view.Facts[0].TotalRevenue)
	assert.Equal(t, 2, view.Facts[0].IncidentCount)

	// unknown driver gets a placeholder name, null revenue becomes 0
	assert.Equal(t, "Driver 101", view.Facts[1].Name)
	assert.Equal(t, 0.0, view.Facts[1].TotalRevenue)
	assert.Equal(t, 0, view.Facts[1].IncidentCount)
}

func TestDriver_EmptyWithoutMetrics(t *testing.T) {
	p := New(map[string]*tablestore.Table{}, defaultWindow(), slog.Default())
	assert.True(t, p.Driver().IsEmpty())
}

func TestTruckCosts_Rollup(t *testing.T) {
	tables := map[string]*tablestore.Table{
		"trucks": {
			Name: "trucks",
			Columns: []tablestore.Column{
				{Name: "truck_id", Kind: tablestore.KindNumber},
				{Name: "unit_number", Kind: tablestore.KindText},
			},
			Rows: []tablestore.Row{
				{tablestore.NumberValue(200), tablestore.TextValue("T-100")},
			},
		},
		"fuel_purchases": {
			Name: "fuel_purchases",
			Columns: []tablestore.Column{
				{Name: "truck_id", Kind: tablestore.KindNumber},
				{Name: "total_cost", Kind: tablestore.KindNumber},
			},
			Rows: []tablestore.Row{
				{tablestore.NumberValue(200), tablestore.NumberValue(300)},
				{tablestore.NumberValue(200), tablestore.NumberValue(200)},
				{tablestore.NumberValue(201), tablestore.NumberValue(150)},
			},
		},
		"maintenance_records": {
			Name: "maintenance_records",
			Columns: []tablestore.Column{
				{Name: "truck_id", Kind: tablestore.KindNumber},
				{Name: "total_cost", Kind: tablestore.KindNumber},
			},
			Rows: []tablestore.Row{
				{tablestore.NumberValue(200), tablestore.NumberValue(1000)},
			},
		},
	}

	p := New(tables, defaultWindow(), slog.Default())
	costs := p.TruckCosts()

	require.Len(t, costs, 2)

	assert.Equal(t, "T-100", costs[0].UnitNumber)
	assert.Equal(t, 500.0, costs[0].FuelCost)
	assert.Equal(t, 1000.0, costs[0].MaintenanceCost)
	assert.Equal(t, 1500.0, costs[0].TotalCost)

	// truck 201 is not in the trucks table
	assert.Equal(t, "Unknown", costs[1].UnitNumber)
	assert.Equal(t, 150.0, costs[1].FuelCost)
	assert.Equal(t, 0.0, costs[1].MaintenanceCost)
}

func TestViews_CallerMutationDoesNotLeakIntoCache(t *testing.T) {
	p := New(coreTables(), defaultWindow(), slog.Default())

	op := p.Operational()
	require.Len(t, op.Facts, 2)
	op.Facts[0].Revenue = -1
	op.Facts = op.Facts[:1]
	assert.Equal(t, 2400.0, p.Operational().Facts[0].Revenue)
	assert.Len(t, p.Operational().Facts, 2)

	fin := p.Financial()
	require.NotEmpty(t, fin.Facts)
	fin.Facts[0].LoadID = -1
	assert.Equal(t, 10, p.Financial().Facts[0].LoadID)
}

func TestWindow_Inclusive(t *testing.T) {
	w := defaultWindow()
	assert.True(t, w.Contains(day(2022, 1, 1)))
	assert.True(t, w.Contains(day(2024, 12, 31)))
	assert.False(t, w.Contains(day(2021, 12, 31)))
	assert.False(t, w.Contains(day(2025, 1, 1)))
}
