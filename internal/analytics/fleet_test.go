package analytics

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetsmart/internal/tablestore"
	"fleetsmart/pkg/contracts/domain"
)

func fleetTables() map[string]*tablestore.Table {
	return map[string]*tablestore.Table{
		"trucks": {
			Name: "trucks",
			Columns: []tablestore.Column{
				{Name: "truck_id", Kind: tablestore.KindNumber},
				{Name: "unit_number", Kind: tablestore.KindText},
				{Name: "model_year", Kind: tablestore.KindNumber},
				{Name: "odometer_reading", Kind: tablestore.KindNumber},
			},
			Rows: []tablestore.Row{
				{num(200), tablestore.TextValue("T-100"), num(2012), num(620000)},
				{num(201), tablestore.TextValue("T-200"), num(2023), num(120000)},
				{num(202), tablestore.TextValue("T-300"), num(2010), num(300000)},
				{num(203), tablestore.TextValue("T-400"), num(2024), num(510000)},
			},
		},
		"fuel_purchases": {
			Name: "fuel_purchases",
			Columns: []tablestore.Column{
				{Name: "truck_id", Kind: tablestore.KindNumber},
				{Name: "gallons", Kind: tablestore.KindNumber},
				{Name: "total_cost", Kind: tablestore.KindNumber},
			},
			Rows: []tablestore.Row{
				{num(200), num(100), num(400)},
				{num(201), num(50), num(210)},
			},
		},
		"maintenance_records": {
			Name: "maintenance_records",
			Columns: []tablestore.Column{
				{Name: "truck_id", Kind: tablestore.KindNumber},
				{Name: "total_cost", Kind: tablestore.KindNumber},
				{Name: "downtime_hours", Kind: tablestore.KindNumber},
			},
			Rows: []tablestore.Row{
				{num(200), num(2500), num(12)},
				{num(201), num(500), num(4)},
			},
		},
	}
}

func TestFleetCostKPIs(t *testing.T) {
	engine := newTestEngine(t, fleetTables())
	kpis := engine.FleetCostKPIs()

	assert.Equal(t, 610.0, kpis.TotalFuelCost)
	assert.Equal(t, 150.0, kpis.TotalGallons)
	assert.InDelta(t, 610.0/150.0, kpis.AveragePricePerGallon, 1e-9)
	assert.Equal(t, 3000.0, kpis.TotalMaintenanceCost)
	assert.Equal(t, 2, kpis.MaintenanceEvents)
	assert.InDelta(t, 8.0, kpis.AverageDowntimePerEvent, 1e-9)

	// no truck monthly metrics means no MPG reading
	assert.Equal(t, 0.0, kpis.FleetMPG)
}

func TestFleetCostKPIs_MPGFromMonthlyMetrics(t *testing.T) {
	tables := fleetTables()
	tables["truck_utilization_metrics"] = &tablestore.Table{
		Name: "truck_utilization_metrics",
		Columns: []tablestore.Column{
			{Name: "truck_id", Kind: tablestore.KindNumber},
			{Name: "month", Kind: tablestore.KindText},
			{Name: "average_mpg", Kind: tablestore.KindNumber},
		},
		Rows: []tablestore.Row{
			{num(200), tablestore.TextValue("2023-03"), num(6.2)},
			{num(201), tablestore.TextValue("2023-03"), num(7.0)},
			{num(201), tablestore.TextValue("2023-04"), tablestore.NullValue(tablestore.KindNumber)},
		},
	}

	engine := newTestEngine(t, tables)
	kpis := engine.FleetCostKPIs()

	// mean of the non-null monthly readings
	assert.InDelta(t, 6.6, kpis.FleetMPG, 1e-9)
}

func TestTopExpensiveTrucks(t *testing.T) {
	engine := newTestEngine(t, fleetTables())
	top := engine.TopExpensiveTrucks()

	require.Len(t, top, 2)
	assert.Equal(t, "T-100", top[0].UnitNumber)
	assert.Equal(t, 2900.0, top[0].TotalCost)
	assert.Equal(t, "T-200", top[1].UnitNumber)
	assert.Equal(t, 710.0, top[1].TotalCost)
}

func TestMaintenanceRisk_Tiers(t *testing.T) {
	engine := newTestEngine(t, fleetTables())
	risks := engine.MaintenanceRisk()
	require.Len(t, risks, 4)

	byUnit := make(map[string]TruckRisk)
	for _, r := range risks {
		byUnit[r.UnitNumber] = r
	}

	// old and high mileage
	assert.Equal(t, RiskHigh, byUnit["T-100"].Risk)
	// young, low mileage
	assert.Equal(t, RiskLow, byUnit["T-200"].Risk)
	// old but low mileage
	assert.Equal(t, RiskMedium, byUnit["T-300"].Risk)
	// young but high mileage
	assert.Equal(t, RiskMedium, byUnit["T-400"].Risk)

	// tier ordering: High first, Low last
	assert.Equal(t, RiskHigh, risks[0].Risk)
	assert.Equal(t, RiskLow, risks[len(risks)-1].Risk)
}

func TestClassifyRisk_BoundariesExclusive(t *testing.T) {
	engine := NewEngine(nil, testConfig(), slog.Default())

	// exactly at both thresholds: neither condition holds
	atBoundary := domain.Truck{TruckID: 1, ModelYear: 2016, OdometerReading: 500000}
	risk, age := engine.classifyRisk(atBoundary)
	assert.Equal(t, RiskLow, risk)
	assert.Equal(t, 10, age)

	justOver := domain.Truck{TruckID: 2, ModelYear: 2015, OdometerReading: 500001}
	risk, _ = engine.classifyRisk(justOver)
	assert.Equal(t, RiskHigh, risk)
}
