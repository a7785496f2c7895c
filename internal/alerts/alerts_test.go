package alerts

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetsmart/internal/analytics"
	"fleetsmart/internal/pipeline"
	"fleetsmart/internal/tablestore"
)

func newAggregator() *Aggregator {
	return NewAggregator(DefaultThresholds(), slog.Default())
}

func TestOperationsAlerts_OnTimeBoundary(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		severity Severity
		count    int
	}{
		{"exactly at critical floor", 85.0, SeverityWarning, 1},
		{"just below critical floor", 84.99, SeverityCritical, 1},
		{"exactly at warning target", 90.0, "", 0},
		{"between thresholds", 87.5, SeverityWarning, 1},
		{"healthy", 96.0, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAggregator()
			out := a.OperationsAlerts(analytics.OperationalKPIs{OnTimeRate: tt.rate, FleetMPG: 7, FleetUtilization: 95})
			require.Len(t, out, tt.count)
			if tt.count > 0 {
				assert.Equal(t, tt.severity, out[0].Severity)
				assert.Equal(t, DomainOperations, out[0].Source)
			}
		})
	}
}

func TestOperationsAlerts_IdleBoundary(t *testing.T) {
	a := newAggregator()
	healthy := analytics.OperationalKPIs{OnTimeRate: 95, FleetMPG: 7, FleetUtilization: 95}

	atLimit := healthy
	atLimit.AverageIdleHours = 5.0
	assert.Empty(t, a.OperationsAlerts(atLimit), "exactly 5 idle hours must not alert")

	over := healthy
	over.AverageIdleHours = 5.01
	out := a.OperationsAlerts(over)
	require.Len(t, out, 1)
	assert.Equal(t, SeverityWarning, out[0].Severity)
	assert.Equal(t, "Excessive idle time", out[0].Title)
}

func TestOperationsAlerts_UnavailableMetricsSilent(t *testing.T) {
	a := newAggregator()

	// MPG and utilization of 0 mean "not measured", not "terrible"
	out := a.OperationsAlerts(analytics.OperationalKPIs{OnTimeRate: 95, FleetMPG: 0, FleetUtilization: 0})
	assert.Empty(t, out)
}

func TestFinancialAlerts_MarginRule(t *testing.T) {
	a := newAggregator()

	assert.Empty(t, a.FinancialAlerts(analytics.FinancialKPIs{ProfitMargin: 15.0}))

	out := a.FinancialAlerts(analytics.FinancialKPIs{ProfitMargin: 14.99})
	require.Len(t, out, 1)
	assert.Equal(t, SeverityWarning, out[0].Severity)
	assert.Equal(t, DomainFinancial, out[0].Source)
	assert.NotEmpty(t, out[0].ID)
	assert.False(t, out[0].Timestamp.IsZero())
}

func TestDriverAlerts_OnePerRule(t *testing.T) {
	a := newAggregator()
	scores := []analytics.DriverScore{
		{DriverID: 1, Name: "Chidi Okafor", Score: 55, IncidentCount: 4},
		{DriverID: 2, Name: "Maria Santos", Score: 60, IncidentCount: 5},
		{DriverID: 3, Name: "Lena Fischer", Score: 12, IncidentCount: 0},
		{DriverID: 4, Name: "Sam Miller", Score: 8, IncidentCount: 0},
	}

	out := a.DriverAlerts(scores)
	require.Len(t, out, 2, "one incident alert and one low-performer alert, never more")

	assert.Equal(t, SeverityCritical, out[0].Severity)
	assert.Contains(t, out[0].Message, "9 safety incidents")

	assert.Equal(t, SeverityWarning, out[1].Severity)
	assert.Contains(t, out[1].Message, "2 driver(s)")
}

func TestDriverAlerts_IncidentsCountedFleetWide(t *testing.T) {
	a := newAggregator()

	// nine drivers with one incident each: no individual stands out, the
	// fleet total still pages
	scores := make([]analytics.DriverScore, 0, 9)
	for i := 0; i < 9; i++ {
		scores = append(scores, analytics.DriverScore{DriverID: i + 1, Score: 50, IncidentCount: 1})
	}

	out := a.DriverAlerts(scores)
	require.Len(t, out, 1)
	assert.Equal(t, SeverityCritical, out[0].Severity)
	assert.Equal(t, "incident_count=9", out[0].Metric)

	// exactly at the limit stays quiet
	assert.Empty(t, a.DriverAlerts(scores[:8]))
}

func TestFleetAlerts(t *testing.T) {
	a := newAggregator()
	risks := []analytics.TruckRisk{
		{TruckID: 200, Odometer: 620000, Age: 14, Risk: analytics.RiskHigh},
		{TruckID: 201, Odometer: 120000, Age: 3, Risk: analytics.RiskLow},
		{TruckID: 202, Odometer: 300000, Age: 16, Risk: analytics.RiskMedium},
	}

	out := a.FleetAlerts(risks, analytics.FleetCostKPIs{TotalMaintenanceCost: 61000})
	require.Len(t, out, 3)

	titles := []string{out[0].Title, out[1].Title, out[2].Title}
	assert.Contains(t, titles, "High mileage trucks")
	assert.Contains(t, titles, "Aging trucks")
	assert.Contains(t, titles, "Maintenance spend over budget")

	// boundary: spend exactly at budget stays quiet
	quiet := a.FleetAlerts(risks[1:2], analytics.FleetCostKPIs{TotalMaintenanceCost: 50000})
	assert.Empty(t, quiet)
}

func TestSortBySeverity_StableWithinTier(t *testing.T) {
	feed := []Alert{
		{ID: "1", Severity: SeverityInfo, Title: "first info"},
		{ID: "2", Severity: SeverityWarning, Title: "first warning"},
		{ID: "3", Severity: SeverityCritical, Title: "first critical"},
		{ID: "4", Severity: SeverityWarning, Title: "second warning"},
		{ID: "5", Severity: SeverityCritical, Title: "second critical"},
	}

	sortBySeverity(feed)

	assert.Equal(t, []string{"3", "5", "2", "4", "1"}, []string{
		feed[0].ID, feed[1].ID, feed[2].ID, feed[3].ID, feed[4].ID,
	})
}

func TestEvaluate_DomainIsolation(t *testing.T) {
	sched := time.Date(2023, 3, 6, 10, 0, 0, 0, time.UTC)
	late := sched.Add(2 * time.Hour)
	num := tablestore.NumberValue

	// operations has data, every other domain is empty
	tables := map[string]*tablestore.Table{
		"trips": {
			Name: "trips",
			Columns: []tablestore.Column{
				{Name: "trip_id", Kind: tablestore.KindNumber},
				{Name: "load_id", Kind: tablestore.KindNumber},
				{Name: "route_id", Kind: tablestore.KindNumber},
				{Name: "actual_distance_miles", Kind: tablestore.KindNumber},
				{Name: "fuel_gallons_used", Kind: tablestore.KindNumber},
			},
			Rows: []tablestore.Row{
				{num(1), num(10), num(300), num(600), num(80)},
			},
		},
		"loads": {
			Name: "loads",
			Columns: []tablestore.Column{
				{Name: "load_id", Kind: tablestore.KindNumber},
				{Name: "revenue", Kind: tablestore.KindNumber},
			},
			Rows: []tablestore.Row{{num(10), num(1000)}},
		},
		"delivery_events": {
			Name: "delivery_events",
			Columns: []tablestore.Column{
				{Name: "load_id", Kind: tablestore.KindNumber},
				{Name: "trip_id", Kind: tablestore.KindNumber},
				{Name: "scheduled_datetime", Kind: tablestore.KindTime},
				{Name: "actual_datetime", Kind: tablestore.KindTime},
			},
			Rows: []tablestore.Row{
				{num(10), num(1), tablestore.TimeValue(sched), tablestore.TimeValue(late)},
			},
		},
		"routes": {
			Name: "routes",
			Columns: []tablestore.Column{
				{Name: "route_id", Kind: tablestore.KindNumber},
				{Name: "origin_city", Kind: tablestore.KindText},
				{Name: "destination_city", Kind: tablestore.KindText},
			},
			Rows: []tablestore.Row{
				{num(300), tablestore.TextValue("Dallas"), tablestore.TextValue("Atlanta")},
			},
		},
	}

	window := pipeline.Window{
		Start: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	engine := analytics.NewEngine(pipeline.New(tables, window, slog.Default()), analytics.DefaultConfig(), slog.Default())

	feed := newAggregator().Evaluate(engine)
	require.NotEmpty(t, feed, "operations alerts survive other domains having no data")
	for _, alert := range feed {
		assert.Equal(t, DomainOperations, alert.Source)
	}

	// the every-trip-late view trips the critical on-time rule
	assert.Equal(t, SeverityCritical, feed[0].Severity)
}
