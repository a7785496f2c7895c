// Package alerts scans domain KPIs against configured thresholds and
// produces a single normalized alert feed.
package alerts

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"fleetsmart/internal/analytics"
)

// Severity tiers, ordered critical > warning > info
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Alert domains
const (
	DomainFinancial  = "Financial"
	DomainOperations = "Operations"
	DomainDrivers    = "Drivers"
	DomainFleet      = "Fleet"
)

// Alert is one normalized threshold finding
type Alert struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Metric    string    `json:"metric"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Aggregator evaluates every domain against its thresholds. Domains are
// isolated: one domain failing to produce alerts never suppresses the
// others.
type Aggregator struct {
	thresholds Thresholds
	logger     *slog.Logger
	now        func() time.Time
}

// NewAggregator builds an aggregator with the given rule set
func NewAggregator(thresholds Thresholds, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{thresholds: thresholds, logger: logger, now: time.Now}
}

func (a *Aggregator) alert(severity Severity, title, message, metric, source string) Alert {
	return Alert{
		ID:        uuid.NewString(),
		Severity:  severity,
		Title:     title,
		Message:   message,
		Metric:    metric,
		Source:    source,
		Timestamp: a.now().UTC(),
	}
}

// Evaluate scans every domain and returns the combined feed sorted
// critical first, then warning, then info, stable within a tier. A domain
// without data is logged and skipped; its zero-valued KPIs must not be
// mistaken for real readings.
func (a *Aggregator) Evaluate(engine *analytics.Engine) []Alert {
	feed := make([]Alert, 0)

	if engine.Financial().IsEmpty() {
		a.logger.Warn("alert domain skipped: no data", "domain", DomainFinancial)
	} else {
		feed = append(feed, a.FinancialAlerts(engine.FinancialKPIs())...)
	}

	if engine.Operational().IsEmpty() {
		a.logger.Warn("alert domain skipped: no data", "domain", DomainOperations)
	} else {
		feed = append(feed, a.OperationsAlerts(engine.OperationalKPIs())...)
	}

	if scores := engine.DriverScores(); len(scores) == 0 {
		a.logger.Warn("alert domain skipped: no data", "domain", DomainDrivers)
	} else {
		feed = append(feed, a.DriverAlerts(scores)...)
	}

	if risks := engine.MaintenanceRisk(); len(risks) == 0 {
		a.logger.Warn("alert domain skipped: no data", "domain", DomainFleet)
	} else {
		feed = append(feed, a.FleetAlerts(risks, engine.FleetCostKPIs())...)
	}

	sortBySeverity(feed)
	return feed
}

// FinancialAlerts applies the financial rules to one KPI reading
func (a *Aggregator) FinancialAlerts(kpis analytics.FinancialKPIs) []Alert {
	out := make([]Alert, 0, 1)
	if kpis.ProfitMargin < a.thresholds.ProfitMarginWarning {
		out = append(out, a.alert(SeverityWarning,
			"Low profit margin",
			fmt.Sprintf("Profit margin is %.2f%%, below the %.2f%% target", kpis.ProfitMargin, a.thresholds.ProfitMarginWarning),
			fmt.Sprintf("profit_margin=%.2f%%", kpis.ProfitMargin),
			DomainFinancial))
	}
	return out
}

// OperationsAlerts applies the operational rules to one KPI reading. The
// on-time pair is a single rule: critical takes precedence over warning.
func (a *Aggregator) OperationsAlerts(kpis analytics.OperationalKPIs) []Alert {
	out := make([]Alert, 0, 4)

	switch {
	case kpis.OnTimeRate < a.thresholds.OnTimeRateCritical:
		out = append(out, a.alert(SeverityCritical,
			"On-time delivery rate critical",
			fmt.Sprintf("On-time rate is %.2f%%, below the %.2f%% critical floor", kpis.OnTimeRate, a.thresholds.OnTimeRateCritical),
			fmt.Sprintf("on_time_rate=%.2f%%", kpis.OnTimeRate),
			DomainOperations))
	case kpis.OnTimeRate < a.thresholds.OnTimeRateWarning:
		out = append(out, a.alert(SeverityWarning,
			"On-time delivery rate slipping",
			fmt.Sprintf("On-time rate is %.2f%%, below the %.2f%% target", kpis.OnTimeRate, a.thresholds.OnTimeRateWarning),
			fmt.Sprintf("on_time_rate=%.2f%%", kpis.OnTimeRate),
			DomainOperations))
	}

	if kpis.AverageIdleHours > a.thresholds.IdleHoursWarning {
		out = append(out, a.alert(SeverityWarning,
			"Excessive idle time",
			fmt.Sprintf("Average idle time is %.2f hours per trip, above the %.2f hour limit", kpis.AverageIdleHours, a.thresholds.IdleHoursWarning),
			fmt.Sprintf("average_idle_hours=%.2f", kpis.AverageIdleHours),
			DomainOperations))
	}

	if kpis.FleetMPG > 0 && kpis.FleetMPG < a.thresholds.FleetMPGWarning {
		out = append(out, a.alert(SeverityWarning,
			"Poor fleet fuel economy",
			fmt.Sprintf("Fleet MPG is %.2f, below the %.2f floor", kpis.FleetMPG, a.thresholds.FleetMPGWarning),
			fmt.Sprintf("fleet_mpg=%.2f", kpis.FleetMPG),
			DomainOperations))
	}

	if kpis.AverageDowntime > a.thresholds.DowntimeHoursCritical {
		out = append(out, a.alert(SeverityCritical,
			"High truck downtime",
			fmt.Sprintf("Average downtime is %.2f hours, above the %.2f hour critical limit", kpis.AverageDowntime, a.thresholds.DowntimeHoursCritical),
			fmt.Sprintf("average_downtime=%.2f", kpis.AverageDowntime),
			DomainOperations))
	}

	if kpis.FleetUtilization > 0 && kpis.FleetUtilization < a.thresholds.UtilizationWarning {
		out = append(out, a.alert(SeverityWarning,
			"Fleet underutilized",
			fmt.Sprintf("Fleet utilization is %.2f%%, below the %.2f%% target", kpis.FleetUtilization, a.thresholds.UtilizationWarning),
			fmt.Sprintf("fleet_utilization=%.2f%%", kpis.FleetUtilization),
			DomainOperations))
	}

	return out
}

// DriverAlerts applies the driver rules to the score board
func (a *Aggregator) DriverAlerts(scores []analytics.DriverScore) []Alert {
	out := make([]Alert, 0, 2)

	var totalIncidents int
	for _, s := range scores {
		totalIncidents += s.IncidentCount
	}
	if totalIncidents > a.thresholds.IncidentCountCritical {
		out = append(out, a.alert(SeverityCritical,
			"Safety incidents critical",
			fmt.Sprintf("%d safety incidents recorded, above the limit of %d", totalIncidents, a.thresholds.IncidentCountCritical),
			fmt.Sprintf("incident_count=%d", totalIncidents),
			DomainDrivers))
	}

	var lowPerformers int
	for _, s := range scores {
		if s.Score < a.thresholds.LowScoreWarning {
			lowPerformers++
		}
	}
	if lowPerformers > 0 {
		out = append(out, a.alert(SeverityWarning,
			"Low performing drivers",
			fmt.Sprintf("%d driver(s) score below %.0f and may need coaching", lowPerformers, a.thresholds.LowScoreWarning),
			fmt.Sprintf("low_performers=%d", lowPerformers),
			DomainDrivers))
	}

	return out
}

// FleetAlerts applies the fleet rules to the risk board and cost KPIs
func (a *Aggregator) FleetAlerts(risks []analytics.TruckRisk, kpis analytics.FleetCostKPIs) []Alert {
	out := make([]Alert, 0, 3)

	var highMileage, aged int
	for _, r := range risks {
		if r.Odometer > a.thresholds.HighMileage {
			highMileage++
		}
		if r.Age > a.thresholds.HighTruckAge {
			aged++
		}
	}
	if highMileage > 0 {
		out = append(out, a.alert(SeverityWarning,
			"High mileage trucks",
			fmt.Sprintf("%d truck(s) exceed %.0f miles and should be inspected", highMileage, a.thresholds.HighMileage),
			fmt.Sprintf("high_mileage_trucks=%d", highMileage),
			DomainFleet))
	}
	if aged > 0 {
		out = append(out, a.alert(SeverityInfo,
			"Aging trucks",
			fmt.Sprintf("%d truck(s) are older than %d years", aged, a.thresholds.HighTruckAge),
			fmt.Sprintf("aged_trucks=%d", aged),
			DomainFleet))
	}

	if kpis.TotalMaintenanceCost > a.thresholds.MaintenanceCostWarning {
		out = append(out, a.alert(SeverityWarning,
			"Maintenance spend over budget",
			fmt.Sprintf("Total maintenance spend is $%.2f, above the $%.2f budget", kpis.TotalMaintenanceCost, a.thresholds.MaintenanceCostWarning),
			fmt.Sprintf("maintenance_cost=%.2f", kpis.TotalMaintenanceCost),
			DomainFleet))
	}

	return out
}

var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityWarning:  1,
	SeverityInfo:     2,
}

func sortBySeverity(feed []Alert) {
	sort.SliceStable(feed, func(i, j int) bool {
		return severityRank[feed[i].Severity] < severityRank[feed[j].Severity]
	})
}
