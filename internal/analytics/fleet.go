package analytics

import (
	"sort"

	"fleetsmart/internal/pipeline"
	"fleetsmart/pkg/contracts/domain"
)

// FleetCostKPIs summarize fuel and maintenance spend across the fleet
type FleetCostKPIs struct {
	TotalFuelCost           float64 `json:"total_fuel_cost"`
	TotalGallons            float64 `json:"total_gallons"`
	AveragePricePerGallon   float64 `json:"average_price_per_gallon"`
	FleetMPG                float64 `json:"fleet_mpg"`
	TotalMaintenanceCost    float64 `json:"total_maintenance_cost"`
	MaintenanceEvents       int     `json:"maintenance_events"`
	AverageDowntimePerEvent float64 `json:"average_downtime_per_event"`
}

// FleetCostKPIs aggregates fuel purchases and maintenance records. Fleet
// MPG here averages the trucks' monthly metric; the trip-derived
// miles-over-gallons figure lives in the operational KPIs.
func (e *Engine) FleetCostKPIs() FleetCostKPIs {
	var kpis FleetCostKPIs

	for _, fp := range e.pipe.FuelPurchases() {
		kpis.TotalFuelCost += fp.TotalCost
		kpis.TotalGallons += fp.Gallons
	}
	if kpis.TotalGallons > 0 {
		kpis.AveragePricePerGallon = kpis.TotalFuelCost / kpis.TotalGallons
	}

	if records, avail := e.pipe.TruckMonthly(); avail.HasMPG {
		mpg := make([]*float64, 0, len(records))
		for _, m := range records {
			mpg = append(mpg, m.AverageMPG)
		}
		kpis.FleetMPG = meanOfPtrs(mpg)
	}

	var downtime float64
	for _, m := range e.pipe.MaintenanceRecords() {
		kpis.TotalMaintenanceCost += m.TotalCost
		kpis.MaintenanceEvents++
		downtime += m.DowntimeHours
	}
	if kpis.MaintenanceEvents > 0 {
		kpis.AverageDowntimePerEvent = downtime / float64(kpis.MaintenanceEvents)
	}
	return kpis
}

// TopExpensiveTrucks ranks trucks by combined fuel and maintenance spend,
// descending, bounded to the configured top N.
func (e *Engine) TopExpensiveTrucks() []pipeline.TruckCostFact {
	costs := e.pipe.TruckCosts()
	sort.SliceStable(costs, func(i, j int) bool { return costs[i].TotalCost > costs[j].TotalCost })
	if len(costs) > e.cfg.TopN {
		costs = costs[:e.cfg.TopN]
	}
	return costs
}

// RiskLevel tiers a truck's maintenance exposure
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// TruckRisk is one truck's maintenance risk classification
type TruckRisk struct {
	TruckID    int       `json:"truck_id"`
	UnitNumber string    `json:"unit_number"`
	Age        int       `json:"age"`
	Odometer   float64   `json:"odometer"`
	Risk       RiskLevel `json:"risk"`
}

// classifyRisk applies the mileage/age tiering: High when both thresholds
// are exceeded, Medium when exactly one is, Low otherwise.
func (e *Engine) classifyRisk(truck domain.Truck) (RiskLevel, int) {
	age := truck.Age(e.cfg.CurrentYear)
	highMileage := truck.OdometerReading > e.cfg.HighMileageThreshold
	highAge := age > e.cfg.HighAgeYears

	switch {
	case highMileage && highAge:
		return RiskHigh, age
	case highMileage || highAge:
		return RiskMedium, age
	default:
		return RiskLow, age
	}
}

// MaintenanceRisk classifies every truck, High tier first, then Medium,
// then Low, by truck id within a tier.
func (e *Engine) MaintenanceRisk() []TruckRisk {
	trucks := e.pipe.Trucks()
	risks := make([]TruckRisk, 0, len(trucks))
	for _, truck := range trucks {
		risk, age := e.classifyRisk(truck)
		risks = append(risks, TruckRisk{
			TruckID:    truck.TruckID,
			UnitNumber: truck.UnitNumber,
			Age:        age,
			Odometer:   truck.OdometerReading,
			Risk:       risk,
		})
	}

	rank := map[RiskLevel]int{RiskHigh: 0, RiskMedium: 1, RiskLow: 2}
	sort.SliceStable(risks, func(i, j int) bool {
		if rank[risks[i].Risk] != rank[risks[j].Risk] {
			return rank[risks[i].Risk] < rank[risks[j].Risk]
		}
		return risks[i].TruckID < risks[j].TruckID
	})
	return risks
}
