package analytics

import (
	"sort"
)

// Efficiency score weights. The score is a weighted linear combination;
// a component whose source column is unavailable is omitted from the sum
// rather than scored as zero.
const (
	scoreRevenueScale  = 1000.0
	scoreRevenueWeight = 0.5
	scoreMPGWeight     = 4.0
	scoreOnTimeWeight  = 0.4
	scoreIdleWeight    = 3.0
	scoreIdleClip      = 10.0
	scoreIncidentCost  = 15.0
)

// Score component labels, reported in the per-driver participation set
const (
	ComponentRevenue   = "revenue"
	ComponentMPG       = "mpg"
	ComponentOnTime    = "on_time"
	ComponentIdle      = "idle"
	ComponentIncidents = "incidents"
)

// DriverScore is one driver's efficiency score plus the set of components
// that actually entered the combination. Scores are only comparable
// between drivers with the same component set.
type DriverScore struct {
	DriverID      int      `json:"driver_id"`
	Name          string   `json:"name"`
	Score         float64  `json:"score"`
	Revenue       float64  `json:"revenue"`
	AverageMPG    float64  `json:"average_mpg"`
	OnTimeRate    float64  `json:"on_time_rate"`
	IdleHours     float64  `json:"idle_hours"`
	IncidentCount int      `json:"incident_count"`
	Components    []string `json:"components"`
}

type driverAggregate struct {
	driverID  int
	name      string
	months    int
	revenue   float64
	mpg       float64
	idle      float64
	onTime    float64
	incidents int
}

// DriverScores ranks every driver in the driver view by efficiency score,
// descending. Monthly metrics are averaged per driver before scoring.
func (e *Engine) DriverScores() []DriverScore {
	view := e.pipe.Driver()
	if view.IsEmpty() {
		return nil
	}

	byDriver := make(map[int]*driverAggregate)
	order := make([]int, 0)
	for _, fact := range view.Facts {
		agg, ok := byDriver[fact.DriverID]
		if !ok {
			agg = &driverAggregate{driverID: fact.DriverID, name: fact.Name, incidents: fact.IncidentCount}
			byDriver[fact.DriverID] = agg
			order = append(order, fact.DriverID)
		}
		agg.months++
		agg.revenue += fact.TotalRevenue
		agg.mpg += fact.AverageMPG
		agg.idle += fact.AverageIdleHours
		agg.onTime += fact.OnTimeDeliveryRate
	}

	components := make([]string, 0, 5)
	if view.Schema.HasRevenue {
		components = append(components, ComponentRevenue)
	}
	if view.Schema.HasMPG {
		components = append(components, ComponentMPG)
	}
	if view.Schema.HasOnTimeRate {
		components = append(components, ComponentOnTime)
	}
	if view.Schema.HasIdleHours {
		components = append(components, ComponentIdle)
	}
	components = append(components, ComponentIncidents)

	scores := make([]DriverScore, 0, len(order))
	for _, driverID := range order {
		agg := byDriver[driverID]
		n := float64(agg.months)
		score := DriverScore{
			DriverID:      agg.driverID,
			Name:          agg.name,
			Revenue:       agg.revenue / n,
			AverageMPG:    agg.mpg / n,
			OnTimeRate:    agg.onTime / n,
			IdleHours:     agg.idle / n,
			IncidentCount: agg.incidents,
			Components:    components,
		}
		score.Score = e.efficiencyScore(score, view.Schema.HasRevenue, view.Schema.HasMPG, view.Schema.HasOnTimeRate, view.Schema.HasIdleHours)
		scores = append(scores, score)
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores
}

func (e *Engine) efficiencyScore(d DriverScore, hasRevenue, hasMPG, hasOnTime, hasIdle bool) float64 {
	var score float64
	if hasRevenue {
		score += d.Revenue / scoreRevenueScale * scoreRevenueWeight
	}
	if hasMPG {
		score += d.AverageMPG * scoreMPGWeight
	}
	if hasOnTime {
		score += d.OnTimeRate * 100 * scoreOnTimeWeight
	}
	if hasIdle {
		idle := d.IdleHours
		if idle > scoreIdleClip {
			idle = scoreIdleClip
		}
		score -= idle * scoreIdleWeight
	}
	score -= float64(d.IncidentCount) * scoreIncidentCost
	return score
}

// DriverKPIs are fleet-wide averages over the driver view
type DriverKPIs struct {
	AverageRevenue    float64 `json:"average_revenue"`
	AverageMPG        float64 `json:"average_mpg"`
	AverageIdleHours  float64 `json:"average_idle_hours"`
	AverageOnTimeRate float64 `json:"average_on_time_rate"`
	TotalIncidents    int     `json:"total_incidents"`
	DriverCount       int     `json:"driver_count"`
}

// DriverKPIs averages the per-driver aggregates. The on-time rate is a
// percentage; metrics with no source column report 0.
func (e *Engine) DriverKPIs() DriverKPIs {
	scores := e.DriverScores()
	if len(scores) == 0 {
		return DriverKPIs{}
	}

	var kpis DriverKPIs
	for _, s := range scores {
		kpis.AverageRevenue += s.Revenue
		kpis.AverageMPG += s.AverageMPG
		kpis.AverageIdleHours += s.IdleHours
		kpis.AverageOnTimeRate += s.OnTimeRate
		kpis.TotalIncidents += s.IncidentCount
	}

	n := float64(len(scores))
	kpis.AverageRevenue /= n
	kpis.AverageMPG /= n
	kpis.AverageIdleHours /= n
	kpis.AverageOnTimeRate = kpis.AverageOnTimeRate / n * 100
	kpis.DriverCount = len(scores)
	return kpis
}

// TopDrivers returns the N highest scoring drivers
func (e *Engine) TopDrivers() []DriverScore {
	scores := e.DriverScores()
	if len(scores) > e.cfg.TopN {
		scores = scores[:e.cfg.TopN]
	}
	return scores
}
