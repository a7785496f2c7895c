package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fleetsmart/internal/pipeline"
)

// deriveFinancial fills the computed fields of one financial fact:
// profit and the per-mile ratios, with zero-distance divisions guarded.
func deriveFinancial(fact pipeline.FinancialFact) pipeline.FinancialFact {
	cost := fact.FuelSurcharge + fact.AccessorialCharges
	fact.Profit = fact.Revenue - cost
	fact.RevenuePerMile = ratio(fact.Revenue, fact.ActualDistanceMiles)
	fact.CostPerMile = ratio(cost, fact.ActualDistanceMiles)
	fact.ProfitPerMile = ratio(fact.Profit, fact.ActualDistanceMiles)
	return fact
}

// FinancialKPIs are the headline money metrics over the windowed view
type FinancialKPIs struct {
	TotalRevenue          float64 `json:"total_revenue"`
	TotalProfit           float64 `json:"total_profit"`
	ProfitMargin          float64 `json:"profit_margin"`
	AverageRevenuePerLoad float64 `json:"average_revenue_per_load"`
	RevenuePerMile        float64 `json:"revenue_per_mile"`
	CostPerMile           float64 `json:"cost_per_mile"`
	ProfitPerMile         float64 `json:"profit_per_mile"`
	TotalLoads            int     `json:"total_loads"`
	TotalMiles            float64 `json:"total_miles"`
}

// FinancialKPIs aggregates the financial view. Per-mile KPIs average the
// per-row ratios, skipping rows where the division was guarded out. The
// profit margin is reported to exactly two decimal places.
func (e *Engine) FinancialKPIs() FinancialKPIs {
	view := e.Financial()
	if view.IsEmpty() {
		return FinancialKPIs{}
	}

	var kpis FinancialKPIs
	revPerMile := make([]*float64, 0, len(view.Facts))
	costPerMile := make([]*float64, 0, len(view.Facts))
	profitPerMile := make([]*float64, 0, len(view.Facts))
	for _, fact := range view.Facts {
		kpis.TotalRevenue += fact.Revenue
		kpis.TotalProfit += fact.Profit
		kpis.TotalMiles += fact.ActualDistanceMiles
		revPerMile = append(revPerMile, fact.RevenuePerMile)
		costPerMile = append(costPerMile, fact.CostPerMile)
		profitPerMile = append(profitPerMile, fact.ProfitPerMile)
	}

	kpis.TotalLoads = len(view.Facts)
	kpis.AverageRevenuePerLoad = kpis.TotalRevenue / float64(kpis.TotalLoads)
	kpis.RevenuePerMile = meanOfPtrs(revPerMile)
	kpis.CostPerMile = meanOfPtrs(costPerMile)
	kpis.ProfitPerMile = meanOfPtrs(profitPerMile)
	kpis.ProfitMargin = profitMargin(kpis.TotalProfit, kpis.TotalRevenue)
	return kpis
}

// profitMargin returns profit over revenue as a percentage rounded to two
// decimal places, 0 when revenue is not positive.
func profitMargin(profit, revenue float64) float64 {
	if revenue <= 0 {
		return 0
	}
	margin := decimal.NewFromFloat(profit).
		Div(decimal.NewFromFloat(revenue)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	f, _ := margin.Float64()
	return f
}

// MonthlyFinancial is one calendar month of revenue versus cost
type MonthlyFinancial struct {
	Month   time.Time `json:"month"`
	Revenue float64   `json:"revenue"`
	Cost    float64   `json:"cost"`
	Profit  float64   `json:"profit"`
	Loads   int       `json:"loads"`
}

// MonthlyFinancials groups the financial view by load month, ascending.
// Rows without a load date never reach the view, so every fact lands in a
// month bucket.
func (e *Engine) MonthlyFinancials() []MonthlyFinancial {
	view := e.Financial()

	byMonth := make(map[time.Time]*MonthlyFinancial)
	for _, fact := range view.Facts {
		if fact.LoadDate == nil {
			continue
		}
		month := time.Date(fact.LoadDate.Year(), fact.LoadDate.Month(), 1, 0, 0, 0, 0, time.UTC)
		bucket, ok := byMonth[month]
		if !ok {
			bucket = &MonthlyFinancial{Month: month}
			byMonth[month] = bucket
		}
		bucket.Revenue += fact.Revenue
		bucket.Cost += fact.FuelSurcharge + fact.AccessorialCharges
		bucket.Profit += fact.Profit
		bucket.Loads++
	}

	months := make([]MonthlyFinancial, 0, len(byMonth))
	for _, bucket := range byMonth {
		months = append(months, *bucket)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month.Before(months[j].Month) })
	return months
}

// BestAndWorstMonths returns the highest and lowest profit months. ok is
// false when the view has no dated facts.
func (e *Engine) BestAndWorstMonths() (best, worst MonthlyFinancial, ok bool) {
	months := e.MonthlyFinancials()
	if len(months) == 0 {
		return MonthlyFinancial{}, MonthlyFinancial{}, false
	}
	best, worst = months[0], months[0]
	for _, m := range months[1:] {
		if m.Profit > best.Profit {
			best = m
		}
		if m.Profit < worst.Profit {
			worst = m
		}
	}
	return best, worst, true
}

// Profitability categories by margin percentage
const (
	CategoryExcellent = "Excellent"
	CategoryGood      = "Good"
	CategoryFair      = "Fair"
	CategoryMarginal  = "Marginal"
	CategoryLoss      = "Loss"
)

func profitCategory(margin float64) string {
	switch {
	case margin > 30:
		return CategoryExcellent
	case margin > 20:
		return CategoryGood
	case margin > 10:
		return CategoryFair
	case margin > 0:
		return CategoryMarginal
	default:
		return CategoryLoss
	}
}

// RouteProfitability is the per-route financial rollup
type RouteProfitability struct {
	RouteName    string  `json:"route_name"`
	Loads        int     `json:"loads"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalProfit  float64 `json:"total_profit"`
	ProfitMargin float64 `json:"profit_margin"`
	Category     string  `json:"category"`
}

// RouteProfitability rolls the financial view up by route name, excludes
// routes under the minimum sample size, and ranks by margin descending.
func (e *Engine) RouteProfitability() []RouteProfitability {
	view := e.Financial()

	byRoute := make(map[string]*RouteProfitability)
	order := make([]string, 0)
	for _, fact := range view.Facts {
		rollup, ok := byRoute[fact.RouteName]
		if !ok {
			rollup = &RouteProfitability{RouteName: fact.RouteName}
			byRoute[fact.RouteName] = rollup
			order = append(order, fact.RouteName)
		}
		rollup.Loads++
		rollup.TotalRevenue += fact.Revenue
		rollup.TotalProfit += fact.Profit
	}

	routes := make([]RouteProfitability, 0, len(order))
	for _, name := range order {
		rollup := byRoute[name]
		if rollup.Loads < e.cfg.MinRouteTrips {
			continue
		}
		rollup.ProfitMargin = profitMargin(rollup.TotalProfit, rollup.TotalRevenue)
		rollup.Category = profitCategory(rollup.ProfitMargin)
		routes = append(routes, *rollup)
	}
	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].ProfitMargin > routes[j].ProfitMargin
	})
	return routes
}
