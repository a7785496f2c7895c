// Package analytics computes derived metrics, KPI rollups, rankings and
// scores on top of the joined fact views.
package analytics

import (
	"log/slog"
	"time"

	"fleetsmart/internal/pipeline"
)

// Config carries the tunable policy knobs of the metric engine. Use
// DefaultConfig as the baseline and override selectively.
type Config struct {
	// MinRouteTrips is the minimum sample size a route needs before it
	// appears in best/worst rankings.
	MinRouteTrips int

	// TopN bounds ranked outputs (top routes, most expensive trucks).
	TopN int

	// CurrentYear anchors truck age computation.
	CurrentYear int

	// HighMileageThreshold and HighAgeYears drive maintenance risk tiers.
	HighMileageThreshold float64
	HighAgeYears         int

	// SimilarityCutoff and MaxSearchResults bound the fuzzy driver search.
	SimilarityCutoff float64
	MaxSearchResults int

	// Scorer is the string similarity strategy used by the fuzzy search.
	// Nil selects the Levenshtein ratio.
	Scorer SimilarityScorer
}

// DefaultConfig returns the standard engine policy
func DefaultConfig() Config {
	return Config{
		MinRouteTrips:        5,
		TopN:                 5,
		CurrentYear:          time.Now().UTC().Year(),
		HighMileageThreshold: 500000,
		HighAgeYears:         10,
		SimilarityCutoff:     0.4,
		MaxSearchResults:     5,
	}
}

// Engine derives metrics from a pipeline's fact views. Derived views are
// memoized on first use; every accessor returns fresh slices so cached
// state is never exposed to mutation.
type Engine struct {
	pipe   *pipeline.Pipeline
	cfg    Config
	logger *slog.Logger

	operational *pipeline.OperationalView
	financial   *pipeline.FinancialView
}

// NewEngine builds a metric engine over the given pipeline
func NewEngine(pipe *pipeline.Pipeline, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Scorer == nil {
		cfg.Scorer = SimilarityScorerFunc(LevenshteinRatio)
	}
	if cfg.MinRouteTrips <= 0 {
		cfg.MinRouteTrips = 1
	}
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultConfig().TopN
	}
	return &Engine{pipe: pipe, cfg: cfg, logger: logger}
}

// Operational returns the operational fact view with on-time flags filled
func (e *Engine) Operational() pipeline.OperationalView {
	if e.operational == nil {
		view := e.pipe.Operational()
		facts := make([]pipeline.TripFact, len(view.Facts))
		for i, fact := range view.Facts {
			fact.OnTime = EvaluateOnTime(fact.ScheduledDatetime, fact.ActualDatetime).Bool()
			facts[i] = fact
		}
		view.Facts = facts
		e.operational = &view
	}

	out := *e.operational
	out.Facts = append([]pipeline.TripFact(nil), e.operational.Facts...)
	return out
}

// Financial returns the financial fact view with profit and per-mile
// ratios filled.
func (e *Engine) Financial() pipeline.FinancialView {
	if e.financial == nil {
		view := e.pipe.Financial()
		facts := make([]pipeline.FinancialFact, len(view.Facts))
		for i, fact := range view.Facts {
			facts[i] = deriveFinancial(fact)
		}
		view.Facts = facts
		e.financial = &view
	}

	out := *e.financial
	out.Facts = append([]pipeline.FinancialFact(nil), e.financial.Facts...)
	return out
}

// ratio guards per-mile division: a non-positive denominator yields nil
// rather than infinity.
func ratio(numerator, denominator float64) *float64 {
	if denominator <= 0 {
		return nil
	}
	r := numerator / denominator
	return &r
}

// meanOfPtrs averages the non-nil values; nil entries are skipped, an
// all-nil input yields 0.
func meanOfPtrs(values []*float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
