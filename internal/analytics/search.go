package analytics

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// SimilarityScorer scores how alike two strings are, in [0, 1]
type SimilarityScorer interface {
	Similarity(a, b string) float64
}

// SimilarityScorerFunc adapts a plain function to SimilarityScorer
type SimilarityScorerFunc func(a, b string) float64

// Similarity calls the wrapped function
func (f SimilarityScorerFunc) Similarity(a, b string) float64 {
	return f(a, b)
}

// LevenshteinRatio is the default similarity: 1 minus the edit distance
// normalized by the longer input. Two empty strings score 1.
func LevenshteinRatio(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

// DriverMatch is one fuzzy search candidate
type DriverMatch struct {
	DriverID   int     `json:"driver_id"`
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}

// SearchDrivers finds drivers by name. Case-insensitive substring matches
// win outright; only when none exist does the similarity scorer run, with
// candidates below the cutoff discarded. At most MaxSearchResults are
// returned, and a total miss is an empty slice, not an error.
func (e *Engine) SearchDrivers(query string) []DriverMatch {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	type candidate struct {
		driverID int
		name     string
	}
	seen := make(map[int]struct{})
	candidates := make([]candidate, 0, len(e.pipe.Drivers()))
	for _, d := range e.pipe.Drivers() {
		if _, dup := seen[d.DriverID]; dup {
			continue
		}
		seen[d.DriverID] = struct{}{}
		candidates = append(candidates, candidate{driverID: d.DriverID, name: d.FullName()})
	}

	matches := make([]DriverMatch, 0, e.cfg.MaxSearchResults)
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c.name), query) {
			matches = append(matches, DriverMatch{DriverID: c.driverID, Name: c.name, Similarity: 1})
			if len(matches) == e.cfg.MaxSearchResults {
				break
			}
		}
	}
	if len(matches) > 0 {
		return matches
	}

	for _, c := range candidates {
		similarity := e.cfg.Scorer.Similarity(query, strings.ToLower(c.name))
		if similarity >= e.cfg.SimilarityCutoff {
			matches = append(matches, DriverMatch{DriverID: c.driverID, Name: c.name, Similarity: similarity})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if len(matches) > e.cfg.MaxSearchResults {
		matches = matches[:e.cfg.MaxSearchResults]
	}
	return matches
}
