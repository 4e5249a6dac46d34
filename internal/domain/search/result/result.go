// Package result holds the immutable ranked output of a search request.
package result

import (
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/search/match"
)

// Ranked is one apartment in the final ranking. Constructed once per search
// request and immutable thereafter.
type Ranked struct {
	apartmentID    string
	finalScore     float64
	coverageCount  int
	coverageRatio  float64
	weightCoverage float64
	domainScores   map[claim.Domain]float64
	matched        []match.Match
}

// New creates a ranked result.
func New(
	apartmentID string, finalScore float64,
	coverageCount int, coverageRatio, weightCoverage float64,
	domainScores map[claim.Domain]float64, matched []match.Match,
) Ranked {
	return Ranked{
		apartmentID:    apartmentID,
		finalScore:     finalScore,
		coverageCount:  coverageCount,
		coverageRatio:  coverageRatio,
		weightCoverage: weightCoverage,
		domainScores:   domainScores,
		matched:        matched,
	}
}

// ApartmentID returns the ranked apartment's identifier.
func (r *Ranked) ApartmentID() string { return r.apartmentID }

// FinalScore returns the blended similarity score.
func (r *Ranked) FinalScore() float64 { return r.finalScore }

// CoverageCount returns the number of satisfied claim slots.
func (r *Ranked) CoverageCount() int { return r.coverageCount }

// CoverageRatio returns satisfied slots over total slots.
func (r *Ranked) CoverageRatio() float64 { return r.coverageRatio }

// WeightCoverage returns the weight-share of satisfied slots.
func (r *Ranked) WeightCoverage() float64 { return r.weightCoverage }

// DomainScores returns the per-domain sub-scores.
func (r *Ranked) DomainScores() map[claim.Domain]float64 { return r.domainScores }

// Matched returns the matches that explain the score.
func (r *Ranked) Matched() []match.Match { return r.matched }

// Response is the full search outcome: the ranking plus which domains were
// served with degraded (empty) matches because their backend was unreachable.
type Response struct {
	results  []Ranked
	degraded []claim.Domain
}

// NewResponse creates a search response.
func NewResponse(results []Ranked, degraded []claim.Domain) Response {
	return Response{results: results, degraded: degraded}
}

// Results returns the ranked apartments, best first.
func (r *Response) Results() []Ranked { return r.results }

// Degraded returns the domains whose backend calls failed outright.
func (r *Response) Degraded() []claim.Domain { return r.degraded }
