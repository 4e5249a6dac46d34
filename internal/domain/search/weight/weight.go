// Package weight holds the blend of per-domain sub-scores into one final
// score.
package weight

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
)

// sumTolerance absorbs float rounding when checking that weights sum to 1.
const sumTolerance = 1e-9

// Domains is the per-level weighting of the final score.
type Domains struct {
	Room         float64
	Apartment    float64
	Neighborhood float64
}

// Default returns the production blend: apartment evidence weighs most,
// neighborhood least.
func Default() Domains {
	return Domains{Room: 0.35, Apartment: 0.40, Neighborhood: 0.25}
}

// For returns the weight of one hierarchy domain.
func (d Domains) For(dom claim.Domain) float64 {
	switch dom {
	case claim.DomainRoom:
		return d.Room
	case claim.DomainApartment:
		return d.Apartment
	case claim.DomainNeighborhood:
		return d.Neighborhood
	}
	return 0
}

// Validate checks that each weight is non-negative and the blend sums to 1.0.
func (d Domains) Validate() error {
	if d.Room < 0 || d.Apartment < 0 || d.Neighborhood < 0 {
		return fmt.Errorf("%w: negative weight", domain.ErrInvalidWeights)
	}
	sum := d.Room + d.Apartment + d.Neighborhood
	if math.Abs(sum-1.0) > sumTolerance {
		return fmt.Errorf("%w: weights sum to %g, must sum to 1.0", domain.ErrInvalidWeights, sum)
	}
	return nil
}
