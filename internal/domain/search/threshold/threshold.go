// Package threshold holds the per-claim-type similarity cutoffs used when
// deciding whether a match counts at all.
package threshold

import (
	"fmt"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
)

// Fallback is the cutoff for claim types missing from a custom table.
const Fallback = 0.75

// SpecificLocation is the tightened cutoff for location claims naming a
// concrete place; generic location matching is too forgiving for those.
const SpecificLocation = 0.90

// Table maps claim types to the minimum similarity a match must reach.
type Table map[claim.Type]float64

// Default returns the tuned production table.
func Default() Table {
	return Table{
		claim.TypeLocation:      0.85,
		claim.TypePricing:       0.85,
		claim.TypeSize:          0.80,
		claim.TypeRestrictions:  0.80,
		claim.TypePolicies:      0.80,
		claim.TypeAccessibility: 0.75,
		claim.TypeCondition:     0.75,
		claim.TypeUtilities:     0.75,
		claim.TypeFeatures:      0.75,
		claim.TypeTransport:     0.75,
		claim.TypeNeighborhood:  0.73,
		claim.TypeAmenities:     0.70,
	}
}

// For returns the cutoff for a query claim.
func (t Table) For(c *claim.Claim) float64 {
	if c.IsSpecific && c.ClaimType == claim.TypeLocation {
		return SpecificLocation
	}
	if v, ok := t[c.ClaimType]; ok {
		return v
	}
	return Fallback
}

// Validate checks that every override targets a known claim type and lies in
// (0, 1].
func (t Table) Validate() error {
	for ty, v := range t {
		if !ty.IsValid() {
			return fmt.Errorf("%w: threshold for unknown claim type %q", domain.ErrInvalidClaim, ty)
		}
		if v <= 0 || v > 1 {
			return fmt.Errorf("%w: threshold %g for %s outside (0,1]", domain.ErrInvalidClaim, v, ty)
		}
	}
	return nil
}
