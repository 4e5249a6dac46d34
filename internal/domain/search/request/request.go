// Package request models a validated search request: weighted, typed,
// domain-tagged claims plus ranking tunables.
package request

import (
	"fmt"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/search/threshold"
	"github.com/kailas-cloud/aptdex/internal/domain/search/weight"
)

// Search parameter limits.
const (
	DefaultLimit = 10
	MaxLimit     = 100
	MaxClaims    = 64
)

// RentRange is an optional structured pre-filter on apartment rent.
type RentRange struct {
	Min *float64
	Max *float64
}

// Request is a validated search request. Thresholds and domain weights are
// carried per request so concurrent searches with different tuning never
// interfere.
type Request struct {
	claims     []claim.Claim
	weights    weight.Domains
	thresholds threshold.Table
	limit      int
	rent       *RentRange
}

// New validates and normalizes a search request. Passing nil weights or
// thresholds selects the defaults. Pricing claims are dropped when a rent
// range is present; the structured filter already covers them.
func New(
	claims []claim.Claim,
	weights *weight.Domains,
	thresholds threshold.Table,
	limit int,
	rent *RentRange,
) (Request, error) {
	if len(claims) == 0 {
		return Request{}, fmt.Errorf("%w: request has no claims", domain.ErrInvalidClaim)
	}
	if len(claims) > MaxClaims {
		return Request{}, fmt.Errorf("%w: too many claims (max %d)", domain.ErrInvalidClaim, MaxClaims)
	}

	w := weight.Default()
	if weights != nil {
		w = *weights
	}
	if err := w.Validate(); err != nil {
		return Request{}, err
	}

	t := threshold.Default()
	if thresholds != nil {
		if err := thresholds.Validate(); err != nil {
			return Request{}, err
		}
		for ty, v := range thresholds {
			t[ty] = v
		}
	}

	kept := make([]claim.Claim, 0, len(claims))
	for i := range claims {
		c := claims[i]
		c.Normalize()
		if err := c.Validate(); err != nil {
			return Request{}, fmt.Errorf("claim %d: %w", i, err)
		}
		if rent != nil && c.ClaimType == claim.TypePricing {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return Request{}, fmt.Errorf("%w: all claims redundant with structured filters", domain.ErrInvalidClaim)
	}

	if rent != nil && rent.Min == nil && rent.Max == nil {
		rent = nil
	}
	if rent != nil && rent.Min != nil && rent.Max != nil && *rent.Min > *rent.Max {
		return Request{}, fmt.Errorf("%w: rent range min %g > max %g", domain.ErrInvalidClaim, *rent.Min, *rent.Max)
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Request{claims: kept, weights: w, thresholds: t, limit: limit, rent: rent}, nil
}

// Claims returns the normalized query claims.
func (r *Request) Claims() []claim.Claim { return r.claims }

// Weights returns the domain score blend.
func (r *Request) Weights() weight.Domains { return r.weights }

// Thresholds returns the effective claim-type threshold table.
func (r *Request) Thresholds() threshold.Table { return r.thresholds }

// Limit returns the maximum number of ranked results to return.
func (r *Request) Limit() int { return r.limit }

// Rent returns the structured rent pre-filter, nil when absent.
func (r *Request) Rent() *RentRange { return r.rent }

// ByDomain groups the query claims by hierarchy domain.
func (r *Request) ByDomain() map[claim.Domain][]claim.Claim {
	out := make(map[claim.Domain][]claim.Claim, 3)
	for _, c := range r.claims {
		out[c.Domain] = append(out[c.Domain], c)
	}
	return out
}
