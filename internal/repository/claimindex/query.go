package claimindex

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/search/filter"
)

// buildFilters derives the pre-filter expression for one query claim:
// an exact claim_type match, a room_type match for room claims, and an
// interval-overlap constraint against the indexed qmin/qmax boundaries.
// Positive queries additionally exclude negated indexed claims.
func buildFilters(c *claim.Claim) (filter.Expression, error) {
	if !c.Domain.IsValid() {
		return filter.Expression{}, fmt.Errorf("%w: unknown domain %q", domain.ErrInvalidClaim, c.Domain)
	}

	must := make([]filter.Condition, 0, 6)

	ct, err := filter.NewMatch("claim_type", string(c.ClaimType))
	if err != nil {
		return filter.Expression{}, err
	}
	must = append(must, ct)

	if c.Domain == claim.DomainRoom && c.RoomType != "" {
		rt, err := filter.NewMatch("room_type", c.RoomType)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, rt)
	}

	for i := range c.Quantifiers {
		if !c.Quantifiers[i].Op.IsQueryable() {
			return filter.Expression{}, fmt.Errorf("quantifier %d: %w: operator %q not valid at query time",
				i, domain.ErrInvalidClaim, c.Quantifiers[i].Op)
		}
	}
	// The index carries one quantifier per claim (see buildHashFields), so
	// only the first one pre-filters; the rest ride in the claim text.
	if len(c.Quantifiers) > 0 {
		conds, err := quantifierConditions(&c.Quantifiers[0])
		if err != nil {
			return filter.Expression{}, fmt.Errorf("quantifier 0: %w", err)
		}
		must = append(must, conds...)
	}

	var mustNot []filter.Condition
	if !c.Negation {
		neg, err := filter.NewMatch("negation", "1")
		if err != nil {
			return filter.Expression{}, err
		}
		mustNot = append(mustNot, neg)
	}

	return filter.NewExpression(must, mustNot), nil
}

// quantifierConditions restricts hits to indexed claims quantifying the same
// noun whose interval overlaps the query interval: indexed qmax above the
// query minimum and indexed qmin below the query maximum.
func quantifierConditions(q *claim.Quantifier) ([]filter.Condition, error) {
	conds := make([]filter.Condition, 0, 4)

	qt, err := filter.NewMatch("qtype", string(q.QType))
	if err != nil {
		return nil, err
	}
	conds = append(conds, qt)

	qn, err := filter.NewMatch("qnoun", q.Noun)
	if err != nil {
		return nil, err
	}
	conds = append(conds, qn)

	minVal, maxVal, minExcl, maxExcl := q.Bounds()

	if !math.IsInf(minVal, -1) {
		r, err := filter.NewRangeBounds(&minVal, nil, minExcl, false)
		if err != nil {
			return nil, err
		}
		cond, err := filter.NewRange("qmax", r)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}

	if !math.IsInf(maxVal, 1) {
		r, err := filter.NewRangeBounds(nil, &maxVal, false, maxExcl)
		if err != nil {
			return nil, err
		}
		cond, err := filter.NewRange("qmin", r)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}

	return conds, nil
}
