// Package filter describes backend-agnostic pre-filters attached to a KNN
// retrieval request: exact tag matches and inclusive numeric ranges.
package filter

import "fmt"

// Expression is an AND-combined list of conditions applied before the vector
// scan. The query builder emits must conditions only; mustNot exists for the
// negation pre-filter on index-side claims.
type Expression struct {
	must    []Condition
	mustNot []Condition
}

// NewExpression creates a filter Expression.
func NewExpression(must, mustNot []Condition) Expression {
	return Expression{must: must, mustNot: mustNot}
}

// Must returns the required conditions.
func (e Expression) Must() []Condition { return e.must }

// MustNot returns the excluded conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.mustNot) == 0
}

// And returns a copy of the expression with extra must conditions appended.
func (e Expression) And(conds ...Condition) Expression {
	out := Expression{mustNot: e.mustNot}
	out.must = append(append([]Condition{}, e.must...), conds...)
	return out
}

// Condition is a single filter clause: a tag match or a numeric range.
type Condition struct {
	key       string
	match     string
	rangeExpr *Range
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is a numeric interval. A nil boundary is unbounded; Excl marks an
// exclusive boundary.
type Range struct {
	min     *float64
	max     *float64
	minExcl bool
	maxExcl bool
}

// NewRangeBounds creates a Range from optional boundaries.
// At least one boundary is required.
func NewRangeBounds(minVal, maxVal *float64, minExcl, maxExcl bool) (Range, error) {
	if minVal == nil && maxVal == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	return Range{min: minVal, max: maxVal, minExcl: minExcl, maxExcl: maxExcl}, nil
}

// Min returns the lower boundary, nil when unbounded.
func (r Range) Min() *float64 { return r.min }

// Max returns the upper boundary, nil when unbounded.
func (r Range) Max() *float64 { return r.max }

// MinExclusive reports whether the lower boundary is exclusive.
func (r Range) MinExclusive() bool { return r.minExcl }

// MaxExclusive reports whether the upper boundary is exclusive.
func (r Range) MaxExclusive() bool { return r.maxExcl }
