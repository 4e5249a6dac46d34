package claim

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/aptdex/internal/domain"
)

// QType categorizes the measured quantity of a quantifier.
type QType string

// Quantifier type constants.
const (
	QTypeMoney    QType = "money"
	QTypeArea     QType = "area"
	QTypeCount    QType = "count"
	QTypeDistance QType = "distance"
	QTypeDuration QType = "duration"
)

// IsValid checks the quantifier type against the closed enumeration.
func (t QType) IsValid() bool {
	switch t {
	case QTypeMoney, QTypeArea, QTypeCount, QTypeDistance, QTypeDuration:
		return true
	}
	return false
}

// Op is a quantifier comparison operator. APPROX exists only at extraction
// time: the extraction collaborator widens it into a concrete RANGE before
// the claim reaches this engine, so query-time validation rejects it.
type Op string

// Quantifier operator constants.
const (
	OpEquals Op = "EQUALS"
	OpGT     Op = "GT"
	OpGTE    Op = "GTE"
	OpLT     Op = "LT"
	OpLTE    Op = "LTE"
	OpApprox Op = "APPROX"
	OpRange  Op = "RANGE"
)

// IsQueryable checks that the operator is legal on a query-side quantifier.
func (o Op) IsQueryable() bool {
	switch o {
	case OpEquals, OpGT, OpGTE, OpLT, OpLTE, OpRange:
		return true
	}
	return false
}

// Quantifier is a numeric constraint extracted from a claim, separated from
// its semantic text. VMin/VMax are inclusive; for GT/GTE only VMin is
// meaningful and for LT/LTE only VMax.
type Quantifier struct {
	QType QType
	Noun  string // the quantified subject, e.g. "kitchen"
	VMin  float64
	VMax  float64
	Op    Op
	Unit  string
}

// Validate rejects malformed quantifiers.
func (q *Quantifier) Validate() error {
	if !q.QType.IsValid() {
		return fmt.Errorf("%w: unknown quantifier type %q", domain.ErrInvalidClaim, q.QType)
	}
	if q.Noun == "" {
		return fmt.Errorf("%w: quantifier without noun", domain.ErrInvalidClaim)
	}
	if !q.Op.IsQueryable() {
		return fmt.Errorf("%w: operator %q not valid at query time", domain.ErrInvalidClaim, q.Op)
	}
	if (q.Op == OpEquals || q.Op == OpRange) && q.VMin > q.VMax {
		return fmt.Errorf("%w: vmin %g > vmax %g", domain.ErrInvalidClaim, q.VMin, q.VMax)
	}
	return nil
}

// Bounds resolves the operator into one inclusive [min, max] interval the
// query builder filters against. Unbounded sides are ±Inf; GT and LT mark
// their finite side exclusive.
func (q *Quantifier) Bounds() (minVal, maxVal float64, minExcl, maxExcl bool) {
	switch q.Op {
	case OpGT:
		return q.VMin, math.Inf(1), true, false
	case OpGTE:
		return q.VMin, math.Inf(1), false, false
	case OpLT:
		return math.Inf(-1), q.VMax, false, true
	case OpLTE:
		return math.Inf(-1), q.VMax, false, false
	default: // EQUALS, RANGE
		return q.VMin, q.VMax, false, false
	}
}
