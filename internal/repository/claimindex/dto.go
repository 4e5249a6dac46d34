package claimindex

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/kailas-cloud/aptdex/internal/db"
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/search/match"
)

// buildHashFields converts one claim into a flat map[string]string for HSET.
// Only the first quantifier is indexed for pre-filtering; the claim text
// still carries the rest semantically.
func buildHashFields(entityID, parentID string, c *claim.Claim) map[string]string {
	m := map[string]string{
		"entity_id":  entityID,
		"text":       c.Text,
		"claim_type": string(c.ClaimType),
		"kind":       string(c.Kind),
		"negation":   boolField(c.Negation),
		"vector":     vectorToBytes(c.Embedding),
	}
	if parentID != "" {
		m["parent_id"] = parentID
	}
	if c.RoomType != "" {
		m["room_type"] = c.RoomType
	}
	if c.IsSpecific {
		m["is_specific"] = "1"
	}
	if len(c.Quantifiers) > 0 {
		q := &c.Quantifiers[0]
		qmin, qmax, _, _ := q.Bounds()
		m["qtype"] = string(q.QType)
		m["qnoun"] = q.Noun
		m["qmin"] = numField(qmin)
		m["qmax"] = numField(qmax)
	}
	return m
}

// parseMatch converts a search hit into a domain match, keeping the
// originating query claim attached for downstream scoring.
func parseMatch(entry db.SearchEntry, query *claim.Claim) match.Match {
	return match.Match{
		EntityID:    entry.Fields["entity_id"],
		ParentID:    entry.Fields["parent_id"],
		Query:       *query,
		MatchedText: entry.Fields["text"],
		Similarity:  entry.Score,
		ClaimType:   claim.Type(entry.Fields["claim_type"]),
		Kind:        claim.Kind(entry.Fields["kind"]),
	}
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// numField formats a quantifier boundary; infinities collapse to the extreme
// finite values FT numeric fields can index.
func numField(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return strconv.FormatFloat(math.MaxFloat64, 'g', -1, 64)
	case math.IsInf(f, -1):
		return strconv.FormatFloat(-math.MaxFloat64, 'g', -1, 64)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
