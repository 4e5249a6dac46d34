// Package match models one retrieval hit: a query claim landing on an
// indexed claim of some entity. Matches are request-scoped and never
// persisted.
package match

import "github.com/kailas-cloud/aptdex/internal/domain/claim"

// Anti-kind polarity constants. An anti claim in the index states the
// opposite of a positive fact ("no pets allowed"), so a strong similarity to
// it is flipped before thresholding.
const (
	antiAgrees    = 1.0 // query negated too: the anti claim confirms it
	antiContradic = 0.1 // query positive: the anti claim refutes it
)

// Match is the result of running one query claim against one domain index.
type Match struct {
	EntityID    string // id of the entity owning the matched claim
	ParentID    string // upward containment reference (room→apartment, apartment→neighborhood)
	Query       claim.Claim
	MatchedText string
	Similarity  float64 // raw cosine similarity in [0,1]
	ClaimType   claim.Type
	Kind        claim.Kind
}

// EffectiveScore returns the similarity after anti-kind polarity flipping.
// Non-anti matches pass through unchanged.
func (m *Match) EffectiveScore() float64 {
	if m.Kind != claim.KindAnti {
		return m.Similarity
	}
	if m.Query.Negation {
		return antiAgrees
	}
	return antiContradic
}

// Domain returns the hierarchy domain of the originating query claim.
func (m *Match) Domain() claim.Domain { return m.Query.Domain }
