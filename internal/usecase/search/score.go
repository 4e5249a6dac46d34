package search

import (
	"sort"

	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/search/match"
	"github.com/kailas-cloud/aptdex/internal/domain/search/result"
	"github.com/kailas-cloud/aptdex/internal/domain/search/weight"
)

// topMatchWeights discounts repeated evidence for the same claim: the best
// match dominates and each further match adds half the previous one's say.
// The combined score is a weighted mean, so uniform inputs pass through
// unchanged.
var topMatchWeights = [4]float64{1, 0.5, 0.25, 0.125}

// combineTopMatches folds the per-claim match scores into one claim score.
func combineTopMatches(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sorted := append([]float64(nil), scores...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	n := len(sorted)
	if n > len(topMatchWeights) {
		n = len(topMatchWeights)
	}

	var num, den float64
	for i := 0; i < n; i++ {
		num += topMatchWeights[i] * sorted[i]
		den += topMatchWeights[i]
	}
	return num / den
}

// slot is one rankable unit of the query: a standalone claim, or an OR-group
// that collapses to its best-scoring member.
type slot struct {
	members []int // indexes into the query claims
}

// buildSlots groups claims sharing a non-zero OR-group into one slot,
// preserving query order.
func buildSlots(claims []claim.Claim) []slot {
	groupSlot := make(map[int]int)
	slots := make([]slot, 0, len(claims))
	for i := range claims {
		g := claims[i].ORGroup
		if g == 0 {
			slots = append(slots, slot{members: []int{i}})
			continue
		}
		if si, ok := groupSlot[g]; ok {
			slots[si].members = append(slots[si].members, i)
			continue
		}
		groupSlot[g] = len(slots)
		slots = append(slots, slot{members: []int{i}})
	}
	return slots
}

// stake returns the slot's weight and domain when nothing matched: the
// member with the strongest effective weight stands in for the slot.
func (s *slot) stake(claims []claim.Claim) (float64, claim.Domain) {
	best := 0.0
	dom := claims[s.members[0]].Domain
	for _, i := range s.members {
		if w := claims[i].EffectiveWeight(); w > best {
			best = w
			dom = claims[i].Domain
		}
	}
	return best, dom
}

func (s *slot) maxWeight(claims []claim.Claim) float64 {
	w, _ := s.stake(claims)
	return w
}

// claimMatchIndex precomputes, per query claim, the thresholded matches
// grouped by owning entity: apartments for room and apartment claims,
// neighborhoods for neighborhood claims.
func claimMatchIndex(claims []claim.Claim, thresholded [][]match.Match) []map[string][]match.Match {
	index := make([]map[string][]match.Match, len(claims))
	for i := range claims {
		byKey := make(map[string][]match.Match)
		for _, m := range thresholded[i] {
			key := m.EntityID
			if m.Domain() == claim.DomainRoom {
				key = m.ParentID
			}
			if key == "" {
				continue
			}
			byKey[key] = append(byKey[key], m)
		}
		index[i] = byKey
	}
	return index
}

// rank scores every candidate apartment and sorts the result. Coverage
// dominates: an apartment satisfying more claim slots always outranks one
// satisfying fewer, however strong the fewer matches are.
func rank(
	claims []claim.Claim,
	weights weight.Domains,
	thresholded [][]match.Match,
	candidates []string,
	nbhOf map[string]string,
) []result.Ranked {
	slots := buildSlots(claims)
	index := claimMatchIndex(claims, thresholded)

	var totalWeight float64
	for si := range slots {
		totalWeight += slots[si].maxWeight(claims)
	}

	ranked := make([]result.Ranked, 0, len(candidates))
	for _, apt := range candidates {
		ranked = append(ranked, scoreApartment(apt, claims, slots, index, weights, totalWeight, len(slots), nbhOf[apt]))
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if a.CoverageCount() != b.CoverageCount() {
			return a.CoverageCount() > b.CoverageCount()
		}
		if a.WeightCoverage() != b.WeightCoverage() {
			return a.WeightCoverage() > b.WeightCoverage()
		}
		if a.FinalScore() != b.FinalScore() {
			return a.FinalScore() > b.FinalScore()
		}
		return a.ApartmentID() < b.ApartmentID()
	})
	return ranked
}

func scoreApartment(
	apt string,
	claims []claim.Claim,
	slots []slot,
	index []map[string][]match.Match,
	weights weight.Domains,
	totalWeight float64,
	totalSlots int,
	nbh string,
) result.Ranked {
	var (
		covered       int
		coveredWeight float64
		matched       []match.Match
	)
	domainNum := make(map[claim.Domain]float64)
	domainDen := make(map[claim.Domain]float64)

	for si := range slots {
		s := &slots[si]

		// OR-groups collapse to the best-scoring member; its weight and
		// domain carry the slot.
		bestScore := -1.0
		var bestClaim *claim.Claim
		var bestMatches []match.Match
		for _, ci := range s.members {
			c := &claims[ci]
			key := apt
			if c.Domain == claim.DomainNeighborhood {
				key = nbh
			}
			ms := index[ci][key]
			if len(ms) == 0 {
				continue
			}
			scores := make([]float64, len(ms))
			for k := range ms {
				scores[k] = ms[k].EffectiveScore()
			}
			if combined := combineTopMatches(scores); combined > bestScore {
				bestScore = combined
				bestClaim = c
				bestMatches = ms
			}
		}

		// An unmatched slot keeps its weight in its domain's denominator,
		// so partial domain coverage lowers the sub-score.
		if bestClaim == nil {
			w, dom := s.stake(claims)
			domainDen[dom] += w
			continue
		}

		covered++
		w := bestClaim.EffectiveWeight()
		coveredWeight += w
		domainNum[bestClaim.Domain] += w * bestScore
		domainDen[bestClaim.Domain] += w
		matched = append(matched, bestMatches...)
	}

	domainScores := make(map[claim.Domain]float64, len(domainDen))
	var final float64
	for dom, den := range domainDen {
		if den == 0 {
			continue
		}
		score := domainNum[dom] / den
		domainScores[dom] = score
		final += weights.For(dom) * score
	}

	var coverageRatio, weightCoverage float64
	if totalSlots > 0 {
		coverageRatio = float64(covered) / float64(totalSlots)
	}
	if totalWeight > 0 {
		weightCoverage = coveredWeight / totalWeight
	}

	return result.New(apt, final, covered, coverageRatio, weightCoverage, domainScores, matched)
}
