package search

import (
	"sort"

	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/search/match"
	"github.com/kailas-cloud/aptdex/internal/domain/search/threshold"
)

// thresholdMatches keeps only matches whose post-flip score clears the
// query claim's cutoff. The anti-kind flip happens before thresholding, so
// a contradicted anti claim falls out here.
func thresholdMatches(matchesByClaim [][]match.Match, thresholds threshold.Table) [][]match.Match {
	out := make([][]match.Match, len(matchesByClaim))
	for i, ms := range matchesByClaim {
		kept := make([]match.Match, 0, len(ms))
		for _, m := range ms {
			if m.EffectiveScore() >= thresholds.For(&m.Query) {
				kept = append(kept, m)
			}
		}
		out[i] = kept
	}
	return out
}

// domainSets aggregates the thresholded matches into per-domain satisfaction
// sets, all keyed so the intersection runs over apartments:
// room matches climb to their apartment, apartment matches stand for
// themselves, neighborhood matches stay neighborhood-keyed.
type domainSets struct {
	roomApts map[string]bool   // apartments with a satisfying room match
	apts     map[string]bool   // apartments with a satisfying apartment match
	nbhs     map[string]bool   // neighborhoods with a satisfying match
	aptNbh   map[string]string // containment learned from apartment matches
}

func buildDomainSets(thresholded [][]match.Match) domainSets {
	ds := domainSets{
		roomApts: make(map[string]bool),
		apts:     make(map[string]bool),
		nbhs:     make(map[string]bool),
		aptNbh:   make(map[string]string),
	}
	for _, ms := range thresholded {
		for i := range ms {
			m := &ms[i]
			switch m.Domain() {
			case claim.DomainRoom:
				if m.ParentID != "" {
					ds.roomApts[m.ParentID] = true
				}
			case claim.DomainApartment:
				ds.apts[m.EntityID] = true
				if m.ParentID != "" {
					ds.aptNbh[m.EntityID] = m.ParentID
				}
			case claim.DomainNeighborhood:
				ds.nbhs[m.EntityID] = true
			}
		}
	}
	return ds
}

// candidateApartments seeds the ranking set from the inner domains. A domain
// without query claims, or one that degraded, contributes nothing and
// constrains nothing.
func (ds *domainSets) candidateApartments(active map[claim.Domain]bool) []string {
	seen := make(map[string]bool, len(ds.roomApts)+len(ds.apts))
	if active[claim.DomainRoom] {
		for apt := range ds.roomApts {
			seen[apt] = true
		}
	}
	if active[claim.DomainApartment] {
		for apt := range ds.apts {
			seen[apt] = true
		}
	}

	out := make([]string, 0, len(seen))
	for apt := range seen {
		out = append(out, apt)
	}
	sort.Strings(out)
	return out
}

// admissible applies the containment intersection: every active domain must
// be satisfied somewhere along the apartment's chain. Inactive domains are
// vacuously satisfied.
func (ds *domainSets) admissible(candidates []string, active map[claim.Domain]bool, nbhOf map[string]string) []string {
	out := make([]string, 0, len(candidates))
	for _, apt := range candidates {
		if active[claim.DomainRoom] && !ds.roomApts[apt] {
			continue
		}
		if active[claim.DomainApartment] && !ds.apts[apt] {
			continue
		}
		if active[claim.DomainNeighborhood] && !ds.nbhs[nbhOf[apt]] {
			continue
		}
		out = append(out, apt)
	}
	return out
}
