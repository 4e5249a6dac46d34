// Package search implements the claim search engine: concurrent per-claim
// retrieval across the three domain indexes, the containment intersection,
// and coverage-first ranking.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/search/request"
	"github.com/kailas-cloud/aptdex/internal/domain/search/result"
	"github.com/kailas-cloud/aptdex/internal/metrics"
)

// Config holds the retrieval tunables.
type Config struct {
	RoomK         int
	ApartmentK    int
	NeighborhoodK int
	ClaimTimeout  time.Duration
}

// Service handles claim search over the apartment hierarchy.
type Service struct {
	claims   ClaimSearcher
	parents  ParentResolver
	lister   ApartmentLister
	embed    Embedder
	grounder Grounder
	cfg      Config
}

// New creates a search service.
func New(claims ClaimSearcher, parents ParentResolver, lister ApartmentLister, embed Embedder, cfg Config) *Service {
	return &Service{claims: claims, parents: parents, lister: lister, embed: embed, cfg: cfg}
}

// WithGrounder attaches the optional location grounding collaborator.
func (s *Service) WithGrounder(g Grounder) *Service {
	s.grounder = g
	return s
}

// Search runs the full pipeline: embed, dispatch, threshold, intersect,
// rank. A degraded domain relaxes the intersection instead of failing the
// request; only losing every claimed domain is an error.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Response, error) {
	start := time.Now()

	resp, err := s.search(ctx, req)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(status).Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())

	return resp, err
}

func (s *Service) search(ctx context.Context, req *request.Request) (result.Response, error) {
	claims := s.expandClaims(ctx, append([]claim.Claim(nil), req.Claims()...))
	if err := s.embedClaims(ctx, claims); err != nil {
		return result.Response{}, err
	}

	matchesByClaim, degraded, err := s.dispatch(ctx, claims)
	if err != nil {
		return result.Response{}, err
	}

	active := activeDomains(claims, degraded)
	if len(active) == 0 {
		return result.Response{}, domain.ErrBackendUnavailable
	}

	thresholded := thresholdMatches(matchesByClaim, req.Thresholds())
	ds := buildDomainSets(thresholded)

	var candidates []string
	nbhOf := ds.aptNbh
	if active[claim.DomainRoom] || active[claim.DomainApartment] {
		candidates = ds.candidateApartments(active)
		if active[claim.DomainNeighborhood] {
			if err := s.resolveNeighborhoods(ctx, candidates, nbhOf); err != nil {
				return result.Response{}, err
			}
		}
	} else {
		// Neighborhood-only query: no inner domain seeds candidates, so the
		// inventory itself does.
		apts, err := s.lister.ListApartments(ctx)
		if err != nil {
			return result.Response{}, fmt.Errorf("list apartments: %w", err)
		}
		candidates = make([]string, 0, len(apts))
		for i := range apts {
			candidates = append(candidates, apts[i].ID)
			nbhOf[apts[i].ID] = apts[i].NeighborhoodID
		}
	}

	admitted := ds.admissible(candidates, active, nbhOf)

	if rent := req.Rent(); rent != nil {
		var err error
		if admitted, err = s.filterByRent(ctx, admitted, rent); err != nil {
			return result.Response{}, err
		}
	}

	ranked := rank(claims, req.Weights(), thresholded, admitted, nbhOf)
	if len(ranked) > req.Limit() {
		ranked = ranked[:req.Limit()]
	}

	return result.NewResponse(ranked, degradedList(degraded)), nil
}

// Explain scores one apartment against the request without the containment
// intersection, exposing which claims it satisfies and which it misses.
func (s *Service) Explain(ctx context.Context, apartmentID string, req *request.Request) (result.Ranked, []claim.Domain, error) {
	nbhOf, err := s.parents.NeighborhoodOf(ctx, []string{apartmentID})
	if err != nil {
		return result.Ranked{}, nil, fmt.Errorf("resolve apartment %s: %w", apartmentID, err)
	}
	if _, ok := nbhOf[apartmentID]; !ok {
		return result.Ranked{}, nil, domain.ErrNotFound
	}

	claims := append([]claim.Claim(nil), req.Claims()...)
	if err := s.embedClaims(ctx, claims); err != nil {
		return result.Ranked{}, nil, err
	}

	matchesByClaim, degraded, err := s.dispatch(ctx, claims)
	if err != nil {
		return result.Ranked{}, nil, err
	}
	if len(activeDomains(claims, degraded)) == 0 {
		return result.Ranked{}, nil, domain.ErrBackendUnavailable
	}

	thresholded := thresholdMatches(matchesByClaim, req.Thresholds())
	ranked := rank(claims, req.Weights(), thresholded, []string{apartmentID}, nbhOf)

	return ranked[0], degradedList(degraded), nil
}

// expandClaims unions grounding expansions of specific location claims into
// the query. Expansion failures and invalid expansions fall back to the
// unexpanded claim.
func (s *Service) expandClaims(ctx context.Context, claims []claim.Claim) []claim.Claim {
	if s.grounder == nil {
		return claims
	}
	for i := range claims {
		if claims[i].ClaimType != claim.TypeLocation || !claims[i].IsSpecific {
			continue
		}
		extra, err := s.grounder.Expand(ctx, claims[i])
		if err != nil {
			continue
		}
		for _, c := range extra {
			c.Normalize()
			if c.Validate() == nil {
				claims = append(claims, c)
			}
		}
	}
	return claims
}

// embedClaims fills missing claim embeddings, vectorizing each distinct text
// once per request.
func (s *Service) embedClaims(ctx context.Context, claims []claim.Claim) error {
	byText := make(map[string][]float32)
	for i := range claims {
		if len(claims[i].Embedding) > 0 {
			continue
		}
		if vec, ok := byText[claims[i].Text]; ok {
			claims[i].Embedding = vec
			continue
		}
		res, err := s.embed.Embed(ctx, claims[i].Text)
		if err != nil {
			return fmt.Errorf("embed claim %q: %w", claims[i].Text, err)
		}
		byText[claims[i].Text] = res.Embedding
		claims[i].Embedding = res.Embedding
	}
	return nil
}

// resolveNeighborhoods fills containment edges the apartment matches did not
// already carry.
func (s *Service) resolveNeighborhoods(ctx context.Context, candidates []string, nbhOf map[string]string) error {
	missing := make([]string, 0, len(candidates))
	for _, apt := range candidates {
		if _, ok := nbhOf[apt]; !ok {
			missing = append(missing, apt)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	resolved, err := s.parents.NeighborhoodOf(ctx, missing)
	if err != nil {
		return fmt.Errorf("resolve neighborhoods: %w", err)
	}
	for apt, nbh := range resolved {
		nbhOf[apt] = nbh
	}
	return nil
}

// filterByRent applies the structured rent range. Apartments without a
// stored rent cannot satisfy the filter.
func (s *Service) filterByRent(ctx context.Context, candidates []string, rent *request.RentRange) ([]string, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	rents, err := s.parents.Rents(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("load rents: %w", err)
	}

	out := make([]string, 0, len(candidates))
	for _, apt := range candidates {
		price, ok := rents[apt]
		if !ok {
			continue
		}
		if rent.Min != nil && price < *rent.Min {
			continue
		}
		if rent.Max != nil && price > *rent.Max {
			continue
		}
		out = append(out, apt)
	}
	return out, nil
}

// activeDomains returns the claimed domains that still constrain the
// intersection: present in the query and not degraded.
func activeDomains(claims []claim.Claim, degraded map[claim.Domain]bool) map[claim.Domain]bool {
	active := make(map[claim.Domain]bool, 3)
	for i := range claims {
		if !degraded[claims[i].Domain] {
			active[claims[i].Domain] = true
		}
	}
	return active
}

// degradedList orders the degraded set for a stable response payload.
func degradedList(degraded map[claim.Domain]bool) []claim.Domain {
	if len(degraded) == 0 {
		return nil
	}
	out := make([]claim.Domain, 0, len(degraded))
	for _, dom := range claim.Domains() {
		if degraded[dom] {
			out = append(out, dom)
		}
	}
	return out
}
