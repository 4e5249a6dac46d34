package chi

import (
	"fmt"

	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/listing"
	"github.com/kailas-cloud/aptdex/internal/domain/search/match"
	"github.com/kailas-cloud/aptdex/internal/domain/search/request"
	"github.com/kailas-cloud/aptdex/internal/domain/search/result"
	"github.com/kailas-cloud/aptdex/internal/domain/search/threshold"
	"github.com/kailas-cloud/aptdex/internal/domain/search/weight"
)

// ErrorCode is the machine-readable error class in error payloads.
type ErrorCode string

// Error code constants.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeVectorDimMismatch  ErrorCode = "vector_dim_mismatch"
	ErrorCodeEmbeddingProvider  ErrorCode = "embedding_provider_error"
	ErrorCodeExtractionProvider ErrorCode = "extraction_provider_error"
	ErrorCodeBackendUnavailable ErrorCode = "search_backend_unavailable"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error payload.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ClaimPayload is the wire form of one query or listing claim.
type ClaimPayload struct {
	Text        string              `json:"text"`
	ClaimType   string              `json:"claim_type"`
	Domain      string              `json:"domain"`
	RoomType    string              `json:"room_type,omitempty"`
	Kind        string              `json:"kind,omitempty"`
	Weight      float64             `json:"weight,omitempty"`
	Negation    bool                `json:"negation,omitempty"`
	IsSpecific  bool                `json:"is_specific,omitempty"`
	OrGroup     int                 `json:"or_group,omitempty"`
	Quantifiers []QuantifierPayload `json:"quantifiers,omitempty"`
}

// QuantifierPayload is the wire form of a numeric claim constraint.
type QuantifierPayload struct {
	QType string  `json:"qtype"`
	Noun  string  `json:"noun"`
	Op    string  `json:"op"`
	VMin  float64 `json:"vmin,omitempty"`
	VMax  float64 `json:"vmax,omitempty"`
	Unit  string  `json:"unit,omitempty"`
}

// WeightsPayload overrides the domain blend weights.
type WeightsPayload struct {
	Room         float64 `json:"room"`
	Apartment    float64 `json:"apartment"`
	Neighborhood float64 `json:"neighborhood"`
}

// RentRangePayload is the structured rent pre-filter.
type RentRangePayload struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// SearchRequest carries either pre-structured claims or a free-text query to
// be run through claim extraction.
type SearchRequest struct {
	Query      string             `json:"query,omitempty"`
	Claims     []ClaimPayload     `json:"claims,omitempty"`
	Weights    *WeightsPayload    `json:"weights,omitempty"`
	Thresholds map[string]float64 `json:"thresholds,omitempty"`
	Rent       *RentRangePayload  `json:"rent,omitempty"`
	Limit      int                `json:"limit,omitempty"`
}

// MatchItem is one explaining match in a ranked result.
type MatchItem struct {
	EntityID    string  `json:"entity_id"`
	QueryText   string  `json:"query_text"`
	MatchedText string  `json:"matched_text"`
	Similarity  float64 `json:"similarity"`
	Score       float64 `json:"score"`
	ClaimType   string  `json:"claim_type"`
	Kind        string  `json:"kind"`
}

// RankedItem is one apartment in the response ranking.
type RankedItem struct {
	ApartmentID    string             `json:"apartment_id"`
	FinalScore     float64            `json:"final_score"`
	CoverageCount  int                `json:"coverage_count"`
	CoverageRatio  float64            `json:"coverage_ratio"`
	WeightCoverage float64            `json:"weight_coverage"`
	DomainScores   map[string]float64 `json:"domain_scores,omitempty"`
	Matches        []MatchItem        `json:"matches,omitempty"`
}

// SearchResponse is the ranked search outcome.
type SearchResponse struct {
	Results  []RankedItem `json:"results"`
	Total    int          `json:"total"`
	Degraded []string     `json:"degraded,omitempty"`
}

// ExplainResponse scores one apartment against the request.
type ExplainResponse struct {
	Result   RankedItem `json:"result"`
	Degraded []string   `json:"degraded,omitempty"`
}

// RoomPayload is the wire form of one room within an apartment.
type RoomPayload struct {
	RoomType string         `json:"room_type"`
	Claims   []ClaimPayload `json:"claims,omitempty"`
}

// ApartmentPayload is the wire form of an apartment listing.
type ApartmentPayload struct {
	ID             string         `json:"id"`
	NeighborhoodID string         `json:"neighborhood_id"`
	Title          string         `json:"title,omitempty"`
	Address        string         `json:"address,omitempty"`
	Description    string         `json:"description,omitempty"`
	RentPrice      float64        `json:"rent_price,omitempty"`
	Claims         []ClaimPayload `json:"claims,omitempty"`
	Rooms          []RoomPayload  `json:"rooms,omitempty"`
}

// NeighborhoodPayload is the wire form of a neighborhood.
type NeighborhoodPayload struct {
	ID          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	City        string         `json:"city,omitempty"`
	Description string         `json:"description,omitempty"`
	Claims      []ClaimPayload `json:"claims,omitempty"`
}

// IndexResponse acknowledges an ingestion write.
type IndexResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// HealthResponse is the aggregated health payload.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func claimFromPayload(p *ClaimPayload) claim.Claim {
	quantifiers := make([]claim.Quantifier, 0, len(p.Quantifiers))
	for _, q := range p.Quantifiers {
		quantifiers = append(quantifiers, claim.Quantifier{
			QType: claim.QType(q.QType),
			Noun:  q.Noun,
			VMin:  q.VMin,
			VMax:  q.VMax,
			Op:    claim.Op(q.Op),
			Unit:  q.Unit,
		})
	}
	if len(quantifiers) == 0 {
		quantifiers = nil
	}
	return claim.Claim{
		Text:        p.Text,
		ClaimType:   claim.Type(p.ClaimType),
		Domain:      claim.Domain(p.Domain),
		RoomType:    p.RoomType,
		Kind:        claim.Kind(p.Kind),
		Weight:      p.Weight,
		Negation:    p.Negation,
		IsSpecific:  p.IsSpecific,
		ORGroup:     p.OrGroup,
		Quantifiers: quantifiers,
	}
}

func claimsFromPayload(ps []ClaimPayload) []claim.Claim {
	if len(ps) == 0 {
		return nil
	}
	claims := make([]claim.Claim, 0, len(ps))
	for i := range ps {
		claims = append(claims, claimFromPayload(&ps[i]))
	}
	return claims
}

func searchRequestFromPayload(p *SearchRequest, claims []claim.Claim) (request.Request, error) {
	var weights *weight.Domains
	if p.Weights != nil {
		weights = &weight.Domains{
			Room:         p.Weights.Room,
			Apartment:    p.Weights.Apartment,
			Neighborhood: p.Weights.Neighborhood,
		}
	}

	var thresholds threshold.Table
	if len(p.Thresholds) > 0 {
		thresholds = make(threshold.Table, len(p.Thresholds))
		for ty, v := range p.Thresholds {
			thresholds[claim.Type(ty)] = v
		}
	}

	var rent *request.RentRange
	if p.Rent != nil {
		rent = &request.RentRange{Min: p.Rent.Min, Max: p.Rent.Max}
	}

	req, err := request.New(claims, weights, thresholds, p.Limit, rent)
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return req, nil
}

func apartmentFromPayload(p *ApartmentPayload) listing.Apartment {
	rooms := make([]listing.Room, 0, len(p.Rooms))
	for i := range p.Rooms {
		rooms = append(rooms, listing.Room{
			RoomType: p.Rooms[i].RoomType,
			Claims:   claimsFromPayload(p.Rooms[i].Claims),
		})
	}
	if len(rooms) == 0 {
		rooms = nil
	}
	return listing.Apartment{
		ID:             p.ID,
		NeighborhoodID: p.NeighborhoodID,
		Title:          p.Title,
		Address:        p.Address,
		Description:    p.Description,
		RentPrice:      p.RentPrice,
		Claims:         claimsFromPayload(p.Claims),
		Rooms:          rooms,
	}
}

func neighborhoodFromPayload(p *NeighborhoodPayload) listing.Neighborhood {
	return listing.Neighborhood{
		ID:          p.ID,
		Name:        p.Name,
		City:        p.City,
		Description: p.Description,
		Claims:      claimsFromPayload(p.Claims),
	}
}

// apartmentToPayload renders stored metadata. Claim documents live in the
// search indexes and are not loaded back.
func apartmentToPayload(a *listing.Apartment) ApartmentPayload {
	return ApartmentPayload{
		ID:             a.ID,
		NeighborhoodID: a.NeighborhoodID,
		Title:          a.Title,
		Address:        a.Address,
		Description:    a.Description,
		RentPrice:      a.RentPrice,
	}
}

func neighborhoodToPayload(n *listing.Neighborhood) NeighborhoodPayload {
	return NeighborhoodPayload{
		ID:          n.ID,
		Name:        n.Name,
		City:        n.City,
		Description: n.Description,
	}
}

func rankedToItem(r *result.Ranked) RankedItem {
	item := RankedItem{
		ApartmentID:    r.ApartmentID(),
		FinalScore:     r.FinalScore(),
		CoverageCount:  r.CoverageCount(),
		CoverageRatio:  r.CoverageRatio(),
		WeightCoverage: r.WeightCoverage(),
	}

	if scores := r.DomainScores(); len(scores) > 0 {
		item.DomainScores = make(map[string]float64, len(scores))
		for dom, v := range scores {
			item.DomainScores[string(dom)] = v
		}
	}

	for _, m := range r.Matched() {
		item.Matches = append(item.Matches, matchToItem(&m))
	}
	return item
}

func matchToItem(m *match.Match) MatchItem {
	return MatchItem{
		EntityID:    m.EntityID,
		QueryText:   m.Query.Text,
		MatchedText: m.MatchedText,
		Similarity:  m.Similarity,
		Score:       m.EffectiveScore(),
		ClaimType:   string(m.ClaimType),
		Kind:        string(m.Kind),
	}
}

func degradedToStrings(degraded []claim.Domain) []string {
	if len(degraded) == 0 {
		return nil
	}
	out := make([]string, len(degraded))
	for i, dom := range degraded {
		out[i] = string(dom)
	}
	return out
}
