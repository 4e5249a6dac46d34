package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/listing"
	"github.com/kailas-cloud/aptdex/internal/domain/search/request"
	"github.com/kailas-cloud/aptdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/aptdex/internal/usecase/health"
)

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return errResp
}

func TestSearch_WithClaims(t *testing.T) {
	srv, m := newTestServer(t)

	m.search.searchFn = func(_ context.Context, req *request.Request) (result.Response, error) {
		if len(req.Claims()) != 1 {
			t.Errorf("expected 1 claim, got %d", len(req.Claims()))
		}
		return result.NewResponse(
			[]result.Ranked{rankedFixture("apt_1", 0.85), rankedFixture("apt_2", 0.7)},
			nil,
		), nil
	}

	rr := doJSON(t, srv, "POST", "/v1/search", SearchRequest{
		Claims: []ClaimPayload{
			{Text: "balcony", ClaimType: "features", Domain: "apartment", Weight: 0.8},
		},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Results) != 2 {
		t.Fatalf("unexpected totals: %+v", resp)
	}
	if resp.Results[0].ApartmentID != "apt_1" {
		t.Errorf("unexpected first result: %s", resp.Results[0].ApartmentID)
	}
	if m.extractor.calls != 0 {
		t.Errorf("extractor must not run when claims are given")
	}
}

func TestSearch_FreeTextExtractsClaims(t *testing.T) {
	srv, m := newTestServer(t)

	m.extractor.extractFn = func(_ context.Context, query string) ([]claim.Claim, error) {
		if query != "sunny place with a balcony" {
			t.Errorf("unexpected query: %s", query)
		}
		return []claim.Claim{
			{Text: "balcony", ClaimType: claim.TypeFeatures, Domain: claim.DomainApartment, Kind: claim.KindBase, Weight: 0.8},
		}, nil
	}
	m.search.searchFn = func(_ context.Context, req *request.Request) (result.Response, error) {
		if req.Claims()[0].Text != "balcony" {
			t.Errorf("extracted claim not forwarded: %+v", req.Claims())
		}
		return result.NewResponse(nil, nil), nil
	}

	rr := doJSON(t, srv, "POST", "/v1/search", SearchRequest{Query: "sunny place with a balcony"})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	if m.extractor.calls != 1 {
		t.Errorf("expected 1 extractor call, got %d", m.extractor.calls)
	}
}

func TestSearch_NoClaimsNoQuery_400(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, "POST", "/v1/search", SearchRequest{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if errResp := decodeError(t, rr); errResp.Code != ErrorCodeValidationFailed {
		t.Errorf("unexpected error code: %s", errResp.Code)
	}
}

func TestSearch_InvalidBody_400(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/v1/search", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if errResp := decodeError(t, rr); errResp.Code != ErrorCodeBadRequest {
		t.Errorf("unexpected error code: %s", errResp.Code)
	}
}

func TestSearch_InvalidClaim_400(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, "POST", "/v1/search", SearchRequest{
		Claims: []ClaimPayload{{Text: "x", ClaimType: "vibes", Domain: "apartment"}},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if errResp := decodeError(t, rr); errResp.Code != ErrorCodeValidationFailed {
		t.Errorf("unexpected error code: %s", errResp.Code)
	}
}

func TestSearch_BackendUnavailable_503(t *testing.T) {
	srv, m := newTestServer(t)

	m.search.searchFn = func(_ context.Context, _ *request.Request) (result.Response, error) {
		return result.Response{}, domain.ErrBackendUnavailable
	}

	rr := doJSON(t, srv, "POST", "/v1/search", SearchRequest{
		Claims: []ClaimPayload{{Text: "balcony", ClaimType: "features", Domain: "apartment"}},
	})
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if errResp := decodeError(t, rr); errResp.Code != ErrorCodeBackendUnavailable {
		t.Errorf("unexpected error code: %s", errResp.Code)
	}
}

func TestSearch_ExtractionError_502(t *testing.T) {
	srv, m := newTestServer(t)

	m.extractor.extractFn = func(_ context.Context, _ string) ([]claim.Claim, error) {
		return nil, domain.ErrExtractionProviderError
	}

	rr := doJSON(t, srv, "POST", "/v1/search", SearchRequest{Query: "anything"})
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusBadGateway)
	}
	if errResp := decodeError(t, rr); errResp.Code != ErrorCodeExtractionProvider {
		t.Errorf("unexpected error code: %s", errResp.Code)
	}
}

func TestSearch_DegradedDomainsReported(t *testing.T) {
	srv, m := newTestServer(t)

	m.search.searchFn = func(_ context.Context, _ *request.Request) (result.Response, error) {
		return result.NewResponse(
			[]result.Ranked{rankedFixture("apt_1", 0.8)},
			[]claim.Domain{claim.DomainNeighborhood},
		), nil
	}

	rr := doJSON(t, srv, "POST", "/v1/search", SearchRequest{
		Claims: []ClaimPayload{{Text: "balcony", ClaimType: "features", Domain: "apartment"}},
	})
	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Degraded) != 1 || resp.Degraded[0] != "neighborhood" {
		t.Errorf("unexpected degraded list: %v", resp.Degraded)
	}
}

func TestExplain_HappyPath(t *testing.T) {
	srv, m := newTestServer(t)

	m.search.explainFn = func(_ context.Context, id string, _ *request.Request) (result.Ranked, []claim.Domain, error) {
		if id != "apt_1" {
			t.Errorf("unexpected id: %s", id)
		}
		return rankedFixture("apt_1", 0.9), nil, nil
	}

	rr := doJSON(t, srv, "POST", "/v1/apartments/apt_1/explain", SearchRequest{
		Claims: []ClaimPayload{{Text: "balcony", ClaimType: "features", Domain: "apartment"}},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	var resp ExplainResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Result.ApartmentID != "apt_1" || resp.Result.CoverageCount != 2 {
		t.Errorf("unexpected result: %+v", resp.Result)
	}
}

func TestExplain_UnknownApartment_404(t *testing.T) {
	srv, m := newTestServer(t)

	m.search.explainFn = func(_ context.Context, _ string, _ *request.Request) (result.Ranked, []claim.Domain, error) {
		return result.Ranked{}, nil, domain.ErrNotFound
	}

	rr := doJSON(t, srv, "POST", "/v1/apartments/missing/explain", SearchRequest{
		Claims: []ClaimPayload{{Text: "balcony", ClaimType: "features", Domain: "apartment"}},
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestUpsertApartment_HappyPath(t *testing.T) {
	srv, m := newTestServer(t)

	var indexed *listing.Apartment
	m.ingest.indexApartmentFn = func(_ context.Context, apt *listing.Apartment) error {
		indexed = apt
		return nil
	}

	rr := doJSON(t, srv, "POST", "/v1/apartments", ApartmentPayload{
		ID:             "apt_1",
		NeighborhoodID: "nbh_1",
		RentPrice:      2400,
		Claims: []ClaimPayload{
			{Text: "south-facing windows", ClaimType: "features", Domain: "apartment", Weight: 0.8},
		},
		Rooms: []RoomPayload{
			{RoomType: "kitchen", Claims: []ClaimPayload{
				{Text: "renovated kitchen", ClaimType: "condition", Domain: "room", RoomType: "kitchen", Weight: 0.7},
			}},
		},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	if indexed == nil || indexed.ID != "apt_1" || len(indexed.Rooms) != 1 {
		t.Fatalf("unexpected indexed apartment: %+v", indexed)
	}
	var resp IndexResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "apt_1" || resp.Status != "indexed" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestUpsertApartment_Invalid_400(t *testing.T) {
	srv, m := newTestServer(t)

	m.ingest.indexApartmentFn = func(_ context.Context, apt *listing.Apartment) error {
		return apt.Validate()
	}

	rr := doJSON(t, srv, "POST", "/v1/apartments", ApartmentPayload{ID: "apt_1"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestGetApartment(t *testing.T) {
	srv, m := newTestServer(t)

	m.listings.getApartmentFn = func(_ context.Context, id string) (listing.Apartment, error) {
		return listing.Apartment{ID: id, NeighborhoodID: "nbh_1", Title: "Sunny 2BR", RentPrice: 2400}, nil
	}

	rr := doJSON(t, srv, "GET", "/v1/apartments/apt_1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	var resp ApartmentPayload
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "apt_1" || resp.NeighborhoodID != "nbh_1" || resp.RentPrice != 2400 {
		t.Errorf("unexpected payload: %+v", resp)
	}
}

func TestGetApartment_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, "GET", "/v1/apartments/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusNotFound)
	}
	if errResp := decodeError(t, rr); errResp.Code != ErrorCodeNotFound {
		t.Errorf("unexpected error code: %s", errResp.Code)
	}
}

func TestListApartments(t *testing.T) {
	srv, m := newTestServer(t)

	m.listings.listApartmentsFn = func(_ context.Context) ([]listing.Apartment, error) {
		return []listing.Apartment{
			{ID: "apt_1", NeighborhoodID: "nbh_1"},
			{ID: "apt_2", NeighborhoodID: "nbh_2"},
		}, nil
	}

	rr := doJSON(t, srv, "GET", "/v1/apartments", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Items []ApartmentPayload `json:"items"`
		Total int                `json:"total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Items) != 2 {
		t.Errorf("unexpected list: %+v", resp)
	}
}

func TestDeleteApartment(t *testing.T) {
	srv, m := newTestServer(t)

	var deleted string
	m.ingest.deleteApartmentFn = func(_ context.Context, id string) error {
		deleted = id
		return nil
	}

	rr := doJSON(t, srv, "DELETE", "/v1/apartments/apt_1", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusNoContent)
	}
	if deleted != "apt_1" {
		t.Errorf("unexpected deleted id: %s", deleted)
	}
}

func TestDeleteApartment_NotFound(t *testing.T) {
	srv, m := newTestServer(t)

	m.ingest.deleteApartmentFn = func(_ context.Context, _ string) error {
		return domain.ErrNotFound
	}

	rr := doJSON(t, srv, "DELETE", "/v1/apartments/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestUpsertNeighborhood(t *testing.T) {
	srv, m := newTestServer(t)

	var indexed *listing.Neighborhood
	m.ingest.indexNeighborhoodFn = func(_ context.Context, n *listing.Neighborhood) error {
		indexed = n
		return nil
	}

	rr := doJSON(t, srv, "POST", "/v1/neighborhoods", NeighborhoodPayload{
		ID:   "nbh_1",
		Name: "Greenpoint",
		City: "Brooklyn",
		Claims: []ClaimPayload{
			{Text: "quiet streets", ClaimType: "neighborhood", Domain: "neighborhood", Weight: 0.8},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	if indexed == nil || indexed.ID != "nbh_1" || len(indexed.Claims) != 1 {
		t.Fatalf("unexpected indexed neighborhood: %+v", indexed)
	}
}

func TestGetNeighborhood_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, "GET", "/v1/neighborhoods/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestHealthCheck_OK(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doJSON(t, srv, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Checks["database"] != "ok" {
		t.Errorf("unexpected health payload: %+v", resp)
	}
}

func TestHealthCheck_Degraded_503(t *testing.T) {
	srv, m := newTestServer(t)

	m.health.report = healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckError},
	}

	rr := doJSON(t, srv, "GET", "/health", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}
