// Package chi implements the HTTP API: search and explain on the query
// side, listing ingestion on the write side, plus health and metrics.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/aptdex/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the use case services over HTTP.
type Server struct {
	search        Searcher
	ingest        Ingester
	listings      ListingReader
	extractor     Extractor
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. extractor can be nil; free-text
// search then rejects with a validation error.
func NewServer(
	search Searcher,
	ingest Ingester,
	listings ListingReader,
	extractor Extractor,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		ingest:    ingest,
		listings:  listings,
		extractor: extractor,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrInvalidClaim, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidWeights, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, ErrorCodeVectorDimMismatch),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingProvider),
		sentinelHandler(domain.ErrExtractionProviderError, http.StatusBadGateway, ErrorCodeExtractionProvider),
		sentinelHandler(domain.ErrBackendUnavailable, http.StatusServiceUnavailable, ErrorCodeBackendUnavailable),
	}
	return s
}

// Routes mounts every handler on a fresh chi router.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.Search)

		r.Route("/apartments", func(r chi.Router) {
			r.Get("/", s.ListApartments)
			r.Post("/", s.UpsertApartment)
			r.Get("/{id}", s.GetApartment)
			r.Delete("/{id}", s.DeleteApartment)
			r.Post("/{id}/explain", s.Explain)
		})

		r.Route("/neighborhoods", func(r chi.Router) {
			r.Post("/", s.UpsertNeighborhood)
			r.Get("/{id}", s.GetNeighborhood)
		})
	})

	return r
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearchRequest(w, r)
	if !ok {
		return
	}

	resp, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results := resp.Results()
	items := make([]RankedItem, len(results))
	for i := range results {
		items[i] = rankedToItem(&results[i])
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Results:  items,
		Total:    len(items),
		Degraded: degradedToStrings(resp.Degraded()),
	})
}

// Explain handles POST /v1/apartments/{id}/explain.
func (s *Server) Explain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, ok := s.decodeSearchRequest(w, r)
	if !ok {
		return
	}

	ranked, degraded, err := s.search.Explain(r.Context(), id, req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ExplainResponse{
		Result:   rankedToItem(&ranked),
		Degraded: degradedToStrings(degraded),
	})
}

// decodeSearchRequest parses and validates the shared search/explain body,
// extracting claims from the free-text query when none are given.
func (s *Server) decodeSearchRequest(w http.ResponseWriter, r *http.Request) (*request.Request, bool) {
	var payload SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}

	claims := claimsFromPayload(payload.Claims)
	if len(claims) == 0 {
		if payload.Query == "" {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "either claims or query is required")
			return nil, false
		}
		if s.extractor == nil {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "free-text query requires claim extraction")
			return nil, false
		}
		extracted, err := s.extractor.Extract(r.Context(), payload.Query)
		if err != nil {
			s.handleDomainError(w, err)
			return nil, false
		}
		claims = extracted
	}

	req, err := searchRequestFromPayload(&payload, claims)
	if err != nil {
		s.handleDomainError(w, err)
		return nil, false
	}
	return &req, true
}

// UpsertApartment handles POST /v1/apartments.
func (s *Server) UpsertApartment(w http.ResponseWriter, r *http.Request) {
	var payload ApartmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	apt := apartmentFromPayload(&payload)
	if err := s.ingest.IndexApartment(r.Context(), &apt); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, IndexResponse{ID: apt.ID, Status: "indexed"})
}

// GetApartment handles GET /v1/apartments/{id}.
func (s *Server) GetApartment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	apt, err := s.listings.GetApartment(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apartmentToPayload(&apt))
}

// ListApartments handles GET /v1/apartments.
func (s *Server) ListApartments(w http.ResponseWriter, r *http.Request) {
	apts, err := s.listings.ListApartments(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]ApartmentPayload, len(apts))
	for i := range apts {
		items[i] = apartmentToPayload(&apts[i])
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}

// DeleteApartment handles DELETE /v1/apartments/{id}.
func (s *Server) DeleteApartment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.ingest.DeleteApartment(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpsertNeighborhood handles POST /v1/neighborhoods.
func (s *Server) UpsertNeighborhood(w http.ResponseWriter, r *http.Request) {
	var payload NeighborhoodPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	nbh := neighborhoodFromPayload(&payload)
	if err := s.ingest.IndexNeighborhood(r.Context(), &nbh); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, IndexResponse{ID: nbh.ID, Status: "indexed"})
}

// GetNeighborhood handles GET /v1/neighborhoods/{id}.
func (s *Server) GetNeighborhood(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	nbh, err := s.listings.GetNeighborhood(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, neighborhoodToPayload(&nbh))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidClaim,
		domain.ErrInvalidWeights,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProviderError,
		domain.ErrExtractionProviderError,
		domain.ErrBackendUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
