// Package claimindex persists per-domain claim documents as hashes and runs
// the filtered KNN retrieval the search engine dispatches per query claim.
package claimindex

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/aptdex/internal/db"
	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/search/match"
)

// store is the consumer interface for claim documents (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig holds the HNSW build parameters for the claim indexes.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements the claim index storage and retrieval.
// One FT index per hierarchy domain.
type Repo struct {
	store store
	dim   int
	hnsw  HNSWConfig
}

// New creates a claim index repository.
func New(s store, dim int, hnsw HNSWConfig) *Repo {
	return &Repo{store: s, dim: dim, hnsw: hnsw}
}

// EnsureIndexes creates the three per-domain FT indexes if missing.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	for _, dom := range claim.Domains() {
		name := indexName(dom)

		exists, err := r.store.IndexExists(ctx, name)
		if err != nil {
			return fmt.Errorf("check index %s: %w", name, err)
		}
		if exists {
			continue
		}

		def, err := r.buildIndex(dom)
		if err != nil {
			return fmt.Errorf("build index %s: %w", name, err)
		}
		if err := r.store.CreateIndex(ctx, def); err != nil {
			return fmt.Errorf("create index %s: %w", name, err)
		}
	}
	return nil
}

// IndexClaims writes one hash document per claim under the entity's key
// namespace. Claims must already carry embeddings.
func (r *Repo) IndexClaims(ctx context.Context, entityID, parentID string, claims []claim.Claim) error {
	if len(claims) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(claims))
	for i := range claims {
		c := &claims[i]
		if len(c.Embedding) == 0 {
			return fmt.Errorf("claim %q: %w: missing embedding", c.Text, domain.ErrInvalidClaim)
		}
		if len(c.Embedding) != r.dim {
			return fmt.Errorf("claim %q: %w: got %d, want %d",
				c.Text, domain.ErrVectorDimMismatch, len(c.Embedding), r.dim)
		}
		items = append(items, db.HashSetItem{
			Key:    claimKey(c.Domain, entityID, uuid.NewString()),
			Fields: buildHashFields(entityID, parentID, c),
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("index claims for %s: %w", entityID, err)
	}
	return nil
}

// DeleteClaims removes every claim document of an entity in one domain.
func (r *Repo) DeleteClaims(ctx context.Context, dom claim.Domain, entityID string) error {
	pattern := entityPrefix(dom, entityID) + "*"

	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return fmt.Errorf("scan claims %s: %w", entityID, err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := r.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("delete claims %s: %w", entityID, err)
	}
	return nil
}

// DeleteRoomClaims removes the claim documents of every room belonging to an
// apartment. Room entity ids embed the apartment id, so one scan covers all
// room types, stored or since removed.
func (r *Repo) DeleteRoomClaims(ctx context.Context, apartmentID string) error {
	pattern := domainPrefix(claim.DomainRoom) + apartmentID + "/*"

	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return fmt.Errorf("scan room claims %s: %w", apartmentID, err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := r.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("delete room claims %s: %w", apartmentID, err)
	}
	return nil
}

// Search runs one query claim against its domain index and returns the raw
// matches, similarity unthresholded.
func (r *Repo) Search(ctx context.Context, c *claim.Claim, k int) ([]match.Match, error) {
	if len(c.Embedding) != r.dim {
		return nil, fmt.Errorf("query claim %q: %w: got %d, want %d",
			c.Text, domain.ErrVectorDimMismatch, len(c.Embedding), r.dim)
	}

	filters, err := buildFilters(c)
	if err != nil {
		return nil, fmt.Errorf("build filters: %w", err)
	}

	q := &db.KNNQuery{
		IndexName:    indexName(c.Domain),
		Filters:      filters,
		Vector:       c.Embedding,
		K:            k,
		ReturnFields: []string{"entity_id", "parent_id", "text", "claim_type", "kind"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search %s claims: %w", c.Domain, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	matches := make([]match.Match, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		matches = append(matches, parseMatch(entry, c))
	}
	return matches, nil
}

func (r *Repo) buildIndex(dom claim.Domain) (*db.IndexDefinition, error) {
	b := db.NewIndex(indexName(dom)).
		Prefix(domainPrefix(dom)).
		Tag("claim_type").
		Tag("kind").
		Tag("negation").
		Tag("qtype").
		Tag("qnoun").
		Numeric("qmin").
		Numeric("qmax")

	if dom == claim.DomainRoom {
		b = b.Tag("room_type")
	}

	return b.VectorHNSW("vector", r.dim, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct).Build()
}

func domainPrefix(dom claim.Domain) string {
	return fmt.Sprintf("%sclaim:%s:", domain.KeyPrefix, dom)
}

func entityPrefix(dom claim.Domain, entityID string) string {
	return fmt.Sprintf("%s%s:", domainPrefix(dom), entityID)
}

func claimKey(dom claim.Domain, entityID, claimID string) string {
	return entityPrefix(dom, entityID) + claimID
}

func indexName(dom claim.Domain) string {
	return fmt.Sprintf("%sclaim:%s:idx", domain.KeyPrefix, dom)
}
