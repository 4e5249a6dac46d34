// Package listing persists apartment and neighborhood metadata as hash
// documents. Claim documents live in the claim indexes; this store carries
// the containment edges and the structured fields (rent) the engine filters
// on outside vector space.
package listing

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/aptdex/internal/domain"
	domlisting "github.com/kailas-cloud/aptdex/internal/domain/listing"
)

// store is the consumer interface for listing metadata (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements listing metadata storage.
type Repo struct {
	store store
}

// New creates a listing repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SaveApartment writes the apartment metadata hash.
func (r *Repo) SaveApartment(ctx context.Context, a *domlisting.Apartment) error {
	if err := r.store.HSet(ctx, apartmentKey(a.ID), buildApartmentFields(a)); err != nil {
		return fmt.Errorf("save apartment %s: %w", a.ID, err)
	}
	return nil
}

// GetApartment returns apartment metadata by id. Claims are not loaded.
func (r *Repo) GetApartment(ctx context.Context, id string) (domlisting.Apartment, error) {
	fields, err := r.store.HGetAll(ctx, apartmentKey(id))
	if err != nil {
		return domlisting.Apartment{}, fmt.Errorf("get apartment %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domlisting.Apartment{}, domain.ErrNotFound
	}
	return parseApartmentFields(id, fields), nil
}

// ListApartments returns the metadata of every stored apartment.
func (r *Repo) ListApartments(ctx context.Context) ([]domlisting.Apartment, error) {
	keys, err := r.store.Scan(ctx, apartmentKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan apartments: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load apartments: %w", err)
	}

	apts := make([]domlisting.Apartment, 0, len(keys))
	for i, fields := range maps {
		if len(fields) == 0 {
			continue
		}
		apts = append(apts, parseApartmentFields(apartmentID(keys[i]), fields))
	}
	return apts, nil
}

// DeleteApartment removes the apartment metadata hash.
func (r *Repo) DeleteApartment(ctx context.Context, id string) error {
	key := apartmentKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check apartment %s: %w", id, err)
	}
	if !exists {
		return domain.ErrNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("delete apartment %s: %w", id, err)
	}
	return nil
}

// SaveNeighborhood writes the neighborhood metadata hash.
func (r *Repo) SaveNeighborhood(ctx context.Context, n *domlisting.Neighborhood) error {
	if err := r.store.HSet(ctx, neighborhoodKey(n.ID), buildNeighborhoodFields(n)); err != nil {
		return fmt.Errorf("save neighborhood %s: %w", n.ID, err)
	}
	return nil
}

// GetNeighborhood returns neighborhood metadata by id.
func (r *Repo) GetNeighborhood(ctx context.Context, id string) (domlisting.Neighborhood, error) {
	fields, err := r.store.HGetAll(ctx, neighborhoodKey(id))
	if err != nil {
		return domlisting.Neighborhood{}, fmt.Errorf("get neighborhood %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domlisting.Neighborhood{}, domain.ErrNotFound
	}
	return parseNeighborhoodFields(id, fields), nil
}

// NeighborhoodOf resolves the containing neighborhood for each apartment id
// in one pipelined round trip. Unknown apartments are absent from the map.
func (r *Repo) NeighborhoodOf(ctx context.Context, apartmentIDs []string) (map[string]string, error) {
	if len(apartmentIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(apartmentIDs))
	for i, id := range apartmentIDs {
		keys[i] = apartmentKey(id)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("resolve neighborhoods: %w", err)
	}

	out := make(map[string]string, len(apartmentIDs))
	for i, fields := range maps {
		if nbh := fields["neighborhood_id"]; nbh != "" {
			out[apartmentIDs[i]] = nbh
		}
	}
	return out, nil
}

// Rents returns the rent price of each apartment id in one pipelined round
// trip. Unknown apartments are absent from the map.
func (r *Repo) Rents(ctx context.Context, apartmentIDs []string) (map[string]float64, error) {
	if len(apartmentIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(apartmentIDs))
	for i, id := range apartmentIDs {
		keys[i] = apartmentKey(id)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load rents: %w", err)
	}

	out := make(map[string]float64, len(apartmentIDs))
	for i, fields := range maps {
		if len(fields) == 0 {
			continue
		}
		out[apartmentIDs[i]] = parseRent(fields)
	}
	return out, nil
}
