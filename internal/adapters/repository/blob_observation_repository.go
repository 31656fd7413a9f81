package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/wefixte/Foreach-Wildwatch/internal/adapters/store"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/domain"
)

// ObservationsKey is the fixed store key the whole collection lives under.
const ObservationsKey = "wildwatch:observations"

var _ domain.ObservationRepository = (*BlobObservationRepository)(nil)

// BlobObservationRepository persists the collection as one JSON array
// under a single key. Every mutation reads the full collection, mutates
// it in memory and writes the full collection back; there are no delta
// writes.
type BlobObservationRepository struct {
	store store.KeyValueStore
	ids   domain.IDGenerator
	key   string
}

func NewBlobObservationRepository(kv store.KeyValueStore, ids domain.IDGenerator) *BlobObservationRepository {
	return &BlobObservationRepository{
		store: kv,
		ids:   ids,
		key:   ObservationsKey,
	}
}

// load is the mutation-side read: every failure propagates, so a
// transient store error can never make a mutation clobber the blob.
func (r *BlobObservationRepository) load(ctx context.Context) ([]domain.Observation, error) {
	raw, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read observations: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var observations []domain.Observation
	if err := json.Unmarshal([]byte(raw), &observations); err != nil {
		return nil, fmt.Errorf("observation blob is corrupt: %w", err)
	}
	return observations, nil
}

func (r *BlobObservationRepository) save(ctx context.Context, observations []domain.Observation) error {
	data, err := json.Marshal(observations)
	if err != nil {
		return fmt.Errorf("failed to encode observations: %w", err)
	}
	if err := r.store.Set(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("failed to write observations: %w", err)
	}
	return nil
}

// ListAll degrades to an empty collection when the blob is missing or
// corrupt so the map can still render; only a store read failure is
// surfaced.
func (r *BlobObservationRepository) ListAll(ctx context.Context) ([]domain.Observation, error) {
	raw, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read observations: %w", err)
	}
	if !ok {
		return []domain.Observation{}, nil
	}

	var observations []domain.Observation
	if err := json.Unmarshal([]byte(raw), &observations); err != nil {
		log.Printf("[STORE] Corrupt observation blob, serving empty collection: %v", err)
		return []domain.Observation{}, nil
	}
	if observations == nil {
		observations = []domain.Observation{}
	}
	return observations, nil
}

func (r *BlobObservationRepository) GetByID(ctx context.Context, id string) (*domain.Observation, error) {
	observations, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range observations {
		if observations[i].ID == id {
			obs := observations[i]
			return &obs, nil
		}
	}
	return nil, domain.ErrObservationNotFound
}

func (r *BlobObservationRepository) Create(ctx context.Context, input domain.CreateObservationInput) (*domain.Observation, error) {
	observations, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	id := r.ids.NewID()
	for containsID(observations, id) {
		id = r.ids.NewID()
	}

	obs, err := domain.NewObservation(id, input)
	if err != nil {
		return nil, err
	}

	observations = append(observations, *obs)
	if err := r.save(ctx, observations); err != nil {
		return nil, err
	}

	return obs, nil
}

func (r *BlobObservationRepository) Update(ctx context.Context, id string, patch domain.UpdateObservationInput) (*domain.Observation, error) {
	observations, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	index := -1
	for i := range observations {
		if observations[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, domain.ErrObservationNotFound
	}

	updated := observations[index]
	if err := updated.Apply(patch); err != nil {
		return nil, err
	}

	observations[index] = updated
	if err := r.save(ctx, observations); err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *BlobObservationRepository) Delete(ctx context.Context, id string) (bool, error) {
	observations, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	filtered := observations[:0:0]
	for _, obs := range observations {
		if obs.ID != id {
			filtered = append(filtered, obs)
		}
	}

	if len(filtered) == len(observations) {
		return false, nil
	}

	if err := r.save(ctx, filtered); err != nil {
		return false, err
	}
	return true, nil
}

func containsID(observations []domain.Observation, id string) bool {
	for i := range observations {
		if observations[i].ID == id {
			return true
		}
	}
	return false
}
