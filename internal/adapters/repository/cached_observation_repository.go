package repository

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/domain"
)

const (
	listCacheKey = "observations:all"
	listCacheTTL = 30 * time.Minute
)

var _ domain.ObservationRepository = (*CachedObservationRepository)(nil)

// CachedObservationRepository keeps the full collection in redis in
// front of the blob store. Every mutation invalidates the cached list;
// the cache is never the write path.
type CachedObservationRepository struct {
	next  domain.ObservationRepository
	cache *redis.Client
}

func NewCachedObservationRepository(next domain.ObservationRepository, cache *redis.Client) *CachedObservationRepository {
	return &CachedObservationRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedObservationRepository) invalidate(ctx context.Context) {
	if err := r.cache.Del(ctx, listCacheKey).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate observation list: %v", err)
	}
}

func (r *CachedObservationRepository) ListAll(ctx context.Context) ([]domain.Observation, error) {
	val, err := r.cache.Get(ctx, listCacheKey).Result()
	if err == nil {
		var observations []domain.Observation
		if err := json.Unmarshal([]byte(val), &observations); err == nil {
			return observations, nil
		}

		log.Printf("[CACHE] Corrupted observation list, cleaning up key")
		r.cache.Del(ctx, listCacheKey)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	observations, err := r.next.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(observations); err == nil {
		if setErr := r.cache.Set(ctx, listCacheKey, data, listCacheTTL).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return observations, nil
}

func (r *CachedObservationRepository) GetByID(ctx context.Context, id string) (*domain.Observation, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedObservationRepository) Create(ctx context.Context, input domain.CreateObservationInput) (*domain.Observation, error) {
	obs, err := r.next.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return obs, nil
}

func (r *CachedObservationRepository) Update(ctx context.Context, id string, patch domain.UpdateObservationInput) (*domain.Observation, error) {
	obs, err := r.next.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return obs, nil
}

func (r *CachedObservationRepository) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := r.next.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		r.invalidate(ctx)
	}
	return removed, nil
}
