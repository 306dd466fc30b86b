package repository

import (
	"ads-board/internal/domain"
	"ads-board/internal/infrastructure/cache"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrStorageCorrupt means the store exists but could not be decoded.
// Load still returns an empty, non-nil slice alongside it.
var ErrStorageCorrupt = errors.New("ad storage is corrupt")

// AdRepository persists the board as one ordered sequence.
// Save replaces the whole sequence; there is no per-record update or delete.
// Concurrent writers from separate processes race and the last Save wins.
type AdRepository interface {
	Load(ctx context.Context) ([]domain.Ad, error)
	// LoadFresh reads the backing store, skipping any cache.
	// Read-modify-write callers must use it before Save.
	LoadFresh(ctx context.Context) ([]domain.Ad, error)
	Save(ctx context.Context, ads []domain.Ad) error
}

const allAdsCacheKey = "ads:all"

type cachedAdRepository struct {
	next   AdRepository
	cache  cache.Cache
	ttl    time.Duration
	tracer trace.Tracer

	// generation is bumped by every Save; a Load only fills the cache
	// if no Save happened while it was reading the backend.
	mu         sync.Mutex
	generation uint64
}

// NewCachedAdRepository fronts next with a read-through cache of the full sequence.
func NewCachedAdRepository(next AdRepository, cache cache.Cache, ttl time.Duration) AdRepository {
	return &cachedAdRepository{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		tracer: otel.Tracer("ads-board/repository"),
	}
}

func (r *cachedAdRepository) Load(ctx context.Context) ([]domain.Ad, error) {
	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Redis Get")
	cached, err := r.cache.Get(cacheSpanCtx, allAdsCacheKey)
	cacheSpan.SetAttributes(attribute.Bool("cache.hit", err == nil))
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		cacheSpan.RecordError(err)
	}
	cacheSpan.End()

	if err == nil {
		var ads []domain.Ad
		if err := json.Unmarshal([]byte(cached), &ads); err == nil && ads != nil {
			return ads, nil
		}
	}

	r.mu.Lock()
	generation := r.generation
	r.mu.Unlock()

	ads, err := r.next.Load(ctx)
	if err != nil {
		return ads, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if generation == r.generation {
		r.store(ctx, ads)
	}

	return ads, nil
}

func (r *cachedAdRepository) LoadFresh(ctx context.Context) ([]domain.Ad, error) {
	return r.next.LoadFresh(ctx)
}

// Save writes through: the cache holds the saved sequence afterwards,
// or nothing if it could not be updated.
func (r *cachedAdRepository) Save(ctx context.Context, ads []domain.Ad) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.next.Save(ctx, ads); err != nil {
		return err
	}

	r.generation++

	if !r.store(ctx, ads) {
		cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Redis Delete")
		if err := r.cache.Delete(cacheSpanCtx, allAdsCacheKey); err != nil {
			cacheSpan.RecordError(err)
		}
		cacheSpan.End()
	}

	return nil
}

func (r *cachedAdRepository) store(ctx context.Context, ads []domain.Ad) bool {
	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Redis Set")
	defer cacheSpan.End()

	adsJSON, err := json.Marshal(ads)
	if err != nil {
		cacheSpan.RecordError(err)
		return false
	}

	if err := r.cache.Set(cacheSpanCtx, allAdsCacheKey, string(adsJSON), r.ttl); err != nil {
		cacheSpan.RecordError(err)
		return false
	}

	return true
}
