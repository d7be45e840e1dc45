package redis

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vietddude/sparki/internal/core/domain"
	"github.com/vietddude/sparki/internal/infra/storage"
	"github.com/vietddude/sparki/internal/metrics"
)

// Directory is the cache contract used by CachedWholesalerRepo.
type Directory interface {
	Load(ctx context.Context) ([]domain.Wholesaler, bool, error)
	Store(ctx context.Context, ws []domain.Wholesaler) error
	Invalidate(ctx context.Context) error
}

// fillTimeout bounds a shared cache fill, which outlives the caller that
// started it.
const fillTimeout = 10 * time.Second

// CachedWholesalerRepo serves All from the directory cache and invalidates
// it on every write. Cache failures are logged and the database is used.
type CachedWholesalerRepo struct {
	repo  storage.WholesalerRepository
	cache Directory
	group singleflight.Group

	// mu orders fills against invalidations. A fill only stores its snapshot
	// when no write invalidated the directory since the scan started.
	mu         sync.Mutex
	generation uint64
}

// NewCachedWholesalerRepo wraps repo with cache.
func NewCachedWholesalerRepo(repo storage.WholesalerRepository, cache Directory) *CachedWholesalerRepo {
	return &CachedWholesalerRepo{repo: repo, cache: cache}
}

func (r *CachedWholesalerRepo) All(ctx context.Context) ([]domain.Wholesaler, error) {
	ws, found, err := r.cache.Load(ctx)
	switch {
	case err != nil:
		metrics.DirectoryCacheRequests.WithLabelValues("error").Inc()
		slog.Warn("Wholesaler cache read failed", "error", err)
	case found:
		metrics.DirectoryCacheRequests.WithLabelValues("hit").Inc()
		return ws, nil
	default:
		metrics.DirectoryCacheRequests.WithLabelValues("miss").Inc()
	}

	// Concurrent misses share one table scan.
	v, err, _ := r.group.Do("all", func() (any, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillTimeout)
		defer cancel()
		return r.fill(fillCtx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Wholesaler), nil
}

func (r *CachedWholesalerRepo) fill(ctx context.Context) ([]domain.Wholesaler, error) {
	r.mu.Lock()
	gen := r.generation
	r.mu.Unlock()

	ws, err := r.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		slog.Debug("Skipping stale wholesaler cache fill")
		return ws, nil
	}
	if err := r.cache.Store(ctx, ws); err != nil {
		slog.Warn("Wholesaler cache write failed", "error", err)
	}
	return ws, nil
}

func (r *CachedWholesalerRepo) Exists(ctx context.Context, w *domain.Wholesaler) (bool, error) {
	return r.repo.Exists(ctx, w)
}

func (r *CachedWholesalerRepo) Create(ctx context.Context, w *domain.Wholesaler) (int64, error) {
	id, err := r.repo.Create(ctx, w)
	if err != nil {
		return 0, err
	}
	r.invalidate(ctx)
	return id, nil
}

func (r *CachedWholesalerRepo) Update(ctx context.Context, id int64, u domain.WholesalerUpdate) (bool, error) {
	ok, err := r.repo.Update(ctx, id, u)
	if err != nil {
		return false, err
	}
	if ok {
		r.invalidate(ctx)
	}
	return ok, nil
}

func (r *CachedWholesalerRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := r.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		r.invalidate(ctx)
	}
	return ok, nil
}

func (r *CachedWholesalerRepo) invalidate(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	if err := r.cache.Invalidate(ctx); err != nil {
		slog.Warn("Wholesaler cache invalidation failed", "error", err)
	}
}
