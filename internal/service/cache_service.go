package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/astrxnomo/agendaun/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheOptions configures a CacheService.
type CacheOptions struct {
	Enabled    bool
	DefaultTTL time.Duration
	// Cooldown is how long reads and writes are skipped after a backend error.
	Cooldown time.Duration
	Metrics  *MetricsService
	Logger   *zap.Logger
}

// CacheService fronts the academic hierarchy cache. Backend failures never
// reach callers as hard errors on the hot path: after one, the cache is bypassed
// until the cooldown expires. Invalidation is always attempted.
type CacheService struct {
	repo        CacheRepository
	opts        CacheOptions
	pausedUntil atomic.Int64
	now         func() time.Time
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, opts CacheOptions) *CacheService {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = 10 * time.Minute
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &CacheService{repo: repo, opts: opts, now: time.Now}
}

// Enabled indicates whether caching is configured.
func (s *CacheService) Enabled() bool {
	return s != nil && s.opts.Enabled && s.repo != nil
}

func (s *CacheService) paused() bool {
	return s.now().UnixNano() < s.pausedUntil.Load()
}

func (s *CacheService) trip(op, key string, err error) {
	s.pausedUntil.Store(s.now().Add(s.opts.Cooldown).UnixNano())
	s.opts.Logger.Warn("cache backend error, bypassing",
		zap.String("op", op),
		zap.String("key", key),
		zap.Duration("cooldown", s.opts.Cooldown),
		zap.Error(err),
	)
}

// Get loads key into dest and reports whether the cache was hit. Misses and
// bypassed lookups return (false, nil).
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() || s.paused() {
		return false, nil
	}
	started := time.Now()
	err := s.repo.Get(ctx, key, dest)
	switch {
	case err == nil:
		s.opts.Metrics.RecordCacheOperation(true, time.Since(started))
		return true, nil
	case errors.Is(err, appErrors.ErrCacheMiss):
		s.opts.Metrics.RecordCacheOperation(false, time.Since(started))
		return false, nil
	default:
		s.trip("get", key, err)
		return false, err
	}
}

// Set stores value under key. A non-positive ttl uses the default.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() || s.paused() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.opts.DefaultTTL
	}
	started := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.opts.Metrics.ObserveCacheWrite(time.Since(started))
	if err != nil {
		s.trip("set", key, err)
	}
	return err
}

// Invalidate removes cached values matching pattern, even while paused, so a
// recovering backend never serves a hierarchy older than the last write.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.trip("invalidate", pattern, err)
		return err
	}
	return nil
}
