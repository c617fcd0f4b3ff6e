package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/batch-scheduler-api/internal/dto"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService keeps rendered batch schedules in a shared cache. A disabled or
// nil service behaves as a cache that always misses.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// ScheduleKey is the cache key of a batch's rendered schedule.
func ScheduleKey(batchID string) string {
	return fmt.Sprintf("schedule:%s", batchID)
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Schedule returns the cached schedule of a batch. Backend failures are logged
// and count as a miss.
func (s *CacheService) Schedule(ctx context.Context, batchID string) (*dto.ScheduleResponse, bool) {
	if !s.Enabled() {
		return nil, false
	}
	key := ScheduleKey(batchID)
	start := time.Now()
	var cached dto.ScheduleResponse
	err := s.repo.Get(ctx, key, &cached)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	switch {
	case err == nil:
		return &cached, true
	case errors.Is(err, appErrors.ErrCacheMiss):
	default:
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	return nil, false
}

// StoreSchedule caches a rendered schedule. ttl <= 0 uses the service default.
func (s *CacheService) StoreSchedule(ctx context.Context, resp *dto.ScheduleResponse, ttl time.Duration) {
	if !s.Enabled() || resp == nil {
		return
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	key := ScheduleKey(resp.BatchID)
	start := time.Now()
	err := s.repo.Set(ctx, key, resp, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateSchedule drops every cached view of a batch schedule.
func (s *CacheService) InvalidateSchedule(ctx context.Context, batchID string) error {
	if !s.Enabled() {
		return nil
	}
	pattern := ScheduleKey(batchID) + "*"
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		return fmt.Errorf("invalidate %s: %w", pattern, err)
	}
	return nil
}
