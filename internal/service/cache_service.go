package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Counter(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
}

const courseStatsView = "course"

// Statistics keys are stats:<course>:<generation>:<view>. Every write to a course bumps
// its generation, so a view computed from an older snapshot is stored under a key no
// reader asks for again.
func courseCachePrefix(courseID string) string {
	return fmt.Sprintf("stats:%s:", courseID)
}

func courseGenerationKey(courseID string) string {
	return "stats-gen:" + courseID
}

func evaluationStatsView(evaluationID string) string {
	return "evaluation:" + evaluationID
}

// CacheService fronts the statistics cache and reports lookups to metrics.
// Cache failures never fail a request; they degrade to a recomputation.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get loads a cached entry into dest and reports whether it was a hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

// Set stores the value, falling back to the default TTL.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// CourseKey scopes a statistics view to the current generation of a course. It must be
// resolved before the snapshot is loaded; ok is false when the cache cannot be used.
func (s *CacheService) CourseKey(ctx context.Context, courseID, view string) (string, bool) {
	if !s.Enabled() {
		return "", false
	}
	generation, err := s.repo.Counter(ctx, courseGenerationKey(courseID))
	if err != nil {
		s.logger.Warn("cache generation read failed", zap.String("course_id", courseID), zap.Error(err))
		return "", false
	}
	return fmt.Sprintf("%s%d:%s", courseCachePrefix(courseID), generation, view), true
}

// InvalidateCourse retires every cached statistics view of a course.
func (s *CacheService) InvalidateCourse(ctx context.Context, courseID string) {
	if !s.Enabled() {
		return
	}
	if _, err := s.repo.Incr(ctx, courseGenerationKey(courseID)); err != nil {
		s.logger.Warn("cache generation bump failed", zap.String("course_id", courseID), zap.Error(err))
	}
	pattern := courseCachePrefix(courseID) + "*"
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
