package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/jmdelacruz/lotlocate/internal/core/domain"
	"github.com/jmdelacruz/lotlocate/internal/core/ports"
	"github.com/jmdelacruz/lotlocate/internal/pkg/metrics"
)

const (
	refPointsCacheKey = "lotlocate:refpoints:all"
	refPointsCacheTTL = 24 * time.Hour
)

// ReferenceService serves the survey monument table. The repository is only
// hit on cache misses: an in-process TTL cache absorbs almost all reads, and
// an optional shared byte cache (Valkey) lets replicas reuse one load.
type ReferenceService struct {
	repo  ports.ReferencePointRepository
	cache ports.CacheService
	mem   *ttlcache.Cache[string, []domain.ReferencePoint]
}

// NewReferenceService creates a ReferenceService. cache may be nil.
func NewReferenceService(repo ports.ReferencePointRepository, cache ports.CacheService) *ReferenceService {
	mem := ttlcache.New[string, []domain.ReferencePoint](
		ttlcache.WithTTL[string, []domain.ReferencePoint](refPointsCacheTTL),
	)
	go mem.Start()

	return &ReferenceService{repo: repo, cache: cache, mem: mem}
}

// List returns all reference points, deduplicated and sorted by display name.
func (s *ReferenceService) List(ctx context.Context) ([]domain.ReferencePoint, error) {
	if item := s.mem.Get(refPointsCacheKey); item != nil {
		metrics.CacheHits.WithLabelValues("reference_points").Inc()
		return item.Value(), nil
	}
	metrics.CacheMisses.WithLabelValues("reference_points").Inc()

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, refPointsCacheKey); err == nil {
			var pts []domain.ReferencePoint
			if err := json.Unmarshal(data, &pts); err == nil {
				s.mem.Set(refPointsCacheKey, pts, ttlcache.DefaultTTL)
				return pts, nil
			}
		}
	}

	pts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reference points: %w", err)
	}
	slog.Info("reference points loaded", "count", len(pts))

	s.mem.Set(refPointsCacheKey, pts, ttlcache.DefaultTTL)
	if s.cache != nil {
		if data, err := json.Marshal(pts); err == nil {
			_ = s.cache.Set(ctx, refPointsCacheKey, data, int(refPointsCacheTTL.Seconds()))
		}
	}

	return pts, nil
}

// FindByName looks up a reference point by exact display name.
func (s *ReferenceService) FindByName(ctx context.Context, displayName string) (*domain.ReferencePoint, error) {
	pts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range pts {
		if pts[i].DisplayName == displayName {
			return &pts[i], nil
		}
	}
	return nil, nil
}

// Invalidate drops cached reference points, forcing a reload on next use.
func (s *ReferenceService) Invalidate(ctx context.Context) {
	s.mem.Delete(refPointsCacheKey)
	if s.cache != nil {
		_ = s.cache.Delete(ctx, refPointsCacheKey)
	}
}
