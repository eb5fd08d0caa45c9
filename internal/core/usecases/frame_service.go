package usecases

import (
	"context"
	"encoding/json"

	"github.com/samirrijal/homeward/internal/core/domain"
	"github.com/samirrijal/homeward/internal/core/ports"
	"github.com/samirrijal/homeward/internal/pkg/metrics"
)

// FrameService serves rendered frames to readers outside the tracker.
type FrameService struct {
	catalog *ProfileCatalog
	frames  ports.FrameRepository
	cache   ports.CacheService
}

// NewFrameService creates a new FrameService. frames and cache may be nil.
func NewFrameService(catalog *ProfileCatalog, frames ports.FrameRepository, cache ports.CacheService) *FrameService {
	return &FrameService{catalog: catalog, frames: frames, cache: cache}
}

// Latest returns the newest frame of profile from the cache, then history.
func (s *FrameService) Latest(ctx context.Context, profile string) (*domain.Frame, error) {
	if _, err := s.catalog.Get(profile); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, LatestFrameKey(profile)); err == nil {
			var f domain.Frame
			if err := json.Unmarshal(data, &f); err == nil {
				metrics.CacheHits.WithLabelValues("latest_frame").Inc()
				return &f, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("latest_frame").Inc()
	}

	if s.frames == nil {
		return nil, domain.ErrNoFrame
	}
	f, err := s.frames.Latest(ctx, profile)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(f); err == nil {
			_ = s.cache.Set(ctx, LatestFrameKey(profile), data, LatestFrameTTL)
		}
	}
	return f, nil
}

// History returns one page of frames for profile, newest first, and the total count.
func (s *FrameService) History(ctx context.Context, profile string, offset, limit int) ([]domain.Frame, int, error) {
	if _, err := s.catalog.Get(profile); err != nil {
		return nil, 0, err
	}
	if s.frames == nil {
		return []domain.Frame{}, 0, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	frames, err := s.frames.ListByProfile(ctx, profile, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.frames.CountByProfile(ctx, profile)
	if err != nil {
		return nil, 0, err
	}
	return frames, total, nil
}
