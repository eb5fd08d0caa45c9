package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/homeward/internal/core/domain"
	"github.com/samirrijal/homeward/internal/core/ports"
)

// TrackingService owns one TrackingSession per profile.
type TrackingService struct {
	catalog  *ProfileCatalog
	sessions map[string]*TrackingSession
	cache    ports.CacheService
}

// NewTrackingService creates a session for every profile in the catalog,
// all reading from source and writing to sink. cache may be nil.
func NewTrackingService(catalog *ProfileCatalog, source ports.LocationSource, sink ports.FrameSink, cache ports.CacheService) *TrackingService {
	sessions := make(map[string]*TrackingSession)
	for _, p := range catalog.List() {
		sessions[p.Name] = NewTrackingSession(p, source, sink)
	}
	return &TrackingService{catalog: catalog, sessions: sessions, cache: cache}
}

// Profiles returns the configured profiles ordered by name.
func (s *TrackingService) Profiles() []domain.Profile {
	return s.catalog.List()
}

// Session returns the session of the named profile.
func (s *TrackingService) Session(name string) (*TrackingSession, error) {
	sess, ok := s.sessions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}
	return sess, nil
}

// Tick runs a single tick of the named session.
func (s *TrackingService) Tick(ctx context.Context, name string) (*domain.Frame, error) {
	sess, err := s.Session(name)
	if err != nil {
		return nil, err
	}
	return sess.Tick(ctx)
}

// Run drives every session until ctx is cancelled.
func (s *TrackingService) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range s.catalog.Names() {
		sess := s.sessions[name]
		g.Go(func() error {
			return sess.Run(ctx)
		})
	}
	return g.Wait()
}

// LatestFrame returns the last frame rendered in this process, falling back
// to the shared cache written by CacheSink.
func (s *TrackingService) LatestFrame(ctx context.Context, name string) (*domain.Frame, error) {
	sess, err := s.Session(name)
	if err != nil {
		return nil, err
	}
	if f := sess.Last(); f != nil {
		return f, nil
	}
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, LatestFrameKey(name)); err == nil {
			var f domain.Frame
			if err := json.Unmarshal(data, &f); err == nil {
				return &f, nil
			}
		}
	}
	return nil, domain.ErrNoFrame
}
