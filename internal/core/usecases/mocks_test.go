package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/homeward/internal/core/domain"
	"github.com/samirrijal/homeward/internal/core/usecases"
)

// --- Mock LocationSource / LocationStore ---

type mockSource struct {
	currentFn func(ctx context.Context, profile string) (domain.GeoPoint, error)
	saveFn    func(ctx context.Context, reading *domain.LocationReading) error
}

func (m *mockSource) CurrentPosition(ctx context.Context, profile string) (domain.GeoPoint, error) {
	if m.currentFn != nil {
		return m.currentFn(ctx, profile)
	}
	return domain.GeoPoint{}, nil
}

func (m *mockSource) Save(ctx context.Context, reading *domain.LocationReading) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, reading)
	}
	return nil
}

func fixedSource(p domain.GeoPoint) *mockSource {
	return &mockSource{currentFn: func(context.Context, string) (domain.GeoPoint, error) { return p, nil }}
}

// --- Recording FrameSink ---

type recordingSink struct {
	mu       sync.Mutex
	frames   []*domain.Frame
	faults   []*domain.LocationFault
	frameErr error
	onFrame  func(*domain.Frame)
}

func (s *recordingSink) PublishFrame(_ context.Context, f *domain.Frame) error {
	s.mu.Lock()
	s.frames = append(s.frames, f)
	cb := s.onFrame
	s.mu.Unlock()
	if cb != nil {
		cb(f)
	}
	return s.frameErr
}

func (s *recordingSink) PublishFault(_ context.Context, f *domain.LocationFault) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, f)
	return nil
}

func (s *recordingSink) Frames() []*domain.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Frame(nil), s.frames...)
}

func (s *recordingSink) Faults() []*domain.LocationFault {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.LocationFault(nil), s.faults...)
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	recordingSink
	publishLocationFn func(ctx context.Context, reading *domain.LocationReading) error
}

func (m *mockPublisher) PublishLocation(ctx context.Context, reading *domain.LocationReading) error {
	if m.publishLocationFn != nil {
		return m.publishLocationFn(ctx, reading)
	}
	return nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttl: map[string]int{}}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNoFrame
	}
	return v, nil
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, ttl int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttl[key] = ttl
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock FrameRepository ---

type mockFrameRepo struct {
	insertFn func(ctx context.Context, frame *domain.Frame) error
	latestFn func(ctx context.Context, profile string) (*domain.Frame, error)
	listFn   func(ctx context.Context, profile string, offset, limit int) ([]domain.Frame, error)
	countFn  func(ctx context.Context, profile string) (int, error)
}

func (m *mockFrameRepo) Insert(ctx context.Context, frame *domain.Frame) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, frame)
	}
	return nil
}

func (m *mockFrameRepo) Latest(ctx context.Context, profile string) (*domain.Frame, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, profile)
	}
	return nil, domain.ErrNoFrame
}

func (m *mockFrameRepo) ListByProfile(ctx context.Context, profile string, offset, limit int) ([]domain.Frame, error) {
	if m.listFn != nil {
		return m.listFn(ctx, profile, offset, limit)
	}
	return nil, nil
}

func (m *mockFrameRepo) CountByProfile(ctx context.Context, profile string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, profile)
	}
	return 0, nil
}

// --- helpers ---

func profile(name string) domain.Profile {
	for _, p := range usecases.DefaultProfiles() {
		if p.Name == name {
			return p
		}
	}
	panic("unknown profile " + name)
}

func catalog() *usecases.ProfileCatalog {
	c, err := usecases.NewProfileCatalog(usecases.DefaultProfiles())
	if err != nil {
		panic(err)
	}
	return c
}
