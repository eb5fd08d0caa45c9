package valkey

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samirrijal/homeward/internal/core/domain"
)

// LocationStore keeps the newest device fix per profile. A fix expires after
// maxAge, after which reads fail the same way a stale device fix would.
type LocationStore struct {
	cache  *Cache
	maxAge time.Duration
}

// NewLocationStore creates a store sharing the cache client.
func NewLocationStore(cache *Cache, maxAge time.Duration) *LocationStore {
	if maxAge < time.Second {
		maxAge = time.Second
	}
	return &LocationStore{cache: cache, maxAge: maxAge}
}

// LocationKey is the key holding the newest fix of a profile.
func LocationKey(profile string) string {
	return "homeward:location:" + profile
}

// Save stores reading, replacing any previous fix for the same profile.
func (s *LocationStore) Save(ctx context.Context, reading *domain.LocationReading) error {
	data, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}
	return s.cache.Set(ctx, LocationKey(reading.Profile), data, int(s.maxAge/time.Second))
}

// CurrentPosition returns the stored fix for profile.
func (s *LocationStore) CurrentPosition(ctx context.Context, profile string) (domain.GeoPoint, error) {
	data, err := s.cache.Get(ctx, LocationKey(profile))
	if IsMiss(err) {
		return domain.GeoPoint{}, fmt.Errorf("%w: no fix for %s in the last %s", domain.ErrGeolocationFailed, profile, s.maxAge)
	}
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%w: %w", domain.ErrGeolocationFailed, err)
	}

	var r domain.LocationReading
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%w: decode fix: %w", domain.ErrGeolocationFailed, err)
	}
	return r.Point, nil
}
