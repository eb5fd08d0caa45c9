package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/homeward/internal/adapters/http"
	"github.com/samirrijal/homeward/internal/core/domain"
	"github.com/samirrijal/homeward/internal/core/usecases"
)

// ---- Mocks ----

type mockStore struct {
	mu      sync.Mutex
	saved   []domain.LocationReading
	saveFn  func(ctx context.Context, r *domain.LocationReading) error
	positFn func(ctx context.Context, profile string) (domain.GeoPoint, error)
}

func (m *mockStore) Save(ctx context.Context, r *domain.LocationReading) error {
	if m.saveFn != nil {
		if err := m.saveFn(ctx, r); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, *r)
	return nil
}

func (m *mockStore) CurrentPosition(ctx context.Context, profile string) (domain.GeoPoint, error) {
	if m.positFn != nil {
		return m.positFn(ctx, profile)
	}
	return domain.GeoPoint{}, domain.ErrGeolocationFailed
}

type mockFrameRepo struct {
	latestFn func(ctx context.Context, profile string) (*domain.Frame, error)
	listFn   func(ctx context.Context, profile string, offset, limit int) ([]domain.Frame, error)
	countFn  func(ctx context.Context, profile string) (int, error)
}

func (m *mockFrameRepo) Insert(ctx context.Context, f *domain.Frame) error { return nil }
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

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("miss")
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func testCatalog(t *testing.T) *usecases.ProfileCatalog {
	t.Helper()
	c, err := usecases.NewProfileCatalog(usecases.DefaultProfiles())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

type testEnv struct {
	store  *mockStore
	frames *mockFrameRepo
	cache  *mockCache
}

func makeDeps(t *testing.T, opts ...func(*testEnv)) *handler.Dependencies {
	t.Helper()
	env := &testEnv{store: &mockStore{}, frames: &mockFrameRepo{}, cache: &mockCache{}}
	for _, o := range opts {
		o(env)
	}
	catalog := testCatalog(t)
	return &handler.Dependencies{
		Profiles:  catalog,
		Geo:       usecases.NewGeoService(),
		Locations: usecases.NewLocationService(catalog, env.store, nil),
		Frames:    usecases.NewFrameService(catalog, env.frames, env.cache),
		Version:   "test",
	}
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func decodeError(t *testing.T, body io.Reader) handler.APIError {
	t.Helper()
	var apiErr handler.APIError
	if err := json.NewDecoder(body).Decode(&apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return apiErr
}

// ---- Health ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Status   string `json:"status"`
		Version  string `json:"version"`
		Profiles int    `json:"profiles"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Status != "healthy" || body.Version != "test" {
		t.Errorf("unexpected health body: %+v", body)
	}
	if body.Profiles != 3 {
		t.Errorf("expected 3 profiles, got %d", body.Profiles)
	}
	if got := resp.Header.Get("Cache-Control"); got != "no-cache" {
		t.Errorf("expected no-cache, got %q", got)
	}
}

func TestReady_NoCache(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503 without a cache, got %d", resp.StatusCode)
	}
}

// ---- Geo handlers ----

func TestDistance_Miles(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/geo/distance?from=51.5074,-0.1278&to=48.8566,2.3522", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var body handler.DistanceResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Units != "mi" {
		t.Errorf("expected units mi, got %s", body.Units)
	}
	if body.Distance < 210 || body.Distance > 216 {
		t.Errorf("London-Paris should be ~213 miles, got %.2f", body.Distance)
	}
	if got := resp.Header.Get("Cache-Control"); got != "public, max-age=86400" {
		t.Errorf("expected day-long caching for geometry, got %q", got)
	}
}

func TestDistance_Kilometres(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/geo/distance?from=51.5074,-0.1278&to=48.8566,2.3522&units=km", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body handler.DistanceResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Distance < 340 || body.Distance > 347 {
		t.Errorf("London-Paris should be ~343 km, got %.2f", body.Distance)
	}
}

func TestDistance_BadInput(t *testing.T) {
	app := setupApp(makeDeps(t))

	cases := map[string]string{
		"missing to":      "/v1/geo/distance?from=51.5,-0.1",
		"no comma":        "/v1/geo/distance?from=51.5&to=48.8,2.3",
		"not a number":    "/v1/geo/distance?from=abc,-0.1&to=48.8,2.3",
		"out of range":    "/v1/geo/distance?from=91,0&to=48.8,2.3",
		"unknown units":   "/v1/geo/distance?from=51.5,-0.1&to=48.8,2.3&units=ft",
		"longitude range": "/v1/geo/distance?from=51.5,181&to=48.8,2.3",
	}
	for name, url := range cases {
		t.Run(name, func(t *testing.T) {
			resp, _ := app.Test(httptest.NewRequest("GET", url, nil), -1)
			if resp.StatusCode != 400 {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			if apiErr := decodeError(t, resp.Body); apiErr.Code != "bad_request" {
				t.Errorf("expected bad_request, got %s", apiErr.Code)
			}
		})
	}
}

func TestBearing_DueEast(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/geo/bearing?from=0,0&to=0,1", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Bearing float64 `json:"bearing"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if math.Abs(body.Bearing-90) > 1e-9 {
		t.Errorf("expected 90, got %f", body.Bearing)
	}
}

func TestZoom_Success(t *testing.T) {
	app := setupApp(makeDeps(t))

	payload := `{"points":[{"lat":52.9538,"lng":-1.1458},{"lat":51.5074,"lng":-0.1278}],"viewport":{"width":1280,"height":720}}`
	req := httptest.NewRequest("POST", "/v1/geo/zoom", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var body usecases.ZoomResult
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Zoom < 6 || body.Zoom > 10 {
		t.Errorf("expected a regional zoom level, got %d", body.Zoom)
	}
	if body.Bounds.NorthEast.Lat != 52.9538 || body.Bounds.SouthWest.Lat != 51.5074 {
		t.Errorf("unexpected bounds: %+v", body.Bounds)
	}
}

func TestZoom_BadViewport(t *testing.T) {
	app := setupApp(makeDeps(t))

	payload := `{"points":[{"lat":52.9,"lng":-1.1}],"viewport":{"width":0,"height":720}}`
	req := httptest.NewRequest("POST", "/v1/geo/zoom", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestZoom_NoPoints(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/geo/zoom", strings.NewReader(`{"points":[],"viewport":{"width":100,"height":100}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestInterpolate_Endpoints(t *testing.T) {
	app := setupApp(makeDeps(t))

	tests := []struct {
		counter int
		want    domain.GeoPoint
	}{
		{0, domain.GeoPoint{Lat: 10, Lng: 20}},
		{50, domain.GeoPoint{Lat: 5, Lng: 10}},
		{100, domain.GeoPoint{Lat: 0, Lng: 0}},
	}
	for _, tt := range tests {
		url := fmt.Sprintf("/v1/geo/interpolate?from=10,20&to=0,0&counter=%d&steps=100", tt.counter)
		resp, _ := app.Test(httptest.NewRequest("GET", url, nil), -1)
		if resp.StatusCode != 200 {
			t.Fatalf("counter %d: expected 200, got %d", tt.counter, resp.StatusCode)
		}
		var body struct {
			Position domain.GeoPoint `json:"position"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		if math.Abs(body.Position.Lat-tt.want.Lat) > 1e-9 || math.Abs(body.Position.Lng-tt.want.Lng) > 1e-9 {
			t.Errorf("counter %d: expected %v, got %v", tt.counter, tt.want, body.Position)
		}
	}
}

func TestInterpolate_CounterOutOfRange(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/geo/interpolate?from=10,20&to=0,0&counter=101&steps=100", nil), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCurve_Success(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/geo/curve?from=51.5074,-0.1278&to=52.9538,-1.1458&zoom=7", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var arc domain.Arc
	json.NewDecoder(resp.Body).Decode(&arc)
	if !strings.HasPrefix(arc.Path, "M") {
		t.Errorf("expected an SVG path, got %q", arc.Path)
	}
	if arc.Origin.Lat != 51.5074 {
		t.Errorf("expected origin at the start point, got %v", arc.Origin)
	}
}

func TestCurve_ZoomRequired(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/geo/curve?from=51.5,-0.1&to=52.9,-1.1", nil), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Profiles ----

func TestListProfiles(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/profiles", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []handler.ProfileView `json:"data"`
		Pagination handler.Pagination    `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 3 || len(result.Data) != 3 {
		t.Fatalf("expected 3 profiles, got %d (total %d)", len(result.Data), result.Pagination.Total)
	}
	for _, p := range result.Data {
		if p.Interval == "" {
			t.Errorf("profile %s has no interval", p.Name)
		}
	}
}

func TestListProfiles_Pagination(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/profiles?offset=1&limit=1", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []handler.ProfileView `json:"data"`
		Pagination handler.Pagination    `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data) != 1 || result.Pagination.Offset != 1 {
		t.Errorf("expected one profile at offset 1, got %d at %d", len(result.Data), result.Pagination.Offset)
	}

	link := resp.Header.Get("Link")
	for _, rel := range []string{`rel="first"`, `rel="prev"`, `rel="next"`, `rel="last"`} {
		if !strings.Contains(link, rel) {
			t.Errorf("Link header missing %s: %s", rel, link)
		}
	}
}

func TestGetProfile(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/profiles/rocket", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var p handler.ProfileView
	json.NewDecoder(resp.Body).Decode(&p)
	if p.Name != "rocket" || !p.Curve || !p.AuxDisplay {
		t.Errorf("unexpected rocket profile: %+v", p)
	}
	if p.Interval != "80ms" {
		t.Errorf("expected 80ms interval, got %s", p.Interval)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/profiles/submarine", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Code != "not_found" {
		t.Errorf("expected not_found, got %s", apiErr.Code)
	}
}

// ---- Sessions ----

func TestSubmitLocation_Accepted(t *testing.T) {
	var store *mockStore
	app := setupApp(makeDeps(t, func(e *testEnv) { store = e.store }))

	req := httptest.NewRequest("POST", "/v1/sessions/marker/location", strings.NewReader(`{"lat":52.95,"lng":-1.14,"accuracy":12}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 202 {
		t.Fatalf("expected 202, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	if len(store.saved) != 1 {
		t.Fatalf("expected one stored reading, got %d", len(store.saved))
	}
	got := store.saved[0]
	if got.Profile != "marker" || got.Point.Lat != 52.95 || got.Accuracy != 12 {
		t.Errorf("unexpected reading: %+v", got)
	}
	if got.Time.IsZero() {
		t.Error("expected the reading to be timestamped")
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "" {
		t.Errorf("POST should not get a Cache-Control header, got %q", cc)
	}
}

func TestSubmitLocation_KeepsDeviceTime(t *testing.T) {
	var store *mockStore
	app := setupApp(makeDeps(t, func(e *testEnv) { store = e.store }))

	req := httptest.NewRequest("POST", "/v1/sessions/marker/location",
		strings.NewReader(`{"lat":1,"lng":2,"time":"2026-01-02T03:04:05+02:00"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 202 {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	want := time.Date(2026, 1, 2, 1, 4, 5, 0, time.UTC)
	if !store.saved[0].Time.Equal(want) {
		t.Errorf("expected %v, got %v", want, store.saved[0].Time)
	}
}

func TestSubmitLocation_Invalid(t *testing.T) {
	app := setupApp(makeDeps(t))

	cases := map[string]struct {
		path, body string
		status     int
	}{
		"missing lng":       {"/v1/sessions/marker/location", `{"lat":1}`, 400},
		"out of range":      {"/v1/sessions/marker/location", `{"lat":100,"lng":0}`, 400},
		"negative accuracy": {"/v1/sessions/marker/location", `{"lat":1,"lng":0,"accuracy":-1}`, 400},
		"not json":          {"/v1/sessions/marker/location", `lat=1`, 400},
		"unknown profile":   {"/v1/sessions/submarine/location", `{"lat":1,"lng":0}`, 404},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("POST", tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			resp, _ := app.Test(req, -1)
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
		})
	}
}

func TestSubmitLocation_StoreDown(t *testing.T) {
	app := setupApp(makeDeps(t, func(e *testEnv) {
		e.store.saveFn = func(context.Context, *domain.LocationReading) error { return errors.New("connection refused") }
	}))

	req := httptest.NewRequest("POST", "/v1/sessions/marker/location", strings.NewReader(`{"lat":1,"lng":2}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); strings.Contains(apiErr.Message, "refused") {
		t.Errorf("internal error leaked: %s", apiErr.Message)
	}
}

func TestCurrentLocation(t *testing.T) {
	app := setupApp(makeDeps(t, func(e *testEnv) {
		e.store.positFn = func(_ context.Context, profile string) (domain.GeoPoint, error) {
			if profile != "rocket" {
				t.Errorf("unexpected profile %s", profile)
			}
			return domain.GeoPoint{Lat: 52.96, Lng: -1.14}, nil
		}
	}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/sessions/rocket/location", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	var got domain.GeoPoint
	json.NewDecoder(resp.Body).Decode(&got)
	if got.Lat != 52.96 || got.Lng != -1.14 {
		t.Errorf("unexpected position %+v", got)
	}
}

func TestCurrentLocation_NoFix(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/sessions/marker/location", nil), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503 without a stored fix, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Code != "unavailable" {
		t.Errorf("expected unavailable, got %s", apiErr.Code)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/sessions/tank/location", nil), -1)
	if resp.StatusCode != 404 {
		t.Errorf("expected 404 for an unknown profile, got %d", resp.StatusCode)
	}
}

func TestLatestFrame_NoFrame(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/sessions/marker/frame", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Code != "no_frame" {
		t.Errorf("expected no_frame, got %s", apiErr.Code)
	}
}

func TestLatestFrame_FromCache(t *testing.T) {
	frame := domain.Frame{ID: "f1", Profile: "marker", Counter: 3, Steps: 100}
	app := setupApp(makeDeps(t, func(e *testEnv) {
		data, _ := json.Marshal(frame)
		e.cache.Set(context.Background(), usecases.LatestFrameKey("marker"), data, 60)
		e.frames.latestFn = func(context.Context, string) (*domain.Frame, error) {
			t.Error("repository should not be queried on a cache hit")
			return nil, domain.ErrNoFrame
		}
	}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/sessions/marker/frame", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got domain.Frame
	json.NewDecoder(resp.Body).Decode(&got)
	if got.ID != "f1" || got.Counter != 3 {
		t.Errorf("unexpected frame: %+v", got)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store for live data, got %q", cc)
	}
}

func TestLatestFrame_FromHistory(t *testing.T) {
	var cache *mockCache
	app := setupApp(makeDeps(t, func(e *testEnv) {
		cache = e.cache
		e.frames.latestFn = func(_ context.Context, profile string) (*domain.Frame, error) {
			return &domain.Frame{ID: "f9", Profile: profile}, nil
		}
	}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/sessions/rocket/frame", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if _, err := cache.Get(context.Background(), usecases.LatestFrameKey("rocket")); err != nil {
		t.Error("expected the frame to be cached after a history read")
	}
}

func TestListFrames(t *testing.T) {
	app := setupApp(makeDeps(t, func(e *testEnv) {
		e.frames.listFn = func(_ context.Context, profile string, offset, limit int) ([]domain.Frame, error) {
			if offset != 5 || limit != 5 {
				t.Errorf("expected offset 5 limit 5, got %d %d", offset, limit)
			}
			frames := make([]domain.Frame, limit)
			for i := range frames {
				frames[i] = domain.Frame{ID: fmt.Sprintf("f%d", offset+i), Profile: profile}
			}
			return frames, nil
		}
		e.frames.countFn = func(context.Context, string) (int, error) { return 12, nil }
	}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/sessions/soldier/frames?offset=5&limit=5", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Frame     `json:"data"`
		Pagination handler.Pagination `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data) != 5 || result.Pagination.Total != 12 {
		t.Errorf("expected 5 of 12 frames, got %d of %d", len(result.Data), result.Pagination.Total)
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, "offset=10") {
		t.Errorf("expected next link at offset 10, got %s", link)
	}
}

func TestListFrames_UnknownProfile(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/sessions/submarine/frames", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

// ---- Middleware ----

func TestSecurityHeaders(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options")
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id")
	}
}

func TestETag_NotModified(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/profiles/marker", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag")
	}

	req := httptest.NewRequest("GET", "/v1/profiles/marker", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

func TestRateLimit(t *testing.T) {
	deps := makeDeps(t)
	deps.RateLimit = 2
	app := setupApp(deps)

	var last int
	for i := 0; i < 3; i++ {
		resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
		last = resp.StatusCode
	}
	if last != 429 {
		t.Errorf("expected 429 after the limit, got %d", last)
	}
}

// ---- GraphQL ----

func gqlQuery(t *testing.T, app *fiber.App, query string) map[string]any {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"query": query})
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Data   map[string]any   `json:"data"`
		Errors []map[string]any `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	return result.Data
}

func TestGraphQL_Profiles(t *testing.T) {
	app := setupApp(makeDeps(t))

	data := gqlQuery(t, app, `{ profiles { name steps interval home { lat lng } } }`)
	profiles, ok := data["profiles"].([]any)
	if !ok || len(profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %v", data["profiles"])
	}
	first := profiles[0].(map[string]any)
	if first["interval"] == "" || first["steps"].(float64) != 100 {
		t.Errorf("unexpected profile: %v", first)
	}
}

func TestGraphQL_Distance(t *testing.T) {
	app := setupApp(makeDeps(t))

	data := gqlQuery(t, app, `{ distance(from: {lat: 51.5074, lng: -0.1278}, to: {lat: 48.8566, lng: 2.3522}) }`)
	d, _ := data["distance"].(float64)
	if d < 210 || d > 216 {
		t.Errorf("expected ~213 miles, got %v", data["distance"])
	}
}

func TestGraphQL_Zoom(t *testing.T) {
	app := setupApp(makeDeps(t))

	data := gqlQuery(t, app, `{ zoom(points: [{lat: 52.95, lng: -1.14}], width: 1280, height: 720) { zoom } }`)
	fit := data["zoom"].(map[string]any)
	if fit["zoom"].(float64) != 21 {
		t.Errorf("a single point should fit at the deepest zoom, got %v", fit["zoom"])
	}
}

// ---- WebSocket relay ----

// ---- Docs ----

func TestDocs_ServesEmbeddedOpenAPI(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/docs/openapi.yaml", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("expected application/yaml, got %q", ct)
	}
	if body := string(readBody(t, resp.Body)); !strings.Contains(body, "title: Homeward API") {
		t.Error("expected the OpenAPI document in the body")
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/docs", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 for the docs page, got %d", resp.StatusCode)
	}
	if body := string(readBody(t, resp.Body)); !strings.Contains(body, "/docs/openapi.yaml") {
		t.Error("docs page should load the embedded document")
	}
}

func TestRelaySubject(t *testing.T) {
	tests := []struct {
		channel, profile, want string
		wantErr                bool
	}{
		{"", "", "homeward.frame.>", false},
		{"frames", "rocket", "homeward.frame.rocket", false},
		{"faults", "", "homeward.fault.>", false},
		{"locations", "marker", "homeward.location.marker", false},
		{"alerts", "", "", true},
	}
	for _, tt := range tests {
		got, err := handler.RelaySubject(tt.channel, tt.profile)
		if (err != nil) != tt.wantErr {
			t.Errorf("RelaySubject(%q, %q) error = %v", tt.channel, tt.profile, err)
			continue
		}
		if got != tt.want {
			t.Errorf("RelaySubject(%q, %q) = %q, want %q", tt.channel, tt.profile, got, tt.want)
		}
	}
}

func TestWebSocket_RequiresUpgrade(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/ws", nil), -1)
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("expected 426, got %d", resp.StatusCode)
	}
}
