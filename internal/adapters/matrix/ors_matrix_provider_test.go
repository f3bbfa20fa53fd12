package matrix

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pickup-commit-service/internal/adapters/cache"
	"pickup-commit-service/internal/domain"
	"pickup-commit-service/internal/ports"
)

func fp(v float64) *float64 { return &v }

func coordStop(lat, lng float64) domain.Stop {
	return domain.Stop{Lat: fp(lat), Lng: fp(lng)}
}

func testProvider(baseURL string, dc DistanceCache, gc GeocodeCache) *ORSMatrixProvider {
	return &ORSMatrixProvider{
		session:       &http.Client{Timeout: 5 * time.Second},
		apiKey:        "test-key",
		baseURL:       baseURL,
		profile:       "driving-car",
		distanceCache: dc,
		geocodeCache:  gc,
	}
}

type memDistanceCache struct {
	entries map[cache.PairKey]cache.PairMetrics
	puts    int
}

func newMemDistanceCache() *memDistanceCache {
	return &memDistanceCache{entries: make(map[cache.PairKey]cache.PairMetrics)}
}

func (c *memDistanceCache) GetMany(ctx context.Context, pairs []cache.PairKey) (map[cache.PairKey]cache.PairMetrics, error) {
	out := make(map[cache.PairKey]cache.PairMetrics)
	for _, p := range pairs {
		if m, ok := c.entries[p]; ok {
			out[p] = m
		}
	}
	return out, nil
}

func (c *memDistanceCache) PutMany(ctx context.Context, entries map[cache.PairKey]cache.PairMetrics) error {
	c.puts++
	for k, v := range entries {
		c.entries[k] = v
	}
	return nil
}

func matrixHandler(t *testing.T, durations, distances [][]*float64, calls *atomic.Int64) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if r.URL.Path != "/v2/matrix/driving-car" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "test-key" {
			t.Errorf("Authorization = %q, want test-key", got)
		}

		var req matrixRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode matrix request: %v", err)
		}

		_ = json.NewEncoder(w).Encode(matrixResponse{
			Durations: durations,
			Distances: distances,
		})
	}
}

func TestGetTravelMatrixHappyPath(t *testing.T) {
	durations := [][]*float64{
		{fp(0), fp(300.4), fp(900)},
		{fp(310), fp(0), fp(400)},
		{fp(905), fp(395.6), fp(0)},
	}
	distances := [][]*float64{
		{fp(0), fp(2100), fp(7400)},
		{fp(2150), fp(0), fp(3000)},
		{fp(7420), fp(2990), fp(0)},
	}

	srv := httptest.NewServer(matrixHandler(t, durations, distances, nil))
	defer srv.Close()

	p := testProvider(srv.URL, nil, nil)
	stops := []domain.Stop{coordStop(33.45, -112.07), coordStop(33.46, -112.05), coordStop(33.50, -112.00)}

	m, err := p.GetTravelMatrix(context.Background(), stops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d, ok := m.Duration(0, 1); !ok || d != 300 {
		t.Fatalf("Duration(0,1) = %d,%v; want 300 (rounded down)", d, ok)
	}
	if d, ok := m.Duration(2, 1); !ok || d != 396 {
		t.Fatalf("Duration(2,1) = %d,%v; want 396 (rounded up)", d, ok)
	}
	if d, ok := m.Distance(0, 2); !ok || d != 7400 {
		t.Fatalf("Distance(0,2) = %d,%v; want 7400", d, ok)
	}
}

func TestGetTravelMatrixCarriesHoles(t *testing.T) {
	durations := [][]*float64{
		{fp(0), nil},
		{fp(120), fp(0)},
	}
	distances := [][]*float64{
		{fp(0), nil},
		{fp(900), fp(0)},
	}

	srv := httptest.NewServer(matrixHandler(t, durations, distances, nil))
	defer srv.Close()

	p := testProvider(srv.URL, nil, nil)
	stops := []domain.Stop{coordStop(33.45, -112.07), coordStop(33.46, -112.05)}

	m, err := p.GetTravelMatrix(context.Background(), stops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := m.Duration(0, 1); ok {
		t.Fatal("Duration(0,1) should be a hole")
	}
	if d, ok := m.Duration(1, 0); !ok || d != 120 {
		t.Fatalf("Duration(1,0) = %d,%v; want 120", d, ok)
	}
}

func TestGetTravelMatrixRejectsWrongDimensions(t *testing.T) {
	// Two locations requested, one row returned: malformed, not a hole.
	durations := [][]*float64{{fp(0), fp(100)}}
	distances := [][]*float64{{fp(0), fp(900)}}

	srv := httptest.NewServer(matrixHandler(t, durations, distances, nil))
	defer srv.Close()

	p := testProvider(srv.URL, nil, nil)
	stops := []domain.Stop{coordStop(33.45, -112.07), coordStop(33.46, -112.05)}

	_, err := p.GetTravelMatrix(context.Background(), stops)
	if !errors.Is(err, ports.ErrMatrixUnavailable) {
		t.Fatalf("err = %v, want ErrMatrixUnavailable", err)
	}
}

func TestGetTravelMatrixUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := testProvider(srv.URL, nil, nil)
	stops := []domain.Stop{coordStop(33.45, -112.07), coordStop(33.46, -112.05)}

	_, err := p.GetTravelMatrix(context.Background(), stops)
	if !errors.Is(err, ports.ErrMatrixUnavailable) {
		t.Fatalf("err = %v, want ErrMatrixUnavailable", err)
	}
}

func TestGetTravelMatrixNeedsTwoStops(t *testing.T) {
	p := testProvider("http://unused.invalid", nil, nil)

	_, err := p.GetTravelMatrix(context.Background(), []domain.Stop{coordStop(33.45, -112.07)})
	if !errors.Is(err, ports.ErrMatrixUnavailable) {
		t.Fatalf("err = %v, want ErrMatrixUnavailable", err)
	}
}

func TestGetTravelMatrixUsesDistanceCache(t *testing.T) {
	durations := [][]*float64{
		{fp(0), fp(300)},
		{fp(310), fp(0)},
	}
	distances := [][]*float64{
		{fp(0), fp(2100)},
		{fp(2150), fp(0)},
	}

	var calls atomic.Int64
	srv := httptest.NewServer(matrixHandler(t, durations, distances, &calls))
	defer srv.Close()

	dc := newMemDistanceCache()
	p := testProvider(srv.URL, dc, nil)
	stops := []domain.Stop{coordStop(33.45, -112.07), coordStop(33.46, -112.05)}

	// First call misses the cache, hits the network, and stores all pairs.
	if _, err := p.GetTravelMatrix(context.Background(), stops); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("upstream called %d times, want 1", calls.Load())
	}
	if dc.puts != 1 || len(dc.entries) != 2 {
		t.Fatalf("cache puts=%d entries=%d, want 1 put of 2 pairs", dc.puts, len(dc.entries))
	}

	// Second call is served entirely from the cache.
	m, err := p.GetTravelMatrix(context.Background(), stops)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("upstream called %d times after cached call, want still 1", calls.Load())
	}
	if d, ok := m.Duration(1, 0); !ok || d != 310 {
		t.Fatalf("cached Duration(1,0) = %d,%v; want 310", d, ok)
	}
	if d, ok := m.Duration(0, 0); !ok || d != 0 {
		t.Fatalf("cached Duration(0,0) = %d,%v; want 0 diagonal", d, ok)
	}
}

func TestGetTravelMatrixGeocodesAddresses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/geocode/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("text"); got != "12 Oak St" {
			t.Errorf("geocode text = %q", got)
		}
		_, _ = w.Write([]byte(`{"features": [{"geometry": {"coordinates": [-112.07, 33.45]}}]}`))
	})
	mux.HandleFunc("/v2/matrix/driving-car", func(w http.ResponseWriter, r *http.Request) {
		var req matrixRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode matrix request: %v", err)
		}
		if len(req.Locations) != 2 {
			t.Errorf("got %d locations, want 2", len(req.Locations))
		}
		if req.Locations[0][0] != -112.07 || req.Locations[0][1] != 33.45 {
			t.Errorf("geocoded location = %v", req.Locations[0])
		}
		_ = json.NewEncoder(w).Encode(matrixResponse{
			Durations: [][]*float64{{fp(0), fp(300)}, {fp(310), fp(0)}},
			Distances: [][]*float64{{fp(0), fp(2100)}, {fp(2150), fp(0)}},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := testProvider(srv.URL, nil, nil)
	stops := []domain.Stop{
		{Address: "12  Oak   St"}, // messy whitespace normalizes before geocoding
		coordStop(33.46, -112.05),
	}

	m, err := p.GetTravelMatrix(context.Background(), stops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d, ok := m.Duration(0, 1); !ok || d != 300 {
		t.Fatalf("Duration(0,1) = %d,%v; want 300", d, ok)
	}
}
