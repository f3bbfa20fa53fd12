package matrix

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pickup-commit-service/internal/adapters/cache"
	"pickup-commit-service/internal/domain"
	"pickup-commit-service/internal/platform/obs"
	"pickup-commit-service/internal/ports"
)

// DistanceCache is a persistent pairwise travel-metric cache in front of the
// matrix endpoint. Implementations must tolerate unknown pairs by omission.
type DistanceCache interface {
	GetMany(ctx context.Context, pairs []cache.PairKey) (map[cache.PairKey]cache.PairMetrics, error)
	PutMany(ctx context.Context, entries map[cache.PairKey]cache.PairMetrics) error
}

// GeocodeCache is a persistent address -> coordinates cache.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, coords map[string]domain.Coordinates) error
}

// ORSMatrixProvider implements ports.MatrixProvider using OpenRouteService.
//
// It coordinates:
//   - Address normalization and geocoding for stops without coordinates
//   - Persistent geocode and pairwise distance caching
//   - A single full-matrix call for all pairs on cache miss
//
// Every failure mode is reported as ports.ErrMatrixUnavailable; the adapter
// never guesses and never retries. Retry cadence belongs to the scheduler.
type ORSMatrixProvider struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	profile       string
	distanceCache DistanceCache
	geocodeCache  GeocodeCache
}

func NewORSMatrixProvider(
	apiKey string,
	distanceCache DistanceCache,
	geocodeCache GeocodeCache,
) (*ORSMatrixProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSMatrixProvider{
		session:       &http.Client{Timeout: 10 * time.Second},
		apiKey:        apiKey,
		baseURL:       "https://api.openrouteservice.org",
		profile:       "driving-car",
		distanceCache: distanceCache,
		geocodeCache:  geocodeCache,
	}, nil
}

// unavailable tags any adapter failure with the ErrMatrixUnavailable sentinel
// so callers can branch on it without inspecting the cause.
func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ports.ErrMatrixUnavailable, err)
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// locationKey returns the cache key for a stop: rounded coordinates when
// present, the normalized address otherwise.
func locationKey(s domain.Stop) string {
	if s.HasCoordinates() {
		return fmt.Sprintf("%.6f,%.6f", *s.Lat, *s.Lng)
	}
	return normalize(s.Address)
}

// GetTravelMatrix returns the full pairwise duration/distance matrices for
// the booking's stops.
func (o *ORSMatrixProvider) GetTravelMatrix(
	ctx context.Context,
	stops []domain.Stop,
) (_ ports.TravelMatrix, err error) {
	defer obs.Time(ctx, "ors.GetTravelMatrix")(&err)

	n := len(stops)
	if n < 2 {
		return ports.TravelMatrix{}, unavailable(fmt.Errorf("need at least 2 stops, got %d", n))
	}

	keys := make([]string, n)
	for i, s := range stops {
		k := locationKey(s)
		if k == "" {
			return ports.TravelMatrix{}, unavailable(fmt.Errorf("stop %d has neither coordinates nor address", i))
		}
		keys[i] = k
	}

	// Check the persistent pair cache before touching the network. Only a
	// complete hit avoids the matrix call: ORS prices by request, not by
	// pair, so a partial hit gains nothing.
	if hit, ok := o.fromCache(ctx, keys); ok {
		return hit, nil
	}

	coords, err := o.resolveCoordinates(ctx, stops, keys)
	if err != nil {
		return ports.TravelMatrix{}, unavailable(err)
	}

	m, err := o.fetchMatrix(ctx, coords)
	if err != nil {
		return ports.TravelMatrix{}, unavailable(err)
	}

	o.storePairs(ctx, keys, m)

	return m, nil
}

// fromCache assembles the matrix entirely from cached pairs. The second
// return value is false when any pair is missing or the lookup failed.
func (o *ORSMatrixProvider) fromCache(ctx context.Context, keys []string) (ports.TravelMatrix, bool) {
	if o.distanceCache == nil {
		return ports.TravelMatrix{}, false
	}

	n := len(keys)
	pairs := make([]cache.PairKey, 0, n*(n-1))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				pairs = append(pairs, cache.PairKey{From: keys[i], To: keys[j]})
			}
		}
	}

	hits, err := o.distanceCache.GetMany(ctx, pairs)
	if err != nil || len(hits) < len(pairs) {
		return ports.TravelMatrix{}, false
	}

	durations := make([][]*int, n)
	distances := make([][]*int, n)
	zero := 0
	for i := 0; i < n; i++ {
		durations[i] = make([]*int, n)
		distances[i] = make([]*int, n)
		for j := 0; j < n; j++ {
			if i == j {
				durations[i][j] = &zero
				distances[i][j] = &zero
				continue
			}
			m, ok := hits[cache.PairKey{From: keys[i], To: keys[j]}]
			if !ok {
				return ports.TravelMatrix{}, false
			}
			sec := m.DurationSeconds
			met := m.DistanceMeters
			durations[i][j] = &sec
			distances[i][j] = &met
		}
	}

	return ports.TravelMatrix{DurationSeconds: durations, DistanceMeters: distances}, true
}

// resolveCoordinates produces one coordinate per stop, geocoding addresses
// through the geocode cache where the booking carries none.
func (o *ORSMatrixProvider) resolveCoordinates(
	ctx context.Context,
	stops []domain.Stop,
	keys []string,
) ([]domain.Coordinates, error) {
	coords := make([]domain.Coordinates, len(stops))
	missing := make([]string, 0, len(stops))

	for i, s := range stops {
		if s.HasCoordinates() {
			coords[i] = domain.Coordinates{Lon: *s.Lng, Lat: *s.Lat}
			continue
		}
		missing = append(missing, keys[i])
	}

	if len(missing) == 0 {
		return coords, nil
	}

	resolved := make(map[string]domain.Coordinates, len(missing))
	if o.geocodeCache != nil {
		hits, err := o.geocodeCache.GetMany(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("geocode cache: %w", err)
		}
		for k, v := range hits {
			resolved[k] = v
		}
	}

	unresolved := make([]string, 0, len(missing))
	for _, a := range missing {
		if _, ok := resolved[a]; !ok {
			unresolved = append(unresolved, a)
		}
	}

	if len(unresolved) > 0 {
		fresh, err := o.geocodeMany(ctx, unresolved)
		if err != nil {
			return nil, fmt.Errorf("geocode: %w", err)
		}
		for k, v := range fresh {
			resolved[k] = v
		}

		if o.geocodeCache != nil {
			if err := o.geocodeCache.PutMany(ctx, fresh); err != nil {
				// Cache writes are advisory; the matrix call proceeds.
				logCacheWriteFailure("geocode", err)
			}
		}
	}

	for i, s := range stops {
		if s.HasCoordinates() {
			continue
		}
		c, ok := resolved[keys[i]]
		if !ok {
			return nil, fmt.Errorf("missing coordinate for stop %d (%q)", i, keys[i])
		}
		coords[i] = c
	}

	return coords, nil
}

// storePairs persists the non-hole entries of a freshly fetched matrix.
func (o *ORSMatrixProvider) storePairs(ctx context.Context, keys []string, m ports.TravelMatrix) {
	if o.distanceCache == nil {
		return
	}

	entries := make(map[cache.PairKey]cache.PairMetrics)
	for i := range keys {
		for j := range keys {
			if i == j {
				continue
			}
			sec, okSec := m.Duration(i, j)
			met, okMet := m.Distance(i, j)
			if !okSec || !okMet {
				continue
			}
			entries[cache.PairKey{From: keys[i], To: keys[j]}] = cache.PairMetrics{
				DurationSeconds: sec,
				DistanceMeters:  met,
			}
		}
	}

	if err := o.distanceCache.PutMany(ctx, entries); err != nil {
		logCacheWriteFailure("distance", err)
	}
}
