package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"pickup-commit-service/internal/domain"
)

// Entries expire eventually so stale road-network data ages out without an
// explicit invalidation path.
const redisEntryTTL = 30 * 24 * time.Hour

// RedisDistanceCache shares pairwise travel metrics across scheduler
// instances through Redis. Values are stored as "seconds,meters" strings
// under dist:<from>|<to> keys.
type RedisDistanceCache struct {
	Client *redis.Client
}

func NewRedisDistanceCache(client *redis.Client) *RedisDistanceCache {
	return &RedisDistanceCache{Client: client}
}

func distanceKey(p PairKey) string {
	return "dist:" + p.From + "|" + p.To
}

// Fetch cached metrics for the given pairs in one MGET. Unknown pairs are omitted.
func (r *RedisDistanceCache) GetMany(
	ctx context.Context,
	pairs []PairKey,
) (map[PairKey]PairMetrics, error) {
	if r.Client == nil {
		return nil, errors.New("distance cache: redis client is nil")
	}

	if len(pairs) == 0 {
		return map[PairKey]PairMetrics{}, nil
	}

	keys := make([]string, 0, len(pairs))
	wanted := make([]PairKey, 0, len(pairs))
	for _, p := range pairs {
		if p.From == "" || p.To == "" {
			continue
		}
		keys = append(keys, distanceKey(p))
		wanted = append(wanted, p)
	}

	if len(keys) == 0 {
		return map[PairKey]PairMetrics{}, nil
	}

	values, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get distance cache: redis mget: %w", err)
	}

	out := make(map[PairKey]PairMetrics, len(wanted))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		m, err := parsePairMetrics(raw)
		if err != nil {
			// Corrupt entries are treated as misses.
			continue
		}
		out[wanted[i]] = m
	}

	return out, nil
}

// Store metrics for many pairs in one pipeline.
func (r *RedisDistanceCache) PutMany(ctx context.Context, entries map[PairKey]PairMetrics) error {
	if r.Client == nil {
		return errors.New("distance cache: redis client is nil")
	}

	if len(entries) == 0 {
		return nil
	}

	pipe := r.Client.Pipeline()
	for p, m := range entries {
		if p.From == "" || p.To == "" {
			return fmt.Errorf("insert distance cache: empty pair key %q -> %q", p.From, p.To)
		}
		value := strconv.Itoa(m.DurationSeconds) + "," + strconv.Itoa(m.DistanceMeters)
		pipe.Set(ctx, distanceKey(p), value, redisEntryTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert distance cache: redis pipeline: %w", err)
	}

	return nil
}

func parsePairMetrics(raw string) (PairMetrics, error) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return PairMetrics{}, fmt.Errorf("malformed cache value %q", raw)
	}
	seconds, err := strconv.Atoi(parts[0])
	if err != nil {
		return PairMetrics{}, fmt.Errorf("malformed duration in %q", raw)
	}
	meters, err := strconv.Atoi(parts[1])
	if err != nil {
		return PairMetrics{}, fmt.Errorf("malformed distance in %q", raw)
	}
	return PairMetrics{DurationSeconds: seconds, DistanceMeters: meters}, nil
}

// RedisGeocodeCache shares geocoded coordinates across instances. Values are
// "lon,lat" strings under geo:<address> keys.
type RedisGeocodeCache struct {
	Client *redis.Client
}

func NewRedisGeocodeCache(client *redis.Client) *RedisGeocodeCache {
	return &RedisGeocodeCache{Client: client}
}

func geocodeRedisKey(address string) string {
	return "geo:" + address
}

// Fetch cached coordinates for the given addresses. Unknown addresses are omitted.
func (r *RedisGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (map[string]domain.Coordinates, error) {
	if r.Client == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(addresses))
	keys := make([]string, 0, len(addresses))
	for _, a := range addresses {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		uniq = append(uniq, a)
		keys = append(keys, geocodeRedisKey(a))
	}

	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	values, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: redis mget: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(uniq))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		parts := strings.SplitN(raw, ",", 2)
		if len(parts) != 2 {
			continue
		}
		lon, lonErr := strconv.ParseFloat(parts[0], 64)
		lat, latErr := strconv.ParseFloat(parts[1], 64)
		if lonErr != nil || latErr != nil {
			continue
		}
		out[uniq[i]] = domain.Coordinates{Lon: lon, Lat: lat}
	}

	return out, nil
}

// Store coordinates for many addresses in one pipeline.
func (r *RedisGeocodeCache) PutMany(ctx context.Context, coords map[string]domain.Coordinates) error {
	if r.Client == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	if len(coords) == 0 {
		return nil
	}

	pipe := r.Client.Pipeline()
	for addr, c := range coords {
		if strings.TrimSpace(addr) == "" {
			return errors.New("insert geocode cache: empty address key")
		}
		value := strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
		pipe.Set(ctx, geocodeRedisKey(addr), value, redisEntryTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert geocode cache: redis pipeline: %w", err)
	}

	return nil
}
