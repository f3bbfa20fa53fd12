package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pickup-commit-service/internal/platform/obs"
)

// SQLDistanceCache is a Postgres-backed cache for directed pair travel
// metrics, used by shared deployments where several scheduler instances
// benefit from one cache.
type SQLDistanceCache struct {
	DB *sql.DB
}

func NewSQLDistanceCache(db *sql.DB) *SQLDistanceCache {
	return &SQLDistanceCache{DB: db}
}

// Fetch cached metrics for the given pairs. Unknown pairs are omitted.
func (s *SQLDistanceCache) GetMany(
	ctx context.Context,
	pairs []PairKey,
) (_ map[PairKey]PairMetrics, err error) {
	defer obs.Time(ctx, "distance.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}

	if len(pairs) == 0 {
		return map[PairKey]PairMetrics{}, nil
	}

	origins := make([]string, 0, len(pairs))
	destinations := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.From == "" || p.To == "" {
			continue
		}
		origins = append(origins, p.From)
		destinations = append(destinations, p.To)
	}

	if len(origins) == 0 {
		return map[PairKey]PairMetrics{}, nil
	}

	q := `
	SELECT dc.origin, dc.destination, dc.distance_meters, dc.duration_seconds
	FROM distance_cache dc
	JOIN unnest($1::text[], $2::text[]) AS wanted(origin, destination)
		ON dc.origin = wanted.origin
		AND dc.destination = wanted.destination;
	`

	rows, err := s.DB.QueryContext(ctx, q, origins, destinations)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[PairKey]PairMetrics, len(pairs))
	for rows.Next() {
		var from, to string
		var meters, seconds int
		if err := rows.Scan(&from, &to, &meters, &seconds); err != nil {
			return nil, fmt.Errorf("get distance cache: scan rows: %w", err)
		}
		out[PairKey{From: from, To: to}] = PairMetrics{
			DistanceMeters:  meters,
			DurationSeconds: seconds,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get distance cache: row iteration: %w", err)
	}

	return out, nil
}

// Store metrics for many pairs in one transaction.
func (s *SQLDistanceCache) PutMany(ctx context.Context, entries map[PairKey]PairMetrics) error {
	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}

	if len(entries) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert distance cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO distance_cache (origin, destination, distance_meters, duration_seconds)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds;
	`)
	if err != nil {
		return fmt.Errorf("insert distance cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for p, m := range entries {
		if p.From == "" || p.To == "" {
			return fmt.Errorf("insert distance cache: empty pair key %q -> %q", p.From, p.To)
		}

		if _, err := stmt.ExecContext(ctx, p.From, p.To, m.DistanceMeters, m.DurationSeconds); err != nil {
			return fmt.Errorf("insert distance cache pair %q -> %q: %w", p.From, p.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert distance cache commit: %w", err)
	}

	return nil
}
