package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLite-backed cache for directed origin->destination travel metrics.
// Keys are expected to be consistent (normalized addresses or rounded
// coordinates) by the caller.
type SqliteDistanceCache struct {
	DB *sql.DB
}

func NewSqliteDistanceCache(db *sql.DB) *SqliteDistanceCache {
	return &SqliteDistanceCache{DB: db}
}

// Fetch cached metrics for the given pairs. Unknown pairs are omitted.
func (s *SqliteDistanceCache) GetMany(
	ctx context.Context,
	pairs []PairKey,
) (map[PairKey]PairMetrics, error) {
	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}

	if len(pairs) == 0 {
		return map[PairKey]PairMetrics{}, nil
	}

	stmt, err := s.DB.PrepareContext(ctx, `
	SELECT distance_meters, duration_seconds
	FROM distance_cache
	WHERE origin = ? AND destination = ?;
	`)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: prepare: %w", err)
	}
	defer stmt.Close()

	out := make(map[PairKey]PairMetrics, len(pairs))
	for _, p := range pairs {
		if p.From == "" || p.To == "" {
			continue
		}

		var meters, seconds int
		err := stmt.QueryRowContext(ctx, p.From, p.To).Scan(&meters, &seconds)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get distance cache: query pair %q -> %q: %w", p.From, p.To, err)
		}

		out[p] = PairMetrics{DistanceMeters: meters, DurationSeconds: seconds}
	}

	return out, nil
}

// Store metrics for many pairs in one transaction.
func (s *SqliteDistanceCache) PutMany(ctx context.Context, entries map[PairKey]PairMetrics) error {
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
	INSERT OR REPLACE INTO distance_cache (
		origin,
		destination,
		distance_meters,
		duration_seconds
	)
	VALUES (?, ?, ?, ?);
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
