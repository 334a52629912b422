// Package postgres implements the domain repositories on PostgreSQL. The
// database is the sole authority for every counter: all mutations are
// single atomic statements (upsert-with-increment, bulk update, one
// transaction for the season close) so concurrent requests coordinate
// through the store rather than through application locks.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tickets/internal/domain"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements the domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS daily_counters (user_id TEXT PRIMARY KEY, sent_count BIGINT NOT NULL DEFAULT 0 CHECK (sent_count >= 0), received_count BIGINT NOT NULL DEFAULT 0 CHECK (received_count >= 0));",
		"CREATE TABLE IF NOT EXISTS seasons (id BIGSERIAL PRIMARY KEY, name TEXT NOT NULL, start_date TIMESTAMPTZ NOT NULL, end_date TIMESTAMPTZ);",
		// At most one row may have a null end_date: the open season.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_seasons_one_open ON seasons ((end_date IS NULL)) WHERE end_date IS NULL;",
		"CREATE TABLE IF NOT EXISTS season_totals (season_id BIGINT NOT NULL REFERENCES seasons(id), user_id TEXT NOT NULL, sent_count BIGINT NOT NULL DEFAULT 0, received_count BIGINT NOT NULL DEFAULT 0, PRIMARY KEY (season_id, user_id));",
		"CREATE TABLE IF NOT EXISTS season_archive (season_id BIGINT NOT NULL, user_id TEXT NOT NULL, sent_count BIGINT NOT NULL, received_count BIGINT NOT NULL, PRIMARY KEY (season_id, user_id));",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (d *DB) queryRanking(ctx context.Context, query string, args ...any) ([]domain.RankEntry, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.RankEntry{}
	for rows.Next() {
		var e domain.RankEntry
		if err := rows.Scan(&e.UserID, &e.Total); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
