package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tickets/internal/domain"
)

// CurrentSeason returns the open season, creating one when none exists. Two
// racing creators converge: the partial unique index on open seasons turns
// the losing insert into a no-op and both re-read the winner.
func (d *DB) CurrentSeason(ctx context.Context) (domain.Season, error) {
	season, ok, err := d.openSeason(ctx)
	if err != nil || ok {
		return season, err
	}

	now := time.Now().UTC()
	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO seasons (name, start_date) VALUES ($1, $2)
		 ON CONFLICT ((end_date IS NULL)) WHERE end_date IS NULL DO NOTHING;`,
		domain.SeasonName(now), now)
	if err != nil {
		return domain.Season{}, err
	}

	season, ok, err = d.openSeason(ctx)
	if err != nil {
		return domain.Season{}, err
	}
	if !ok {
		return domain.Season{}, errors.New("no open season after create")
	}
	return season, nil
}

func (d *DB) openSeason(ctx context.Context) (domain.Season, bool, error) {
	seasons, err := d.querySeasons(ctx,
		"SELECT id, name, start_date, end_date FROM seasons WHERE end_date IS NULL ORDER BY id;")
	if err != nil {
		return domain.Season{}, false, err
	}
	switch len(seasons) {
	case 0:
		return domain.Season{}, false, nil
	case 1:
		return seasons[0], true, nil
	default:
		return domain.Season{}, false, domain.ErrMultipleOpenSeasons
	}
}

// AllSeasons lists every season, most recent first.
func (d *DB) AllSeasons(ctx context.Context) ([]domain.Season, error) {
	return d.querySeasons(ctx,
		"SELECT id, name, start_date, end_date FROM seasons ORDER BY id DESC;")
}

func (d *DB) querySeasons(ctx context.Context, query string, args ...any) ([]domain.Season, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Season
	for rows.Next() {
		var s domain.Season
		var end sql.NullTime
		if err := rows.Scan(&s.ID, &s.Name, &s.StartDate, &end); err != nil {
			return nil, err
		}
		if end.Valid {
			t := end.Time
			s.EndDate = &t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreditSeasonTotal increments a user's totals for an open season in one
// atomic upsert. The inner SELECT takes a shared row lock on the season so
// the credit serializes against a concurrent close; a season that is
// already closed matches no row and yields ErrSeasonClosed.
func (d *DB) CreditSeasonTotal(ctx context.Context, seasonID int64, userID string, sentDelta, receivedDelta int64) error {
	res, err := d.sql.ExecContext(ctx,
		`INSERT INTO season_totals (season_id, user_id, sent_count, received_count)
		 SELECT id, $2, $3, $4 FROM seasons WHERE id = $1 AND end_date IS NULL FOR SHARE
		 ON CONFLICT (season_id, user_id) DO UPDATE SET
		   sent_count = season_totals.sent_count + EXCLUDED.sent_count,
		   received_count = season_totals.received_count + EXCLUDED.received_count;`,
		seasonID, userID, sentDelta, receivedDelta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrSeasonClosed
	}
	return nil
}

// SeasonTotal returns a user's live totals for a season; a missing row
// reads as zero.
func (d *DB) SeasonTotal(ctx context.Context, seasonID int64, userID string) (domain.SeasonTotal, error) {
	t := domain.SeasonTotal{SeasonID: seasonID, UserID: userID}
	err := d.sql.QueryRowContext(ctx,
		"SELECT sent_count, received_count FROM season_totals WHERE season_id=$1 AND user_id=$2;",
		seasonID, userID,
	).Scan(&t.SentCount, &t.ReceivedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return t, nil
	}
	return t, err
}

// CloseCurrentSeason archives the open season inside one transaction: lock
// and stamp the season row, copy its totals into the archive, delete the
// live rows, then open the next season. The exclusive row lock makes a
// racing season credit either commit before the snapshot or observe the
// closed season and fail with ErrSeasonClosed.
func (d *DB) CloseCurrentSeason(ctx context.Context, now time.Time) (domain.Season, domain.Season, error) {
	now = now.UTC()

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return domain.Season{}, domain.Season{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.QueryContext(ctx,
		"SELECT id, name, start_date FROM seasons WHERE end_date IS NULL ORDER BY id FOR UPDATE;")
	if err != nil {
		return domain.Season{}, domain.Season{}, err
	}
	var open []domain.Season
	for rows.Next() {
		var s domain.Season
		if err := rows.Scan(&s.ID, &s.Name, &s.StartDate); err != nil {
			rows.Close()
			return domain.Season{}, domain.Season{}, err
		}
		open = append(open, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Season{}, domain.Season{}, err
	}
	if len(open) == 0 {
		return domain.Season{}, domain.Season{}, errors.New("no open season to close")
	}
	if len(open) > 1 {
		return domain.Season{}, domain.Season{}, domain.ErrMultipleOpenSeasons
	}
	closed := open[0]

	if _, err := tx.ExecContext(ctx,
		"UPDATE seasons SET end_date=$1 WHERE id=$2;", now, closed.ID); err != nil {
		return domain.Season{}, domain.Season{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO season_archive (season_id, user_id, sent_count, received_count)
		 SELECT season_id, user_id, sent_count, received_count FROM season_totals WHERE season_id=$1;`,
		closed.ID); err != nil {
		return domain.Season{}, domain.Season{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM season_totals WHERE season_id=$1;", closed.ID); err != nil {
		return domain.Season{}, domain.Season{}, err
	}

	opened := domain.Season{Name: domain.SeasonName(now), StartDate: now}
	if err := tx.QueryRowContext(ctx,
		"INSERT INTO seasons (name, start_date) VALUES ($1, $2) RETURNING id;",
		opened.Name, now,
	).Scan(&opened.ID); err != nil {
		return domain.Season{}, domain.Season{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Season{}, domain.Season{}, err
	}
	closed.EndDate = &now
	return closed, opened, nil
}
