package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tickets/internal/domain"
)

// DailyCounter returns a user's daily counters; a missing row reads as zero.
func (d *DB) DailyCounter(ctx context.Context, userID string) (domain.DailyCounter, error) {
	c := domain.DailyCounter{UserID: userID}
	err := d.sql.QueryRowContext(ctx,
		"SELECT sent_count, received_count FROM daily_counters WHERE user_id=$1;", userID,
	).Scan(&c.SentCount, &c.ReceivedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return c, nil
	}
	return c, err
}

// Credit increments a user's daily counters in a single atomic upsert.
func (d *DB) Credit(ctx context.Context, userID string, sentDelta, receivedDelta int64) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO daily_counters (user_id, sent_count, received_count) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET
		   sent_count = daily_counters.sent_count + EXCLUDED.sent_count,
		   received_count = daily_counters.received_count + EXCLUDED.received_count;`,
		userID, sentDelta, receivedDelta)
	return err
}

// AllDailyCounters returns every row of the daily ledger.
func (d *DB) AllDailyCounters(ctx context.Context) ([]domain.DailyCounter, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT user_id, sent_count, received_count FROM daily_counters ORDER BY user_id;")
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.DailyCounter
	for rows.Next() {
		var c domain.DailyCounter
		if err := rows.Scan(&c.UserID, &c.SentCount, &c.ReceivedCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ResetAllDailyCounters zeroes every daily counter in one statement. Rows
// are kept, not deleted.
func (d *DB) ResetAllDailyCounters(ctx context.Context) error {
	_, err := d.sql.ExecContext(ctx, "UPDATE daily_counters SET sent_count=0, received_count=0;")
	return err
}

// TopDailySent returns today's top senders, ties broken by user id.
func (d *DB) TopDailySent(ctx context.Context, limit int) ([]domain.RankEntry, error) {
	return d.queryRanking(ctx,
		"SELECT user_id, sent_count FROM daily_counters WHERE sent_count > 0 ORDER BY sent_count DESC, user_id LIMIT $1;",
		limit)
}

// TopDailyReceived returns today's top receivers, ties broken by user id.
func (d *DB) TopDailyReceived(ctx context.Context, limit int) ([]domain.RankEntry, error) {
	return d.queryRanking(ctx,
		"SELECT user_id, received_count FROM daily_counters WHERE received_count > 0 ORDER BY received_count DESC, user_id LIMIT $1;",
		limit)
}
