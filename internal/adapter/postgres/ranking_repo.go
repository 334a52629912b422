package postgres

import (
	"context"

	"tickets/internal/domain"
)

// Open-season leaderboards sum today's daily ledger with the merged season
// totals in a single query; the live season table alone never tells the
// whole story while a season is open.

// TopSeasonSent returns the open season's top senders.
func (d *DB) TopSeasonSent(ctx context.Context, seasonID int64, limit int) ([]domain.RankEntry, error) {
	return d.queryRanking(ctx,
		`SELECT user_id, SUM(n) AS total FROM (
		   SELECT user_id, sent_count AS n FROM daily_counters
		   UNION ALL
		   SELECT user_id, sent_count FROM season_totals WHERE season_id = $1
		 ) u GROUP BY user_id HAVING SUM(n) > 0 ORDER BY total DESC, user_id LIMIT $2;`,
		seasonID, limit)
}

// TopSeasonReceived returns the open season's top receivers.
func (d *DB) TopSeasonReceived(ctx context.Context, seasonID int64, limit int) ([]domain.RankEntry, error) {
	return d.queryRanking(ctx,
		`SELECT user_id, SUM(n) AS total FROM (
		   SELECT user_id, received_count AS n FROM daily_counters
		   UNION ALL
		   SELECT user_id, received_count FROM season_totals WHERE season_id = $1
		 ) u GROUP BY user_id HAVING SUM(n) > 0 ORDER BY total DESC, user_id LIMIT $2;`,
		seasonID, limit)
}

// SeasonUserTotals returns one user's open-season totals, zero when absent.
func (d *DB) SeasonUserTotals(ctx context.Context, seasonID int64, userID string) (int64, int64, error) {
	var sent, received int64
	err := d.sql.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(s), 0), COALESCE(SUM(r), 0) FROM (
		   SELECT sent_count AS s, received_count AS r FROM daily_counters WHERE user_id = $2
		   UNION ALL
		   SELECT sent_count, received_count FROM season_totals WHERE season_id = $1 AND user_id = $2
		 ) u;`,
		seasonID, userID,
	).Scan(&sent, &received)
	return sent, received, err
}

// TopArchivedSent returns a closed season's top senders from the archive.
func (d *DB) TopArchivedSent(ctx context.Context, seasonID int64, limit int) ([]domain.RankEntry, error) {
	return d.queryRanking(ctx,
		"SELECT user_id, sent_count FROM season_archive WHERE season_id=$1 AND sent_count > 0 ORDER BY sent_count DESC, user_id LIMIT $2;",
		seasonID, limit)
}

// TopArchivedReceived returns a closed season's top receivers from the
// archive.
func (d *DB) TopArchivedReceived(ctx context.Context, seasonID int64, limit int) ([]domain.RankEntry, error) {
	return d.queryRanking(ctx,
		"SELECT user_id, received_count FROM season_archive WHERE season_id=$1 AND received_count > 0 ORDER BY received_count DESC, user_id LIMIT $2;",
		seasonID, limit)
}

// ArchivedUserTotals returns one user's totals for a closed season, zero
// when absent.
func (d *DB) ArchivedUserTotals(ctx context.Context, seasonID int64, userID string) (int64, int64, error) {
	var sent, received int64
	err := d.sql.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(sent_count), 0), COALESCE(SUM(received_count), 0) FROM season_archive WHERE season_id=$1 AND user_id=$2;",
		seasonID, userID,
	).Scan(&sent, &received)
	return sent, received, err
}
