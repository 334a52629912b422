package domain

import "context"

// RankEntry is one row of a leaderboard.
type RankEntry struct {
	UserID string `json:"userId"`
	Total  int64  `json:"total"`
}

// RankingRepository is the port for leaderboard queries. While a season is
// open its totals are the daily ledger plus the merged season totals, summed
// in the store; a closed season is served from the frozen archive.
type RankingRepository interface {
	TopSeasonSent(ctx context.Context, seasonID int64, limit int) ([]RankEntry, error)
	TopSeasonReceived(ctx context.Context, seasonID int64, limit int) ([]RankEntry, error)
	SeasonUserTotals(ctx context.Context, seasonID int64, userID string) (sent, received int64, err error)
	TopArchivedSent(ctx context.Context, seasonID int64, limit int) ([]RankEntry, error)
	TopArchivedReceived(ctx context.Context, seasonID int64, limit int) ([]RankEntry, error)
	ArchivedUserTotals(ctx context.Context, seasonID int64, userID string) (sent, received int64, err error)
}
