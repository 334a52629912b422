// Package domain contains the core business entities and interfaces.
package domain

import "context"

// DailyCounter tracks how many tickets a user sent and received today.
// Rows appear on a user's first transfer and are zeroed, not deleted, by
// the daily reset.
type DailyCounter struct {
	UserID        string `json:"userId"`
	SentCount     int64  `json:"sentCount"`
	ReceivedCount int64  `json:"receivedCount"`
}

// LedgerRepository is the port for the per-user daily ledger. Every
// mutation must be a single atomic store operation; callers never
// read-modify-write counters.
type LedgerRepository interface {
	// DailyCounter returns a user's counters; a missing row reads as zero.
	DailyCounter(ctx context.Context, userID string) (DailyCounter, error)
	// Credit increments a user's counters by the given deltas, creating the
	// row if needed.
	Credit(ctx context.Context, userID string, sentDelta, receivedDelta int64) error
	AllDailyCounters(ctx context.Context) ([]DailyCounter, error)
	// ResetAllDailyCounters zeroes every counter in one operation.
	ResetAllDailyCounters(ctx context.Context) error
	TopDailySent(ctx context.Context, limit int) ([]RankEntry, error)
	TopDailyReceived(ctx context.Context, limit int) ([]RankEntry, error)
}
