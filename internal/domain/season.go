package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMultipleOpenSeasons indicates the "one open season" invariant is
	// broken. It is never repaired automatically; an operator has to
	// intervene.
	ErrMultipleOpenSeasons = errors.New("more than one open season")
	// ErrSeasonClosed indicates a season-total credit targeted a season
	// that is no longer open.
	ErrSeasonClosed = errors.New("season is closed")
	// ErrSeasonNotFound indicates the requested season does not exist.
	ErrSeasonNotFound = errors.New("season not found")
)

// Season is a named accounting period. Exactly one season is open
// (EndDate == nil) at any time.
type Season struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// Open reports whether the season is still accumulating totals.
func (s Season) Open() bool { return s.EndDate == nil }

// SeasonName derives the display name of a season created at t.
func SeasonName(t time.Time) string {
	return fmt.Sprintf("Season %s", t.UTC().Format("2006-01-02"))
}

// SeasonTotal accumulates one user's sent/received totals within one
// season. Totals only grow while the season is open and are frozen into the
// archive when it closes.
type SeasonTotal struct {
	SeasonID      int64  `json:"seasonId"`
	UserID        string `json:"userId"`
	SentCount     int64  `json:"sentCount"`
	ReceivedCount int64  `json:"receivedCount"`
}

// SeasonRepository is the port for seasons and their accumulated totals.
type SeasonRepository interface {
	// CurrentSeason returns the open season, creating one when none exists.
	// Concurrent first calls converge on a single season.
	CurrentSeason(ctx context.Context) (Season, error)
	// AllSeasons lists every season, most recent first.
	AllSeasons(ctx context.Context) ([]Season, error)
	// CloseCurrentSeason archives the open season's totals, deletes its
	// live rows, stamps its end date and opens a fresh season, all as one
	// atomic sequence against concurrent credits.
	CloseCurrentSeason(ctx context.Context, now time.Time) (closed, opened Season, err error)
	// CreditSeasonTotal atomically increments a user's totals for an open
	// season. Returns ErrSeasonClosed when the season is not open.
	CreditSeasonTotal(ctx context.Context, seasonID int64, userID string, sentDelta, receivedDelta int64) error
	// SeasonTotal returns a user's live totals; a missing row reads as zero.
	SeasonTotal(ctx context.Context, seasonID int64, userID string) (SeasonTotal, error)
}
