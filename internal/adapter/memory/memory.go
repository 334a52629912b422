// Package memory implements an in-memory store for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"tickets/internal/domain"
)

// DB implements every domain repository in memory. One mutex guards all
// state, so each call gets the same per-operation atomicity the SQL store
// provides per statement.
type DB struct {
	mu           sync.Mutex
	daily        map[string]*domain.DailyCounter
	seasons      []*domain.Season
	totals       map[totalKey]*domain.SeasonTotal
	archive      map[totalKey]domain.SeasonTotal
	seasonSerial int64
}

type totalKey struct {
	seasonID int64
	userID   string
}

// New creates an empty in-memory store.
func New() *DB {
	return &DB{
		daily:   make(map[string]*domain.DailyCounter),
		totals:  make(map[totalKey]*domain.SeasonTotal),
		archive: make(map[totalKey]domain.SeasonTotal),
	}
}

// Ensure interfaces are met.
var _ domain.LedgerRepository = (*DB)(nil)
var _ domain.SeasonRepository = (*DB)(nil)
var _ domain.RankingRepository = (*DB)(nil)

// --- LedgerRepository ---

// DailyCounter returns a user's counters; a missing row reads as zero.
func (db *DB) DailyCounter(ctx context.Context, userID string) (domain.DailyCounter, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if c, ok := db.daily[userID]; ok {
		return *c, nil
	}
	return domain.DailyCounter{UserID: userID}, nil
}

// Credit increments a user's daily counters.
func (db *DB) Credit(ctx context.Context, userID string, sentDelta, receivedDelta int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	c, ok := db.daily[userID]
	if !ok {
		c = &domain.DailyCounter{UserID: userID}
		db.daily[userID] = c
	}
	c.SentCount += sentDelta
	c.ReceivedCount += receivedDelta
	return nil
}

// AllDailyCounters returns every daily row, ordered by user id.
func (db *DB) AllDailyCounters(ctx context.Context) ([]domain.DailyCounter, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.DailyCounter, 0, len(db.daily))
	for _, c := range db.daily {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// ResetAllDailyCounters zeroes every counter, keeping the rows.
func (db *DB) ResetAllDailyCounters(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, c := range db.daily {
		c.SentCount = 0
		c.ReceivedCount = 0
	}
	return nil
}

// TopDailySent returns today's top senders.
func (db *DB) TopDailySent(ctx context.Context, limit int) ([]domain.RankEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	entries := []domain.RankEntry{}
	for _, c := range db.daily {
		if c.SentCount > 0 {
			entries = append(entries, domain.RankEntry{UserID: c.UserID, Total: c.SentCount})
		}
	}
	return topN(entries, limit), nil
}

// TopDailyReceived returns today's top receivers.
func (db *DB) TopDailyReceived(ctx context.Context, limit int) ([]domain.RankEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	entries := []domain.RankEntry{}
	for _, c := range db.daily {
		if c.ReceivedCount > 0 {
			entries = append(entries, domain.RankEntry{UserID: c.UserID, Total: c.ReceivedCount})
		}
	}
	return topN(entries, limit), nil
}

// --- SeasonRepository ---

// CurrentSeason returns the open season, creating one when none exists.
func (db *DB) CurrentSeason(ctx context.Context) (domain.Season, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	open, err := db.openSeasonLocked()
	if err != nil {
		return domain.Season{}, err
	}
	if open != nil {
		return *open, nil
	}

	now := time.Now().UTC()
	db.seasonSerial++
	s := &domain.Season{ID: db.seasonSerial, Name: domain.SeasonName(now), StartDate: now}
	db.seasons = append(db.seasons, s)
	return *s, nil
}

func (db *DB) openSeasonLocked() (*domain.Season, error) {
	var open *domain.Season
	for _, s := range db.seasons {
		if s.Open() {
			if open != nil {
				return nil, domain.ErrMultipleOpenSeasons
			}
			open = s
		}
	}
	return open, nil
}

// AllSeasons lists every season, most recent first.
func (db *DB) AllSeasons(ctx context.Context) ([]domain.Season, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.Season, 0, len(db.seasons))
	for i := len(db.seasons) - 1; i >= 0; i-- {
		out = append(out, *db.seasons[i])
	}
	return out, nil
}

// CloseCurrentSeason archives and closes the open season, then opens the
// next one.
func (db *DB) CloseCurrentSeason(ctx context.Context, now time.Time) (domain.Season, domain.Season, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	open, err := db.openSeasonLocked()
	if err != nil {
		return domain.Season{}, domain.Season{}, err
	}
	if open == nil {
		return domain.Season{}, domain.Season{}, errors.New("no open season to close")
	}

	for key, t := range db.totals {
		if key.seasonID == open.ID {
			db.archive[key] = *t
			delete(db.totals, key)
		}
	}

	now = now.UTC()
	end := now
	open.EndDate = &end

	db.seasonSerial++
	opened := &domain.Season{ID: db.seasonSerial, Name: domain.SeasonName(now), StartDate: now}
	db.seasons = append(db.seasons, opened)
	return *open, *opened, nil
}

// CreditSeasonTotal increments a user's totals for an open season.
func (db *DB) CreditSeasonTotal(ctx context.Context, seasonID int64, userID string, sentDelta, receivedDelta int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var season *domain.Season
	for _, s := range db.seasons {
		if s.ID == seasonID {
			season = s
			break
		}
	}
	if season == nil || !season.Open() {
		return domain.ErrSeasonClosed
	}

	key := totalKey{seasonID: seasonID, userID: userID}
	t, ok := db.totals[key]
	if !ok {
		t = &domain.SeasonTotal{SeasonID: seasonID, UserID: userID}
		db.totals[key] = t
	}
	t.SentCount += sentDelta
	t.ReceivedCount += receivedDelta
	return nil
}

// SeasonTotal returns a user's live totals; a missing row reads as zero.
func (db *DB) SeasonTotal(ctx context.Context, seasonID int64, userID string) (domain.SeasonTotal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if t, ok := db.totals[totalKey{seasonID: seasonID, userID: userID}]; ok {
		return *t, nil
	}
	return domain.SeasonTotal{SeasonID: seasonID, UserID: userID}, nil
}

// --- RankingRepository ---

// TopSeasonSent sums the daily ledger with the live season totals.
func (db *DB) TopSeasonSent(ctx context.Context, seasonID int64, limit int) ([]domain.RankEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return topN(db.seasonSumsLocked(seasonID, true), limit), nil
}

// TopSeasonReceived sums the daily ledger with the live season totals.
func (db *DB) TopSeasonReceived(ctx context.Context, seasonID int64, limit int) ([]domain.RankEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return topN(db.seasonSumsLocked(seasonID, false), limit), nil
}

func (db *DB) seasonSumsLocked(seasonID int64, sent bool) []domain.RankEntry {
	sums := make(map[string]int64)
	for _, c := range db.daily {
		if sent {
			sums[c.UserID] += c.SentCount
		} else {
			sums[c.UserID] += c.ReceivedCount
		}
	}
	for key, t := range db.totals {
		if key.seasonID != seasonID {
			continue
		}
		if sent {
			sums[key.userID] += t.SentCount
		} else {
			sums[key.userID] += t.ReceivedCount
		}
	}

	entries := []domain.RankEntry{}
	for userID, total := range sums {
		if total > 0 {
			entries = append(entries, domain.RankEntry{UserID: userID, Total: total})
		}
	}
	return entries
}

// SeasonUserTotals returns one user's open-season totals.
func (db *DB) SeasonUserTotals(ctx context.Context, seasonID int64, userID string) (int64, int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var sent, received int64
	if c, ok := db.daily[userID]; ok {
		sent += c.SentCount
		received += c.ReceivedCount
	}
	if t, ok := db.totals[totalKey{seasonID: seasonID, userID: userID}]; ok {
		sent += t.SentCount
		received += t.ReceivedCount
	}
	return sent, received, nil
}

// TopArchivedSent reads the frozen archive of a closed season.
func (db *DB) TopArchivedSent(ctx context.Context, seasonID int64, limit int) ([]domain.RankEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	entries := []domain.RankEntry{}
	for key, t := range db.archive {
		if key.seasonID == seasonID && t.SentCount > 0 {
			entries = append(entries, domain.RankEntry{UserID: key.userID, Total: t.SentCount})
		}
	}
	return topN(entries, limit), nil
}

// TopArchivedReceived reads the frozen archive of a closed season.
func (db *DB) TopArchivedReceived(ctx context.Context, seasonID int64, limit int) ([]domain.RankEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	entries := []domain.RankEntry{}
	for key, t := range db.archive {
		if key.seasonID == seasonID && t.ReceivedCount > 0 {
			entries = append(entries, domain.RankEntry{UserID: key.userID, Total: t.ReceivedCount})
		}
	}
	return topN(entries, limit), nil
}

// ArchivedUserTotals returns one user's totals for a closed season.
func (db *DB) ArchivedUserTotals(ctx context.Context, seasonID int64, userID string) (int64, int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if t, ok := db.archive[totalKey{seasonID: seasonID, userID: userID}]; ok {
		return t.SentCount, t.ReceivedCount, nil
	}
	return 0, 0, nil
}

// topN sorts descending by total with user id as the deterministic
// tie-break, then trims to limit.
func topN(entries []domain.RankEntry, limit int) []domain.RankEntry {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
