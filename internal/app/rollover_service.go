package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tickets/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// defaultMergeLimit bounds how many season merges run against the store at
// once during the daily rollover.
const defaultMergeLimit = 10

// RolloverService owns the two maintenance operations: the daily
// merge-and-reset and the season close. Both are driven by an external
// trigger (a schedule or an operator); the service never schedules itself.
type RolloverService struct {
	ledger     domain.LedgerRepository
	seasons    domain.SeasonRepository
	log        zerolog.Logger
	mergeLimit int
}

// NewRolloverService creates a RolloverService.
func NewRolloverService(ledger domain.LedgerRepository, seasons domain.SeasonRepository, log zerolog.Logger) *RolloverService {
	return &RolloverService{
		ledger:     ledger,
		seasons:    seasons,
		log:        log,
		mergeLimit: defaultMergeLimit,
	}
}

// DailyMergeAndReset folds today's daily counters into the current season's
// totals and then zeroes the daily ledger. A failed merge for one user never
// blocks the others, but any failure skips the reset so the counters survive
// for a later pass; merges are pure increments and safe to reissue.
func (s *RolloverService) DailyMergeAndReset(ctx context.Context) error {
	season, err := s.seasons.CurrentSeason(ctx)
	if err != nil {
		return err
	}
	counters, err := s.ledger.AllDailyCounters(ctx)
	if err != nil {
		return err
	}

	var (
		mu     sync.Mutex
		failed []error
		merged int
	)
	g := new(errgroup.Group)
	g.SetLimit(s.mergeLimit)
	for _, c := range counters {
		if c.SentCount == 0 && c.ReceivedCount == 0 {
			continue
		}
		c := c
		g.Go(func() error {
			if err := s.seasons.CreditSeasonTotal(ctx, season.ID, c.UserID, c.SentCount, c.ReceivedCount); err != nil {
				s.log.Error().Err(err).Str("user", c.UserID).Int64("season", season.ID).Msg("season merge failed")
				mu.Lock()
				failed = append(failed, fmt.Errorf("merge user %s: %w", c.UserID, err))
				mu.Unlock()
				return nil
			}
			mu.Lock()
			merged++
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; failures are collected above.
	_ = g.Wait()

	if len(failed) > 0 {
		return fmt.Errorf("daily merge incomplete (%d of %d users failed), reset skipped: %w",
			len(failed), len(failed)+merged, errors.Join(failed...))
	}
	if err := s.ledger.ResetAllDailyCounters(ctx); err != nil {
		return fmt.Errorf("reset daily counters: %w", err)
	}
	s.log.Info().Int("users", merged).Int64("season", season.ID).Msg("daily rollover complete")
	return nil
}

// CloseSeason archives and closes the open season and opens the next one.
func (s *RolloverService) CloseSeason(ctx context.Context) (closed, opened domain.Season, err error) {
	closed, opened, err = s.seasons.CloseCurrentSeason(ctx, time.Now())
	if err != nil {
		return domain.Season{}, domain.Season{}, err
	}
	s.log.Info().Int64("closed", closed.ID).Int64("opened", opened.ID).Msg("season closed")
	return closed, opened, nil
}
