// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"

	"tickets/internal/domain"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidCount indicates a non-positive transfer count.
var ErrInvalidCount = errors.New("count must be positive")

// TransferResult reports the outcome of a single transfer. An exhausted
// quota is an ordinary result with Succeeded unset, not an error; a request
// beyond the remaining quota succeeds with a clamped SentAmount.
type TransferResult struct {
	Succeeded           bool  `json:"succeeded"`
	SentAmount          int64 `json:"sentAmount"`
	RemainingQuota      int64 `json:"remainingQuota"`
	SeasonReceivedTotal int64 `json:"seasonReceivedTotal"`
}

// TransferService validates and records ticket transfers against the daily
// quota.
type TransferService struct {
	ledger  domain.LedgerRepository
	seasons domain.SeasonRepository
	limit   int64
}

// NewTransferService creates a TransferService with the given daily sending
// limit.
func NewTransferService(ledger domain.LedgerRepository, seasons domain.SeasonRepository, limit int64) *TransferService {
	return &TransferService{ledger: ledger, seasons: seasons, limit: limit}
}

// RemainingQuota returns how many tickets the user may still send today.
func (s *TransferService) RemainingQuota(ctx context.Context, userID string) (int64, error) {
	counter, err := s.ledger.DailyCounter(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.remaining(counter.SentCount), nil
}

// Transfer sends up to requested tickets from giver to receiver and returns
// the amount actually sent, the giver's quota afterwards, and the receiver's
// in-season received total including this transfer.
func (s *TransferService) Transfer(ctx context.Context, giver, receiver string, requested int64) (TransferResult, error) {
	if requested <= 0 {
		return TransferResult{}, ErrInvalidCount
	}

	counter, err := s.ledger.DailyCounter(ctx, giver)
	if err != nil {
		return TransferResult{}, err
	}
	quota := s.remaining(counter.SentCount)

	if giver == receiver {
		// The mention parser upstream filters self-transfers; the engine
		// tolerates them as a no-op without mutating anything.
		return TransferResult{Succeeded: true, RemainingQuota: quota}, nil
	}
	if quota == 0 {
		return TransferResult{}, nil
	}

	amount := requested
	if amount > quota {
		amount = quota
	}

	// The two upserts touch independent rows and never contend, so they are
	// issued together and joined.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.ledger.Credit(gctx, giver, amount, 0) })
	g.Go(func() error { return s.ledger.Credit(gctx, receiver, 0, amount) })
	if err := g.Wait(); err != nil {
		return TransferResult{}, err
	}

	season, err := s.seasons.CurrentSeason(ctx)
	if err != nil {
		return TransferResult{}, err
	}
	receivedTotal, err := s.seasonReceived(ctx, season.ID, receiver)
	if err != nil {
		return TransferResult{}, err
	}

	return TransferResult{
		Succeeded:           true,
		SentAmount:          amount,
		RemainingQuota:      quota - amount,
		SeasonReceivedTotal: receivedTotal,
	}, nil
}

func (s *TransferService) remaining(sent int64) int64 {
	r := s.limit - sent
	if r < 0 {
		r = 0
	}
	return r
}

// seasonReceived is the user's in-season received total: today's daily
// ledger plus the already-merged season totals.
func (s *TransferService) seasonReceived(ctx context.Context, seasonID int64, userID string) (int64, error) {
	counter, err := s.ledger.DailyCounter(ctx, userID)
	if err != nil {
		return 0, err
	}
	total, err := s.seasons.SeasonTotal(ctx, seasonID, userID)
	if err != nil {
		return 0, err
	}
	return counter.ReceivedCount + total.ReceivedCount, nil
}
