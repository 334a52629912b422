package app

import (
	"context"

	"tickets/internal/domain"
)

const (
	todayTopSize   = 5
	seasonTopSize  = 5
	archiveTopSize = 10
)

// TodayRanking holds today's sent and received leaderboards.
type TodayRanking struct {
	SentTop     []domain.RankEntry `json:"sentTop"`
	ReceivedTop []domain.RankEntry `json:"receivedTop"`
}

// SeasonRanking holds a season's leaderboards plus one user's own totals.
type SeasonRanking struct {
	Season       domain.Season      `json:"season"`
	Current      bool               `json:"current"`
	SentTop      []domain.RankEntry `json:"sentTop"`
	ReceivedTop  []domain.RankEntry `json:"receivedTop"`
	UserSent     int64              `json:"userSent"`
	UserReceived int64              `json:"userReceived"`
}

// RankingService answers leaderboard queries for today, the open season and
// archived seasons.
type RankingService struct {
	ledger   domain.LedgerRepository
	seasons  domain.SeasonRepository
	rankings domain.RankingRepository
}

// NewRankingService creates a RankingService backed by the given
// repositories.
func NewRankingService(ledger domain.LedgerRepository, seasons domain.SeasonRepository, rankings domain.RankingRepository) *RankingService {
	return &RankingService{ledger: ledger, seasons: seasons, rankings: rankings}
}

// TodayRanking returns today's top senders and receivers.
func (s *RankingService) TodayRanking(ctx context.Context) (TodayRanking, error) {
	sent, err := s.ledger.TopDailySent(ctx, todayTopSize)
	if err != nil {
		return TodayRanking{}, err
	}
	received, err := s.ledger.TopDailyReceived(ctx, todayTopSize)
	if err != nil {
		return TodayRanking{}, err
	}
	return TodayRanking{SentTop: sent, ReceivedTop: received}, nil
}

// SeasonRanking returns the ranking for the given season, or for the open
// season when seasonID is zero. Open-season totals are the daily ledger plus
// the merged season totals; closed seasons are served from the archive with
// a deeper leaderboard. userID may be empty, in which case the user totals
// are zero.
func (s *RankingService) SeasonRanking(ctx context.Context, seasonID int64, userID string) (SeasonRanking, error) {
	current, err := s.seasons.CurrentSeason(ctx)
	if err != nil {
		return SeasonRanking{}, err
	}
	if seasonID == 0 || seasonID == current.ID {
		return s.currentRanking(ctx, current, userID)
	}
	return s.archivedRanking(ctx, seasonID, userID)
}

// AllSeasons lists every season, most recent first.
func (s *RankingService) AllSeasons(ctx context.Context) ([]domain.Season, error) {
	return s.seasons.AllSeasons(ctx)
}

func (s *RankingService) currentRanking(ctx context.Context, season domain.Season, userID string) (SeasonRanking, error) {
	ranking := SeasonRanking{Season: season, Current: true}

	var err error
	if ranking.SentTop, err = s.rankings.TopSeasonSent(ctx, season.ID, seasonTopSize); err != nil {
		return SeasonRanking{}, err
	}
	if ranking.ReceivedTop, err = s.rankings.TopSeasonReceived(ctx, season.ID, seasonTopSize); err != nil {
		return SeasonRanking{}, err
	}
	if userID != "" {
		if ranking.UserSent, ranking.UserReceived, err = s.rankings.SeasonUserTotals(ctx, season.ID, userID); err != nil {
			return SeasonRanking{}, err
		}
	}
	return ranking, nil
}

func (s *RankingService) archivedRanking(ctx context.Context, seasonID int64, userID string) (SeasonRanking, error) {
	seasons, err := s.seasons.AllSeasons(ctx)
	if err != nil {
		return SeasonRanking{}, err
	}
	ranking := SeasonRanking{}
	for _, season := range seasons {
		if season.ID == seasonID {
			ranking.Season = season
			break
		}
	}
	if ranking.Season.ID == 0 {
		return SeasonRanking{}, domain.ErrSeasonNotFound
	}

	if ranking.SentTop, err = s.rankings.TopArchivedSent(ctx, seasonID, archiveTopSize); err != nil {
		return SeasonRanking{}, err
	}
	if ranking.ReceivedTop, err = s.rankings.TopArchivedReceived(ctx, seasonID, archiveTopSize); err != nil {
		return SeasonRanking{}, err
	}
	if userID != "" {
		if ranking.UserSent, ranking.UserReceived, err = s.rankings.ArchivedUserTotals(ctx, seasonID, userID); err != nil {
			return SeasonRanking{}, err
		}
	}
	return ranking, nil
}
