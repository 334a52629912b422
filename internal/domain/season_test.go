package domain_test

import (
	"testing"
	"time"

	"tickets/internal/domain"
)

func TestSeasonName(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), "Season 2026-09-01"},
		// Names follow UTC, not the local day.
		{time.Date(2026, 8, 31, 22, 30, 0, 0, est), "Season 2026-09-01"},
	}
	for _, tc := range cases {
		if got := domain.SeasonName(tc.at); got != tc.want {
			t.Errorf("SeasonName(%v): got %q, want %q", tc.at, got, tc.want)
		}
	}
}

func TestSeasonOpen(t *testing.T) {
	s := domain.Season{ID: 1, Name: "Season 2026-09-01"}
	if !s.Open() {
		t.Error("season without an end date must be open")
	}
	end := time.Now()
	s.EndDate = &end
	if s.Open() {
		t.Error("season with an end date must be closed")
	}
}
