// Package adapthttp is the driving HTTP adapter: it routes the chat-bot and
// view collaborators' requests to the application services.
package adapthttp

import (
	"crypto/subtle"
	"net/http"

	"tickets/internal/app"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server routes requests to the application services.
type Server struct {
	transfer   *app.TransferService
	ranking    *app.RankingService
	rollover   *app.RolloverService
	adminToken string
}

// New creates a Server wired to the given application services. adminToken
// guards the maintenance endpoints; an empty token disables the guard (for
// development and tests).
func New(ts *app.TransferService, rk *app.RankingService, ro *app.RolloverService, adminToken string) *Server {
	return &Server{transfer: ts, ranking: rk, rollover: ro, adminToken: adminToken}
}

// Handler returns the root http.Handler for the service.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/transfers", s.handleTransfer)
	api.HandleFunc("/quota", s.handleQuota)

	api.HandleFunc("/rankings/today", s.handleTodayRanking)
	api.HandleFunc("/rankings/season", s.handleSeasonRanking)
	api.HandleFunc("/seasons", s.handleSeasons)

	api.HandleFunc("/maintenance/daily-rollover", s.requireAdmin(s.handleDailyRollover))
	api.HandleFunc("/maintenance/close-season", s.requireAdmin(s.handleCloseSeason))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/metrics", promhttp.Handler())

	return metricsMiddleware(root)
}

// requireAdmin checks the bearer token on maintenance endpoints.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken != "" {
			auth := r.Header.Get("Authorization")
			want := "Bearer " + s.adminToken
			if subtle.ConstantTimeCompare([]byte(auth), []byte(want)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}
