package adapthttp

import (
	"errors"
	"net/http"

	"tickets/internal/domain"
)

func (s *Server) handleTodayRanking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ranking, err := s.ranking.TodayRanking(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

func (s *Server) handleSeasonRanking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	seasonID := int64Query(r, "seasonId", 0)
	user := r.URL.Query().Get("user")

	ranking, err := s.ranking.SeasonRanking(r.Context(), seasonID, user)
	if errors.Is(err, domain.ErrSeasonNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

func (s *Server) handleSeasons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	seasons, err := s.ranking.AllSeasons(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"seasons": seasons})
}
