package adapthttp

import (
	"errors"
	"net/http"

	"tickets/internal/app"
)

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Giver    string `json:"giver"`
		Receiver string `json:"receiver"`
		Count    int64  `json:"count"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Giver == "" || body.Receiver == "" {
		writeError(w, http.StatusBadRequest, errors.New("giver and receiver are required"))
		return
	}

	res, err := s.transfer.Transfer(r.Context(), body.Giver, body.Receiver, body.Count)
	if errors.Is(err, app.ErrInvalidCount) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	observeTransfer(res, body.Count)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleQuota(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user := r.URL.Query().Get("user")
	if user == "" {
		writeError(w, http.StatusBadRequest, errors.New("user is required"))
		return
	}
	quota, err := s.transfer.RemainingQuota(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user, "remainingQuota": quota})
}
