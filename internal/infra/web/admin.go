package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"line-reservation-bot/internal/domain"
	"line-reservation-bot/internal/infra/logging"

	"github.com/go-chi/chi/v5"
)

const adminKeyHeader = "X-Admin-Key"

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.auth.Enabled() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if !s.auth.CheckKey(r.Header.Get(adminKeyHeader)) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	tok, exp, err := s.auth.Mint(w)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("mint staff token")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: tok, ExpiresAt: exp})
}

func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	list, err := s.reservationUC.List(r.Context(), limit)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("list reservations")
		http.Error(w, "Failed to list reservations", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": list, "count": len(list)})
}

func (s *Server) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	res, err := s.reservationUC.Get(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		logging.With(r.Context(), s.log).Error().Err(err).Msg("get reservation")
		http.Error(w, "Failed to get reservation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
