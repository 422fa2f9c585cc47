package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"telegram-premium-bot/internal/domain"
	"telegram-premium-bot/internal/domain/ports/repository"
)

type tokenRequest struct {
	APIKey string `json:"api_key"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type statsResponse struct {
	Users          int `json:"users"`
	InactiveUsers  int `json:"inactive_users_30d"`
	RedeemRequests int `json:"redeem_requests"`
}

type mintKeyRequest struct {
	Days int `json:"days"`
}

type mintKeyResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type redeemEntry struct {
	ID         string    `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := s.userUC.Count(ctx)
	if err != nil {
		http.Error(w, "Failed to load stats", http.StatusInternalServerError)
		return
	}
	inactive, err := s.userUC.CountInactiveSince(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		http.Error(w, "Failed to load stats", http.StatusInternalServerError)
		return
	}
	redeems, err := s.redeems.Count(ctx, repository.NoTX)
	if err != nil {
		http.Error(w, "Failed to load stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Users:          users,
		InactiveUsers:  inactive,
		RedeemRequests: redeems,
	})
}

func (s *Server) handleMintKey(w http.ResponseWriter, r *http.Request) {
	var req mintKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	key, err := s.keyUC.Generate(r.Context(), req.Days)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		s.log.Error().Err(err).Msg("key mint failed")
		http.Error(w, "Failed to generate key", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, mintKeyResponse{Code: key.Code, ExpiresAt: key.ExpiresAt})
}

func (s *Server) handleListRedeems(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	reqs, err := s.redeems.List(r.Context(), repository.NoTX, offset, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("redeem log query failed")
		http.Error(w, "Failed to list redeem requests", http.StatusInternalServerError)
		return
	}
	out := make([]redeemEntry, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, redeemEntry{
			ID:         req.ID,
			TelegramID: req.TelegramID,
			Username:   req.Username,
			Details:    req.Details,
			CreatedAt:  req.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSetBanned(banned bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tgID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid user id", http.StatusBadRequest)
			return
		}
		if banned {
			err = s.adminUC.Ban(r.Context(), tgID)
		} else {
			err = s.adminUC.Unban(r.Context(), tgID)
		}
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "User not found", http.StatusNotFound)
				return
			}
			s.log.Error().Err(err).Int64("tg_id", tgID).Msg("ban toggle failed")
			http.Error(w, "Failed to update user", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
