package web

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"telegram-premium-bot/internal/config"
	"telegram-premium-bot/internal/domain/ports/repository"
	"telegram-premium-bot/internal/usecase"
)

// Server is the operator-facing HTTP API: stats, key minting, ban toggles,
// and the redeem audit log. It authenticates with a short-lived JWT minted
// against the configured API key.
type Server struct {
	userUC  usecase.UserUseCase
	keyUC   usecase.KeyUseCase
	adminUC usecase.AdminUseCase
	redeems repository.RedeemRequestRepository
	auth    *AuthManager
	apiKey  string
	log     *zerolog.Logger
}

func NewServer(
	cfg config.WebConfig,
	userUC usecase.UserUseCase,
	keyUC usecase.KeyUseCase,
	adminUC usecase.AdminUseCase,
	redeems repository.RedeemRequestRepository,
	logger *zerolog.Logger,
) *Server {
	webLog := logger.With().Str("component", "AdminWeb").Logger()
	return &Server{
		userUC:  userUC,
		keyUC:   keyUC,
		adminUC: adminUC,
		redeems: redeems,
		auth:    NewAuthManager(cfg.JWTSecret, cfg.TokenTTL),
		apiKey:  cfg.APIKey,
		log:     &webLog,
	}
}

// Router builds the chi router for the admin API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/auth/token", s.handleToken)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/stats", s.handleStats)
		r.Post("/keys", s.handleMintKey)
		r.Get("/redeems", s.handleListRedeems)
		r.Post("/users/{id}/ban", s.handleSetBanned(true))
		r.Post("/users/{id}/unban", s.handleSetBanned(false))
	})
	return r
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.auth.cfg.HMACSecret) == 0 {
			s.log.Error().Msg("admin API JWT secret is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleToken exchanges the static API key for a session JWT.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if s.apiKey == "" || subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(s.apiKey)) != 1 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	token, err := s.auth.Mint()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to mint session token")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}
