package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ubitquity/Zoltaran-Speaks/internal/asset"
	"github.com/ubitquity/Zoltaran-Speaks/internal/auth"
	"github.com/ubitquity/Zoltaran-Speaks/internal/store"
	"github.com/ubitquity/Zoltaran-Speaks/internal/wish"
)

// ---- authorization helpers ----

// The HTTP layer carries the authorization rules the original contract
// expressed with require_auth: mutations act only for the token's own
// subject, admin operations only for the configured admin, and
// configuration only for the deployment operator.

func (s *Server) requirePlayer(w http.ResponseWriter, r *http.Request, player string) bool {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || claims.Subject != player {
		s.writeError(w, http.StatusForbidden, ErrTypeUnauthorized, "token does not authorize acting for this player", nil)
		return false
	}
	return true
}

func (s *Server) requireOperator(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || claims.Role != auth.RoleOperator {
		s.writeError(w, http.StatusForbidden, ErrTypeUnauthorized, "operator authority required", nil)
		return false
	}
	return true
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		s.writeError(w, http.StatusForbidden, ErrTypeUnauthorized, "admin authority required", nil)
		return false
	}
	if claims.Role == auth.RoleOperator {
		return true
	}
	if claims.Role == auth.RoleAdmin {
		conf, err := s.svc.Config()
		if err == nil && conf != nil && conf.Admin == claims.Subject {
			return true
		}
	}
	s.writeError(w, http.StatusForbidden, ErrTypeUnauthorized, "admin authority required", nil)
	return false
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "invalid JSON body", map[string]any{
			"error": err.Error(),
		})
		return false
	}
	return true
}

// ---- mutations ----

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := validatePlayerName(req.Player); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}
	wishType, err := parseWishType(req.WishType)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}
	if !s.requirePlayer(w, r, req.Player) {
		return
	}

	commit, err := s.svc.Commit(r.Context(), req.Player, req.CommitHash, wishType)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, commit)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	commitID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "invalid commit id", nil)
		return
	}

	var req RevealRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Secret == "" {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "secret is required", nil)
		return
	}
	if !s.requirePlayer(w, r, req.Player) {
		return
	}

	settlement, err := s.svc.Reveal(r.Context(), req.Player, commitID, req.Secret, req.WishCID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RevealResponse{Settlement: *settlement})
}

// handleCleanup is open to any authenticated caller; keeping the
// commitment table bounded is a public utility.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	var req CleanupRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Max <= 0 {
		req.Max = 50
	}

	report, err := s.svc.Cleanup(r.Context(), req.Max)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	if !s.requireOperator(w, r) {
		return
	}

	var req PaymentRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := validatePlayerName(req.From); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}
	quantity, err := asset.Parse(req.Quantity)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}

	receipt, err := s.svc.HandleDeposit(r.Context(), wish.Deposit{
		From:     req.From,
		Quantity: quantity,
		Contract: req.Contract,
		Memo:     req.Memo,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, receipt)
}

// ---- admin ----

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	if !s.requireOperator(w, r) {
		return
	}

	var req wish.ConfigParams
	if !s.decode(w, r, &req) {
		return
	}
	if err := validatePlayerName(req.Admin); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}

	if err := s.svc.SetConfig(r.Context(), req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetTokenPrice(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	var req store.TokenPrice
	if !s.decode(w, r, &req) {
		return
	}
	if req.SymbolCode == "" {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "symbol_code is required", nil)
		return
	}

	if err := s.svc.SetTokenPrice(r.Context(), req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetPause(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	var req PauseRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.svc.SetPause(r.Context(), req.Paused); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	var req WithdrawRequest
	if !s.decode(w, r, &req) {
		return
	}
	quantity, err := asset.Parse(req.Quantity)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}

	if err := s.svc.Withdraw(r.Context(), req.To, quantity); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- queries ----

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	conf, err := s.svc.Config()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if conf == nil {
		s.writeError(w, http.StatusNotFound, ErrTypeNotConfigured, "game not configured", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, ConfigView{
		Admin:           conf.Admin,
		TokenContract:   conf.TokenContract,
		TokenSymbol:     conf.TokenSymbol,
		TreasuryBalance: conf.TreasuryBalance,
		Paused:          conf.Paused,
		Weights:         conf.Weights,
	})
}

func (s *Server) handleListTokenPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := s.svc.TokenPrices()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, TokenPricesResponse{Prices: prices})
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	user, err := s.svc.Account(name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if user == nil {
		s.writeError(w, http.StatusNotFound, ErrTypeNotFound, "player not found", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetPendingCommit(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	commit, err := s.svc.PendingCommit(name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if commit == nil {
		s.writeError(w, http.StatusNotFound, ErrTypeNotFound, "no pending commit", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, commit)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 10, 100)
	entries, err := s.svc.Leaderboard(limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, LeaderboardResponse{Entries: entries})
}

// handleHistory serves both the global feed and the per-player view.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "name")
	limit := parseLimit(r, 50, 200)

	results, err := s.svc.History(player, limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, HistoryResponse{Results: results})
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Reconcile()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}
