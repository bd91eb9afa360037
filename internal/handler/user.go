package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/detox-companion/internal/auth"
	"github.com/sakif/detox-companion/internal/service"
)

// UserHandler exposes the progress counters: streak, coin balance, and
// the direct credit/sync endpoints the app calls.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// HandleProgress returns the authenticated user's counters.
//
// GET /api/user/progress
func (h *UserHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	user, err := h.svc.Progress(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":      user.Name,
		"streak":    user.Streak,
		"coins":     user.Coins,
		"lastLogin": user.LastLogin,
	})
}

// HandleAddCoins credits coins directly to the balance.
//
// POST /api/user/add-coins
// Body: {"coins": 5}
func (h *UserHandler) HandleAddCoins(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req struct {
		Coins int `json:"coins"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	balance, err := h.svc.AddCoins(r.Context(), userID, req.Coins)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"coins": balance})
}

// HandleUpdateStreak overwrites the streak counter (explicit client
// sync; login handles normal advancement).
//
// POST /api/user/update-streak
// Body: {"streak": 4}
func (h *UserHandler) HandleUpdateStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req struct {
		Streak int `json:"streak"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	streak, err := h.svc.UpdateStreak(r.Context(), userID, req.Streak)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"streak": streak})
}
