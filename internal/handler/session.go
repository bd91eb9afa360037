package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/detox-companion/internal/auth"
	"github.com/sakif/detox-companion/internal/session"
)

// SessionHandler exposes the focus-session state machine. Every
// endpoint answers with the current session snapshot so the app can
// render the timer from any response.
type SessionHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions *session.Manager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// HandleGet returns the current session snapshot.
//
// GET /api/session
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, h.sessions.Get(userID))
}

// HandleConfigure sets a custom duration. Rejected with invalid_state
// while the countdown is running.
//
// POST /api/session/configure
// Body: {"minutes": 25, "seconds": 0}
func (h *SessionHandler) HandleConfigure(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req struct {
		Minutes int `json:"minutes"`
		Seconds int `json:"seconds"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	snap, err := h.sessions.Configure(userID, req.Minutes, req.Seconds)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("session configured",
		slog.String("userID", userID),
		slog.Int("durationSeconds", snap.InitialDurationSeconds),
	)
	writeJSON(w, http.StatusOK, snap)
}

// HandleStart begins or resumes the countdown.
//
// POST /api/session/start
func (h *SessionHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	snap, err := h.sessions.Start(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandlePause stops the countdown, keeping the remaining time.
//
// POST /api/session/pause
func (h *SessionHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	snap, err := h.sessions.Pause(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleReset abandons the session and restores the full configured
// duration. An abandoned session earns nothing.
//
// POST /api/session/reset
func (h *SessionHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	snap, err := h.sessions.Reset(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
