package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/detox-companion/internal/auth"
	"github.com/sakif/detox-companion/internal/model"
	"github.com/sakif/detox-companion/internal/service"
)

// UsageHandler exposes the daily screen-time snapshot endpoints.
type UsageHandler struct {
	svc    *service.UsageService
	logger *slog.Logger
}

// NewUsageHandler creates a UsageHandler.
func NewUsageHandler(svc *service.UsageService, logger *slog.Logger) *UsageHandler {
	return &UsageHandler{svc: svc, logger: logger}
}

// HandleLog stores today's usage snapshot, replacing any earlier one for
// the same UTC day.
//
// POST /api/usage/log
// Body: {"apps":[{"id":"instagram","label":"Instagram","time":"1h 20m","pct":45}],"totalTime":"2h 15m"}
func (h *UsageHandler) HandleLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req struct {
		Apps      []model.AppUsage `json:"apps"`
		TotalTime string           `json:"totalTime"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	daily, err := h.svc.Log(r.Context(), userID, req.Apps, req.TotalTime)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, daily)
}

// HandleToday returns today's snapshot; a day with nothing logged reads
// as the zero snapshot, not as a 404.
//
// GET /api/usage/today
func (h *UsageHandler) HandleToday(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	daily, err := h.svc.Today(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, daily)
}

// HandleApps returns only the per-app breakdown of today's snapshot.
//
// GET /api/usage/apps
func (h *UsageHandler) HandleApps(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	apps, err := h.svc.Apps(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"apps": apps})
}
