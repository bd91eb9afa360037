package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/detox-companion/internal/auth"
	"github.com/sakif/detox-companion/internal/service"
)

// AnalyzeHandler fronts the usage-analysis orchestration.
type AnalyzeHandler struct {
	svc    *service.AnalyzeService
	logger *slog.Logger
}

// NewAnalyzeHandler creates an AnalyzeHandler.
func NewAnalyzeHandler(svc *service.AnalyzeService, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{svc: svc, logger: logger}
}

// HandleAnalyze submits a usage vector to the classifier and returns its
// verdict verbatim. The vector is [screen_time, session_duration,
// app_switches, night_activity] — exactly four numbers.
//
// POST /api/analyze
// Body: {"usage":[360,45,120,30]}
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req struct {
		Usage []float64 `json:"usage"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.svc.Analyze(r.Context(), userID, req.Usage)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleHistory returns the user's analyzed events in chronological
// order.
//
// GET /api/analyze/history
func (h *AnalyzeHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	events, err := h.svc.History(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": events})
}
