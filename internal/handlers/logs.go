package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sand/bot-marketplace/backend/internal/core/ports"
	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/usecases"
)

type createLogRequest struct {
	Type    entities.LogType `json:"type"`
	Message string           `json:"message"`
	Details json.RawMessage  `json:"details,omitempty"`
}

// GetLogs returns system log entries, most recent first. ?limit=0 returns all
func (h *HTTPHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	limit := ports.DefaultLogsPageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, r, "get logs", fmt.Errorf("%w: invalid limit %q", usecases.ErrInvalidInput, raw))
			return
		}
		limit = parsed
	}

	logs, err := h.services.Logs.GetLogs(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, "get logs", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, logs)
}

// CreateLog records a client side event with the caller id attached
func (h *HTTPHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	var req createLogRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "write log", err)
		return
	}

	details := map[string]any{"user": callerID(r)}
	if len(req.Details) > 0 {
		details["client"] = req.Details
	}

	entry, err := h.services.Logs.Log(r.Context(), req.Type, req.Message, details)
	if err != nil {
		h.writeError(w, r, "write log", err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, entry)
}

func (h *HTTPHandler) ClearLogs(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Logs.ClearLogs(r.Context()); err != nil {
		h.writeError(w, r, "clear logs", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.services.Logs.Dashboard(r.Context())
	if err != nil {
		h.writeError(w, r, "get dashboard", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, stats)
}

// IncrementViews counts one Mini-App page view
func (h *HTTPHandler) IncrementViews(w http.ResponseWriter, r *http.Request) {
	stats, err := h.services.Logs.IncrementView(r.Context())
	if err != nil {
		h.writeError(w, r, "count view", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]int64{"totalViews": stats.TotalViews})
}
