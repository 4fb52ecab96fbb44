// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielhkuo/retrobot/db"
	"github.com/danielhkuo/retrobot/middleware"
	"github.com/danielhkuo/retrobot/models"
)

// maxHistoryLimit bounds GET /history?limit=N
const maxHistoryLimit = 200

// StatusSource reports the active session.
type StatusSource interface {
	Snapshot() (models.StatusResponse, bool)
}

// HistorySource reads archived sessions. *db.Archive implements it.
type HistorySource interface {
	ListSessions(ctx context.Context, limit int) ([]models.ArchivedSession, error)
	Session(ctx context.Context, id string) (models.ArchivedSession, error)
	Results(ctx context.Context, sessionID string) ([]models.RankedResponse, error)
}

type OpsHandler struct {
	status  StatusSource
	history HistorySource
}

// NewOpsHandler serves status from status and history from history. A nil
// history means the archive is disabled.
func NewOpsHandler(status StatusSource, history HistorySource) *OpsHandler {
	return &OpsHandler{status: status, history: history}
}

// Health handles GET /health
func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Status handles GET /session
// Returns 404 when no session is active
func (h *OpsHandler) Status(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.status.Snapshot()
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "No active retro session")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, snap)
}

// History handles GET /history?limit=N
func (h *OpsHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Archive is disabled")
		return
	}

	limit := db.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	sessions, err := h.history.ListSessions(r.Context(), limit)
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.HistoryResponse{Sessions: sessions})
}

// HistoryDetail handles GET /history/{id}
func (h *OpsHandler) HistoryDetail(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Archive is disabled")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	session, err := h.history.Session(r.Context(), id)
	if err != nil {
		middleware.AppError(w, err)
		return
	}
	results, err := h.history.Results(r.Context(), id)
	if err != nil {
		middleware.AppError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HistoryDetailResponse{
		Session: session,
		Results: results,
	})
}
