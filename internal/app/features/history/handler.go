// internal/app/features/history/handler.go

// Package history serves a user's monthly attendance records.
package history

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	attendancestore "github.com/rollcallhq/rollcall/internal/app/store/attendance"
	"github.com/rollcallhq/rollcall/internal/app/system/chat"
	"github.com/rollcallhq/rollcall/internal/app/system/timeouts"
)

// Handler holds dependencies for the history endpoint.
type Handler struct {
	Attendance *attendancestore.Store
	Chat       chat.Client
	Log        *zap.Logger
}

// NewHandler constructs a history Handler.
func NewHandler(att *attendancestore.Store, chatc chat.Client, logger *zap.Logger) *Handler {
	return &Handler{Attendance: att, Chat: chatc, Log: logger}
}

type historyEntry struct {
	Date   string `json:"date"`
	Status string `json:"status"`
	Label  string `json:"label"`
	Note   string `json:"note,omitempty"`
}

type historyResponse struct {
	TenantID string         `json:"tenant_id"`
	UserID   string         `json:"user_id"`
	Month    string         `json:"month"`
	Entries  []historyEntry `json:"entries"`
}

// ServeUserMonth handles GET /history/{tenantID}/{userID}?month=2026-09.
//
// Lookup prefers the user's email so records follow a person who was
// tracked under a different platform id before; a failed email lookup
// falls back to the raw user id.
func (h *Handler) ServeUserMonth(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	userID := chi.URLParam(r, "userID")
	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		http.Error(w, "bad month", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	email, err := h.Chat.UserEmail(ctx, tenantID, userID)
	if err != nil {
		h.Log.Warn("history: email lookup failed",
			zap.String("tenant", tenantID),
			zap.String("user", userID),
			zap.Error(err))
		email = ""
	}

	records, err := h.Attendance.ListByUserMonth(ctx, tenantID, userID, email, month)
	if err != nil {
		h.Log.Error("history: query failed",
			zap.String("tenant", tenantID),
			zap.String("user", userID),
			zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := historyResponse{
		TenantID: tenantID,
		UserID:   userID,
		Month:    month,
		Entries:  make([]historyEntry, 0, len(records)),
	}
	for _, rec := range records {
		resp.Entries = append(resp.Entries, historyEntry{
			Date:   rec.Date,
			Status: string(rec.Status),
			Label:  rec.Status.Label(),
			Note:   rec.Note,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
