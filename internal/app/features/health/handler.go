// internal/app/features/health/handler.go
package health

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/system/timeouts"
)

// QueueProbe reports the broker connection state.
type QueueProbe interface {
	Connected() bool
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Queue  QueueProbe
	Log    *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(client *mongo.Client, q QueueProbe, logger *zap.Logger) *Handler {
	return &Handler{Client: client, Queue: q, Log: logger}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Queue    string `json:"queue"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// The store being down is fatal (503): nothing works without it. The
// queue being down degrades to inline processing, so it is reported
// but still returns 200.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{Status: "ok", Database: "connected", Queue: "connected"}
	if h.Queue != nil && !h.Queue.Connected() {
		resp.Status = "degraded"
		resp.Queue = "disconnected"
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health check failed: database unreachable", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Error = err.Error()
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	_ = json.NewEncoder(w).Encode(resp)
}
