// internal/app/features/jobs/handler.go

// Package jobs exposes operational triggers for schedulers and
// operators: fan out the daily report, or kick a backfill by hand.
package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/dispatch"
	"github.com/rollcallhq/rollcall/internal/app/process"
	"github.com/rollcallhq/rollcall/internal/app/system/timeouts"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// TenantLister enumerates tenants for fan-out jobs.
type TenantLister interface {
	ListTenantIDs(ctx context.Context) ([]string, error)
}

// Handler holds dependencies for the job endpoints.
type Handler struct {
	Tenants    TenantLister
	Dispatcher *dispatch.Dispatcher
	Log        *zap.Logger
}

// NewHandler constructs a jobs Handler.
func NewHandler(tenants TenantLister, d *dispatch.Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{Tenants: tenants, Dispatcher: d, Log: logger}
}

type reportJobRequest struct {
	// Date defaults to today. The same date fired twice dedupes in
	// the processor, so re-running the job is safe.
	Date string `json:"date,omitempty"`

	// TenantID limits the run to one tenant; empty fans out to all.
	TenantID string `json:"tenant_id,omitempty"`
}

type reportJobResponse struct {
	Date       string `json:"date"`
	Dispatched int    `json:"dispatched"`
}

// ServeReport handles POST /jobs/report.
func (h *Handler) ServeReport(w http.ResponseWriter, r *http.Request) {
	var req reportJobRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
	}
	date := req.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, "bad date", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tenants := []string{req.TenantID}
	if req.TenantID == "" {
		var err error
		tenants, err = h.Tenants.ListTenantIDs(ctx)
		if err != nil {
			h.Log.Error("jobs: tenant listing failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	dispatched := 0
	for _, tenant := range tenants {
		env, err := models.NewEnvelope(
			models.KindGenerateReport,
			tenant,
			process.GenerateReportPayload{Date: date},
			models.DedupKey(models.KindGenerateReport, tenant, date),
		)
		if err != nil {
			h.Log.Error("jobs: envelope build failed",
				zap.String("tenant", tenant),
				zap.Error(err))
			continue
		}
		if err := h.Dispatcher.Dispatch(ctx, env); err != nil {
			h.Log.Error("jobs: dispatch failed",
				zap.String("tenant", tenant),
				zap.Error(err))
			continue
		}
		dispatched++
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reportJobResponse{Date: date, Dispatched: dispatched})
}
