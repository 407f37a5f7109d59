// internal/app/system/workers/reportclock.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/dispatch"
	"github.com/rollcallhq/rollcall/internal/app/process"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// TenantLister enumerates the tenants the daily report fans out over.
type TenantLister interface {
	ListTenantIDs(ctx context.Context) ([]string, error)
}

// ReportClock fires the daily report at a fixed wall-clock time. It
// ticks every second and fires on the first tick at or after the
// configured time; the dedup key (kind, tenant, date) makes an
// accidental double fire harmless.
type ReportClock struct {
	tenants    TenantLister
	dispatcher *dispatch.Dispatcher
	log        *zap.Logger

	// at is the fire time formatted "15:04:05" in loc.
	at  string
	loc *time.Location

	lastFired string // date of the last fire, "2006-01-02"
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewReportClock creates the scheduler. at is "HH:MM" or "HH:MM:SS".
func NewReportClock(tenants TenantLister, d *dispatch.Dispatcher, logger *zap.Logger, at string, loc *time.Location) *ReportClock {
	if len(at) == 5 {
		at += ":00"
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReportClock{
		tenants:    tenants,
		dispatcher: d,
		log:        logger,
		at:         at,
		loc:        loc,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the clock loop.
func (w *ReportClock) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("report clock started", zap.String("at", w.at))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *ReportClock) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("report clock stopped")
}

func (w *ReportClock) run() {
	defer w.wg.Done()

	// A start after today's fire time skips today; that report went
	// out before the restart.
	startup := time.Now().In(w.loc)
	if startup.Format("15:04:05") >= w.at {
		w.lastFired = startup.Format("2006-01-02")
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case now := <-ticker.C:
			local := now.In(w.loc)
			if !w.due(local) {
				continue
			}
			date := local.Format("2006-01-02")
			w.lastFired = date
			w.fire(date)
		}
	}
}

// due reports whether the report should fire at the given local time:
// at or past the configured time and not yet fired today. The check is
// an ordering rather than an equality so a tick dropped in the exact
// target second does not skip the whole day. Zero-padded clock strings
// compare chronologically.
func (w *ReportClock) due(local time.Time) bool {
	if local.Format("2006-01-02") == w.lastFired {
		return false
	}
	return local.Format("15:04:05") >= w.at
}

func (w *ReportClock) fire(date string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tenants, err := w.tenants.ListTenantIDs(ctx)
	if err != nil {
		w.log.Error("report clock: tenant listing failed", zap.Error(err))
		return
	}

	for _, tenant := range tenants {
		env, err := models.NewEnvelope(
			models.KindGenerateReport,
			tenant,
			process.GenerateReportPayload{Date: date},
			models.DedupKey(models.KindGenerateReport, tenant, date),
		)
		if err != nil {
			w.log.Error("report clock: envelope build failed",
				zap.String("tenant", tenant),
				zap.Error(err))
			continue
		}
		if err := w.dispatcher.Dispatch(ctx, env); err != nil {
			w.log.Error("report clock: dispatch failed",
				zap.String("tenant", tenant),
				zap.Error(err))
		}
	}
	w.log.Info("report clock fired",
		zap.String("date", date),
		zap.Int("tenants", len(tenants)))
}
