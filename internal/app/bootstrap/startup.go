// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/rollcallhq/rollcall/internal/app/backfill"
	"github.com/rollcallhq/rollcall/internal/app/dispatch"
	"github.com/rollcallhq/rollcall/internal/app/ingest"
	"github.com/rollcallhq/rollcall/internal/app/process"
	"github.com/rollcallhq/rollcall/internal/app/reconcile"
	attendancestore "github.com/rollcallhq/rollcall/internal/app/store/attendance"
	channelstore "github.com/rollcallhq/rollcall/internal/app/store/channels"
	dedupstore "github.com/rollcallhq/rollcall/internal/app/store/dedup"
	groupstore "github.com/rollcallhq/rollcall/internal/app/store/groups"
	settingsstore "github.com/rollcallhq/rollcall/internal/app/store/settings"
	"github.com/rollcallhq/rollcall/internal/app/system/chat"
	"github.com/rollcallhq/rollcall/internal/app/system/extract"
	"github.com/rollcallhq/rollcall/internal/app/system/workers"
	"go.uber.org/zap"
)

// runtime holds the long-lived pieces Startup assembles. BuildHandler
// mounts the dispatcher-facing features from it and Shutdown stops the
// background workers through it. WAFFLE passes DBDeps by value between
// hooks, so anything with goroutines to stop lives here instead.
var runtime struct {
	dispatcher *dispatch.Dispatcher
	settings   *settingsstore.Store
	attendance *attendancestore.Store
	chat       chat.Client

	consumers *workers.Consumer
	clock     *workers.ReportClock
}

// Startup assembles the event-processing machinery after DB connections
// and schema setup are complete, but before the HTTP handler is built:
// the chat and extraction clients, the ingest pipeline, the appliers,
// the idempotent processor, the dispatcher, and the background workers.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	attendance := attendancestore.New(db)
	groups := groupstore.New(db)
	settings := settingsstore.New(db)
	markers := channelstore.New(db)
	dedup := dedupstore.New(db)

	chatClient := chat.NewHTTPClient(appCfg.ChatBaseURL, appCfg.ChatToken, 10*time.Second, logger)
	extractor := extract.NewHTTPExtractor(appCfg.ExtractorURL, appCfg.ExtractorKey, 30*time.Second, logger)

	pipeline := &ingest.Pipeline{
		Extractor:  extractor,
		Attendance: attendance,
		Chat:       chatClient,
		Log:        logger,
	}

	walker := &backfill.Walker{
		Chat:       chatClient,
		Pipeline:   pipeline,
		Markers:    markers,
		WindowDays: appCfg.BackfillWindowDays,
		Log:        logger,
	}

	engine := &reconcile.Engine{
		Groups:   groups,
		Settings: settings,
		Log:      logger,
	}

	proc := process.New(logger, dedup,
		&process.MessageApplier{Pipeline: pipeline},
		&process.AttendanceApplier{Attendance: attendance, Chat: chatClient, Log: logger},
		&process.GroupsApplier{Engine: engine, Settings: settings, Chat: chatClient, Log: logger},
		&process.BackfillApplier{Walker: walker, Log: logger},
		&process.ReportApplier{Attendance: attendance, Groups: groups, Settings: settings, Chat: chatClient, Log: logger},
	)

	dispatcher := &dispatch.Dispatcher{
		Queue:          deps.Queue,
		Fallback:       proc,
		PublishTimeout: appCfg.PublishTimeout,
		Log:            logger,
	}

	consumers := workers.NewConsumer(deps.Queue, proc, logger, appCfg.WorkerCount)
	consumers.Start()

	// Timezone was validated with the config, so this cannot fail here.
	loc, err := time.LoadLocation(appCfg.ReportTimezone)
	if err != nil {
		return err
	}
	clock := workers.NewReportClock(settings, dispatcher, logger, appCfg.ReportTime, loc)
	clock.Start()

	runtime.dispatcher = dispatcher
	runtime.settings = settings
	runtime.attendance = attendance
	runtime.chat = chatClient
	runtime.consumers = consumers
	runtime.clock = clock

	logger.Info("event machinery started",
		zap.Int("workers", appCfg.WorkerCount),
		zap.String("report_time", appCfg.ReportTime),
		zap.String("report_timezone", appCfg.ReportTimezone))

	return nil
}
