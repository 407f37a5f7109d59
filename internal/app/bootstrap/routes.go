// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	eventsfeature "github.com/rollcallhq/rollcall/internal/app/features/events"
	healthfeature "github.com/rollcallhq/rollcall/internal/app/features/health"
	historyfeature "github.com/rollcallhq/rollcall/internal/app/features/history"
	jobsfeature "github.com/rollcallhq/rollcall/internal/app/features/jobs"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed, so the dispatcher and stores assembled
// in Startup are available here.
//
// The HTTP surface is small: the signed webhook endpoints the chat
// platform calls, an internal job trigger, a read-only history API, and
// the health check. Everything else happens on the queue.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Queue, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Inbound webhooks: signature-verified, dispatched to the queue
	eventsHandler := eventsfeature.NewHandler(runtime.dispatcher, appCfg.BotUserID, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler, appCfg.SigningSecret, logger))

	// Internal job trigger (report fan-out for schedulers and ops)
	jobsHandler := jobsfeature.NewHandler(runtime.settings, runtime.dispatcher, logger)
	r.Mount("/jobs", jobsfeature.Routes(jobsHandler))

	// Read-only attendance history
	historyHandler := historyfeature.NewHandler(runtime.attendance, runtime.chat, logger)
	r.Mount("/history", historyfeature.Routes(historyHandler))

	return r, nil
}
