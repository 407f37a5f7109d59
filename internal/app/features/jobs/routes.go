// internal/app/features/jobs/routes.go
package jobs

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rollcallhq/rollcall/internal/app/system/ratelimit"
)

// Routes returns a subrouter for operational job triggers. The
// endpoint is limited per caller; a scheduler fires it once a day and
// anything chattier is a misconfiguration.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(ratelimit.New(10, time.Minute).Middleware)
	r.Post("/report", h.ServeReport) // mounted under /jobs
	return r
}
