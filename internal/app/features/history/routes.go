// internal/app/features/history/routes.go
package history

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rollcallhq/rollcall/internal/app/system/ratelimit"
)

// Routes returns a subrouter for attendance history lookups.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(ratelimit.New(120, time.Minute).Middleware)
	r.Get("/{tenantID}/{userID}", h.ServeUserMonth) // mounted under /history
	return r
}
