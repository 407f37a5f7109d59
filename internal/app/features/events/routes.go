// internal/app/features/events/routes.go
package events

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns a subrouter for the trigger platform's webhooks. Every
// route sits behind signature verification.
func Routes(h *Handler, signingSecret string, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(VerifySignature(signingSecret, logger))
	r.Post("/", h.ServeEvent)                    // mounted under /events
	r.Post("/interactions", h.ServeInteraction)
	return r
}
