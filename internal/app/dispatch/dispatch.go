// internal/app/dispatch/dispatch.go

// Package dispatch runs on the trigger source's request path. Its job
// is to get off that path fast: do only the checks cheap enough for
// the response budget, hand everything else to the queue, and degrade
// to an inline run rather than drop user work when the broker is down.
package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/queue"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// Handler applies an envelope. The processor implements it; the
// dispatcher only calls it on the synchronous fallback path.
type Handler interface {
	Handle(ctx context.Context, env models.Envelope) error
}

// Dispatcher publishes envelopes with a hard publish deadline.
type Dispatcher struct {
	Queue    queue.Publisher
	Fallback Handler

	// PublishTimeout bounds the only blocking call on the trigger
	// path. Zero means the default two seconds, comfortably inside
	// the source platform's response deadline.
	PublishTimeout time.Duration

	Log *zap.Logger
}

const defaultPublishTimeout = 2 * time.Second

// Dispatch publishes env, falling back to an inline synchronous run
// when the publish fails. The returned error is nil whenever the work
// was either queued or completed inline; the caller can acknowledge
// the trigger in both cases.
func (d *Dispatcher) Dispatch(ctx context.Context, env models.Envelope) error {
	data, err := env.Encode()
	if err != nil {
		return err
	}

	timeout := d.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	pubCtx, cancel := context.WithTimeout(ctx, timeout)
	id, err := d.Queue.Publish(pubCtx, data)
	cancel()
	if err == nil {
		d.Log.Debug("dispatch: queued",
			zap.String("kind", string(env.Kind)),
			zap.String("tenant", env.TenantID),
			zap.String("msg_id", id))
		return nil
	}

	// The broker being down must not lose a user-initiated request.
	// Run the handler inline; the processor's own idempotency guard
	// makes this safe even if the publish actually landed.
	d.Log.Warn("dispatch: publish failed, running inline",
		zap.String("kind", string(env.Kind)),
		zap.String("tenant", env.TenantID),
		zap.Error(err))

	if ferr := d.Fallback.Handle(ctx, env); ferr != nil {
		d.Log.Error("dispatch: inline fallback failed",
			zap.String("kind", string(env.Kind)),
			zap.String("tenant", env.TenantID),
			zap.Error(ferr))
		return ferr
	}
	return nil
}
