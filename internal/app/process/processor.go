// internal/app/process/processor.go

// Package process consumes event envelopes and applies them. Handlers
// register by kind; the processor owns the cross-cutting concerns so
// individual handlers stay small: the idempotency guard, payload
// validation, and the retry decision for failures.
package process

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/system/apperrors"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// Applier handles one or more envelope kinds.
type Applier interface {
	Kinds() []models.EventKind
	Apply(ctx context.Context, env models.Envelope) error
}

// Guard is the durable idempotency check consulted before any effect
// that is not naturally idempotent.
type Guard interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Processor routes envelopes to their appliers.
type Processor struct {
	guard    Guard
	appliers map[models.EventKind]Applier
	log      *zap.Logger
}

// New builds a processor from the given appliers. Registering two
// appliers for the same kind is a wiring bug and panics at startup.
func New(log *zap.Logger, guard Guard, appliers ...Applier) *Processor {
	p := &Processor{
		guard:    guard,
		appliers: make(map[models.EventKind]Applier),
		log:      log,
	}
	for _, a := range appliers {
		for _, k := range a.Kinds() {
			if _, dup := p.appliers[k]; dup {
				panic(fmt.Sprintf("process: two appliers registered for kind %q", k))
			}
			p.appliers[k] = a
		}
	}
	return p
}

// Handle applies one envelope.
//
// The return value is the redelivery decision: nil means the envelope
// is finished (applied, duplicate, or permanently unprocessable) and
// must be acked; non-nil means the transport should redeliver.
// Handlers are re-invoked from the beginning on redelivery, so a
// failed apply releases its claim first.
func (p *Processor) Handle(ctx context.Context, env models.Envelope) error {
	applier, ok := p.appliers[env.Kind]
	if !ok {
		// Redelivering an unroutable envelope can never succeed.
		p.log.Error("process: no applier for kind",
			zap.String("kind", string(env.Kind)),
			zap.String("tenant", env.TenantID))
		return nil
	}

	if env.DedupKey != "" {
		won, err := p.guard.Claim(ctx, env.DedupKey)
		if err != nil {
			return apperrors.Transient("dedup claim", err)
		}
		if !won {
			p.log.Info("process: duplicate envelope dropped",
				zap.String("kind", string(env.Kind)),
				zap.String("tenant", env.TenantID),
				zap.String("dedup_key", env.DedupKey))
			return nil
		}
	}

	err := applier.Apply(ctx, env)
	if err == nil {
		return nil
	}

	// Business rejections are permanent for this envelope: the same
	// input will fail the same way on every redelivery, so ack it.
	// The claim stays in place; an operator retriggering the action
	// produces a fresh dedup key.
	if apperrors.IsValidation(err) || apperrors.IsAuthorization(err) || apperrors.IsConflict(err) {
		p.log.Warn("process: envelope rejected",
			zap.String("kind", string(env.Kind)),
			zap.String("tenant", env.TenantID),
			zap.Error(err))
		return nil
	}

	// Anything else is worth a retry. Release the claim so the
	// redelivered envelope is not mistaken for a duplicate.
	if env.DedupKey != "" {
		if rerr := p.guard.Release(ctx, env.DedupKey); rerr != nil {
			p.log.Error("process: claim release failed, redelivery will be dropped",
				zap.String("dedup_key", env.DedupKey),
				zap.Error(rerr))
		}
	}
	p.log.Error("process: apply failed",
		zap.String("kind", string(env.Kind)),
		zap.String("tenant", env.TenantID),
		zap.Error(err))
	return err
}

// validate is shared by the handlers for payload shape checks.
var validate = validator.New(validator.WithRequiredStructEnabled())

// decodePayload unmarshals and validates an envelope payload. Failures
// come back as validation errors so Handle acks instead of retrying.
func decodePayload(env models.Envelope, dst any) error {
	if err := env.DecodePayload(dst); err != nil {
		return apperrors.Validationf("malformed %s payload: %v", env.Kind, err)
	}
	if err := validate.Struct(dst); err != nil {
		return apperrors.Validation(
			fmt.Sprintf("invalid %s payload: %v", env.Kind, err),
			"The request was missing required fields.",
		)
	}
	return nil
}
