// internal/app/process/backfill.go

package process

import (
	"context"

	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/backfill"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// BackfillApplier runs the history walker when the bot joins a channel.
type BackfillApplier struct {
	Walker *backfill.Walker
	Log    *zap.Logger
}

func (a *BackfillApplier) Kinds() []models.EventKind {
	return []models.EventKind{models.KindBackfillChannel}
}

func (a *BackfillApplier) Apply(ctx context.Context, env models.Envelope) error {
	var p BackfillChannelPayload
	if err := decodePayload(env, &p); err != nil {
		return err
	}

	n, err := a.Walker.Run(ctx, env.TenantID, p.ChannelID)
	if err != nil {
		return err
	}
	a.Log.Info("backfill: applied",
		zap.String("tenant", env.TenantID),
		zap.String("channel", p.ChannelID),
		zap.Int("processed", n))
	return nil
}
