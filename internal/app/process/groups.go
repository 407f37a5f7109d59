// internal/app/process/groups.go

package process

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/reconcile"
	settingsstore "github.com/rollcallhq/rollcall/internal/app/store/settings"
	"github.com/rollcallhq/rollcall/internal/app/system/apperrors"
	"github.com/rollcallhq/rollcall/internal/app/system/chat"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// GroupsApplier routes the two sync flows to the reconciliation
// engine and reports rejections back to the submitting admin.
type GroupsApplier struct {
	Engine   *reconcile.Engine
	Settings *settingsstore.Store
	Chat     chat.Client
	Log      *zap.Logger
}

func (a *GroupsApplier) Kinds() []models.EventKind {
	return []models.EventKind{models.KindSyncGroups}
}

func (a *GroupsApplier) Apply(ctx context.Context, env models.Envelope) error {
	var p SyncGroupsPayload
	if err := decodePayload(env, &p); err != nil {
		a.feedback(ctx, env.TenantID, p, err)
		return err
	}

	if err := a.authorize(ctx, env.TenantID, p.ActorID); err != nil {
		a.feedback(ctx, env.TenantID, p, err)
		return err
	}

	var err error
	switch p.Mode {
	case SyncModeStructured:
		err = a.structured(ctx, env.TenantID, p)
	case SyncModeUpsert:
		_, err = a.Engine.UpsertByName(ctx, env.TenantID, p.Name, p.MemberIDs)
	default:
		err = apperrors.Validationf("unknown sync mode %q", p.Mode)
	}

	if err != nil && (apperrors.IsValidation(err) || apperrors.IsConflict(err)) {
		a.feedback(ctx, env.TenantID, p, err)
	}
	return err
}

func (a *GroupsApplier) structured(ctx context.Context, tenantID string, p SyncGroupsPayload) error {
	desired := make([]reconcile.Desired, 0, len(p.Groups))
	for _, g := range p.Groups {
		desired = append(desired, reconcile.Desired{
			ID:        g.ID,
			Name:      g.Name,
			MemberIDs: g.MemberIDs,
			AdminIDs:  g.AdminIDs,
		})
	}

	res, err := a.Engine.SyncStructured(ctx, tenantID, reconcile.Submission{
		Groups:          desired,
		AdminIDs:        p.AdminIDs,
		ReportChannelID: p.ReportChannelID,
		Version:         p.Version,
	})
	if err != nil {
		return err
	}
	a.Log.Info("groups: sync applied",
		zap.String("tenant", tenantID),
		zap.Int("created", len(res.Created)),
		zap.Int("updated", len(res.Updated)),
		zap.Int("deleted", len(res.Deleted)))
	return nil
}

// authorize lets the submission through only when the actor is one of
// the tenant's admins. A tenant with no settings yet has no admin set
// to check against, so bootstrap submissions pass.
func (a *GroupsApplier) authorize(ctx context.Context, tenantID, actorID string) error {
	set, err := a.Settings.Get(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if len(set.AdminIDs) == 0 {
		return nil
	}
	for _, id := range set.AdminIDs {
		if id == actorID {
			return nil
		}
	}
	return apperrors.Authorization(
		fmt.Sprintf("user %s is not an admin of tenant %s", actorID, tenantID),
		"Only report recipients can change groups.",
	)
}

func (a *GroupsApplier) feedback(ctx context.Context, tenantID string, p SyncGroupsPayload, cause error) {
	if p.ChannelID == "" || p.ActorID == "" {
		return
	}
	if err := a.Chat.PostEphemeral(ctx, tenantID, p.ChannelID, p.ActorID, apperrors.UserMessage(cause)); err != nil {
		a.Log.Warn("groups: feedback failed",
			zap.String("tenant", tenantID),
			zap.String("user", p.ActorID),
			zap.Error(err))
	}
}
