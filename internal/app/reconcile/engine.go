// internal/app/reconcile/engine.go

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	groupstore "github.com/rollcallhq/rollcall/internal/app/store/groups"
	settingsstore "github.com/rollcallhq/rollcall/internal/app/store/settings"
	"github.com/rollcallhq/rollcall/internal/app/system/apperrors"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// Engine applies reconciliation plans against the group store.
type Engine struct {
	Groups   *groupstore.Store
	Settings *settingsstore.Store
	Log      *zap.Logger
}

// Submission is the structured editor's payload: the complete desired
// group set plus the tenant-level notification recipients.
type Submission struct {
	Groups          []Desired
	AdminIDs        []string
	ReportChannelID string

	// Version is the settings version the submission was built from.
	// A mismatch with the stored version means another admin saved in
	// between and the whole submission is rejected.
	Version int64
}

// Result reports which operations took effect. Writes are independent,
// so a failure partway through leaves earlier writes in place; Result
// says how far the apply got.
type Result struct {
	Created []string
	Updated []string
	Deleted []string
}

// SyncStructured validates and applies a complete-set submission.
//
// Order of checks matters: the admin-set validation and the version
// check both happen before any group write, so a rejected submission
// has no partial effect. Apply failures after that point are collected
// and returned alongside the partial Result.
func (e *Engine) SyncStructured(ctx context.Context, tenantID string, sub Submission) (Result, error) {
	var res Result

	if len(sub.AdminIDs) == 0 {
		return res, apperrors.Validation(
			"group sync with zero admin recipients",
			"Select at least one report recipient.",
		)
	}

	if err := e.Settings.CompareAndBumpVersion(ctx, tenantID, sub.Version); err != nil {
		if errors.Is(err, settingsstore.ErrVersionMismatch) {
			return res, apperrors.Conflict("group sync for %s built from stale settings version %d", tenantID, sub.Version)
		}
		return res, fmt.Errorf("verify settings version: %w", err)
	}
	if err := e.Settings.SetRecipients(ctx, tenantID, sub.AdminIDs, sub.ReportChannelID); err != nil {
		return res, fmt.Errorf("save recipients: %w", err)
	}

	existing, err := e.Groups.ListByTenant(ctx, tenantID)
	if err != nil {
		return res, fmt.Errorf("list groups: %w", err)
	}

	plan := Diff(existing, sub.Groups, ByID, true)
	return e.apply(ctx, tenantID, plan)
}

// UpsertByName serves the free-text flow: create the named group if it
// does not exist, otherwise update its member set. It never deletes.
func (e *Engine) UpsertByName(ctx context.Context, tenantID, name string, memberIDs []string) (created bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, apperrors.Validation("group upsert with empty name", "Enter a group name.")
	}

	cur, err := e.Groups.FindByName(ctx, tenantID, name)
	if errors.Is(err, groupstore.ErrNotFound) {
		_, err := e.Groups.Create(ctx, models.Group{
			TenantID:  tenantID,
			Name:      name,
			MemberIDs: memberIDs,
		})
		if err != nil {
			return false, fmt.Errorf("create group %q: %w", name, err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("find group %q: %w", name, err)
	}

	if cur.SameMembers(memberIDs) {
		return false, nil
	}
	if err := e.Groups.Update(ctx, tenantID, cur.ID, cur.Name, memberIDs, cur.AdminIDs); err != nil {
		return false, fmt.Errorf("update group %q: %w", name, err)
	}
	return false, nil
}

// apply executes the plan creates-first, continuing past individual
// failures so the Result reflects everything that did land.
func (e *Engine) apply(ctx context.Context, tenantID string, plan Plan) (Result, error) {
	var res Result
	var errs []error

	for _, d := range plan.Creates {
		g, err := e.Groups.Create(ctx, models.Group{
			TenantID:  tenantID,
			Name:      d.Name,
			MemberIDs: d.MemberIDs,
			AdminIDs:  d.AdminIDs,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("create %q: %w", d.Name, err))
			continue
		}
		res.Created = append(res.Created, g.ID)
	}

	for _, u := range plan.Updates {
		err := e.Groups.Update(ctx, tenantID, u.Existing.ID, u.Desired.Name, u.Desired.MemberIDs, u.Desired.AdminIDs)
		if err != nil {
			errs = append(errs, fmt.Errorf("update %q: %w", u.Existing.ID, err))
			continue
		}
		res.Updated = append(res.Updated, u.Existing.ID)
	}

	for _, g := range plan.Deletes {
		if _, err := e.Groups.Delete(ctx, tenantID, g.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete %q: %w", g.ID, err))
			continue
		}
		res.Deleted = append(res.Deleted, g.ID)
	}

	if len(errs) > 0 {
		e.Log.Warn("group sync applied partially",
			zap.String("tenant", tenantID),
			zap.Int("created", len(res.Created)),
			zap.Int("updated", len(res.Updated)),
			zap.Int("deleted", len(res.Deleted)),
			zap.Int("failed", len(errs)))
		return res, errors.Join(errs...)
	}
	return res, nil
}
