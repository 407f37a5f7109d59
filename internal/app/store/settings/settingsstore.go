// internal/app/store/settings/settingsstore.go
package settingsstore

import (
	"context"
	"errors"
	"time"

	"github.com/rollcallhq/rollcall/internal/app/system/apperrors"
	"github.com/rollcallhq/rollcall/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the tenant_settings collection. Each tenant
// has one settings document.
type Store struct {
	c *mongo.Collection
}

// ErrVersionMismatch is returned by CompareAndBumpVersion when the
// caller's token no longer matches the stored version.
var ErrVersionMismatch = errors.New("settings version mismatch")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tenant_settings")}
}

// Get returns the settings for a tenant. Missing settings come back as
// an empty document rather than an error, so first-run tenants work.
func (s *Store) Get(ctx context.Context, tenantID string) (models.TenantSettings, error) {
	var cfg models.TenantSettings
	err := s.c.FindOne(ctx, bson.M{"tenant_id": tenantID}).Decode(&cfg)
	if err == mongo.ErrNoDocuments {
		return models.TenantSettings{TenantID: tenantID, AdminIDs: []string{}}, nil
	}
	if err != nil {
		return models.TenantSettings{}, err
	}
	return cfg, nil
}

// Save upserts the settings document. An empty admin set is rejected:
// once settings exist the tenant must always have at least one report
// recipient.
func (s *Store) Save(ctx context.Context, tenantID string, adminIDs []string, reportChannelID string) error {
	if len(adminIDs) == 0 {
		return apperrors.Validation(
			"settings save with zero admin ids",
			"Select at least one report recipient.",
		)
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"tenant_id":         tenantID,
			"admin_ids":         adminIDs,
			"report_channel_id": reportChannelID,
			"updated_at":        now,
		},
		"$inc": bson.M{"version": 1},
		"$setOnInsert": bson.M{
			"_id": primitive.NewObjectID(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{"tenant_id": tenantID}, update, opts)
	return err
}

// ListTenantIDs returns every tenant that has saved settings. The
// report scheduler fans out over this list.
func (s *Store) ListTenantIDs(ctx context.Context) ([]string, error) {
	raw, err := s.c.Distinct(ctx, "tenant_id", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok && id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}

// SetRecipients writes the notification recipients without touching
// the version counter. Used after CompareAndBumpVersion has already
// accounted for the write.
func (s *Store) SetRecipients(ctx context.Context, tenantID string, adminIDs []string, reportChannelID string) error {
	if len(adminIDs) == 0 {
		return apperrors.Validation(
			"recipients update with zero admin ids",
			"Select at least one report recipient.",
		)
	}

	update := bson.M{
		"$set": bson.M{
			"tenant_id":         tenantID,
			"admin_ids":         adminIDs,
			"report_channel_id": reportChannelID,
			"updated_at":        time.Now().UTC(),
		},
		"$setOnInsert": bson.M{
			"_id": primitive.NewObjectID(),
			// A document created here must carry a version field, or
			// the CAS filter in CompareAndBumpVersion never matches it
			// again and every later sync is rejected as stale.
			"version": int64(0),
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{"tenant_id": tenantID}, update, opts)
	return err
}

// CompareAndBumpVersion atomically verifies the caller's version token
// and increments it. A mismatch means another admin saved first and the
// submission was built from stale state.
func (s *Store) CompareAndBumpVersion(ctx context.Context, tenantID string, version int64) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"tenant_id": tenantID, "version": version},
		bson.M{"$inc": bson.M{"version": 1}, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish "no settings yet" (version 0 allowed) from stale.
		if version == 0 {
			count, cerr := s.c.CountDocuments(ctx, bson.M{"tenant_id": tenantID})
			if cerr != nil {
				return cerr
			}
			if count == 0 {
				return nil
			}
		}
		return ErrVersionMismatch
	}
	return nil
}
