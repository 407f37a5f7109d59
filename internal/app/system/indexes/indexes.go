// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureAttendance(ctx, db); err != nil {
		problems = append(problems, "attendance: "+err.Error())
	}
	if err := ensureGroups(ctx, db); err != nil {
		problems = append(problems, "groups: "+err.Error())
	}
	if err := ensureTenantSettings(ctx, db); err != nil {
		problems = append(problems, "tenant_settings: "+err.Error())
	}
	if err := ensureProcessedChannels(ctx, db); err != nil {
		problems = append(problems, "processed_channels: "+err.Error())
	}
	if err := ensureProcessedEvents(ctx, db); err != nil {
		problems = append(problems, "processed_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name               string `bson:"name"`
	Key                bson.D `bson:"key"`
	Unique             *bool  `bson:"unique,omitempty"`
	ExpireAfterSeconds *int32 `bson:"expireAfterSeconds,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

func sameInt32Ptr(a, b *int32) bool {
	var av, bv int32
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// sameOptions reports whether an existing index can be reused as-is.
func sameOptions(desired options.IndexOptions, ex existingIndex) bool {
	return sameBoolPtr(desired.Unique, ex.Unique) &&
		sameInt32Ptr(desired.ExpireAfterSeconds, ex.ExpireAfterSeconds)
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, desired []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
	}

	var errs []string
	for _, m := range desired {
		var opts options.IndexOptions
		if m.Options != nil {
			opts = *m.Options
		}
		sig := keySig(m.Keys.(bson.D))

		if ex, ok := existing[sig]; ok {
			if sameOptions(opts, ex) {
				continue
			}
			// Options changed (e.g., upgrading to unique, or a new
			// TTL). Drop and recreate with the desired definition.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), ex.Name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			name := ""
			if opts.Name != nil {
				name = *opts.Name
			}
			if strings.Contains(err.Error(), "E11000") || strings.Contains(strings.ToLower(err.Error()), "duplicate key") {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index, duplicates present", coll.Name(), name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("keys", sig),
			zap.Bool("unique", opts.Unique != nil && *opts.Unique))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Per-collection index sets                                                  */
/* -------------------------------------------------------------------------- */

func ensureAttendance(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("attendance")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Natural key: one record per (tenant, user, date). Upserts
		// depend on this for last-write-wins without duplicates.
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_attendance_tenant_user_date"),
		},
		// Daily report reads: all records for a tenant on one date.
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("idx_attendance_tenant_date"),
		},
		// Monthly history by email (prefix regex on date).
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "email", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_attendance_tenant_email_date"),
		},
	})
}

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("groups")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// The free-text flow keys on the folded name, so names must be
		// unique per tenant.
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_groups_tenant_nameci"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}},
			Options: options.Index().SetName("idx_groups_tenant"),
		},
	})
}

func ensureTenantSettings(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("tenant_settings")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One settings document per tenant; the version CAS relies on
		// there being exactly one to match.
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_settings_tenant"),
		},
	})
}

func ensureProcessedChannels(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("processed_channels")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// At-most-once backfill: the second Mark for a channel hits
		// this and becomes a no-op.
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "channel_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_processed_channels"),
		},
	})
}

func ensureProcessedEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("processed_events")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Dedup claims expire after a week, far beyond any broker's
		// redelivery horizon, so the collection stays bounded.
		{
			Keys:    bson.D{{Key: "claimed_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(7 * 24 * 3600).SetName("ttl_processed_events"),
		},
	})
}
