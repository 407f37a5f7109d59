// internal/domain/models/settings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TenantSettings holds per-tenant configuration: the report recipients
// and the channel the daily summary is posted to.
//
// The invariant enforced at save time is that AdminIDs is never empty
// once settings have been written, since an empty recipient list would make
// the tenant's notifications undeliverable.
type TenantSettings struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID string             `bson:"tenant_id" json:"tenant_id"`

	AdminIDs        []string `bson:"admin_ids" json:"admin_ids"`
	ReportChannelID string   `bson:"report_channel_id" json:"report_channel_id"`

	// Version is the optimistic-concurrency token carried by group-sync
	// submissions. A submission built from a stale version is rejected.
	Version int64 `bson:"version" json:"version"`

	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ChannelMarker records that a channel's history backfill already ran.
// Written once per (tenant, channel); checked before every attempt.
type ChannelMarker struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID    string             `bson:"tenant_id" json:"tenant_id"`
	ChannelID   string             `bson:"channel_id" json:"channel_id"`
	ProcessedAt time.Time          `bson:"processed_at" json:"processed_at"`
}
