// internal/app/store/channels/markerstore.go

// Package channelstore tracks which channels have had their history
// backfilled. One marker per (tenant, channel), written once.
package channelstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/rollcallhq/rollcall/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("processed_channels")}
}

// Seen reports whether backfill already ran for the channel.
func (s *Store) Seen(ctx context.Context, tenantID, channelID string) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"tenant_id": tenantID, "channel_id": channelID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Mark records that backfill ran. Marking twice is harmless; the unique
// index turns the second insert into a no-op.
func (s *Store) Mark(ctx context.Context, tenantID, channelID string) error {
	m := models.ChannelMarker{
		ID:          primitive.NewObjectID(),
		TenantID:    tenantID,
		ChannelID:   channelID,
		ProcessedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return nil
		}
		return err
	}
	return nil
}
