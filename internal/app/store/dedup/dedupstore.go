// internal/app/store/dedup/dedupstore.go

// Package dedupstore is the idempotency guard consulted by the
// processor before any effect that is not naturally idempotent.
//
// Keys live in a dedicated collection with the dedup key as _id, so a
// claim is a single conditional insert: the first worker wins, every
// concurrent or redelivered duplicate loses atomically. A TTL index
// bounds retention, which bounds the window in which a redelivery can
// be recognized. That window is well beyond any broker's redelivery
// horizon.
package dedupstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("processed_events")}
}

type entry struct {
	Key       string    `bson:"_id"`
	ClaimedAt time.Time `bson:"claimed_at"`
}

// Claim atomically records key as processed. It returns true when this
// caller won the claim and should apply the effect, false when the key
// was already claimed (duplicate delivery).
func (s *Store) Claim(ctx context.Context, key string) (bool, error) {
	_, err := s.c.InsertOne(ctx, entry{Key: key, ClaimedAt: time.Now().UTC()})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Release removes a claim so a redelivery can retry after a failed
// apply. Releasing an unclaimed key is a no-op.
func (s *Store) Release(ctx context.Context, key string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Seen reports whether key has been claimed, without claiming it.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"_id": key})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
