// internal/app/store/attendance/attendancestore.go
package attendancestore

import (
	"context"
	"time"

	"github.com/rollcallhq/rollcall/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the attendance collection. Records are keyed
// by (tenant_id, user_id, date); every save is an upsert on that key so
// writes are last-write-wins with no history.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("attendance")}
}

func keyFilter(key models.AttendanceKey) bson.M {
	return bson.M{
		"tenant_id": key.TenantID,
		"user_id":   key.UserID,
		"date":      key.Date,
	}
}

// Upsert writes the record for its natural key, overwriting any prior
// value. Returns the stored record.
func (s *Store) Upsert(ctx context.Context, rec models.AttendanceRecord) (models.AttendanceRecord, error) {
	rec.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"tenant_id":  rec.TenantID,
			"user_id":    rec.UserID,
			"email":      rec.Email,
			"date":       rec.Date,
			"status":     rec.Status,
			"note":       rec.Note,
			"channel_id": rec.ChannelID,
			"message_ts": rec.MessageTS,
			"updated_at": rec.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id": primitive.NewObjectID(),
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := s.c.UpdateOne(ctx, keyFilter(rec.Key()), update, opts); err != nil {
		return models.AttendanceRecord{}, err
	}
	return rec, nil
}

// GetByKey returns the record for the key, or mongo.ErrNoDocuments.
func (s *Store) GetByKey(ctx context.Context, key models.AttendanceKey) (models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	if err := s.c.FindOne(ctx, keyFilter(key)).Decode(&rec); err != nil {
		return models.AttendanceRecord{}, err
	}
	return rec, nil
}

// DeleteByKey removes the record for the key. Returns the number of
// documents deleted (0 or 1).
func (s *Store) DeleteByKey(ctx context.Context, key models.AttendanceKey) (int64, error) {
	res, err := s.c.DeleteOne(ctx, keyFilter(key))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByDate returns all records for a tenant on one calendar date,
// for report generation.
func (s *Store) ListByDate(ctx context.Context, tenantID, date string) ([]models.AttendanceRecord, error) {
	cur, err := s.c.Find(ctx, bson.M{"tenant_id": tenantID, "date": date})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.AttendanceRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUserMonth returns a user's records whose date falls in the given
// month ("2026-09"), newest first. When email is non-empty it matches on
// email instead of user id, so history follows a person across tenants.
func (s *Store) ListByUserMonth(ctx context.Context, tenantID, userID, email, month string) ([]models.AttendanceRecord, error) {
	filter := bson.M{
		"tenant_id": tenantID,
		"date":      bson.M{"$regex": "^" + month},
	}
	if email != "" {
		filter["email"] = email
	} else {
		filter["user_id"] = userID
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.AttendanceRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
