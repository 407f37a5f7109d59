// internal/domain/models/attendance.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttendanceRecord is one employee's reported status for one calendar
// date. The natural key is (tenant_id, user_id, date); writes are
// last-write-wins and no history of prior values is kept.
type AttendanceRecord struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID string             `bson:"tenant_id" json:"tenant_id"`
	UserID   string             `bson:"user_id" json:"user_id"`

	// Email is used for identity matching in history lookups when the
	// same person appears under different user ids across tenants.
	Email string `bson:"email" json:"email"`

	Date   string `bson:"date" json:"date"` // YYYY-MM-DD
	Status Status `bson:"status" json:"status"`
	Note   string `bson:"note" json:"note"`

	// Originating message reference, used to thread notifications.
	ChannelID string `bson:"channel_id" json:"channel_id"`
	MessageTS string `bson:"message_ts" json:"message_ts"`

	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Key returns the natural key of the record.
func (r AttendanceRecord) Key() AttendanceKey {
	return AttendanceKey{TenantID: r.TenantID, UserID: r.UserID, Date: r.Date}
}

// AttendanceKey identifies at most one attendance record.
type AttendanceKey struct {
	TenantID string
	UserID   string
	Date     string
}
