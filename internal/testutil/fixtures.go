package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	groupstore "github.com/rollcallhq/rollcall/internal/app/store/groups"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateAttendance inserts an attendance record with sensible defaults.
func (f *Fixtures) CreateAttendance(ctx context.Context, tenantID, userID, date string, status models.Status) models.AttendanceRecord {
	f.t.Helper()

	rec := models.AttendanceRecord{
		ID:        primitive.NewObjectID(),
		TenantID:  tenantID,
		UserID:    userID,
		Email:     userID + "@example.com",
		Date:      date,
		Status:    status,
		ChannelID: "C-fixtures",
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("attendance").InsertOne(ctx, rec); err != nil {
		f.t.Fatalf("failed to create test attendance record: %v", err)
	}
	return rec
}

// CreateGroup inserts a group with a generated id and the given members.
func (f *Fixtures) CreateGroup(ctx context.Context, tenantID, name string, memberIDs []string) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	grp := models.Group{
		ID:        groupstore.NewGroupID(),
		TenantID:  tenantID,
		Name:      name,
		NameCI:    text.Fold(name),
		MemberIDs: memberIDs,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, grp); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return grp
}

// CreateSettings inserts tenant settings with the given admins.
func (f *Fixtures) CreateSettings(ctx context.Context, tenantID string, adminIDs []string) models.TenantSettings {
	f.t.Helper()

	set := models.TenantSettings{
		TenantID:        tenantID,
		AdminIDs:        adminIDs,
		ReportChannelID: "C-report",
		Version:         1,
		UpdatedAt:       time.Now().UTC(),
	}
	if _, err := f.db.Collection("tenant_settings").InsertOne(ctx, set); err != nil {
		f.t.Fatalf("failed to create test settings: %v", err)
	}
	return set
}
