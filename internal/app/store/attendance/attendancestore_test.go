package attendancestore_test

import (
	"testing"

	attendancestore "github.com/rollcallhq/rollcall/internal/app/store/attendance"
	"github.com/rollcallhq/rollcall/internal/domain/models"
	"github.com/rollcallhq/rollcall/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Upsert_OverwritesSameKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := attendancestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first := models.AttendanceRecord{
		TenantID: "T1", UserID: "U1", Date: "2026-09-01",
		Status: models.StatusRemote, Note: "home office",
	}
	if _, err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// Same key, new status: the correction wins, no second document.
	second := first
	second.Status = models.StatusOut
	second.Note = ""
	if _, err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, err := store.GetByKey(ctx, first.Key())
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	if got.Status != models.StatusOut {
		t.Errorf("Status: got %q, want %q", got.Status, models.StatusOut)
	}
	if got.Note != "" {
		t.Errorf("Note should be overwritten, got %q", got.Note)
	}

	all, err := store.ListByDate(ctx, "T1", "2026-09-01")
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected one record after overwrite, got %d", len(all))
	}
}

func TestStore_DeleteByKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := attendancestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := models.AttendanceRecord{
		TenantID: "T1", UserID: "U1", Date: "2026-09-01", Status: models.StatusVacation,
	}
	if _, err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	n, err := store.DeleteByKey(ctx, rec.Key())
	if err != nil || n != 1 {
		t.Fatalf("DeleteByKey: n=%d err=%v", n, err)
	}
	if _, err := store.GetByKey(ctx, rec.Key()); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments after delete, got %v", err)
	}

	// Deleting an absent record reports zero, not an error.
	n, err = store.DeleteByKey(ctx, rec.Key())
	if err != nil || n != 0 {
		t.Errorf("second DeleteByKey: n=%d err=%v", n, err)
	}
}

func TestStore_ListByDate_ScopedToTenant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := attendancestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, rec := range []models.AttendanceRecord{
		{TenantID: "T1", UserID: "U1", Date: "2026-09-01", Status: models.StatusRemote},
		{TenantID: "T1", UserID: "U2", Date: "2026-09-01", Status: models.StatusOut},
		{TenantID: "T1", UserID: "U1", Date: "2026-09-02", Status: models.StatusLate},
		{TenantID: "T2", UserID: "U1", Date: "2026-09-01", Status: models.StatusRemote},
	} {
		if _, err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	got, err := store.ListByDate(ctx, "T1", "2026-09-01")
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 records, got %d", len(got))
	}
}

func TestStore_ListByUserMonth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := attendancestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, rec := range []models.AttendanceRecord{
		{TenantID: "T1", UserID: "U1", Email: "ana@corp.test", Date: "2026-09-03", Status: models.StatusRemote},
		{TenantID: "T1", UserID: "U1", Email: "ana@corp.test", Date: "2026-09-10", Status: models.StatusOut},
		{TenantID: "T1", UserID: "U1", Email: "ana@corp.test", Date: "2026-08-30", Status: models.StatusLate},
		{TenantID: "T1", UserID: "U2", Email: "bo@corp.test", Date: "2026-09-03", Status: models.StatusRemote},
	} {
		if _, err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	got, err := store.ListByUserMonth(ctx, "T1", "U1", "", "2026-09")
	if err != nil {
		t.Fatalf("ListByUserMonth failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records in month, got %d", len(got))
	}
	if got[0].Date != "2026-09-10" || got[1].Date != "2026-09-03" {
		t.Errorf("expected newest first, got %s then %s", got[0].Date, got[1].Date)
	}

	// Email matching ignores the user id.
	byEmail, err := store.ListByUserMonth(ctx, "T1", "U-other", "ana@corp.test", "2026-09")
	if err != nil {
		t.Fatalf("ListByUserMonth by email failed: %v", err)
	}
	if len(byEmail) != 2 {
		t.Errorf("expected 2 records by email, got %d", len(byEmail))
	}
}
