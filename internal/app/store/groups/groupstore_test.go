package groupstore_test

import (
	"errors"
	"strings"
	"testing"

	groupstore "github.com/rollcallhq/rollcall/internal/app/store/groups"
	"github.com/rollcallhq/rollcall/internal/app/system/indexes"
	"github.com/rollcallhq/rollcall/internal/domain/models"
	"github.com/rollcallhq/rollcall/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Group{
		TenantID:  "T1",
		Name:      "  Engineering  ",
		MemberIDs: []string{"U1", "U2"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !strings.HasPrefix(created.ID, "grp_") {
		t.Errorf("expected generated id, got %q", created.ID)
	}
	if created.Name != "Engineering" {
		t.Errorf("name should be trimmed, got %q", created.Name)
	}
	if created.NameCI != "engineering" {
		t.Errorf("NameCI: got %q", created.NameCI)
	}
	if created.AdminIDs == nil {
		t.Error("AdminIDs should be an empty slice, not nil")
	}
	if created.Version != 1 {
		t.Errorf("new group should start at version 1, got %d", created.Version)
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// The per-tenant folded-name uniqueness comes from the index.
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, models.Group{TenantID: "T1", Name: "Engineering"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, models.Group{TenantID: "T1", Name: "ENGINEERING"})
	if !errors.Is(err, groupstore.ErrDuplicateGroupName) {
		t.Fatalf("expected ErrDuplicateGroupName, got %v", err)
	}

	// Same name under another tenant is fine.
	if _, err := store.Create(ctx, models.Group{TenantID: "T2", Name: "Engineering"}); err != nil {
		t.Fatalf("Create in other tenant failed: %v", err)
	}
}

func TestStore_FindByName_FoldsCase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Group{TenantID: "T1", Name: "Field Ops"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.FindByName(ctx, "T1", "  FIELD OPS ")
	if err != nil {
		t.Fatalf("FindByName failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("found wrong group: %q vs %q", got.ID, created.ID)
	}

	if _, err := store.FindByName(ctx, "T1", "nope"); !errors.Is(err, groupstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Group{TenantID: "T1", Name: "Engineering"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err = store.Update(ctx, "T1", created.ID, "Platform", []string{"U1"}, []string{"U9"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, "T1", created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Platform" || got.NameCI != "platform" {
		t.Errorf("rename not applied: %q/%q", got.Name, got.NameCI)
	}
	if got.Version != 2 {
		t.Errorf("update should bump version, got %d", got.Version)
	}

	if err := store.Update(ctx, "T1", "grp_missing", "X", nil, nil); !errors.Is(err, groupstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Group{TenantID: "T1", Name: "Engineering"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := store.Delete(ctx, "T1", created.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
	n, err = store.Delete(ctx, "T1", created.ID)
	if err != nil || n != 0 {
		t.Fatalf("second Delete: n=%d err=%v", n, err)
	}
}
