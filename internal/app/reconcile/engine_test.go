package reconcile_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/reconcile"
	groupstore "github.com/rollcallhq/rollcall/internal/app/store/groups"
	settingsstore "github.com/rollcallhq/rollcall/internal/app/store/settings"
	"github.com/rollcallhq/rollcall/internal/app/system/apperrors"
	"github.com/rollcallhq/rollcall/internal/testutil"
)

func newEngine(t *testing.T) (*reconcile.Engine, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	eng := &reconcile.Engine{
		Groups:   groupstore.New(db),
		Settings: settingsstore.New(db),
		Log:      zap.NewNop(),
	}
	return eng, testutil.NewFixtures(t, db)
}

func TestSyncStructured_RejectsEmptyAdminSet(t *testing.T) {
	eng, fx := newEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateGroup(ctx, "T1", "alpha", []string{"1"})

	_, err := eng.SyncStructured(ctx, "T1", reconcile.Submission{
		Groups:   nil, // complete set: would delete alpha if the gate failed open
		AdminIDs: nil,
		Version:  0,
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}

	groups, err := eng.Groups.ListByTenant(ctx, "T1")
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 {
		t.Errorf("rejected submission had side effects: %d groups remain, want 1", len(groups))
	}
}

func TestSyncStructured_StaleVersionRejected(t *testing.T) {
	eng, fx := newEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateSettings(ctx, "T1", []string{"adm1"}) // version 1

	_, err := eng.SyncStructured(ctx, "T1", reconcile.Submission{
		Groups:   []reconcile.Desired{{Name: "alpha", MemberIDs: []string{"1"}}},
		AdminIDs: []string{"adm1"},
		Version:  0, // stale: stored version is 1
	})
	if !apperrors.IsConflict(err) {
		t.Fatalf("err = %v, want conflict error", err)
	}

	groups, err := eng.Groups.ListByTenant(ctx, "T1")
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 0 {
		t.Errorf("stale submission created %d groups, want 0", len(groups))
	}
}

func TestSyncStructured_FirstRunAndFullCycle(t *testing.T) {
	eng, _ := newEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// First run: no settings document yet, version 0 is accepted.
	res, err := eng.SyncStructured(ctx, "T1", reconcile.Submission{
		Groups: []reconcile.Desired{
			{Name: "alpha", MemberIDs: []string{"1", "2"}},
			{Name: "beta", MemberIDs: []string{"3"}},
		},
		AdminIDs: []string{"adm1"},
		Version:  0,
	})
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if len(res.Created) != 2 {
		t.Fatalf("created = %v, want 2 groups", res.Created)
	}

	set, err := eng.Settings.Get(ctx, "T1")
	if err != nil {
		t.Fatal(err)
	}
	if len(set.AdminIDs) != 1 || set.AdminIDs[0] != "adm1" {
		t.Errorf("admin ids = %v, want [adm1]", set.AdminIDs)
	}

	// Second run from the current version: grow alpha, drop beta.
	groups, err := eng.Groups.ListByTenant(ctx, "T1")
	if err != nil {
		t.Fatal(err)
	}
	var alphaID string
	for _, g := range groups {
		if g.Name == "alpha" {
			alphaID = g.ID
		}
	}

	res, err = eng.SyncStructured(ctx, "T1", reconcile.Submission{
		Groups: []reconcile.Desired{
			{ID: alphaID, Name: "alpha", MemberIDs: []string{"1", "2", "9"}},
		},
		AdminIDs: []string{"adm1", "adm2"},
		Version:  set.Version,
	})
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if len(res.Updated) != 1 || len(res.Deleted) != 1 {
		t.Fatalf("result = %+v, want 1 update and 1 delete", res)
	}

	groups, err = eng.Groups.ListByTenant(ctx, "T1")
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || !groups[0].SameMembers([]string{"1", "2", "9"}) {
		t.Errorf("groups after sync = %+v, want alpha with members 1,2,9", groups)
	}
}

func TestUpsertByName(t *testing.T) {
	eng, _ := newEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := eng.UpsertByName(ctx, "T1", "Field Crew", []string{"1"})
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("first upsert should create")
	}

	// Same name, different case: must match the existing group.
	created, err = eng.UpsertByName(ctx, "T1", "field crew", []string{"1", "2"})
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("second upsert created a duplicate instead of updating")
	}

	g, err := eng.Groups.FindByName(ctx, "T1", "FIELD CREW")
	if err != nil {
		t.Fatal(err)
	}
	if !g.SameMembers([]string{"1", "2"}) {
		t.Errorf("members = %v, want [1 2]", g.MemberIDs)
	}

	// Identical member set is a no-op, not an error.
	if _, err := eng.UpsertByName(ctx, "T1", "Field Crew", []string{"2", "1"}); err != nil {
		t.Fatalf("no-op upsert: %v", err)
	}
}
