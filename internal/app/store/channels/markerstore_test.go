package channelstore_test

import (
	"testing"

	channelstore "github.com/rollcallhq/rollcall/internal/app/store/channels"
	"github.com/rollcallhq/rollcall/internal/app/system/indexes"
	"github.com/rollcallhq/rollcall/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStore_MarkAndSeen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := channelstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seen, err := store.Seen(ctx, "T1", "C1")
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if seen {
		t.Fatal("channel should start unseen")
	}

	if err := store.Mark(ctx, "T1", "C1"); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}

	seen, err = store.Seen(ctx, "T1", "C1")
	if err != nil || !seen {
		t.Errorf("Seen after Mark: got (%v, %v), want (true, nil)", seen, err)
	}

	// Other channels and tenants are unaffected.
	if seen, _ := store.Seen(ctx, "T1", "C2"); seen {
		t.Error("other channel should be unseen")
	}
	if seen, _ := store.Seen(ctx, "T2", "C1"); seen {
		t.Error("other tenant should be unseen")
	}
}

func TestStore_Mark_Twice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := channelstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if err := store.Mark(ctx, "T1", "C1"); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	if err := store.Mark(ctx, "T1", "C1"); err != nil {
		t.Fatalf("second Mark should be a no-op, got %v", err)
	}

	count, err := db.Collection("processed_channels").CountDocuments(ctx, bson.M{"tenant_id": "T1"})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one marker, got %d", count)
	}
}
