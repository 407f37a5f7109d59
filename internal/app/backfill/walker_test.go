package backfill_test

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/backfill"
	"github.com/rollcallhq/rollcall/internal/app/ingest"
	"github.com/rollcallhq/rollcall/internal/app/system/chat"
	"github.com/rollcallhq/rollcall/internal/app/system/extract"
	"github.com/rollcallhq/rollcall/internal/domain/models"
	"github.com/rollcallhq/rollcall/internal/testutil"
)

type memMarkers struct {
	mu  sync.Mutex
	set map[string]bool
}

func newMemMarkers() *memMarkers { return &memMarkers{set: map[string]bool{}} }

func (m *memMarkers) Seen(ctx context.Context, tenantID, channelID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set[tenantID+"/"+channelID], nil
}

func (m *memMarkers) Mark(ctx context.Context, tenantID, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set[tenantID+"/"+channelID] = true
	return nil
}

func newWalker(chatc *testutil.FakeChat, ext *testutil.FakeExtractor, att *testutil.FakeAttendance, markers backfill.Markers) *backfill.Walker {
	return &backfill.Walker{
		Chat: chatc,
		Pipeline: &ingest.Pipeline{
			Extractor:  ext,
			Attendance: att,
			Chat:       chatc,
			Log:        zap.NewNop(),
		},
		Markers: markers,
		Log:     zap.NewNop(),
	}
}

func TestRun_SortsBeforeProcessing(t *testing.T) {
	chatc := testutil.NewFakeChat()
	// Two pages, newest first, deliberately shuffled across pages:
	// t3 ("cancel") must apply after t1/t2 despite arriving first.
	chatc.HistoryPages[""] = chat.HistoryPage{
		Messages: []models.Message{
			{UserID: "U1", Text: "cancel friday", TS: "3000.000000"},
			{UserID: "U1", Text: "out friday", TS: "1000.000000"},
		},
		NextCursor: "page2",
	}
	chatc.HistoryPages["page2"] = chat.HistoryPage{
		Messages: []models.Message{
			{UserID: "U1", Text: "remote friday", TS: "2000.000000"},
		},
	}

	ext := &testutil.FakeExtractor{Items: map[string][]extract.Item{
		"out friday":    {{Date: "2026-09-04", Status: "out", Action: extract.ActionSave}},
		"remote friday": {{Date: "2026-09-04", Status: "remote", Action: extract.ActionSave}},
		"cancel friday": {{Date: "2026-09-04", Action: extract.ActionDelete}},
	}}
	att := testutil.NewFakeAttendance()
	markers := newMemMarkers()

	n, err := newWalker(chatc, ext, att, markers).Run(context.Background(), "T1", "C1")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if n != 3 {
		t.Errorf("processed = %d, want 3", n)
	}

	// Final state: the cancellation is newest, so the record is gone.
	key := models.AttendanceKey{TenantID: "T1", UserID: "U1", Date: "2026-09-04"}
	if _, ok := att.Get(key); ok {
		t.Error("record survived; messages were not applied in timestamp order")
	}

	// Backfill never posts confirmations.
	if len(chatc.Posts) != 0 {
		t.Errorf("backfill posted %d messages, want 0", len(chatc.Posts))
	}

	if seen, _ := markers.Seen(context.Background(), "T1", "C1"); !seen {
		t.Error("marker not set after run")
	}
}

func TestRun_MarkerShortCircuits(t *testing.T) {
	chatc := testutil.NewFakeChat()
	chatc.HistoryPages[""] = chat.HistoryPage{
		Messages: []models.Message{
			{UserID: "U1", Text: "out friday", TS: "1000.000000"},
		},
	}
	ext := &testutil.FakeExtractor{Items: map[string][]extract.Item{
		"out friday": {{Date: "2026-09-04", Status: "out", Action: extract.ActionSave}},
	}}
	att := testutil.NewFakeAttendance()
	markers := newMemMarkers()
	w := newWalker(chatc, ext, att, markers)

	if _, err := w.Run(context.Background(), "T1", "C1"); err != nil {
		t.Fatal(err)
	}
	firstCalls := ext.Calls

	// Second run must not touch history or the extractor.
	n, err := w.Run(context.Background(), "T1", "C1")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("second run processed %d, want 0", n)
	}
	if ext.Calls != firstCalls {
		t.Errorf("second run called the extractor (%d -> %d calls)", firstCalls, ext.Calls)
	}
}

func TestRun_MarksDespiteFailures(t *testing.T) {
	chatc := testutil.NewFakeChat()
	chatc.HistoryPages[""] = chat.HistoryPage{
		Messages: []models.Message{
			{UserID: "U1", Text: "out friday", TS: "1000.000000"},
		},
	}
	ext := &testutil.FakeExtractor{Err: context.DeadlineExceeded}
	markers := newMemMarkers()

	n, err := newWalker(chatc, ext, testutil.NewFakeAttendance(), markers).Run(context.Background(), "T1", "C1")
	if err != nil {
		t.Fatalf("Run() error: %v (individual failures should not fail the walk)", err)
	}
	if n != 0 {
		t.Errorf("processed = %d, want 0", n)
	}
	if seen, _ := markers.Seen(context.Background(), "T1", "C1"); !seen {
		t.Error("marker not set; channel would be backfilled again")
	}
}
