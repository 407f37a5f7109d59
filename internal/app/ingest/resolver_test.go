package ingest_test

import (
	"testing"
	"time"

	"github.com/rollcallhq/rollcall/internal/app/ingest"
	"github.com/rollcallhq/rollcall/internal/app/system/extract"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

func TestEligible(t *testing.T) {
	base := models.Message{
		TenantID:  "T1",
		ChannelID: "C1",
		UserID:    "U1",
		Text:      "out tomorrow",
		TS:        "1726000000.000100",
	}

	tests := []struct {
		name   string
		mutate func(*models.Message)
		want   bool
	}{
		{"plain message", func(m *models.Message) {}, true},
		{"missing user", func(m *models.Message) { m.UserID = "" }, false},
		{"empty text", func(m *models.Message) { m.Text = "   " }, false},
		{"bot post", func(m *models.Message) { m.BotID = "B99" }, false},
		{"subtyped event", func(m *models.Message) { m.Subtype = "channel_join" }, false},
		{"greeting only", func(m *models.Message) { m.Text = "Good Morning" }, false},
		{"greeting with content", func(m *models.Message) { m.Text = "good morning, wfh today" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := base
			tt.mutate(&msg)
			if got := ingest.Eligible(msg); got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in    string
		want  models.Status
		valid bool
	}{
		{"late", models.StatusLate, true},
		{" Remote ", models.StatusRemote, true},
		{"WFH", models.StatusRemote, true},
		{"pto", models.StatusVacation, true},
		{"leaving early", models.StatusEarlyLeave, true},
		{"banana", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ingest.NormalizeStatus(tt.in)
		if ok != tt.valid || got != tt.want {
			t.Errorf("NormalizeStatus(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.valid)
		}
	}
}

func TestResolve_DeleteWithStatusBecomesSave(t *testing.T) {
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	items := []extract.Item{
		{Date: "2026-09-02", Status: "remote", Action: extract.ActionDelete},
	}
	ops := ingest.Resolve(items, base)

	if len(ops) != 1 {
		t.Fatalf("Resolve() returned %d ops, want 1", len(ops))
	}
	if ops[0].Action != extract.ActionSave {
		t.Errorf("action = %q, want save", ops[0].Action)
	}
	if ops[0].Status != models.StatusRemote {
		t.Errorf("status = %q, want remote", ops[0].Status)
	}
}

func TestResolve_PureDeleteStaysDelete(t *testing.T) {
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	ops := ingest.Resolve([]extract.Item{
		{Date: "2026-09-02", Action: extract.ActionDelete},
	}, base)

	if len(ops) != 1 || ops[0].Action != extract.ActionDelete {
		t.Fatalf("Resolve() = %+v, want one delete op", ops)
	}
}

func TestResolve_LaterItemWinsPerDate(t *testing.T) {
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	ops := ingest.Resolve([]extract.Item{
		{Date: "2026-09-03", Status: "vacation", Action: extract.ActionSave},
		{Date: "2026-09-03", Status: "out", Action: extract.ActionSave},
	}, base)

	if len(ops) != 1 {
		t.Fatalf("Resolve() returned %d ops, want 1", len(ops))
	}
	if ops[0].Status != models.StatusOut {
		t.Errorf("status = %q, want out (later item should win)", ops[0].Status)
	}
}

func TestResolve_DefaultsAndRejects(t *testing.T) {
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	ops := ingest.Resolve([]extract.Item{
		{Status: "late", Action: extract.ActionSave},                      // no date: defaults to base
		{Date: "not-a-date", Status: "late", Action: extract.ActionSave},  // bad date: dropped
		{Date: "2026-09-05", Status: "unknown", Action: extract.ActionSave}, // bad status: dropped
	}, base)

	if len(ops) != 1 {
		t.Fatalf("Resolve() returned %d ops, want 1: %+v", len(ops), ops)
	}
	if ops[0].Date != "2026-09-01" {
		t.Errorf("date = %q, want base date 2026-09-01", ops[0].Date)
	}
}
