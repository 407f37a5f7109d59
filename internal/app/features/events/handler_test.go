package events_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/dispatch"
	"github.com/rollcallhq/rollcall/internal/app/features/events"
	"github.com/rollcallhq/rollcall/internal/app/queue"
	"github.com/rollcallhq/rollcall/internal/domain/models"
	"github.com/rollcallhq/rollcall/internal/testutil"
)

const testSecret = "test-signing-secret"

type nopHandler struct{}

func (nopHandler) Handle(ctx context.Context, env models.Envelope) error { return nil }

// testRig wires the events router onto a memory queue so tests can see
// what got dispatched.
func testRig(t *testing.T) (http.Handler, *queue.Memory) {
	t.Helper()
	q := queue.NewMemory(16)
	t.Cleanup(func() { _ = q.Close() })

	d := &dispatch.Dispatcher{Queue: q, Fallback: nopHandler{}, Log: zap.NewNop()}
	h := events.NewHandler(d, "U-bot", zap.NewNop())
	return events.Routes(h, testSecret, zap.NewNop()), q
}

func drainKind(t *testing.T, q *queue.Memory) models.EventKind {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	d, err := q.Fetch(ctx)
	if err != nil {
		t.Fatalf("expected an envelope on the queue: %v", err)
	}
	env, err := models.DecodeEnvelope(d.Data)
	if err != nil {
		t.Fatal(err)
	}
	return env.Kind
}

func messageBody(user, text, ts, threadTS string) map[string]any {
	return map[string]any{
		"type":      "event_callback",
		"tenant_id": "T1",
		"event": map[string]any{
			"type":       "message",
			"channel_id": "C1",
			"user_id":    user,
			"text":       text,
			"ts":         ts,
			"thread_ts":  threadTS,
		},
	}
}

func TestServeEvent_RejectsUnsigned(t *testing.T) {
	router, _ := testRig(t)

	req := testutil.NewJSONRequest(t, "POST", "/", messageBody("U1", "out today", "1.000100", ""))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for unsigned request", rec.Code)
	}
}

func TestServeEvent_URLVerification(t *testing.T) {
	router, _ := testRig(t)

	req := testutil.NewSignedJSONRequest(t, "POST", "/", testSecret, map[string]any{
		"type":      "url_verification",
		"challenge": "c123",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Challenge string `json:"challenge"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Challenge != "c123" {
		t.Errorf("challenge = %q, want echoed back", resp.Challenge)
	}
}

func TestServeEvent_MessageDispatched(t *testing.T) {
	router, q := testRig(t)

	req := testutil.NewSignedJSONRequest(t, "POST", "/", testSecret,
		messageBody("U1", "remote tomorrow", "1.000100", ""))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if kind := drainKind(t, q); kind != models.KindIngestMessage {
		t.Errorf("kind = %q, want %q", kind, models.KindIngestMessage)
	}
}

func TestServeEvent_CheapFilters(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"own bot message", messageBody("U-bot", "Recorded", "1.000100", "")},
		{"thread reply", messageBody("U1", "thanks", "2.000100", "1.000100")},
		{"no text", messageBody("U1", "", "3.000100", "")},
		{"other member joined", map[string]any{
			"type":      "event_callback",
			"tenant_id": "T1",
			"event": map[string]any{
				"type":       "member_joined_channel",
				"channel_id": "C1",
				"user_id":    "U-someone",
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, q := testRig(t)
			req := testutil.NewSignedJSONRequest(t, "POST", "/", testSecret, tt.body)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (filters ack, not error)", rec.Code)
			}
			if q.Len() != 0 {
				t.Errorf("queue holds %d envelopes, want 0", q.Len())
			}
		})
	}
}

func TestServeEvent_BotJoinTriggersBackfill(t *testing.T) {
	router, q := testRig(t)

	req := testutil.NewSignedJSONRequest(t, "POST", "/", testSecret, map[string]any{
		"type":      "event_callback",
		"tenant_id": "T1",
		"event": map[string]any{
			"type":       "member_joined_channel",
			"channel_id": "C1",
			"user_id":    "U-bot",
		},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if kind := drainKind(t, q); kind != models.KindBackfillChannel {
		t.Errorf("kind = %q, want %q", kind, models.KindBackfillChannel)
	}
}

func TestServeInteraction_SaveAttendance(t *testing.T) {
	router, q := testRig(t)

	req := testutil.NewSignedJSONRequest(t, "POST", "/interactions", testSecret, map[string]any{
		"tenant_id":  "T1",
		"actor_id":   "U1",
		"channel_id": "C1",
		"trigger_id": "trg-1",
		"action":     "save_attendance",
		"data": map[string]any{
			"date":   "2026-09-02",
			"status": "vacation",
		},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if kind := drainKind(t, q); kind != models.KindSaveAttendance {
		t.Errorf("kind = %q, want %q", kind, models.KindSaveAttendance)
	}
}

func TestServeInteraction_MissingTriggerID(t *testing.T) {
	router, q := testRig(t)

	req := testutil.NewSignedJSONRequest(t, "POST", "/interactions", testSecret, map[string]any{
		"tenant_id": "T1",
		"actor_id":  "U1",
		"action":    "save_attendance",
		"data":      map[string]any{"date": "2026-09-02", "status": "vacation"},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without a trigger id", rec.Code)
	}
	if q.Len() != 0 {
		t.Errorf("queue holds %d envelopes, want 0", q.Len())
	}
}
