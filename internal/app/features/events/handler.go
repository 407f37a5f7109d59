// internal/app/features/events/handler.go

// Package events is the inbound surface for the trigger platform. Both
// endpoints run under the platform's hard response deadline, so they do
// only cheap shape checks, hand an envelope to the dispatcher and
// return. Everything heavy happens in the processor.
package events

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/dispatch"
	"github.com/rollcallhq/rollcall/internal/app/process"
	"github.com/rollcallhq/rollcall/internal/app/system/timeouts"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// Handler holds dependencies for the event endpoints.
type Handler struct {
	Dispatcher *dispatch.Dispatcher

	// BotUserID filters out the bot's own messages. Resolved once at
	// startup; self-triggering on our own confirmations would loop.
	BotUserID string

	Log *zap.Logger
}

// NewHandler constructs an events Handler.
func NewHandler(d *dispatch.Dispatcher, botUserID string, logger *zap.Logger) *Handler {
	return &Handler{Dispatcher: d, BotUserID: botUserID, Log: logger}
}

// eventRequest is the platform's event callback body.
type eventRequest struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge,omitempty"`
	TenantID  string `json:"tenant_id"`
	Event     struct {
		Type      string `json:"type"`
		ChannelID string `json:"channel_id"`
		UserID    string `json:"user_id"`
		Text      string `json:"text"`
		TS        string `json:"ts"`
		ThreadTS  string `json:"thread_ts"`
		Subtype   string `json:"subtype"`
		BotID     string `json:"bot_id"`
	} `json:"event"`
}

// ServeEvent handles POST /events.
//
// The checks here are deliberately the cheap subset: enough to drop
// obvious noise (our own posts, thread replies, join events for other
// users) without any store or network round trip. Full eligibility
// filtering happens again in the processor.
func (h *Handler) ServeEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	// Endpoint ownership probe during platform setup.
	if req.Type == "url_verification" {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"challenge": req.Challenge})
		return
	}

	if req.TenantID == "" {
		http.Error(w, "missing tenant_id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch req.Event.Type {
	case "message":
		ev := req.Event
		if ev.UserID == "" || ev.Text == "" || ev.BotID != "" || ev.UserID == h.BotUserID {
			break
		}
		// Thread replies stay out of attendance tracking; only
		// top-level channel messages count.
		if ev.ThreadTS != "" && ev.ThreadTS != ev.TS {
			break
		}
		env, err := models.NewEnvelope(models.KindIngestMessage, req.TenantID,
			process.IngestMessagePayload{Message: models.Message{
				TenantID:  req.TenantID,
				ChannelID: ev.ChannelID,
				UserID:    ev.UserID,
				Text:      ev.Text,
				TS:        ev.TS,
				ThreadTS:  ev.ThreadTS,
				Subtype:   ev.Subtype,
			}},
			models.DedupKey(models.KindIngestMessage, req.TenantID, ev.ChannelID, ev.TS),
		)
		if err != nil {
			h.Log.Error("events: envelope build failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if err := h.Dispatcher.Dispatch(ctx, env); err != nil {
			http.Error(w, "dispatch failed", http.StatusInternalServerError)
			return
		}

	case "member_joined_channel":
		// Backfill only when the bot itself joins; other members
		// joining says nothing about unseen history.
		if req.Event.UserID != h.BotUserID {
			break
		}
		env, err := models.NewEnvelope(models.KindBackfillChannel, req.TenantID,
			process.BackfillChannelPayload{ChannelID: req.Event.ChannelID},
			models.DedupKey(models.KindBackfillChannel, req.TenantID, req.Event.ChannelID),
		)
		if err != nil {
			h.Log.Error("events: envelope build failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if err := h.Dispatcher.Dispatch(ctx, env); err != nil {
			http.Error(w, "dispatch failed", http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
}

// interactionRequest is a structured submission from the platform's
// interactive surfaces (modals, shortcuts).
type interactionRequest struct {
	TenantID  string `json:"tenant_id"`
	ActorID   string `json:"actor_id"`
	ChannelID string `json:"channel_id"`

	// TriggerID is the platform's unique id for this interaction and
	// anchors the dedup key: a redelivered webhook carries the same
	// trigger id, a user repeating the action gets a new one.
	TriggerID string `json:"trigger_id"`

	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// ServeInteraction handles POST /events/interactions.
func (h *Handler) ServeInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.TenantID == "" || req.ActorID == "" || req.TriggerID == "" {
		http.Error(w, "missing tenant_id, actor_id or trigger_id", http.StatusBadRequest)
		return
	}

	var kind models.EventKind
	var payload any

	switch req.Action {
	case "save_attendance":
		var p process.SaveAttendancePayload
		if err := json.Unmarshal(req.Data, &p); err != nil {
			http.Error(w, "bad data", http.StatusBadRequest)
			return
		}
		if p.UserID == "" {
			p.UserID = req.ActorID
		}
		if p.ChannelID == "" {
			p.ChannelID = req.ChannelID
		}
		kind, payload = models.KindSaveAttendance, p

	case "delete_attendance":
		var p process.DeleteAttendancePayload
		if err := json.Unmarshal(req.Data, &p); err != nil {
			http.Error(w, "bad data", http.StatusBadRequest)
			return
		}
		if p.UserID == "" {
			p.UserID = req.ActorID
		}
		if p.ChannelID == "" {
			p.ChannelID = req.ChannelID
		}
		kind, payload = models.KindDeleteAttendance, p

	case "sync_groups":
		var p process.SyncGroupsPayload
		if err := json.Unmarshal(req.Data, &p); err != nil {
			http.Error(w, "bad data", http.StatusBadRequest)
			return
		}
		p.ActorID = req.ActorID
		if p.ChannelID == "" {
			p.ChannelID = req.ChannelID
		}
		kind, payload = models.KindSyncGroups, p

	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	env, err := models.NewEnvelope(kind, req.TenantID, payload,
		models.DedupKey(kind, req.TenantID, req.TriggerID))
	if err != nil {
		h.Log.Error("events: envelope build failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if err := h.Dispatcher.Dispatch(ctx, env); err != nil {
		http.Error(w, "dispatch failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
