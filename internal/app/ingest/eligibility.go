// internal/app/ingest/eligibility.go

// Package ingest turns inbound messages into attendance records. The
// same pipeline serves the live message path and the backfill walker;
// only notification behavior differs between them.
package ingest

import (
	"strings"

	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// greetings that never carry attendance data; skipping them saves an
// extraction call per pleasantry.
var boringMessages = map[string]struct{}{
	"ok":              {},
	"thanks":          {},
	"thank you":       {},
	"got it":          {},
	"understood":      {},
	"good morning":    {},
	"noted":           {},
	"sounds good":     {},
	"will do":         {},
	"have a good one": {},
}

// Eligible reports whether a message should enter the pipeline. The
// rules are identical for live delivery and backfill: skip bot posts,
// subtyped events (joins, edits), messages without a user or text, and
// greeting-only chatter.
func Eligible(msg models.Message) bool {
	if msg.UserID == "" || strings.TrimSpace(msg.Text) == "" {
		return false
	}
	if msg.BotID != "" || msg.Subtype != "" {
		return false
	}
	if _, boring := boringMessages[strings.ToLower(strings.TrimSpace(msg.Text))]; boring {
		return false
	}
	return true
}
