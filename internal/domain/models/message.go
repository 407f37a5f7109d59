// internal/domain/models/message.go
package models

import (
	"strconv"
	"time"
)

// Message is an inbound chat message as delivered by the trigger source
// or returned by the history API.
type Message struct {
	TenantID  string `json:"tenant_id"`
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Text      string `json:"text"`

	// TS is the platform's message timestamp, an opaque string that
	// sorts numerically ("1726000000.000200"). It doubles as the
	// message id within a channel.
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts,omitempty"`

	// Subtype is set for non-plain messages (joins, edits, bot posts).
	Subtype string `json:"subtype,omitempty"`
	BotID   string `json:"bot_id,omitempty"`
}

// TSFloat parses TS for ordering. Unparseable timestamps sort first so
// they never displace a real message during backfill ordering.
func (m Message) TSFloat() float64 {
	f, err := strconv.ParseFloat(m.TS, 64)
	if err != nil {
		return 0
	}
	return f
}

// Time converts TS to a wall-clock time. Messages with an unparseable
// TS fall back to now, which only affects relative-date extraction.
func (m Message) Time() time.Time {
	f := m.TSFloat()
	if f == 0 {
		return time.Now().UTC()
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}
