// internal/domain/models/envelope.go
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// EventKind discriminates the operation an Envelope asks the processor
// to perform.
type EventKind string

const (
	KindSaveAttendance   EventKind = "attendance.save"
	KindDeleteAttendance EventKind = "attendance.delete"
	KindIngestMessage    EventKind = "message.ingest"
	KindSyncGroups       EventKind = "groups.sync"
	KindBackfillChannel  EventKind = "channel.backfill"
	KindGenerateReport   EventKind = "report.generate"
)

// Envelope is one unit of deferred work placed on the queue.
//
// The payload is opaque to the producer; only the consumer validates it.
// Envelopes are created once at publish time and never mutated.
type Envelope struct {
	Kind     EventKind       `json:"kind"`
	TenantID string          `json:"tenant_id"`
	Payload  json.RawMessage `json:"payload"`
	DedupKey string          `json:"dedup_key"`
}

// NewEnvelope marshals payload and stamps the deduplication key.
func NewEnvelope(kind EventKind, tenantID string, payload any, dedupKey string) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return Envelope{
		Kind:     kind,
		TenantID: tenantID,
		Payload:  raw,
		DedupKey: dedupKey,
	}, nil
}

// Encode serializes the envelope for the queue transport.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodePayload unmarshals the payload into dst.
func (e Envelope) DecodePayload(dst any) error {
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Kind, err)
	}
	return nil
}

// DecodeEnvelope parses a queue message back into an Envelope.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if e.Kind == "" || e.TenantID == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing kind or tenant_id")
	}
	return e, nil
}

// DedupKey derives a deterministic fingerprint of a real-world event.
// Two envelopes describing the same event must produce the same key, so
// the parts must come from the trigger source (channel id, message
// timestamp), never from local clocks.
func DedupKey(kind EventKind, tenantID string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(string(kind)))
	h.Write([]byte{0})
	h.Write([]byte(tenantID))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(strings.TrimSpace(p)))
	}
	return hex.EncodeToString(h.Sum(nil))
}
