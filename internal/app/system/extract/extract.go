// internal/app/system/extract/extract.go

// Package extract defines the contract with the NLP service that turns
// a free-text message into structured attendance items. The model call
// itself is an external collaborator; the core only sees Items.
package extract

import (
	"context"
	"time"
)

// Action says what an extracted item asks for.
type Action string

const (
	ActionSave   Action = "save"
	ActionDelete Action = "delete"
)

// Item is one dated attendance entry extracted from a message. A single
// message can yield several items ("out Monday, remote Tuesday").
type Item struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Status string `json:"status"`
	Note   string `json:"note"`
	Action Action `json:"action"`
}

// Extractor is the NLP collaborator. A nil/empty result means "no
// attendance data in this text" and is not an error; errors are
// reserved for the call itself failing.
type Extractor interface {
	Extract(ctx context.Context, text string, base time.Time) ([]Item, error)
}
