// internal/app/process/message.go

package process

import (
	"context"

	"github.com/rollcallhq/rollcall/internal/app/ingest"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// MessageApplier feeds live channel messages through the ingest
// pipeline, confirmations included.
type MessageApplier struct {
	Pipeline *ingest.Pipeline
}

func (a *MessageApplier) Kinds() []models.EventKind {
	return []models.EventKind{models.KindIngestMessage}
}

func (a *MessageApplier) Apply(ctx context.Context, env models.Envelope) error {
	var p IngestMessagePayload
	if err := decodePayload(env, &p); err != nil {
		return err
	}
	p.Message.TenantID = env.TenantID
	_, err := a.Pipeline.Process(ctx, p.Message, true)
	return err
}
