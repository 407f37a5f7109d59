// internal/app/ingest/pipeline.go

package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/system/apperrors"
	"github.com/rollcallhq/rollcall/internal/app/system/chat"
	"github.com/rollcallhq/rollcall/internal/app/system/extract"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// AttendanceWriter is the slice of the attendance store the pipeline
// needs.
type AttendanceWriter interface {
	Upsert(ctx context.Context, rec models.AttendanceRecord) (models.AttendanceRecord, error)
	DeleteByKey(ctx context.Context, key models.AttendanceKey) (int64, error)
}

// Pipeline runs extraction and persistence for one inbound message.
type Pipeline struct {
	Extractor  extract.Extractor
	Attendance AttendanceWriter
	Chat       chat.Client
	Log        *zap.Logger
}

// Result summarizes what a pipeline run changed.
type Result struct {
	Saved   int
	Deleted int
}

// Applied reports whether the run changed any records.
func (r Result) Applied() bool { return r.Saved > 0 || r.Deleted > 0 }

// Process extracts attendance items from msg and applies them. When
// notify is true a short confirmation is posted in the message's
// thread; the backfill path passes false. Ineligible messages return
// an empty result without calling the extractor.
func (p *Pipeline) Process(ctx context.Context, msg models.Message, notify bool) (Result, error) {
	var res Result
	if !Eligible(msg) {
		return res, nil
	}

	base := msg.Time()
	items, err := p.Extractor.Extract(ctx, msg.Text, base)
	if err != nil {
		return res, apperrors.Transient("extract", err)
	}
	ops := Resolve(items, base)
	if len(ops) == 0 {
		return res, nil
	}

	email := p.lookupEmail(ctx, msg.TenantID, msg.UserID)

	var lines []string
	for _, op := range ops {
		switch op.Action {
		case extract.ActionSave:
			rec := models.AttendanceRecord{
				TenantID:  msg.TenantID,
				UserID:    msg.UserID,
				Email:     email,
				Date:      op.Date,
				Status:    op.Status,
				Note:      op.Note,
				ChannelID: msg.ChannelID,
				MessageTS: msg.TS,
				UpdatedAt: time.Now().UTC(),
			}
			if _, err := p.Attendance.Upsert(ctx, rec); err != nil {
				return res, fmt.Errorf("save attendance %s/%s: %w", msg.UserID, op.Date, err)
			}
			res.Saved++
			lines = append(lines, fmt.Sprintf("%s: %s", op.Date, op.Status.Label()))
		case extract.ActionDelete:
			key := models.AttendanceKey{TenantID: msg.TenantID, UserID: msg.UserID, Date: op.Date}
			n, err := p.Attendance.DeleteByKey(ctx, key)
			if err != nil {
				return res, fmt.Errorf("delete attendance %s/%s: %w", msg.UserID, op.Date, err)
			}
			if n > 0 {
				res.Deleted++
				lines = append(lines, fmt.Sprintf("%s: removed", op.Date))
			}
		}
	}

	if notify && len(lines) > 0 {
		text := "Recorded:\n" + strings.Join(lines, "\n")
		if _, err := p.Chat.PostMessage(ctx, msg.TenantID, msg.ChannelID, msg.TS, text); err != nil {
			// Records are already persisted; a failed confirmation is
			// not worth a redelivery that would repost them.
			p.Log.Warn("ingest: confirmation post failed",
				zap.String("tenant", msg.TenantID),
				zap.String("channel", msg.ChannelID),
				zap.Error(err))
		}
	}
	return res, nil
}

func (p *Pipeline) lookupEmail(ctx context.Context, tenantID, userID string) string {
	email, err := p.Chat.UserEmail(ctx, tenantID, userID)
	if err != nil {
		p.Log.Warn("ingest: email lookup failed",
			zap.String("tenant", tenantID),
			zap.String("user", userID),
			zap.Error(err))
		return ""
	}
	return email
}
