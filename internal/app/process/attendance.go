// internal/app/process/attendance.go

package process

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/ingest"
	"github.com/rollcallhq/rollcall/internal/app/system/apperrors"
	"github.com/rollcallhq/rollcall/internal/app/system/chat"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// AttendanceApplier handles the structured save and delete kinds.
type AttendanceApplier struct {
	Attendance ingest.AttendanceWriter
	Chat       chat.Client
	Log        *zap.Logger
}

func (a *AttendanceApplier) Kinds() []models.EventKind {
	return []models.EventKind{models.KindSaveAttendance, models.KindDeleteAttendance}
}

func (a *AttendanceApplier) Apply(ctx context.Context, env models.Envelope) error {
	switch env.Kind {
	case models.KindSaveAttendance:
		return a.save(ctx, env)
	case models.KindDeleteAttendance:
		return a.delete(ctx, env)
	default:
		return fmt.Errorf("attendance applier got kind %q", env.Kind)
	}
}

func (a *AttendanceApplier) save(ctx context.Context, env models.Envelope) error {
	var p SaveAttendancePayload
	if err := decodePayload(env, &p); err != nil {
		// Whatever fields did decode are enough to route feedback.
		a.feedback(ctx, env.TenantID, p.ChannelID, p.UserID, err)
		return err
	}

	status, ok := ingest.NormalizeStatus(p.Status)
	if !ok {
		err := apperrors.Validation(
			fmt.Sprintf("unknown attendance status %q", p.Status),
			"That status is not recognized.",
		)
		a.feedback(ctx, env.TenantID, p.ChannelID, p.UserID, err)
		return err
	}

	email, err := a.Chat.UserEmail(ctx, env.TenantID, p.UserID)
	if err != nil {
		a.Log.Warn("attendance: email lookup failed",
			zap.String("tenant", env.TenantID),
			zap.String("user", p.UserID),
			zap.Error(err))
		email = ""
	}

	rec := models.AttendanceRecord{
		TenantID:  env.TenantID,
		UserID:    p.UserID,
		Email:     email,
		Date:      p.Date,
		Status:    status,
		Note:      p.Note,
		ChannelID: p.ChannelID,
		MessageTS: p.MessageTS,
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := a.Attendance.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("save attendance %s/%s: %w", p.UserID, p.Date, err)
	}

	a.notify(ctx, env.TenantID, p.ChannelID, p.MessageTS,
		fmt.Sprintf("Recorded %s for <@%s> on %s.", status.Label(), p.UserID, p.Date))
	return nil
}

func (a *AttendanceApplier) delete(ctx context.Context, env models.Envelope) error {
	var p DeleteAttendancePayload
	if err := decodePayload(env, &p); err != nil {
		a.feedback(ctx, env.TenantID, p.ChannelID, p.UserID, err)
		return err
	}

	key := models.AttendanceKey{TenantID: env.TenantID, UserID: p.UserID, Date: p.Date}
	n, err := a.Attendance.DeleteByKey(ctx, key)
	if err != nil {
		return fmt.Errorf("delete attendance %s/%s: %w", p.UserID, p.Date, err)
	}
	if n == 0 {
		// Nothing to remove. Deleting an absent record is a no-op,
		// not a failure worth redelivering.
		return nil
	}

	a.notify(ctx, env.TenantID, p.ChannelID, "",
		fmt.Sprintf("Removed the %s entry for <@%s>.", p.Date, p.UserID))
	return nil
}

// notify posts a confirmation. Notification failures never fail the
// envelope: the record change already landed, and a redelivery would
// repeat the whole apply just to retry a courtesy message.
func (a *AttendanceApplier) notify(ctx context.Context, tenantID, channelID, threadTS, text string) {
	if channelID == "" {
		return
	}
	if _, err := a.Chat.PostMessage(ctx, tenantID, channelID, threadTS, text); err != nil {
		a.Log.Warn("attendance: notification failed",
			zap.String("tenant", tenantID),
			zap.String("channel", channelID),
			zap.Error(err))
	}
}

func (a *AttendanceApplier) feedback(ctx context.Context, tenantID, channelID, userID string, cause error) {
	if channelID == "" || userID == "" {
		return
	}
	if err := a.Chat.PostEphemeral(ctx, tenantID, channelID, userID, apperrors.UserMessage(cause)); err != nil {
		a.Log.Warn("attendance: feedback failed",
			zap.String("tenant", tenantID),
			zap.String("user", userID),
			zap.Error(err))
	}
}
