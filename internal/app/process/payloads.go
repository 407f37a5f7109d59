// internal/app/process/payloads.go

package process

import "github.com/rollcallhq/rollcall/internal/domain/models"

// SaveAttendancePayload records one dated status for one user. It is
// produced by the structured submission surface, not by free text.
type SaveAttendancePayload struct {
	UserID    string `json:"user_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required"`
	Note      string `json:"note"`
	ChannelID string `json:"channel_id"`
	MessageTS string `json:"message_ts"`
}

// DeleteAttendancePayload removes one dated record.
type DeleteAttendancePayload struct {
	UserID    string `json:"user_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	ChannelID string `json:"channel_id"`
}

// IngestMessagePayload carries a chat message through the queue.
type IngestMessagePayload struct {
	Message models.Message `json:"message" validate:"required"`
}

// Group sync arrives in one of two modes, matching the two admin
// surfaces. Structured submissions carry the complete set and may
// delete by absence; upserts name a single group and never delete.
const (
	SyncModeStructured = "structured"
	SyncModeUpsert     = "upsert"
)

// SyncGroupsPayload is the tagged union of the two sync flows.
type SyncGroupsPayload struct {
	Mode string `json:"mode" validate:"required,oneof=structured upsert"`

	// ActorID is the submitting user, checked against the tenant's
	// admin set and used for failure feedback.
	ActorID   string `json:"actor_id" validate:"required"`
	ChannelID string `json:"channel_id"`

	// Structured mode.
	Groups          []SyncGroup `json:"groups,omitempty"`
	AdminIDs        []string    `json:"admin_ids,omitempty"`
	ReportChannelID string      `json:"report_channel_id,omitempty"`
	Version         int64       `json:"version,omitempty"`

	// Upsert mode.
	Name      string   `json:"name,omitempty"`
	MemberIDs []string `json:"member_ids,omitempty"`
}

// SyncGroup is one desired group in a structured submission.
type SyncGroup struct {
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name" validate:"required"`
	MemberIDs []string `json:"member_ids"`
	AdminIDs  []string `json:"admin_ids,omitempty"`
}

// BackfillChannelPayload triggers a history replay for one channel.
type BackfillChannelPayload struct {
	ChannelID string `json:"channel_id" validate:"required"`
}

// GenerateReportPayload asks for the daily summary. An empty date
// means today in the server's clock.
type GenerateReportPayload struct {
	Date string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
