// internal/app/process/report.go

package process

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/system/chat"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// AttendanceReader is the read side of the attendance store the report
// needs.
type AttendanceReader interface {
	ListByDate(ctx context.Context, tenantID, date string) ([]models.AttendanceRecord, error)
}

// GroupLister lists a tenant's groups.
type GroupLister interface {
	ListByTenant(ctx context.Context, tenantID string) ([]models.Group, error)
}

// SettingsReader loads tenant settings.
type SettingsReader interface {
	Get(ctx context.Context, tenantID string) (models.TenantSettings, error)
}

// ReportApplier posts the per-group daily summary.
type ReportApplier struct {
	Attendance AttendanceReader
	Groups     GroupLister
	Settings   SettingsReader
	Chat       chat.Client
	Log        *zap.Logger
}

func (a *ReportApplier) Kinds() []models.EventKind {
	return []models.EventKind{models.KindGenerateReport}
}

func (a *ReportApplier) Apply(ctx context.Context, env models.Envelope) error {
	var p GenerateReportPayload
	if err := decodePayload(env, &p); err != nil {
		return err
	}
	date := p.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	set, err := a.Settings.Get(ctx, env.TenantID)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if set.ReportChannelID == "" {
		a.Log.Info("report: tenant has no report channel, skipping",
			zap.String("tenant", env.TenantID))
		return nil
	}

	groups, err := a.Groups.ListByTenant(ctx, env.TenantID)
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}
	records, err := a.Attendance.ListByDate(ctx, env.TenantID, date)
	if err != nil {
		return fmt.Errorf("list attendance: %w", err)
	}

	text := FormatReport(date, groups, records)
	if _, err := a.Chat.PostMessage(ctx, env.TenantID, set.ReportChannelID, "", text); err != nil {
		return fmt.Errorf("post report: %w", err)
	}
	a.Log.Info("report: posted",
		zap.String("tenant", env.TenantID),
		zap.String("date", date),
		zap.Int("records", len(records)))
	return nil
}

// FormatReport renders one summary block per group. Members without an
// entry for the date are presumed present and not listed; a group with
// no entries at all says so explicitly. Records for users outside any
// group land in a trailing ungrouped section so nothing reported is
// silently dropped.
func FormatReport(date string, groups []models.Group, records []models.AttendanceRecord) string {
	byUser := make(map[string]models.AttendanceRecord, len(records))
	for _, r := range records {
		byUser[r.UserID] = r
	}
	claimed := make(map[string]bool, len(records))

	// Sort a copy; the caller's slice order is not ours to change.
	groups = append([]models.Group(nil), groups...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })

	var b strings.Builder
	fmt.Fprintf(&b, "Attendance for %s\n", date)

	for _, g := range groups {
		fmt.Fprintf(&b, "\n*%s*\n", g.Name)
		members := append([]string(nil), g.MemberIDs...)
		sort.Strings(members)

		wrote := false
		for _, uid := range members {
			rec, ok := byUser[uid]
			if !ok {
				continue
			}
			claimed[uid] = true
			b.WriteString(reportLine(rec))
			wrote = true
		}
		if !wrote {
			b.WriteString("- everyone in\n")
		}
	}

	var rest []models.AttendanceRecord
	for _, r := range records {
		if !claimed[r.UserID] {
			rest = append(rest, r)
		}
	}
	if len(rest) > 0 {
		sort.Slice(rest, func(i, j int) bool { return rest[i].UserID < rest[j].UserID })
		b.WriteString("\n*Ungrouped*\n")
		for _, r := range rest {
			b.WriteString(reportLine(r))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func reportLine(r models.AttendanceRecord) string {
	if r.Note != "" {
		return fmt.Sprintf("- <@%s>: %s (%s)\n", r.UserID, r.Status.Label(), r.Note)
	}
	return fmt.Sprintf("- <@%s>: %s\n", r.UserID, r.Status.Label())
}
