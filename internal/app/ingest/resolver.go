// internal/app/ingest/resolver.go

package ingest

import (
	"strings"
	"time"

	"github.com/rollcallhq/rollcall/internal/app/system/extract"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// Op is what the pipeline should do for one (user, date) after the
// extractor's items have been resolved.
type Op struct {
	Date   string
	Action extract.Action
	Status models.Status
	Note   string
}

// statusAliases maps extractor output that is close to, but not
// exactly, a canonical status.
var statusAliases = map[string]models.Status{
	"wfh":            models.StatusRemote,
	"work from home": models.StatusRemote,
	"working late":   models.StatusLate,
	"leaving early":  models.StatusEarlyLeave,
	"early":          models.StatusEarlyLeave,
	"off":            models.StatusOut,
	"pto":            models.StatusVacation,
	"holiday":        models.StatusVacation,
}

// NormalizeStatus lowercases and trims a raw status string and maps
// known aliases onto canonical values. The second return is false when
// nothing canonical matches.
func NormalizeStatus(raw string) (models.Status, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if st := models.Status(s); st.Valid() {
		return st, true
	}
	if st, ok := statusAliases[s]; ok {
		return st, true
	}
	return "", false
}

// Resolve collapses extractor items into one operation per date.
//
// Items are processed in order, later items winning. A delete that
// also carries a valid status is a correction, not a removal: the user
// said "cancel my vacation, I'll be remote", so the item becomes a
// save with the new status. Items whose status cannot be normalized
// are dropped unless they are pure deletes.
func Resolve(items []extract.Item, base time.Time) []Op {
	byDate := make(map[string]Op)
	var order []string

	for _, it := range items {
		date := strings.TrimSpace(it.Date)
		if date == "" {
			date = base.Format("2006-01-02")
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			continue
		}

		status, hasStatus := NormalizeStatus(it.Status)
		action := it.Action
		if action == extract.ActionDelete && hasStatus {
			action = extract.ActionSave
		}
		if action == extract.ActionSave && !hasStatus {
			continue
		}

		op := Op{Date: date, Action: action, Note: strings.TrimSpace(it.Note)}
		if action == extract.ActionSave {
			op.Status = status
		}
		if _, seen := byDate[date]; !seen {
			order = append(order, date)
		}
		byDate[date] = op
	}

	ops := make([]Op, 0, len(order))
	for _, d := range order {
		ops = append(ops, byDate[d])
	}
	return ops
}
