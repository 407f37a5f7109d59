// internal/domain/models/status.go
package models

// Status is an attendance category reported by an employee.
type Status string

const (
	StatusLate       Status = "late"
	StatusEarlyLeave Status = "early_leave"
	StatusOut        Status = "out"
	StatusRemote     Status = "remote"
	StatusVacation   Status = "vacation"
	StatusOther      Status = "other"
)

// AllStatuses lists every valid attendance status.
var AllStatuses = []Status{
	StatusLate,
	StatusEarlyLeave,
	StatusOut,
	StatusRemote,
	StatusVacation,
	StatusOther,
}

// statusLabels are the display names used in notifications and reports.
var statusLabels = map[Status]string{
	StatusLate:       "Late",
	StatusEarlyLeave: "Leaving early",
	StatusOut:        "Out of office",
	StatusRemote:     "Remote",
	StatusVacation:   "Vacation",
	StatusOther:      "Other",
}

// Valid reports whether s is a recognized attendance status.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the human-readable name for s. Unknown statuses are
// returned unchanged so a report never renders an empty cell.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}
