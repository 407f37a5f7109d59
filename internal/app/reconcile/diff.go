// internal/app/reconcile/diff.go

// Package reconcile computes and applies the difference between the
// group state an admin submitted and the state already persisted.
//
// Two identity schemes coexist because the admin surface offers two
// flows: a structured multi-group editor that works with opaque ids
// and submits the complete desired set, and a free-text single-group
// form where only the name is visible. The two are modeled as distinct
// modes rather than inferred from which fields happen to be present.
package reconcile

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"

	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// Identity selects how desired entries are matched to existing groups.
type Identity int

const (
	// ByID matches on the opaque group id. Entries without an id are
	// creates. Used by the structured editor, which submits the
	// complete set, so absence means deletion.
	ByID Identity = iota

	// ByName matches on the case-folded name. Used by the free-text
	// flow, which only ever creates or updates; it must never delete
	// groups it was not shown.
	ByName
)

// Desired is one group as submitted by the caller.
type Desired struct {
	ID        string
	Name      string
	MemberIDs []string
	AdminIDs  []string
}

// Update pairs an existing group with the desired state that differs
// from it.
type Update struct {
	Existing models.Group
	Desired  Desired
}

// Plan is the computed difference. Creates, updates and deletes are
// applied in that order, each as an independent write.
type Plan struct {
	Creates []Desired
	Updates []Update
	Deletes []models.Group
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Diff computes the plan that turns existing into desired.
//
// completeSet controls deletion by absence: only the structured editor
// submits the full set, so only it may delete. ByName callers must
// pass false.
func Diff(existing []models.Group, desired []Desired, id Identity, completeSet bool) Plan {
	byKey := make(map[string]models.Group, len(existing))
	for _, g := range existing {
		byKey[identityKey(id, g.ID, g.Name)] = g
	}

	var plan Plan
	seen := make(map[string]bool, len(desired))

	for _, d := range desired {
		key := identityKey(id, d.ID, d.Name)
		cur, ok := byKey[key]
		if !ok || key == "" {
			plan.Creates = append(plan.Creates, d)
			continue
		}
		seen[key] = true
		if changed(cur, d) {
			plan.Updates = append(plan.Updates, Update{Existing: cur, Desired: d})
		}
	}

	if completeSet {
		for _, g := range existing {
			if !seen[identityKey(id, g.ID, g.Name)] {
				plan.Deletes = append(plan.Deletes, g)
			}
		}
	}
	return plan
}

func identityKey(id Identity, groupID, name string) string {
	if id == ByID {
		return groupID
	}
	return text.Fold(strings.TrimSpace(name))
}

// changed reports whether any reconciled field differs. Member and
// admin sets compare order-insensitively.
func changed(cur models.Group, d Desired) bool {
	if strings.TrimSpace(d.Name) != cur.Name {
		return true
	}
	if !sameIDSet(cur.MemberIDs, d.MemberIDs) {
		return true
	}
	if !sameIDSet(cur.AdminIDs, d.AdminIDs) {
		return true
	}
	return false
}

func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, id := range a {
		set[id]++
	}
	for _, id := range b {
		if set[id] == 0 {
			return false
		}
		set[id]--
	}
	return true
}
