// internal/domain/models/group.go
package models

import (
	"time"
)

// Group is a reportable unit (a team or department) inside a tenant.
//
// Two identity schemes coexist: the generated opaque ID (stable across
// renames, used by the structured admin editor) and the folded name
// (used by the free-text upsert flow where no id is visible). NameCI is
// the folded form kept unique per tenant for the text flow.
type Group struct {
	ID       string `bson:"_id" json:"id"`
	TenantID string `bson:"tenant_id" json:"tenant_id"`
	Name     string `bson:"name" json:"name"`
	NameCI   string `bson:"name_ci" json:"name_ci"`

	MemberIDs []string `bson:"member_ids" json:"member_ids"`
	AdminIDs  []string `bson:"admin_ids" json:"admin_ids"`

	// Version increments on every write; group-sync submissions carry
	// the version they were rendered from and stale writes are rejected.
	Version int64 `bson:"version" json:"version"`

	CreatedBy string    `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SameMembers reports whether g's member set equals memberIDs. Order
// of ids is not significant.
func (g Group) SameMembers(memberIDs []string) bool {
	return sameIDSet(g.MemberIDs, memberIDs)
}

func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		seen[id]--
		if seen[id] < 0 {
			return false
		}
	}
	return true
}
