package workspace

import "time"

// Role is a membership role scoped to a single workspace. It is distinct
// from a user's global role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is one of the known workspace roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Member associates a user with a workspace and a role within it.
// Members are embedded in the workspace record, not standalone entities.
type Member struct {
	UserID   string    `bson:"userId" json:"userId"`
	Role     Role      `bson:"role" json:"role"`
	JoinedAt time.Time `bson:"joinedAt" json:"joinedAt"`
}

// Workspace is a named collaboration container with an embedded membership
// list. Version is a write counter used for optimistic concurrency: every
// membership mutation is conditional on the version it read, which
// serializes compound check-then-write sequences per workspace and keeps
// the at-least-one-admin invariant from racing.
type Workspace struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Members   []Member  `bson:"members" json:"members"`
	CreatedBy string    `bson:"createdBy" json:"createdBy"`
	Version   int64     `bson:"version" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Member returns the membership entry for userID, or nil.
func (w *Workspace) Member(userID string) *Member {
	for i := range w.Members {
		if w.Members[i].UserID == userID {
			return &w.Members[i]
		}
	}
	return nil
}

// AdminCount returns the number of members holding the admin role.
func (w *Workspace) AdminCount() int {
	n := 0
	for i := range w.Members {
		if w.Members[i].Role == RoleAdmin {
			n++
		}
	}
	return n
}
