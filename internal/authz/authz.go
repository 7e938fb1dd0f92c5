// Package authz is the workspace authorization guard. It is a set of pure
// decision functions over an already-fetched workspace snapshot: it never
// mutates state and never talks to storage, which keeps it testable without
// any database fixture.
package authz

import (
	"errors"

	"github.com/knowledgecopilot/backend/internal/models"
	"github.com/knowledgecopilot/backend/internal/workspace"
)

var (
	ErrNotAMember       = errors.New("not a member of this workspace")
	ErrInsufficientRole = errors.New("this action requires admin role")
)

// Caller identifies the requesting user for authorization decisions.
// GlobalRole is the system-wide role carried in the bearer claims.
type Caller struct {
	UserID     string
	GlobalRole models.GlobalRole
}

// GlobalOverride reports whether the caller holds the system-wide admin
// capability. It is checked before, never instead of, workspace resolution:
// store-level invariants such as last-admin protection still apply to
// global admins.
func GlobalOverride(c Caller) bool {
	return c.GlobalRole == models.GlobalAdmin
}

// ResolveRole derives the caller's effective role within the workspace.
// The empty role means "not a member".
func ResolveRole(ws *workspace.Workspace, userID string) workspace.Role {
	if m := ws.Member(userID); m != nil {
		return m.Role
	}
	return ""
}

// Authorize gates an operation scoped to ws. required is the minimum
// workspace role: RoleMember admits any member, RoleAdmin admits admins
// only. Global admins pass the gate via the capability override.
func Authorize(ws *workspace.Workspace, c Caller, required workspace.Role) error {
	if GlobalOverride(c) {
		return nil
	}
	role := ResolveRole(ws, c.UserID)
	if role == "" {
		return ErrNotAMember
	}
	if required == workspace.RoleAdmin && role != workspace.RoleAdmin {
		return ErrInsufficientRole
	}
	return nil
}
