package project

import (
	"strings"

	"github.com/google/uuid"
)

// Role represents a collaborator's permission tier.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Action represents a class of operations on a project.
type Action int

const (
	ActionRead Action = iota
	ActionEditContent
	ActionManageCollaborators
	ActionDeleteProject
)

// Actor identifies the user attempting an action.
type Actor struct {
	ID    uuid.UUID
	Email string
}

// IsValid checks if the role is valid.
func (r Role) IsValid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	default:
		return false
	}
}

// Allows checks if a role permits the given action. Project deletion is
// reserved for the owner and is never granted through a role.
func (r Role) Allows(action Action) bool {
	switch action {
	case ActionRead:
		return r == RoleViewer || r == RoleEditor || r == RoleAdmin

	case ActionEditContent:
		return r == RoleEditor || r == RoleAdmin

	case ActionManageCollaborators:
		return r == RoleAdmin

	case ActionDeleteProject:
		return false

	default:
		return false
	}
}

// ValidInviteRoles returns the roles that can be assigned via invitation.
func ValidInviteRoles() []Role {
	return []Role{RoleViewer, RoleEditor, RoleAdmin}
}

// IsValidInviteRole checks if a role can be assigned via invitation.
func IsValidInviteRole(r Role) bool {
	for _, valid := range ValidInviteRoles() {
		if r == valid {
			return true
		}
	}
	return false
}

// RoleFor resolves the actor's effective role on a project, given the
// project's collaborator list. The owner has every right; otherwise only an
// accepted collaborator row grants access - a pending invitation grants
// nothing. The second return value is false when the actor has no access.
func RoleFor(actor Actor, proj *Project, collaborators []Collaborator) (Role, bool) {
	if actor.ID == proj.OwnerID {
		return RoleAdmin, true
	}

	for i := range collaborators {
		c := &collaborators[i]
		if c.IsAccepted() && strings.EqualFold(c.Email, actor.Email) {
			return c.Role, true
		}
	}

	return "", false
}

// CanMutate decides whether the actor may perform the action on the project.
// It is pure: it only inspects the already-loaded project and collaborator
// snapshot, and performs no I/O. Rules, first match wins:
//
//  1. the owner may do everything, including deleting the project
//  2. an accepted collaborator acts within its role
//  3. everyone else - including pending invitees - may do nothing
func CanMutate(actor Actor, proj *Project, collaborators []Collaborator, action Action) bool {
	if actor.ID == proj.OwnerID {
		return true
	}

	role, ok := RoleFor(actor, proj, collaborators)
	if !ok {
		return false
	}

	return role.Allows(action)
}
