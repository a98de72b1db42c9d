package project

import (
	"github.com/google/uuid"
)

// CreateProjectRequest is the payload for creating a project.
type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=2000"`
	EndGoal     string `json:"end_goal" binding:"max=2000"`
}

// UpdateProjectRequest is the payload for updating a project. Nil fields
// are left untouched.
type UpdateProjectRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	EndGoal     *string `json:"end_goal" binding:"omitempty,max=2000"`
}

// InviteRequest is the payload for inviting a collaborator.
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  Role   `json:"role" binding:"required"`
}

// UpdateRoleRequest is the payload for changing a collaborator's role.
type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required"`
}

// ProjectResponse is a project together with the caller's effective role.
type ProjectResponse struct {
	Project *Project `json:"project"`
	MyRole  Role     `json:"my_role"`
}

// AcceptResponse is returned after accepting an invitation.
type AcceptResponse struct {
	Collaborator *Collaborator `json:"collaborator"`
	Project      *Project      `json:"project"`
}

// actorOf builds an Actor from request identity values.
func actorOf(userID uuid.UUID, email string) Actor {
	return Actor{ID: userID, Email: email}
}
