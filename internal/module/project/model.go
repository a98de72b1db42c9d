package project

import (
	"time"

	"github.com/google/uuid"
)

// CollaboratorStatus represents the lifecycle state of an invitation.
// "rejected" is transient: declining deletes the row, it is never persisted.
type CollaboratorStatus string

const (
	StatusPending  CollaboratorStatus = "pending"
	StatusAccepted CollaboratorStatus = "accepted"
)

// Project represents an agile project.
type Project struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID     uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description,omitempty"`
	EndGoal     string    `json:"end_goal,omitempty" gorm:"column:end_goal"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations (not loaded by default)
	Collaborators []Collaborator `json:"collaborators,omitempty" gorm:"foreignKey:ProjectID"`
}

// TableName returns the database table name.
func (Project) TableName() string {
	return "projects"
}

// Collaborator represents a project invitation and, once accepted, a
// project membership. At most one row exists per (project, email).
type Collaborator struct {
	ID        uuid.UUID          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID uuid.UUID          `json:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_collaborators_project_email"`
	Email     string             `json:"email" gorm:"not null;uniqueIndex:idx_collaborators_project_email"`
	Role      Role               `json:"role" gorm:"not null;default:viewer"`
	Status    CollaboratorStatus `json:"status" gorm:"not null;default:pending"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// TableName returns the database table name.
func (Collaborator) TableName() string {
	return "collaborators"
}

// IsPending returns true if the invitation has not been answered yet.
func (c *Collaborator) IsPending() bool {
	return c.Status == StatusPending
}

// IsAccepted returns true if the invitation has been accepted.
func (c *Collaborator) IsAccepted() bool {
	return c.Status == StatusAccepted
}

// ProjectSummary is the minimal projection shown alongside a pending
// invitation.
type ProjectSummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
}

// PendingInvitation is a pending collaborator row joined with its project.
type PendingInvitation struct {
	Collaborator Collaborator   `json:"collaborator"`
	Project      ProjectSummary `json:"project"`
}
