package events

import "github.com/google/uuid"

// Event type constants.
const (
	InvitationSentType     = "InvitationSent"
	InvitationAcceptedType = "InvitationAccepted"
	InvitationDeclinedType = "InvitationDeclined"
	ProjectDeletedType     = "ProjectDeleted"
)

// InvitationSentEvent is emitted after an invitation is persisted and its
// email has been dispatched.
type InvitationSentEvent struct {
	BaseEvent

	CollaboratorID uuid.UUID `json:"collaborator_id"`
	ProjectID      uuid.UUID `json:"project_id"`
	InviteeEmail   string    `json:"invitee_email"`
	Role           string    `json:"role"`
}

// NewInvitationSentEvent creates a new InvitationSentEvent.
func NewInvitationSentEvent(collaboratorID, projectID uuid.UUID, inviteeEmail, role string) *InvitationSentEvent {
	return &InvitationSentEvent{
		BaseEvent:      NewBaseEvent(InvitationSentType, collaboratorID, "Collaborator"),
		CollaboratorID: collaboratorID,
		ProjectID:      projectID,
		InviteeEmail:   inviteeEmail,
		Role:           role,
	}
}

// InvitationAcceptedEvent is emitted when an invitee accepts an invitation.
// The project becomes visible to the invitee from this point on.
type InvitationAcceptedEvent struct {
	BaseEvent

	CollaboratorID uuid.UUID `json:"collaborator_id"`
	ProjectID      uuid.UUID `json:"project_id"`
	InviteeEmail   string    `json:"invitee_email"`
}

// NewInvitationAcceptedEvent creates a new InvitationAcceptedEvent.
func NewInvitationAcceptedEvent(collaboratorID, projectID uuid.UUID, inviteeEmail string) *InvitationAcceptedEvent {
	return &InvitationAcceptedEvent{
		BaseEvent:      NewBaseEvent(InvitationAcceptedType, collaboratorID, "Collaborator"),
		CollaboratorID: collaboratorID,
		ProjectID:      projectID,
		InviteeEmail:   inviteeEmail,
	}
}

// InvitationDeclinedEvent is emitted when an invitee declines an invitation.
// The collaborator row no longer exists when handlers run.
type InvitationDeclinedEvent struct {
	BaseEvent

	CollaboratorID uuid.UUID `json:"collaborator_id"`
	ProjectID      uuid.UUID `json:"project_id"`
	InviteeEmail   string    `json:"invitee_email"`
}

// NewInvitationDeclinedEvent creates a new InvitationDeclinedEvent.
func NewInvitationDeclinedEvent(collaboratorID, projectID uuid.UUID, inviteeEmail string) *InvitationDeclinedEvent {
	return &InvitationDeclinedEvent{
		BaseEvent:      NewBaseEvent(InvitationDeclinedType, collaboratorID, "Collaborator"),
		CollaboratorID: collaboratorID,
		ProjectID:      projectID,
		InviteeEmail:   inviteeEmail,
	}
}

// ProjectDeletedEvent is emitted after a project and all of its dependents
// (sprints, columns, tasks, backlog items, collaborators) have been removed.
type ProjectDeletedEvent struct {
	BaseEvent

	ProjectID uuid.UUID `json:"project_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
}

// NewProjectDeletedEvent creates a new ProjectDeletedEvent.
func NewProjectDeletedEvent(projectID, ownerID uuid.UUID) *ProjectDeletedEvent {
	return &ProjectDeletedEvent{
		BaseEvent: NewBaseEvent(ProjectDeletedType, projectID, "Project"),
		ProjectID: projectID,
		OwnerID:   ownerID,
	}
}
