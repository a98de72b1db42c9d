package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scrumify/server/internal/module/notification"
	"github.com/scrumify/server/internal/shared/events"
)

// Service provides project and collaborator business logic.
type Service struct {
	repo   Repository
	sender notification.Sender
	events *events.Bus
	logger *zap.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, sender notification.Sender, bus *events.Bus, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		sender: sender,
		events: bus,
		logger: logger,
	}
}

// CreateProject creates a project owned by the actor.
func (s *Service) CreateProject(ctx context.Context, actor Actor, req *CreateProjectRequest) (*Project, error) {
	proj := &Project{
		ID:          uuid.New(),
		OwnerID:     actor.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		EndGoal:     req.EndGoal,
	}

	if err := s.repo.CreateProject(ctx, proj); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		zap.String("project_id", proj.ID.String()),
		zap.String("owner_id", actor.ID.String()),
	)

	return proj, nil
}

// GetProject returns a project with the actor's effective role. Projects
// the actor cannot see are reported as not found.
func (s *Service) GetProject(ctx context.Context, actor Actor, projectID uuid.UUID) (*ProjectResponse, error) {
	proj, collabs, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	role, ok := RoleFor(actor, proj, collabs)
	if !ok {
		return nil, ErrProjectNotFound
	}

	return &ProjectResponse{Project: proj, MyRole: role}, nil
}

// ListProjects returns every project visible to the actor.
func (s *Service) ListProjects(ctx context.Context, actor Actor) ([]ProjectResponse, error) {
	return s.repo.ListVisibleProjects(ctx, actor.ID, actor.Email)
}

// UpdateProject applies the non-nil fields of the request.
func (s *Service) UpdateProject(ctx context.Context, actor Actor, projectID uuid.UUID, req *UpdateProjectRequest) (*Project, error) {
	proj, err := s.authorize(ctx, actor, projectID, ActionEditContent)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		proj.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		proj.Description = *req.Description
	}
	if req.EndGoal != nil {
		proj.EndGoal = *req.EndGoal
	}

	if err := s.repo.UpdateProject(ctx, proj); err != nil {
		return nil, err
	}

	return proj, nil
}

// DeleteProject removes a project and everything it contains. Only the
// owner may delete; admins manage collaborators but cannot destroy the
// project itself.
func (s *Service) DeleteProject(ctx context.Context, actor Actor, projectID uuid.UUID) error {
	proj, collabs, err := s.load(ctx, projectID)
	if err != nil {
		return err
	}

	if actor.ID != proj.OwnerID {
		if _, visible := RoleFor(actor, proj, collabs); !visible {
			return ErrProjectNotFound
		}
		return ErrOnlyOwnerCanDelete
	}

	if err := s.repo.DeleteProjectCascade(ctx, projectID); err != nil {
		return err
	}

	s.logger.Info("project deleted",
		zap.String("project_id", projectID.String()),
		zap.String("owner_id", proj.OwnerID.String()),
	)

	s.events.Publish(events.NewProjectDeletedEvent(projectID, proj.OwnerID))
	return nil
}

// Invite creates a pending invitation and sends the invitation email. If
// the email cannot be sent, the freshly created row is deleted so the
// invitee is never left with a silent, unreachable invitation.
func (s *Service) Invite(ctx context.Context, actor Actor, projectID uuid.UUID, req *InviteRequest) (*Collaborator, error) {
	if !IsValidInviteRole(req.Role) {
		return nil, ErrInvalidRole
	}

	proj, err := s.authorize(ctx, actor, projectID, ActionManageCollaborators)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.repo.GetCollaboratorByProjectAndEmail(ctx, projectID, email)
	if err != nil && !errors.Is(err, ErrInvitationNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateInvitation
	}

	collab := &Collaborator{
		ID:        uuid.New(),
		ProjectID: projectID,
		Email:     email,
		Role:      req.Role,
		Status:    StatusPending,
	}

	if err := s.repo.CreateCollaborator(ctx, collab); err != nil {
		return nil, err
	}

	sendErr := s.sender.SendInvitation(ctx, notification.InvitationEmail{
		To:             email,
		ProjectID:      projectID.String(),
		ProjectTitle:   proj.Title,
		InviterEmail:   actor.Email,
		Role:           string(req.Role),
		CollaboratorID: collab.ID.String(),
	})
	if sendErr != nil {
		// Compensate: the invitee can only ever learn about the
		// invitation through the email, so an unsent invitation must
		// not linger in the database.
		if delErr := s.repo.DeleteCollaborator(ctx, collab.ID); delErr != nil {
			s.logger.Error("failed to roll back invitation after email failure",
				zap.String("collaborator_id", collab.ID.String()),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("%w: %v", ErrNotificationFailed, sendErr)
	}

	s.logger.Info("invitation sent",
		zap.String("collaborator_id", collab.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("invitee", email),
		zap.String("role", string(req.Role)),
	)

	s.events.Publish(events.NewInvitationSentEvent(collab.ID, projectID, email, string(req.Role)))
	return collab, nil
}

// Accept marks a pending invitation as accepted. Only the invitee may
// accept. Accepting an already accepted invitation is a no-op that still
// returns the project.
func (s *Service) Accept(ctx context.Context, actor Actor, collaboratorID uuid.UUID) (*AcceptResponse, error) {
	collab, err := s.repo.GetCollaboratorByID(ctx, collaboratorID)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(collab.Email, actor.Email) {
		return nil, ErrNotInvitee
	}

	if collab.IsPending() {
		if err := s.repo.UpdateCollaboratorStatus(ctx, collab.ID, StatusAccepted); err != nil {
			return nil, err
		}
		collab.Status = StatusAccepted

		s.logger.Info("invitation accepted",
			zap.String("collaborator_id", collab.ID.String()),
			zap.String("project_id", collab.ProjectID.String()),
		)

		s.events.Publish(events.NewInvitationAcceptedEvent(collab.ID, collab.ProjectID, collab.Email))
	}

	proj, err := s.repo.GetProjectByID(ctx, collab.ProjectID)
	if err != nil {
		return nil, err
	}

	return &AcceptResponse{Collaborator: collab, Project: proj}, nil
}

// Decline rejects a pending invitation by deleting it. Only the invitee
// may decline, and only while the invitation is still pending.
func (s *Service) Decline(ctx context.Context, actor Actor, collaboratorID uuid.UUID) error {
	collab, err := s.repo.GetCollaboratorByID(ctx, collaboratorID)
	if err != nil {
		return err
	}

	if !strings.EqualFold(collab.Email, actor.Email) {
		return ErrNotInvitee
	}

	if !collab.IsPending() {
		return ErrInvitationProcessed
	}

	if err := s.repo.DeleteCollaborator(ctx, collab.ID); err != nil {
		return err
	}

	s.logger.Info("invitation declined",
		zap.String("collaborator_id", collab.ID.String()),
		zap.String("project_id", collab.ProjectID.String()),
	)

	s.events.Publish(events.NewInvitationDeclinedEvent(collab.ID, collab.ProjectID, collab.Email))
	return nil
}

// ListPendingInvitations returns the actor's pending invitations together
// with a summary of each inviting project.
func (s *Service) ListPendingInvitations(ctx context.Context, actor Actor) ([]PendingInvitation, error) {
	return s.repo.ListPendingByEmail(ctx, actor.Email)
}

// ListCollaborators returns the collaborator rows of a visible project.
func (s *Service) ListCollaborators(ctx context.Context, actor Actor, projectID uuid.UUID) ([]Collaborator, error) {
	if _, err := s.authorize(ctx, actor, projectID, ActionRead); err != nil {
		return nil, err
	}
	return s.repo.ListCollaborators(ctx, projectID)
}

// UpdateCollaboratorRole changes an existing collaborator's role.
func (s *Service) UpdateCollaboratorRole(ctx context.Context, actor Actor, projectID, collaboratorID uuid.UUID, role Role) (*Collaborator, error) {
	if !IsValidInviteRole(role) {
		return nil, ErrInvalidRole
	}

	if _, err := s.authorize(ctx, actor, projectID, ActionManageCollaborators); err != nil {
		return nil, err
	}

	collab, err := s.repo.GetCollaboratorByID(ctx, collaboratorID)
	if err != nil {
		return nil, err
	}
	if collab.ProjectID != projectID {
		return nil, ErrInvitationNotFound
	}

	if err := s.repo.UpdateCollaboratorRole(ctx, collab.ID, role); err != nil {
		return nil, err
	}
	collab.Role = role

	return collab, nil
}

// RemoveCollaborator removes a collaborator (or revokes a pending
// invitation) from a project.
func (s *Service) RemoveCollaborator(ctx context.Context, actor Actor, projectID, collaboratorID uuid.UUID) error {
	if _, err := s.authorize(ctx, actor, projectID, ActionManageCollaborators); err != nil {
		return err
	}

	collab, err := s.repo.GetCollaboratorByID(ctx, collaboratorID)
	if err != nil {
		return err
	}
	if collab.ProjectID != projectID {
		return ErrInvitationNotFound
	}

	return s.repo.DeleteCollaborator(ctx, collab.ID)
}

// CanAccess reports whether the actor may perform the action on the
// project. It backs permission checks from other modules.
func (s *Service) CanAccess(ctx context.Context, userID uuid.UUID, email string, projectID uuid.UUID, action Action) error {
	_, err := s.authorize(ctx, actorOf(userID, email), projectID, action)
	return err
}

// authorize loads the project and verifies the actor may perform the
// action. Invisible projects surface as not found rather than forbidden.
func (s *Service) authorize(ctx context.Context, actor Actor, projectID uuid.UUID, action Action) (*Project, error) {
	proj, collabs, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if _, visible := RoleFor(actor, proj, collabs); !visible {
		return nil, ErrProjectNotFound
	}

	if !CanMutate(actor, proj, collabs, action) {
		return nil, ErrPermissionDenied
	}

	return proj, nil
}

func (s *Service) load(ctx context.Context, projectID uuid.UUID) (*Project, []Collaborator, error) {
	proj, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	collabs, err := s.repo.ListCollaborators(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	return proj, collabs, nil
}
