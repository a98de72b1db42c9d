package project

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scrumify/server/internal/module/notification"
	"github.com/scrumify/server/internal/shared/events"
)

type fakeRepository struct {
	projects      map[uuid.UUID]*Project
	collaborators map[uuid.UUID]*Collaborator
	cascaded      []uuid.UUID
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		projects:      make(map[uuid.UUID]*Project),
		collaborators: make(map[uuid.UUID]*Collaborator),
	}
}

func (f *fakeRepository) CreateProject(_ context.Context, proj *Project) error {
	f.projects[proj.ID] = proj
	return nil
}

func (f *fakeRepository) GetProjectByID(_ context.Context, id uuid.UUID) (*Project, error) {
	proj, ok := f.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	copied := *proj
	return &copied, nil
}

func (f *fakeRepository) UpdateProject(_ context.Context, proj *Project) error {
	if _, ok := f.projects[proj.ID]; !ok {
		return ErrProjectNotFound
	}
	f.projects[proj.ID] = proj
	return nil
}

func (f *fakeRepository) DeleteProjectCascade(_ context.Context, id uuid.UUID) error {
	if _, ok := f.projects[id]; !ok {
		return ErrProjectNotFound
	}
	delete(f.projects, id)
	for cid, collab := range f.collaborators {
		if collab.ProjectID == id {
			delete(f.collaborators, cid)
		}
	}
	f.cascaded = append(f.cascaded, id)
	return nil
}

func (f *fakeRepository) ListVisibleProjects(_ context.Context, userID uuid.UUID, email string) ([]ProjectResponse, error) {
	var result []ProjectResponse
	for _, proj := range f.projects {
		if proj.OwnerID == userID {
			result = append(result, ProjectResponse{Project: proj, MyRole: RoleAdmin})
			continue
		}
		for _, collab := range f.collaborators {
			if collab.ProjectID == proj.ID && collab.IsAccepted() && strings.EqualFold(collab.Email, email) {
				result = append(result, ProjectResponse{Project: proj, MyRole: collab.Role})
			}
		}
	}
	return result, nil
}

func (f *fakeRepository) CreateCollaborator(_ context.Context, collab *Collaborator) error {
	for _, existing := range f.collaborators {
		if existing.ProjectID == collab.ProjectID && strings.EqualFold(existing.Email, collab.Email) {
			return ErrDuplicateInvitation
		}
	}
	copied := *collab
	f.collaborators[collab.ID] = &copied
	return nil
}

func (f *fakeRepository) GetCollaboratorByID(_ context.Context, id uuid.UUID) (*Collaborator, error) {
	collab, ok := f.collaborators[id]
	if !ok {
		return nil, ErrInvitationNotFound
	}
	copied := *collab
	return &copied, nil
}

func (f *fakeRepository) GetCollaboratorByProjectAndEmail(_ context.Context, projectID uuid.UUID, email string) (*Collaborator, error) {
	for _, collab := range f.collaborators {
		if collab.ProjectID == projectID && strings.EqualFold(collab.Email, email) {
			copied := *collab
			return &copied, nil
		}
	}
	return nil, ErrInvitationNotFound
}

func (f *fakeRepository) ListCollaborators(_ context.Context, projectID uuid.UUID) ([]Collaborator, error) {
	var result []Collaborator
	for _, collab := range f.collaborators {
		if collab.ProjectID == projectID {
			result = append(result, *collab)
		}
	}
	return result, nil
}

func (f *fakeRepository) UpdateCollaboratorStatus(_ context.Context, id uuid.UUID, status CollaboratorStatus) error {
	collab, ok := f.collaborators[id]
	if !ok {
		return ErrInvitationNotFound
	}
	collab.Status = status
	return nil
}

func (f *fakeRepository) UpdateCollaboratorRole(_ context.Context, id uuid.UUID, role Role) error {
	collab, ok := f.collaborators[id]
	if !ok {
		return ErrInvitationNotFound
	}
	collab.Role = role
	return nil
}

func (f *fakeRepository) DeleteCollaborator(_ context.Context, id uuid.UUID) error {
	if _, ok := f.collaborators[id]; !ok {
		return ErrInvitationNotFound
	}
	delete(f.collaborators, id)
	return nil
}

func (f *fakeRepository) ListPendingByEmail(_ context.Context, email string) ([]PendingInvitation, error) {
	var result []PendingInvitation
	for _, collab := range f.collaborators {
		if !collab.IsPending() || !strings.EqualFold(collab.Email, email) {
			continue
		}
		proj, ok := f.projects[collab.ProjectID]
		if !ok {
			continue
		}
		result = append(result, PendingInvitation{
			Collaborator: *collab,
			Project:      ProjectSummary{ID: proj.ID, Title: proj.Title, Description: proj.Description},
		})
	}
	return result, nil
}

type fakeSender struct {
	sent []notification.InvitationEmail
	err  error
}

func (f *fakeSender) SendInvitation(_ context.Context, email notification.InvitationEmail) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeRepository, *fakeSender) {
	t.Helper()
	repo := newFakeRepository()
	sender := &fakeSender{}
	bus := events.NewBus(zap.NewNop())
	return NewService(repo, sender, bus, zap.NewNop()), repo, sender
}

func seedProject(repo *fakeRepository, owner Actor) *Project {
	proj := &Project{ID: uuid.New(), OwnerID: owner.ID, Title: "Apollo"}
	repo.projects[proj.ID] = proj
	return proj
}

func seedCollaborator(repo *fakeRepository, projectID uuid.UUID, email string, role Role, status CollaboratorStatus) *Collaborator {
	collab := &Collaborator{
		ID:        uuid.New(),
		ProjectID: projectID,
		Email:     email,
		Role:      role,
		Status:    status,
	}
	repo.collaborators[collab.ID] = collab
	return collab
}

func TestInvite(t *testing.T) {
	ctx := context.Background()
	owner := Actor{ID: uuid.New(), Email: "owner@example.com"}

	t.Run("success sends email and persists pending invitation", func(t *testing.T) {
		svc, repo, sender := newTestService(t)
		proj := seedProject(repo, owner)

		collab, err := svc.Invite(ctx, owner, proj.ID, &InviteRequest{Email: "Dev@Example.com", Role: RoleEditor})
		require.NoError(t, err)

		assert.Equal(t, "dev@example.com", collab.Email)
		assert.Equal(t, RoleEditor, collab.Role)
		assert.Equal(t, StatusPending, collab.Status)

		require.Len(t, sender.sent, 1)
		assert.Equal(t, "dev@example.com", sender.sent[0].To)
		assert.Equal(t, "Apollo", sender.sent[0].ProjectTitle)
		assert.Equal(t, owner.Email, sender.sent[0].InviterEmail)
		assert.Equal(t, collab.ID.String(), sender.sent[0].CollaboratorID)
	})

	t.Run("email failure rolls back the invitation", func(t *testing.T) {
		svc, repo, sender := newTestService(t)
		proj := seedProject(repo, owner)
		sender.err = errors.New("smtp unreachable")

		_, err := svc.Invite(ctx, owner, proj.ID, &InviteRequest{Email: "dev@example.com", Role: RoleViewer})
		require.ErrorIs(t, err, ErrNotificationFailed)

		assert.Empty(t, repo.collaborators, "failed invitation must not linger")
	})

	t.Run("duplicate invitation is rejected", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		seedCollaborator(repo, proj.ID, "dev@example.com", RoleViewer, StatusPending)

		_, err := svc.Invite(ctx, owner, proj.ID, &InviteRequest{Email: "DEV@example.com", Role: RoleEditor})
		assert.ErrorIs(t, err, ErrDuplicateInvitation)
	})

	t.Run("duplicate against accepted collaborator is rejected", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		seedCollaborator(repo, proj.ID, "dev@example.com", RoleViewer, StatusAccepted)

		_, err := svc.Invite(ctx, owner, proj.ID, &InviteRequest{Email: "dev@example.com", Role: RoleEditor})
		assert.ErrorIs(t, err, ErrDuplicateInvitation)
	})

	t.Run("invalid role is rejected", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)

		_, err := svc.Invite(ctx, owner, proj.ID, &InviteRequest{Email: "dev@example.com", Role: Role("root")})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("editor cannot invite", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		editor := Actor{ID: uuid.New(), Email: "editor@example.com"}
		seedCollaborator(repo, proj.ID, editor.Email, RoleEditor, StatusAccepted)

		_, err := svc.Invite(ctx, editor, proj.ID, &InviteRequest{Email: "dev@example.com", Role: RoleViewer})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("accepted admin can invite", func(t *testing.T) {
		svc, repo, sender := newTestService(t)
		proj := seedProject(repo, owner)
		admin := Actor{ID: uuid.New(), Email: "admin@example.com"}
		seedCollaborator(repo, proj.ID, admin.Email, RoleAdmin, StatusAccepted)

		_, err := svc.Invite(ctx, admin, proj.ID, &InviteRequest{Email: "dev@example.com", Role: RoleViewer})
		require.NoError(t, err)
		assert.Len(t, sender.sent, 1)
	})

	t.Run("invisible project reports not found", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		stranger := Actor{ID: uuid.New(), Email: "stranger@example.com"}

		_, err := svc.Invite(ctx, stranger, proj.ID, &InviteRequest{Email: "dev@example.com", Role: RoleViewer})
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}

func TestAccept(t *testing.T) {
	ctx := context.Background()
	owner := Actor{ID: uuid.New(), Email: "owner@example.com"}
	invitee := Actor{ID: uuid.New(), Email: "dev@example.com"}

	t.Run("pending invitation becomes accepted and returns the project", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		collab := seedCollaborator(repo, proj.ID, invitee.Email, RoleEditor, StatusPending)

		resp, err := svc.Accept(ctx, invitee, collab.ID)
		require.NoError(t, err)

		assert.Equal(t, StatusAccepted, resp.Collaborator.Status)
		assert.Equal(t, proj.ID, resp.Project.ID)
		assert.Equal(t, StatusAccepted, repo.collaborators[collab.ID].Status)
	})

	t.Run("accepting twice is a no-op", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		collab := seedCollaborator(repo, proj.ID, invitee.Email, RoleEditor, StatusAccepted)

		resp, err := svc.Accept(ctx, invitee, collab.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, resp.Collaborator.Status)
	})

	t.Run("only the invitee may accept", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		collab := seedCollaborator(repo, proj.ID, invitee.Email, RoleEditor, StatusPending)

		other := Actor{ID: uuid.New(), Email: "other@example.com"}
		_, err := svc.Accept(ctx, other, collab.ID)
		assert.ErrorIs(t, err, ErrNotInvitee)
	})

	t.Run("invitee email match is case-insensitive", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		collab := seedCollaborator(repo, proj.ID, "dev@example.com", RoleEditor, StatusPending)

		upper := Actor{ID: invitee.ID, Email: "DEV@EXAMPLE.COM"}
		resp, err := svc.Accept(ctx, upper, collab.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, resp.Collaborator.Status)
	})

	t.Run("unknown invitation reports not found", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Accept(ctx, invitee, uuid.New())
		assert.ErrorIs(t, err, ErrInvitationNotFound)
	})
}

func TestDecline(t *testing.T) {
	ctx := context.Background()
	owner := Actor{ID: uuid.New(), Email: "owner@example.com"}
	invitee := Actor{ID: uuid.New(), Email: "dev@example.com"}

	t.Run("declining deletes the invitation", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		collab := seedCollaborator(repo, proj.ID, invitee.Email, RoleEditor, StatusPending)

		require.NoError(t, svc.Decline(ctx, invitee, collab.ID))
		assert.NotContains(t, repo.collaborators, collab.ID)
	})

	t.Run("accepted invitation cannot be declined", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		collab := seedCollaborator(repo, proj.ID, invitee.Email, RoleEditor, StatusAccepted)

		err := svc.Decline(ctx, invitee, collab.ID)
		assert.ErrorIs(t, err, ErrInvitationProcessed)
	})

	t.Run("only the invitee may decline", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		collab := seedCollaborator(repo, proj.ID, invitee.Email, RoleEditor, StatusPending)

		err := svc.Decline(ctx, owner, collab.ID)
		assert.ErrorIs(t, err, ErrNotInvitee)
	})
}

func TestDeleteProject(t *testing.T) {
	ctx := context.Background()
	owner := Actor{ID: uuid.New(), Email: "owner@example.com"}

	t.Run("owner deletes with cascade", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		seedCollaborator(repo, proj.ID, "dev@example.com", RoleEditor, StatusAccepted)

		require.NoError(t, svc.DeleteProject(ctx, owner, proj.ID))
		assert.Empty(t, repo.projects)
		assert.Empty(t, repo.collaborators)
		assert.Equal(t, []uuid.UUID{proj.ID}, repo.cascaded)
	})

	t.Run("admin collaborator cannot delete", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		admin := Actor{ID: uuid.New(), Email: "admin@example.com"}
		seedCollaborator(repo, proj.ID, admin.Email, RoleAdmin, StatusAccepted)

		err := svc.DeleteProject(ctx, admin, proj.ID)
		assert.ErrorIs(t, err, ErrOnlyOwnerCanDelete)
	})

	t.Run("invisible project reports not found", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		stranger := Actor{ID: uuid.New(), Email: "stranger@example.com"}

		err := svc.DeleteProject(ctx, stranger, proj.ID)
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}

func TestListPendingInvitations(t *testing.T) {
	ctx := context.Background()
	owner := Actor{ID: uuid.New(), Email: "owner@example.com"}
	invitee := Actor{ID: uuid.New(), Email: "dev@example.com"}

	svc, repo, _ := newTestService(t)
	proj := seedProject(repo, owner)
	seedCollaborator(repo, proj.ID, invitee.Email, RoleEditor, StatusPending)
	seedCollaborator(repo, proj.ID, "other@example.com", RoleViewer, StatusPending)

	invitations, err := svc.ListPendingInvitations(ctx, invitee)
	require.NoError(t, err)
	require.Len(t, invitations, 1)
	assert.Equal(t, proj.ID, invitations[0].Project.ID)
	assert.Equal(t, "Apollo", invitations[0].Project.Title)
}

func TestUpdateCollaboratorRole(t *testing.T) {
	ctx := context.Background()
	owner := Actor{ID: uuid.New(), Email: "owner@example.com"}

	t.Run("owner changes a role", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		collab := seedCollaborator(repo, proj.ID, "dev@example.com", RoleViewer, StatusAccepted)

		updated, err := svc.UpdateCollaboratorRole(ctx, owner, proj.ID, collab.ID, RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, updated.Role)
		assert.Equal(t, RoleAdmin, repo.collaborators[collab.ID].Role)
	})

	t.Run("collaborator from another project is not found", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		proj := seedProject(repo, owner)
		other := seedProject(repo, owner)
		collab := seedCollaborator(repo, other.ID, "dev@example.com", RoleViewer, StatusAccepted)

		_, err := svc.UpdateCollaboratorRole(ctx, owner, proj.ID, collab.ID, RoleEditor)
		assert.ErrorIs(t, err, ErrInvitationNotFound)
	})
}

func TestGetProjectVisibility(t *testing.T) {
	ctx := context.Background()
	owner := Actor{ID: uuid.New(), Email: "owner@example.com"}

	svc, repo, _ := newTestService(t)
	proj := seedProject(repo, owner)

	resp, err := svc.GetProject(ctx, owner, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, resp.MyRole)

	viewer := Actor{ID: uuid.New(), Email: "viewer@example.com"}
	seedCollaborator(repo, proj.ID, viewer.Email, RoleViewer, StatusAccepted)

	resp, err = svc.GetProject(ctx, viewer, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleViewer, resp.MyRole)

	stranger := Actor{ID: uuid.New(), Email: "stranger@example.com"}
	_, err = svc.GetProject(ctx, stranger, proj.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
