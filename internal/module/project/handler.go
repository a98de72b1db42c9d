package project

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scrumify/server/internal/shared/middleware"
)

// Handler handles HTTP requests for projects and collaborators.
type Handler struct {
	service *Service
}

// NewHandler creates a new project handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers project routes. All routes require
// authentication.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, invitationWrites ...gin.HandlerFunc) {
	projects := r.Group("/projects")
	{
		projects.POST("", h.CreateProject)
		projects.GET("", h.ListProjects)
		projects.GET("/:projectId", h.GetProject)
		projects.PATCH("/:projectId", h.UpdateProject)
		projects.DELETE("/:projectId", h.DeleteProject)

		projects.GET("/:projectId/collaborators", h.ListCollaborators)
		projects.POST("/:projectId/collaborators", append(invitationWrites, h.Invite)...)
		projects.PATCH("/:projectId/collaborators/:collaboratorId", h.UpdateCollaboratorRole)
		projects.DELETE("/:projectId/collaborators/:collaboratorId", h.RemoveCollaborator)
	}

	invitations := r.Group("/invitations")
	{
		invitations.GET("", h.ListPendingInvitations)
		invitations.POST("/:collaboratorId/accept", append(invitationWrites, h.Accept)...)
		invitations.POST("/:collaboratorId/decline", h.Decline)
	}
}

// CreateProject handles project creation.
func (h *Handler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proj, err := h.service.CreateProject(c.Request.Context(), h.actor(c), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proj)
}

// ListProjects returns every project visible to the caller.
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.service.ListProjects(c.Request.Context(), h.actor(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject returns a single project.
func (h *Handler) GetProject(c *gin.Context) {
	projectID, ok := h.uuidParam(c, "projectId")
	if !ok {
		return
	}

	resp, err := h.service.GetProject(c.Request.Context(), h.actor(c), projectID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateProject applies a partial update to a project.
func (h *Handler) UpdateProject(c *gin.Context) {
	projectID, ok := h.uuidParam(c, "projectId")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proj, err := h.service.UpdateProject(c.Request.Context(), h.actor(c), projectID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, proj)
}

// DeleteProject removes a project and all of its contents.
func (h *Handler) DeleteProject(c *gin.Context) {
	projectID, ok := h.uuidParam(c, "projectId")
	if !ok {
		return
	}

	if err := h.service.DeleteProject(c.Request.Context(), h.actor(c), projectID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Invite creates a pending invitation and sends the invitation email.
func (h *Handler) Invite(c *gin.Context) {
	projectID, ok := h.uuidParam(c, "projectId")
	if !ok {
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collab, err := h.service.Invite(c.Request.Context(), h.actor(c), projectID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, collab)
}

// ListCollaborators returns the collaborators of a project.
func (h *Handler) ListCollaborators(c *gin.Context) {
	projectID, ok := h.uuidParam(c, "projectId")
	if !ok {
		return
	}

	collabs, err := h.service.ListCollaborators(c.Request.Context(), h.actor(c), projectID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"collaborators": collabs})
}

// UpdateCollaboratorRole changes a collaborator's role.
func (h *Handler) UpdateCollaboratorRole(c *gin.Context) {
	projectID, ok := h.uuidParam(c, "projectId")
	if !ok {
		return
	}
	collaboratorID, ok := h.uuidParam(c, "collaboratorId")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collab, err := h.service.UpdateCollaboratorRole(c.Request.Context(), h.actor(c), projectID, collaboratorID, req.Role)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, collab)
}

// RemoveCollaborator removes a collaborator or revokes a pending invitation.
func (h *Handler) RemoveCollaborator(c *gin.Context) {
	projectID, ok := h.uuidParam(c, "projectId")
	if !ok {
		return
	}
	collaboratorID, ok := h.uuidParam(c, "collaboratorId")
	if !ok {
		return
	}

	if err := h.service.RemoveCollaborator(c.Request.Context(), h.actor(c), projectID, collaboratorID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListPendingInvitations returns the caller's pending invitations.
func (h *Handler) ListPendingInvitations(c *gin.Context) {
	invitations, err := h.service.ListPendingInvitations(c.Request.Context(), h.actor(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

// Accept accepts an invitation addressed to the caller.
func (h *Handler) Accept(c *gin.Context) {
	collaboratorID, ok := h.uuidParam(c, "collaboratorId")
	if !ok {
		return
	}

	resp, err := h.service.Accept(c.Request.Context(), h.actor(c), collaboratorID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Decline declines a pending invitation addressed to the caller.
func (h *Handler) Decline(c *gin.Context) {
	collaboratorID, ok := h.uuidParam(c, "collaboratorId")
	if !ok {
		return
	}

	if err := h.service.Decline(c.Request.Context(), h.actor(c), collaboratorID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) actor(c *gin.Context) Actor {
	return actorOf(middleware.GetUserID(c), middleware.GetUserEmail(c))
}

func (h *Handler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// handleError maps service errors to HTTP responses.
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "project_not_found"})
	case errors.Is(err, ErrInvitationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "invitation_not_found"})
	case errors.Is(err, ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission_denied"})
	case errors.Is(err, ErrOnlyOwnerCanDelete):
		c.JSON(http.StatusForbidden, gin.H{"error": "only_owner_can_delete"})
	case errors.Is(err, ErrNotInvitee):
		c.JSON(http.StatusForbidden, gin.H{"error": "not_invitee"})
	case errors.Is(err, ErrDuplicateInvitation):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate_invitation"})
	case errors.Is(err, ErrInvitationProcessed):
		c.JSON(http.StatusConflict, gin.H{"error": "invitation_processed"})
	case errors.Is(err, ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_role"})
	case errors.Is(err, ErrNotificationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "notification_failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
