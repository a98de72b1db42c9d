package board

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scrumify/server/internal/module/project"
	"github.com/scrumify/server/internal/shared/middleware"
)

// Handler handles HTTP requests for sprint boards and backlogs.
type Handler struct {
	service *Service
}

// NewHandler creates a new board handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers board routes. All routes require
// authentication.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	projects := r.Group("/projects/:projectId")
	{
		projects.POST("/sprints", h.CreateSprint)
		projects.GET("/sprints", h.ListSprints)

		projects.POST("/backlog", h.CreateBacklogItem)
		projects.GET("/backlog", h.ListBacklogItems)
	}

	sprints := r.Group("/sprints/:sprintId")
	{
		sprints.GET("", h.GetSprintBoard)
		sprints.PATCH("", h.UpdateSprint)
		sprints.DELETE("", h.DeleteSprint)
		sprints.POST("/complete", h.CompleteSprint)
		sprints.POST("/columns", h.CreateColumn)
		sprints.POST("/tasks", h.CreateTask)
	}

	columns := r.Group("/columns/:columnId")
	{
		columns.PATCH("", h.RenameColumn)
		columns.DELETE("", h.DeleteColumn)
	}

	tasks := r.Group("/tasks/:taskId")
	{
		tasks.PATCH("", h.UpdateTask)
		tasks.DELETE("", h.DeleteTask)
		tasks.POST("/move", h.MoveTask)
	}

	backlog := r.Group("/backlog/:itemId")
	{
		backlog.PATCH("", h.UpdateBacklogItem)
		backlog.DELETE("", h.DeleteBacklogItem)
		backlog.POST("/move-to-sprint", h.MoveBacklogItemToSprint)
	}
}

// CreateSprint creates a sprint in a project.
func (h *Handler) CreateSprint(c *gin.Context) {
	projectID, ok := h.uuidParam(c, "projectId")
	if !ok {
		return
	}

	var req CreateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sprint, err := h.service.CreateSprint(c.Request.Context(), h.actor(c), projectID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sprint)
}

// ListSprints returns the sprints of a project.
func (h *Handler) ListSprints(c *gin.Context) {
	projectID, ok := h.uuidParam(c, "projectId")
	if !ok {
		return
	}

	sprints, err := h.service.ListSprints(c.Request.Context(), h.actor(c), projectID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sprints": sprints})
}

// GetSprintBoard returns a sprint with its columns and tasks.
func (h *Handler) GetSprintBoard(c *gin.Context) {
	sprintID, ok := h.uuidParam(c, "sprintId")
	if !ok {
		return
	}

	board, err := h.service.GetSprintBoard(c.Request.Context(), h.actor(c), sprintID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

// UpdateSprint applies a partial update to a sprint.
func (h *Handler) UpdateSprint(c *gin.Context) {
	sprintID, ok := h.uuidParam(c, "sprintId")
	if !ok {
		return
	}

	var req UpdateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sprint, err := h.service.UpdateSprint(c.Request.Context(), h.actor(c), sprintID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sprint)
}

// CompleteSprint marks a sprint as completed.
func (h *Handler) CompleteSprint(c *gin.Context) {
	sprintID, ok := h.uuidParam(c, "sprintId")
	if !ok {
		return
	}

	sprint, err := h.service.CompleteSprint(c.Request.Context(), h.actor(c), sprintID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sprint)
}

// DeleteSprint removes a sprint and its contents.
func (h *Handler) DeleteSprint(c *gin.Context) {
	sprintID, ok := h.uuidParam(c, "sprintId")
	if !ok {
		return
	}

	if err := h.service.DeleteSprint(c.Request.Context(), h.actor(c), sprintID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateColumn adds a custom column to a sprint board.
func (h *Handler) CreateColumn(c *gin.Context) {
	sprintID, ok := h.uuidParam(c, "sprintId")
	if !ok {
		return
	}

	var req CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	column, err := h.service.CreateColumn(c.Request.Context(), h.actor(c), sprintID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, column)
}

// RenameColumn renames a custom column.
func (h *Handler) RenameColumn(c *gin.Context) {
	columnID, ok := h.uuidParam(c, "columnId")
	if !ok {
		return
	}

	var req RenameColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	column, err := h.service.RenameColumn(c.Request.Context(), h.actor(c), columnID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, column)
}

// DeleteColumn removes an empty custom column.
func (h *Handler) DeleteColumn(c *gin.Context) {
	columnID, ok := h.uuidParam(c, "columnId")
	if !ok {
		return
	}

	if err := h.service.DeleteColumn(c.Request.Context(), h.actor(c), columnID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateTask creates a task on a sprint board.
func (h *Handler) CreateTask(c *gin.Context) {
	sprintID, ok := h.uuidParam(c, "sprintId")
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), h.actor(c), sprintID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// UpdateTask applies a partial update to a task.
func (h *Handler) UpdateTask(c *gin.Context) {
	taskID, ok := h.uuidParam(c, "taskId")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.UpdateTask(c.Request.Context(), h.actor(c), taskID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// MoveTask moves a task to another column.
func (h *Handler) MoveTask(c *gin.Context) {
	taskID, ok := h.uuidParam(c, "taskId")
	if !ok {
		return
	}

	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.MoveTask(c.Request.Context(), h.actor(c), taskID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task.
func (h *Handler) DeleteTask(c *gin.Context) {
	taskID, ok := h.uuidParam(c, "taskId")
	if !ok {
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), h.actor(c), taskID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateBacklogItem adds an item to the project backlog.
func (h *Handler) CreateBacklogItem(c *gin.Context) {
	projectID, ok := h.uuidParam(c, "projectId")
	if !ok {
		return
	}

	var req CreateBacklogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.service.CreateBacklogItem(c.Request.Context(), h.actor(c), projectID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// ListBacklogItems returns the project backlog.
func (h *Handler) ListBacklogItems(c *gin.Context) {
	projectID, ok := h.uuidParam(c, "projectId")
	if !ok {
		return
	}

	items, err := h.service.ListBacklogItems(c.Request.Context(), h.actor(c), projectID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"backlog_items": items})
}

// UpdateBacklogItem applies a partial update to a backlog item.
func (h *Handler) UpdateBacklogItem(c *gin.Context) {
	itemID, ok := h.uuidParam(c, "itemId")
	if !ok {
		return
	}

	var req UpdateBacklogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.service.UpdateBacklogItem(c.Request.Context(), h.actor(c), itemID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteBacklogItem removes a backlog item.
func (h *Handler) DeleteBacklogItem(c *gin.Context) {
	itemID, ok := h.uuidParam(c, "itemId")
	if !ok {
		return
	}

	if err := h.service.DeleteBacklogItem(c.Request.Context(), h.actor(c), itemID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// MoveBacklogItemToSprint promotes a backlog item into a sprint.
func (h *Handler) MoveBacklogItemToSprint(c *gin.Context) {
	itemID, ok := h.uuidParam(c, "itemId")
	if !ok {
		return
	}

	var req MoveToSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.MoveBacklogItemToSprint(c.Request.Context(), h.actor(c), itemID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *Handler) actor(c *gin.Context) Actor {
	return Actor{ID: middleware.GetUserID(c), Email: middleware.GetUserEmail(c)}
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
	case errors.Is(err, ErrSprintNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "sprint_not_found"})
	case errors.Is(err, ErrColumnNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "column_not_found"})
	case errors.Is(err, ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task_not_found"})
	case errors.Is(err, ErrBacklogItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "backlog_item_not_found"})
	case errors.Is(err, project.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "project_not_found"})
	case errors.Is(err, project.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission_denied"})
	case errors.Is(err, ErrReservedColumn):
		c.JSON(http.StatusConflict, gin.H{"error": "reserved_column"})
	case errors.Is(err, ErrColumnNotEmpty):
		c.JSON(http.StatusConflict, gin.H{"error": "column_not_empty"})
	case errors.Is(err, ErrColumnSprintMismatch):
		c.JSON(http.StatusConflict, gin.H{"error": "column_sprint_mismatch"})
	case errors.Is(err, ErrSprintCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "sprint_completed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
