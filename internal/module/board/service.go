package board

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scrumify/server/internal/module/project"
	"github.com/scrumify/server/internal/shared/events"
)

// PermissionChecker decides whether a user may act on a project. It is
// implemented by the project service.
type PermissionChecker interface {
	CanAccess(ctx context.Context, userID uuid.UUID, email string, projectID uuid.UUID, action project.Action) error
}

// Actor identifies the user attempting an action.
type Actor struct {
	ID    uuid.UUID
	Email string
}

// Service provides sprint board and backlog business logic.
type Service struct {
	repo   Repository
	perms  PermissionChecker
	events *events.Bus
	logger *zap.Logger
}

// NewService creates a new board service.
func NewService(repo Repository, perms PermissionChecker, bus *events.Bus, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		perms:  perms,
		events: bus,
		logger: logger,
	}
}

// CreateSprint creates a sprint in a project.
func (s *Service) CreateSprint(ctx context.Context, actor Actor, projectID uuid.UUID, req *CreateSprintRequest) (*Sprint, error) {
	if err := s.perms.CanAccess(ctx, actor.ID, actor.Email, projectID, project.ActionEditContent); err != nil {
		return nil, err
	}

	sprint := &Sprint{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}

	if err := s.repo.CreateSprint(ctx, sprint); err != nil {
		return nil, err
	}

	s.logger.Info("sprint created",
		zap.String("sprint_id", sprint.ID.String()),
		zap.String("project_id", projectID.String()),
	)

	return sprint, nil
}

// ListSprints returns the sprints of a project, oldest first.
func (s *Service) ListSprints(ctx context.Context, actor Actor, projectID uuid.UUID) ([]Sprint, error) {
	if err := s.perms.CanAccess(ctx, actor.ID, actor.Email, projectID, project.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.ListSprints(ctx, projectID)
}

// GetSprintBoard returns a sprint with its columns and tasks. The three
// default columns are created on first read, so a fresh sprint always
// shows a usable board.
func (s *Service) GetSprintBoard(ctx context.Context, actor Actor, sprintID uuid.UUID) (*SprintBoard, error) {
	sprint, err := s.loadSprint(ctx, actor, sprintID, project.ActionRead)
	if err != nil {
		return nil, err
	}

	columns, err := s.ensureDefaultColumns(ctx, sprint.ID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.ListTasksBySprint(ctx, sprint.ID)
	if err != nil {
		return nil, err
	}

	byColumn := make(map[uuid.UUID][]Task, len(columns))
	for _, task := range tasks {
		byColumn[task.ColumnID] = append(byColumn[task.ColumnID], task)
	}

	board := &SprintBoard{Sprint: sprint, Columns: make([]ColumnWithTasks, 0, len(columns))}
	for _, column := range columns {
		tasksInColumn := byColumn[column.ID]
		if tasksInColumn == nil {
			tasksInColumn = []Task{}
		}
		board.Columns = append(board.Columns, ColumnWithTasks{Column: column, Tasks: tasksInColumn})
	}

	return board, nil
}

// UpdateSprint applies the non-nil fields of the request.
func (s *Service) UpdateSprint(ctx context.Context, actor Actor, sprintID uuid.UUID, req *UpdateSprintRequest) (*Sprint, error) {
	sprint, err := s.loadMutableSprint(ctx, actor, sprintID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		sprint.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		sprint.Description = *req.Description
	}
	if req.StartDate != nil {
		sprint.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		sprint.EndDate = req.EndDate
	}

	if err := s.repo.UpdateSprint(ctx, sprint); err != nil {
		return nil, err
	}
	return sprint, nil
}

// CompleteSprint marks a sprint as completed. Completed sprints are
// read-only; completing twice is a no-op.
func (s *Service) CompleteSprint(ctx context.Context, actor Actor, sprintID uuid.UUID) (*Sprint, error) {
	sprint, err := s.loadSprint(ctx, actor, sprintID, project.ActionEditContent)
	if err != nil {
		return nil, err
	}

	if sprint.Completed {
		return sprint, nil
	}

	sprint.Completed = true
	if err := s.repo.UpdateSprint(ctx, sprint); err != nil {
		return nil, err
	}

	s.logger.Info("sprint completed",
		zap.String("sprint_id", sprint.ID.String()),
		zap.String("project_id", sprint.ProjectID.String()),
	)

	s.events.Publish(events.NewSprintCompletedEvent(sprint.ID, sprint.ProjectID))
	return sprint, nil
}

// DeleteSprint removes a sprint together with its columns and tasks.
func (s *Service) DeleteSprint(ctx context.Context, actor Actor, sprintID uuid.UUID) error {
	if _, err := s.loadSprint(ctx, actor, sprintID, project.ActionEditContent); err != nil {
		return err
	}
	return s.repo.DeleteSprintCascade(ctx, sprintID)
}

// CreateColumn adds a custom column to a sprint board. Custom columns may
// not shadow the default titles.
func (s *Service) CreateColumn(ctx context.Context, actor Actor, sprintID uuid.UUID, req *CreateColumnRequest) (*Column, error) {
	if _, err := s.loadMutableSprint(ctx, actor, sprintID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if IsReservedColumnTitle(strings.ToUpper(title)) {
		return nil, ErrReservedColumn
	}

	columns, err := s.repo.ListColumns(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	column := &Column{
		ID:       uuid.New(),
		SprintID: sprintID,
		Title:    title,
		Position: len(columns),
	}

	if err := s.repo.CreateColumn(ctx, column); err != nil {
		return nil, err
	}
	return column, nil
}

// RenameColumn renames a custom column. Default columns are immutable.
func (s *Service) RenameColumn(ctx context.Context, actor Actor, columnID uuid.UUID, req *RenameColumnRequest) (*Column, error) {
	column, err := s.repo.GetColumnByID(ctx, columnID)
	if err != nil {
		return nil, err
	}

	if _, err := s.loadMutableSprint(ctx, actor, column.SprintID); err != nil {
		return nil, err
	}

	if column.IsReserved() {
		return nil, ErrReservedColumn
	}

	title := strings.TrimSpace(req.Title)
	if IsReservedColumnTitle(strings.ToUpper(title)) {
		return nil, ErrReservedColumn
	}

	column.Title = title
	if err := s.repo.UpdateColumn(ctx, column); err != nil {
		return nil, err
	}
	return column, nil
}

// DeleteColumn removes an empty custom column.
func (s *Service) DeleteColumn(ctx context.Context, actor Actor, columnID uuid.UUID) error {
	column, err := s.repo.GetColumnByID(ctx, columnID)
	if err != nil {
		return err
	}

	if _, err := s.loadMutableSprint(ctx, actor, column.SprintID); err != nil {
		return err
	}

	if column.IsReserved() {
		return ErrReservedColumn
	}

	count, err := s.repo.CountTasksInColumn(ctx, columnID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrColumnNotEmpty
	}

	return s.repo.DeleteColumn(ctx, columnID)
}

// CreateTask creates a task on a sprint board. Without an explicit column
// the task starts in TO DO.
func (s *Service) CreateTask(ctx context.Context, actor Actor, sprintID uuid.UUID, req *CreateTaskRequest) (*Task, error) {
	if _, err := s.loadMutableSprint(ctx, actor, sprintID); err != nil {
		return nil, err
	}

	var columnID uuid.UUID
	if req.ColumnID != nil {
		column, err := s.repo.GetColumnByID(ctx, *req.ColumnID)
		if err != nil {
			return nil, err
		}
		if column.SprintID != sprintID {
			return nil, ErrColumnSprintMismatch
		}
		columnID = column.ID
	} else {
		column, err := s.defaultColumn(ctx, sprintID, ColumnToDo)
		if err != nil {
			return nil, err
		}
		columnID = column.ID
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	task := &Task{
		ID:          uuid.New(),
		SprintID:    sprintID,
		ColumnID:    columnID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    priority,
		Assignee:    req.Assignee,
		Points:      req.Points,
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies the non-nil fields of the request.
func (s *Service) UpdateTask(ctx context.Context, actor Actor, taskID uuid.UUID, req *UpdateTaskRequest) (*Task, error) {
	task, err := s.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if _, err := s.loadMutableSprint(ctx, actor, task.SprintID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Assignee != nil {
		task.Assignee = *req.Assignee
	}
	if req.Points != nil {
		task.Points = *req.Points
	}

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// MoveTask moves a task to another column on the same sprint board.
func (s *Service) MoveTask(ctx context.Context, actor Actor, taskID uuid.UUID, req *MoveTaskRequest) (*Task, error) {
	task, err := s.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if _, err := s.loadMutableSprint(ctx, actor, task.SprintID); err != nil {
		return nil, err
	}

	target, err := s.repo.GetColumnByID(ctx, req.ColumnID)
	if err != nil {
		return nil, err
	}
	if target.SprintID != task.SprintID {
		return nil, ErrColumnSprintMismatch
	}

	if task.ColumnID == target.ID {
		return task, nil
	}

	from := task.ColumnID
	task.ColumnID = target.ID
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, err
	}

	s.events.Publish(events.NewTaskMovedEvent(task.ID, task.SprintID, from, target.ID))
	return task, nil
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, actor Actor, taskID uuid.UUID) error {
	task, err := s.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}

	if _, err := s.loadMutableSprint(ctx, actor, task.SprintID); err != nil {
		return err
	}

	return s.repo.DeleteTask(ctx, taskID)
}

// CreateBacklogItem adds an item to the project backlog.
func (s *Service) CreateBacklogItem(ctx context.Context, actor Actor, projectID uuid.UUID, req *CreateBacklogItemRequest) (*BacklogItem, error) {
	if err := s.perms.CanAccess(ctx, actor.ID, actor.Email, projectID, project.ActionEditContent); err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	item := &BacklogItem{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    priority,
		Points:      req.Points,
	}

	if err := s.repo.CreateBacklogItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListBacklogItems returns the project backlog, oldest first.
func (s *Service) ListBacklogItems(ctx context.Context, actor Actor, projectID uuid.UUID) ([]BacklogItem, error) {
	if err := s.perms.CanAccess(ctx, actor.ID, actor.Email, projectID, project.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.ListBacklogItems(ctx, projectID)
}

// UpdateBacklogItem applies the non-nil fields of the request.
func (s *Service) UpdateBacklogItem(ctx context.Context, actor Actor, itemID uuid.UUID, req *UpdateBacklogItemRequest) (*BacklogItem, error) {
	item, err := s.repo.GetBacklogItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.perms.CanAccess(ctx, actor.ID, actor.Email, item.ProjectID, project.ActionEditContent); err != nil {
		return nil, err
	}

	if req.Title != nil {
		item.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Priority != nil {
		item.Priority = *req.Priority
	}
	if req.Points != nil {
		item.Points = *req.Points
	}

	if err := s.repo.UpdateBacklogItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteBacklogItem removes a backlog item.
func (s *Service) DeleteBacklogItem(ctx context.Context, actor Actor, itemID uuid.UUID) error {
	item, err := s.repo.GetBacklogItemByID(ctx, itemID)
	if err != nil {
		return err
	}

	if err := s.perms.CanAccess(ctx, actor.ID, actor.Email, item.ProjectID, project.ActionEditContent); err != nil {
		return err
	}

	return s.repo.DeleteBacklogItem(ctx, itemID)
}

// MoveBacklogItemToSprint turns a backlog item into a task in the target
// sprint's TO DO column. The move is destructive: the backlog item is
// deleted, the task keeps its title, description, priority and points,
// and starts unassigned.
func (s *Service) MoveBacklogItemToSprint(ctx context.Context, actor Actor, itemID uuid.UUID, req *MoveToSprintRequest) (*Task, error) {
	item, err := s.repo.GetBacklogItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.perms.CanAccess(ctx, actor.ID, actor.Email, item.ProjectID, project.ActionEditContent); err != nil {
		return nil, err
	}

	sprint, err := s.repo.GetSprintByID(ctx, req.SprintID)
	if err != nil {
		return nil, err
	}
	if sprint.ProjectID != item.ProjectID {
		return nil, ErrSprintNotFound
	}
	if sprint.Completed {
		return nil, ErrSprintCompleted
	}

	column, err := s.defaultColumn(ctx, sprint.ID, ColumnToDo)
	if err != nil {
		return nil, err
	}

	task := &Task{
		ID:          uuid.New(),
		SprintID:    sprint.ID,
		ColumnID:    column.ID,
		Title:       item.Title,
		Description: item.Description,
		Priority:    item.Priority,
		Assignee:    "",
		Points:      item.Points,
	}

	if err := s.repo.PromoteBacklogItem(ctx, item.ID, task); err != nil {
		return nil, err
	}

	s.logger.Info("backlog item promoted",
		zap.String("backlog_item_id", item.ID.String()),
		zap.String("task_id", task.ID.String()),
		zap.String("sprint_id", sprint.ID.String()),
	)

	s.events.Publish(events.NewBacklogPromotedEvent(item.ID, task.ID, sprint.ID))
	return task, nil
}

// loadSprint loads a sprint and checks the actor's permission on its
// project.
func (s *Service) loadSprint(ctx context.Context, actor Actor, sprintID uuid.UUID, action project.Action) (*Sprint, error) {
	sprint, err := s.repo.GetSprintByID(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	if err := s.perms.CanAccess(ctx, actor.ID, actor.Email, sprint.ProjectID, action); err != nil {
		return nil, err
	}

	return sprint, nil
}

// loadMutableSprint is loadSprint for write operations; completed sprints
// reject all mutations.
func (s *Service) loadMutableSprint(ctx context.Context, actor Actor, sprintID uuid.UUID) (*Sprint, error) {
	sprint, err := s.loadSprint(ctx, actor, sprintID, project.ActionEditContent)
	if err != nil {
		return nil, err
	}
	if sprint.Completed {
		return nil, ErrSprintCompleted
	}
	return sprint, nil
}

// ensureDefaultColumns creates any missing default column and returns the
// full ordered column list.
func (s *Service) ensureDefaultColumns(ctx context.Context, sprintID uuid.UUID) ([]Column, error) {
	columns, err := s.repo.ListColumns(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(columns))
	for _, column := range columns {
		existing[column.Title] = true
	}

	created := false
	for position, title := range ReservedColumnTitles() {
		if existing[title] {
			continue
		}
		column := &Column{
			ID:       uuid.New(),
			SprintID: sprintID,
			Title:    title,
			Position: position,
		}
		if err := s.repo.CreateColumn(ctx, column); err != nil {
			return nil, err
		}
		created = true
	}

	if created {
		return s.repo.ListColumns(ctx, sprintID)
	}
	return columns, nil
}

// defaultColumn returns the named default column, creating the defaults
// first if the board has never been opened.
func (s *Service) defaultColumn(ctx context.Context, sprintID uuid.UUID, title string) (*Column, error) {
	columns, err := s.ensureDefaultColumns(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	for i := range columns {
		if columns[i].Title == title {
			return &columns[i], nil
		}
	}
	return nil, ErrColumnNotFound
}
