package board

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scrumify/server/internal/module/project"
	"github.com/scrumify/server/internal/shared/events"
)

type fakeBoardRepository struct {
	sprints map[uuid.UUID]*Sprint
	columns map[uuid.UUID]*Column
	tasks   map[uuid.UUID]*Task
	backlog map[uuid.UUID]*BacklogItem
}

func newFakeBoardRepository() *fakeBoardRepository {
	return &fakeBoardRepository{
		sprints: make(map[uuid.UUID]*Sprint),
		columns: make(map[uuid.UUID]*Column),
		tasks:   make(map[uuid.UUID]*Task),
		backlog: make(map[uuid.UUID]*BacklogItem),
	}
}

func (f *fakeBoardRepository) CreateSprint(_ context.Context, sprint *Sprint) error {
	copied := *sprint
	f.sprints[sprint.ID] = &copied
	return nil
}

func (f *fakeBoardRepository) GetSprintByID(_ context.Context, id uuid.UUID) (*Sprint, error) {
	sprint, ok := f.sprints[id]
	if !ok {
		return nil, ErrSprintNotFound
	}
	copied := *sprint
	return &copied, nil
}

func (f *fakeBoardRepository) ListSprints(_ context.Context, projectID uuid.UUID) ([]Sprint, error) {
	var result []Sprint
	for _, sprint := range f.sprints {
		if sprint.ProjectID == projectID {
			result = append(result, *sprint)
		}
	}
	return result, nil
}

func (f *fakeBoardRepository) UpdateSprint(_ context.Context, sprint *Sprint) error {
	if _, ok := f.sprints[sprint.ID]; !ok {
		return ErrSprintNotFound
	}
	copied := *sprint
	f.sprints[sprint.ID] = &copied
	return nil
}

func (f *fakeBoardRepository) DeleteSprintCascade(_ context.Context, id uuid.UUID) error {
	if _, ok := f.sprints[id]; !ok {
		return ErrSprintNotFound
	}
	delete(f.sprints, id)
	for cid, column := range f.columns {
		if column.SprintID == id {
			delete(f.columns, cid)
		}
	}
	for tid, task := range f.tasks {
		if task.SprintID == id {
			delete(f.tasks, tid)
		}
	}
	return nil
}

func (f *fakeBoardRepository) CreateColumn(_ context.Context, column *Column) error {
	copied := *column
	f.columns[column.ID] = &copied
	return nil
}

func (f *fakeBoardRepository) GetColumnByID(_ context.Context, id uuid.UUID) (*Column, error) {
	column, ok := f.columns[id]
	if !ok {
		return nil, ErrColumnNotFound
	}
	copied := *column
	return &copied, nil
}

func (f *fakeBoardRepository) ListColumns(_ context.Context, sprintID uuid.UUID) ([]Column, error) {
	var result []Column
	for _, title := range ReservedColumnTitles() {
		for _, column := range f.columns {
			if column.SprintID == sprintID && column.Title == title {
				result = append(result, *column)
			}
		}
	}
	for _, column := range f.columns {
		if column.SprintID == sprintID && !column.IsReserved() {
			result = append(result, *column)
		}
	}
	return result, nil
}

func (f *fakeBoardRepository) UpdateColumn(_ context.Context, column *Column) error {
	if _, ok := f.columns[column.ID]; !ok {
		return ErrColumnNotFound
	}
	copied := *column
	f.columns[column.ID] = &copied
	return nil
}

func (f *fakeBoardRepository) DeleteColumn(_ context.Context, id uuid.UUID) error {
	if _, ok := f.columns[id]; !ok {
		return ErrColumnNotFound
	}
	delete(f.columns, id)
	return nil
}

func (f *fakeBoardRepository) CountTasksInColumn(_ context.Context, columnID uuid.UUID) (int64, error) {
	var count int64
	for _, task := range f.tasks {
		if task.ColumnID == columnID {
			count++
		}
	}
	return count, nil
}

func (f *fakeBoardRepository) CreateTask(_ context.Context, task *Task) error {
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeBoardRepository) GetTaskByID(_ context.Context, id uuid.UUID) (*Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeBoardRepository) ListTasksBySprint(_ context.Context, sprintID uuid.UUID) ([]Task, error) {
	var result []Task
	for _, task := range f.tasks {
		if task.SprintID == sprintID {
			result = append(result, *task)
		}
	}
	return result, nil
}

func (f *fakeBoardRepository) UpdateTask(_ context.Context, task *Task) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return ErrTaskNotFound
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeBoardRepository) DeleteTask(_ context.Context, id uuid.UUID) error {
	if _, ok := f.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeBoardRepository) CreateBacklogItem(_ context.Context, item *BacklogItem) error {
	copied := *item
	f.backlog[item.ID] = &copied
	return nil
}

func (f *fakeBoardRepository) GetBacklogItemByID(_ context.Context, id uuid.UUID) (*BacklogItem, error) {
	item, ok := f.backlog[id]
	if !ok {
		return nil, ErrBacklogItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeBoardRepository) ListBacklogItems(_ context.Context, projectID uuid.UUID) ([]BacklogItem, error) {
	var result []BacklogItem
	for _, item := range f.backlog {
		if item.ProjectID == projectID {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (f *fakeBoardRepository) UpdateBacklogItem(_ context.Context, item *BacklogItem) error {
	if _, ok := f.backlog[item.ID]; !ok {
		return ErrBacklogItemNotFound
	}
	copied := *item
	f.backlog[item.ID] = &copied
	return nil
}

func (f *fakeBoardRepository) DeleteBacklogItem(_ context.Context, id uuid.UUID) error {
	if _, ok := f.backlog[id]; !ok {
		return ErrBacklogItemNotFound
	}
	delete(f.backlog, id)
	return nil
}

func (f *fakeBoardRepository) PromoteBacklogItem(_ context.Context, itemID uuid.UUID, task *Task) error {
	if _, ok := f.backlog[itemID]; !ok {
		return ErrBacklogItemNotFound
	}
	copied := *task
	f.tasks[task.ID] = &copied
	delete(f.backlog, itemID)
	return nil
}

// fakePermissions grants edit access to a single project and denies
// everything else as not found.
type fakePermissions struct {
	projectID uuid.UUID
	readOnly  bool
}

func (f *fakePermissions) CanAccess(_ context.Context, _ uuid.UUID, _ string, projectID uuid.UUID, action project.Action) error {
	if projectID != f.projectID {
		return project.ErrProjectNotFound
	}
	if f.readOnly && action != project.ActionRead {
		return project.ErrPermissionDenied
	}
	return nil
}

func newTestBoardService(t *testing.T, projectID uuid.UUID) (*Service, *fakeBoardRepository) {
	t.Helper()
	repo := newFakeBoardRepository()
	perms := &fakePermissions{projectID: projectID}
	bus := events.NewBus(zap.NewNop())
	return NewService(repo, perms, bus, zap.NewNop()), repo
}

func seedSprint(repo *fakeBoardRepository, projectID uuid.UUID) *Sprint {
	sprint := &Sprint{ID: uuid.New(), ProjectID: projectID, Title: "Sprint 1"}
	repo.sprints[sprint.ID] = sprint
	return sprint
}

func seedColumn(repo *fakeBoardRepository, sprintID uuid.UUID, title string, position int) *Column {
	column := &Column{ID: uuid.New(), SprintID: sprintID, Title: title, Position: position}
	repo.columns[column.ID] = column
	return column
}

func TestGetSprintBoardCreatesDefaultColumns(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	actor := Actor{ID: uuid.New(), Email: "dev@example.com"}

	svc, repo := newTestBoardService(t, projectID)
	sprint := seedSprint(repo, projectID)

	board, err := svc.GetSprintBoard(ctx, actor, sprint.ID)
	require.NoError(t, err)

	require.Len(t, board.Columns, 3)
	assert.Equal(t, ColumnToDo, board.Columns[0].Column.Title)
	assert.Equal(t, ColumnInProgress, board.Columns[1].Column.Title)
	assert.Equal(t, ColumnDone, board.Columns[2].Column.Title)

	for _, column := range board.Columns {
		assert.NotNil(t, column.Tasks)
		assert.Empty(t, column.Tasks)
	}

	// Second read must not duplicate the defaults.
	board, err = svc.GetSprintBoard(ctx, actor, sprint.ID)
	require.NoError(t, err)
	assert.Len(t, board.Columns, 3)
}

func TestMoveTask(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	actor := Actor{ID: uuid.New(), Email: "dev@example.com"}

	t.Run("moves between columns of the same sprint", func(t *testing.T) {
		svc, repo := newTestBoardService(t, projectID)
		sprint := seedSprint(repo, projectID)
		todo := seedColumn(repo, sprint.ID, ColumnToDo, 0)
		done := seedColumn(repo, sprint.ID, ColumnDone, 2)

		task := &Task{ID: uuid.New(), SprintID: sprint.ID, ColumnID: todo.ID, Title: "Fix login"}
		repo.tasks[task.ID] = task

		moved, err := svc.MoveTask(ctx, actor, task.ID, &MoveTaskRequest{ColumnID: done.ID})
		require.NoError(t, err)
		assert.Equal(t, done.ID, moved.ColumnID)
		assert.Equal(t, done.ID, repo.tasks[task.ID].ColumnID)
	})

	t.Run("rejects a column from another sprint", func(t *testing.T) {
		svc, repo := newTestBoardService(t, projectID)
		sprint := seedSprint(repo, projectID)
		other := seedSprint(repo, projectID)
		todo := seedColumn(repo, sprint.ID, ColumnToDo, 0)
		foreign := seedColumn(repo, other.ID, ColumnToDo, 0)

		task := &Task{ID: uuid.New(), SprintID: sprint.ID, ColumnID: todo.ID, Title: "Fix login"}
		repo.tasks[task.ID] = task

		_, err := svc.MoveTask(ctx, actor, task.ID, &MoveTaskRequest{ColumnID: foreign.ID})
		assert.ErrorIs(t, err, ErrColumnSprintMismatch)
		assert.Equal(t, todo.ID, repo.tasks[task.ID].ColumnID)
	})

	t.Run("rejects moves on a completed sprint", func(t *testing.T) {
		svc, repo := newTestBoardService(t, projectID)
		sprint := seedSprint(repo, projectID)
		sprint.Completed = true
		todo := seedColumn(repo, sprint.ID, ColumnToDo, 0)
		done := seedColumn(repo, sprint.ID, ColumnDone, 2)

		task := &Task{ID: uuid.New(), SprintID: sprint.ID, ColumnID: todo.ID, Title: "Fix login"}
		repo.tasks[task.ID] = task

		_, err := svc.MoveTask(ctx, actor, task.ID, &MoveTaskRequest{ColumnID: done.ID})
		assert.ErrorIs(t, err, ErrSprintCompleted)
	})
}

func TestColumnPolicy(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	actor := Actor{ID: uuid.New(), Email: "dev@example.com"}

	t.Run("reserved columns cannot be renamed", func(t *testing.T) {
		svc, repo := newTestBoardService(t, projectID)
		sprint := seedSprint(repo, projectID)
		todo := seedColumn(repo, sprint.ID, ColumnToDo, 0)

		_, err := svc.RenameColumn(ctx, actor, todo.ID, &RenameColumnRequest{Title: "Later"})
		assert.ErrorIs(t, err, ErrReservedColumn)
	})

	t.Run("reserved columns cannot be deleted", func(t *testing.T) {
		svc, repo := newTestBoardService(t, projectID)
		sprint := seedSprint(repo, projectID)
		todo := seedColumn(repo, sprint.ID, ColumnToDo, 0)

		err := svc.DeleteColumn(ctx, actor, todo.ID)
		assert.ErrorIs(t, err, ErrReservedColumn)
	})

	t.Run("custom column cannot shadow a reserved title", func(t *testing.T) {
		svc, repo := newTestBoardService(t, projectID)
		sprint := seedSprint(repo, projectID)

		_, err := svc.CreateColumn(ctx, actor, sprint.ID, &CreateColumnRequest{Title: "done"})
		assert.ErrorIs(t, err, ErrReservedColumn)
	})

	t.Run("non-empty custom column cannot be deleted", func(t *testing.T) {
		svc, repo := newTestBoardService(t, projectID)
		sprint := seedSprint(repo, projectID)
		review := seedColumn(repo, sprint.ID, "Review", 3)

		task := &Task{ID: uuid.New(), SprintID: sprint.ID, ColumnID: review.ID, Title: "Fix login"}
		repo.tasks[task.ID] = task

		err := svc.DeleteColumn(ctx, actor, review.ID)
		assert.ErrorIs(t, err, ErrColumnNotEmpty)
	})

	t.Run("empty custom column is deleted", func(t *testing.T) {
		svc, repo := newTestBoardService(t, projectID)
		sprint := seedSprint(repo, projectID)
		review := seedColumn(repo, sprint.ID, "Review", 3)

		require.NoError(t, svc.DeleteColumn(ctx, actor, review.ID))
		assert.NotContains(t, repo.columns, review.ID)
	})
}

func TestMoveBacklogItemToSprint(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	actor := Actor{ID: uuid.New(), Email: "dev@example.com"}

	t.Run("promotes into TO DO unassigned and deletes the item", func(t *testing.T) {
		svc, repo := newTestBoardService(t, projectID)
		sprint := seedSprint(repo, projectID)

		item := &BacklogItem{ID: uuid.New(), ProjectID: projectID, Title: "Add search", Description: "full text", Priority: PriorityHigh, Points: 5}
		repo.backlog[item.ID] = item

		task, err := svc.MoveBacklogItemToSprint(ctx, actor, item.ID, &MoveToSprintRequest{SprintID: sprint.ID})
		require.NoError(t, err)

		assert.Equal(t, "Add search", task.Title)
		assert.Equal(t, "full text", task.Description)
		assert.Equal(t, PriorityHigh, task.Priority)
		assert.Equal(t, 5, task.Points)
		assert.Empty(t, task.Assignee)
		assert.Equal(t, sprint.ID, task.SprintID)

		column, err := repo.GetColumnByID(ctx, task.ColumnID)
		require.NoError(t, err)
		assert.Equal(t, ColumnToDo, column.Title)

		assert.NotContains(t, repo.backlog, item.ID)
		assert.Contains(t, repo.tasks, task.ID)
	})

	t.Run("rejects a sprint from another project", func(t *testing.T) {
		svc, repo := newTestBoardService(t, projectID)
		foreign := seedSprint(repo, uuid.New())

		item := &BacklogItem{ID: uuid.New(), ProjectID: projectID, Title: "Add search"}
		repo.backlog[item.ID] = item

		_, err := svc.MoveBacklogItemToSprint(ctx, actor, item.ID, &MoveToSprintRequest{SprintID: foreign.ID})
		assert.ErrorIs(t, err, ErrSprintNotFound)
		assert.Contains(t, repo.backlog, item.ID)
	})

	t.Run("rejects a completed sprint", func(t *testing.T) {
		svc, repo := newTestBoardService(t, projectID)
		sprint := seedSprint(repo, projectID)
		sprint.Completed = true

		item := &BacklogItem{ID: uuid.New(), ProjectID: projectID, Title: "Add search"}
		repo.backlog[item.ID] = item

		_, err := svc.MoveBacklogItemToSprint(ctx, actor, item.ID, &MoveToSprintRequest{SprintID: sprint.ID})
		assert.ErrorIs(t, err, ErrSprintCompleted)
		assert.Contains(t, repo.backlog, item.ID)
	})
}

func TestCompleteSprint(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	actor := Actor{ID: uuid.New(), Email: "dev@example.com"}

	svc, repo := newTestBoardService(t, projectID)
	sprint := seedSprint(repo, projectID)

	completed, err := svc.CompleteSprint(ctx, actor, sprint.ID)
	require.NoError(t, err)
	assert.True(t, completed.Completed)

	// Completing twice is a no-op.
	completed, err = svc.CompleteSprint(ctx, actor, sprint.ID)
	require.NoError(t, err)
	assert.True(t, completed.Completed)

	// Mutations are rejected afterwards.
	_, err = svc.CreateTask(ctx, actor, sprint.ID, &CreateTaskRequest{Title: "late"})
	assert.ErrorIs(t, err, ErrSprintCompleted)
}

func TestCreateTaskDefaultsToToDo(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	actor := Actor{ID: uuid.New(), Email: "dev@example.com"}

	svc, repo := newTestBoardService(t, projectID)
	sprint := seedSprint(repo, projectID)

	task, err := svc.CreateTask(ctx, actor, sprint.ID, &CreateTaskRequest{Title: "Fix login"})
	require.NoError(t, err)

	column, err := repo.GetColumnByID(ctx, task.ColumnID)
	require.NoError(t, err)
	assert.Equal(t, ColumnToDo, column.Title)
	assert.Equal(t, PriorityMedium, task.Priority)
}

func TestTaskPriority(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	actor := Actor{ID: uuid.New(), Email: "dev@example.com"}

	svc, repo := newTestBoardService(t, projectID)
	sprint := seedSprint(repo, projectID)

	task, err := svc.CreateTask(ctx, actor, sprint.ID, &CreateTaskRequest{Title: "Fix login", Priority: PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, task.Priority)

	low := PriorityLow
	task, err = svc.UpdateTask(ctx, actor, task.ID, &UpdateTaskRequest{Priority: &low})
	require.NoError(t, err)
	assert.Equal(t, PriorityLow, task.Priority)
	assert.Equal(t, PriorityLow, repo.tasks[task.ID].Priority)
}

func TestBacklogItemPriority(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	actor := Actor{ID: uuid.New(), Email: "dev@example.com"}

	svc, repo := newTestBoardService(t, projectID)

	item, err := svc.CreateBacklogItem(ctx, actor, projectID, &CreateBacklogItemRequest{Title: "Add search"})
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, item.Priority)

	high := PriorityHigh
	item, err = svc.UpdateBacklogItem(ctx, actor, item.ID, &UpdateBacklogItemRequest{Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, item.Priority)
	assert.Equal(t, PriorityHigh, repo.backlog[item.ID].Priority)
}

func TestBoardPermissionDenied(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	actor := Actor{ID: uuid.New(), Email: "viewer@example.com"}

	repo := newFakeBoardRepository()
	perms := &fakePermissions{projectID: projectID, readOnly: true}
	svc := NewService(repo, perms, events.NewBus(zap.NewNop()), zap.NewNop())

	sprint := seedSprint(repo, projectID)

	// Reads work.
	_, err := svc.GetSprintBoard(ctx, actor, sprint.ID)
	require.NoError(t, err)

	// Writes are rejected.
	_, err = svc.CreateTask(ctx, actor, sprint.ID, &CreateTaskRequest{Title: "nope"})
	assert.ErrorIs(t, err, project.ErrPermissionDenied)

	_, err = svc.CreateSprint(ctx, actor, projectID, &CreateSprintRequest{Title: "Sprint 2"})
	assert.ErrorIs(t, err, project.ErrPermissionDenied)
}
