package board

import (
	"time"

	"github.com/google/uuid"
)

// CreateSprintRequest is the payload for creating a sprint.
type CreateSprintRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateSprintRequest is the payload for updating a sprint. Nil fields are
// left untouched.
type UpdateSprintRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// CreateColumnRequest is the payload for adding a custom column.
type CreateColumnRequest struct {
	Title string `json:"title" binding:"required,min=1,max=100"`
}

// RenameColumnRequest is the payload for renaming a custom column.
type RenameColumnRequest struct {
	Title string `json:"title" binding:"required,min=1,max=100"`
}

// CreateTaskRequest is the payload for creating a task. ColumnID is
// optional; when omitted the task lands in the TO DO column.
type CreateTaskRequest struct {
	ColumnID    *uuid.UUID `json:"column_id"`
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	Priority    Priority   `json:"priority" binding:"omitempty,oneof=low medium high"`
	Assignee    string     `json:"assignee" binding:"max=200"`
	Points      int        `json:"points" binding:"min=0,max=100"`
}

// UpdateTaskRequest is the payload for updating a task. Nil fields are
// left untouched.
type UpdateTaskRequest struct {
	Title       *string   `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string   `json:"description" binding:"omitempty,max=2000"`
	Priority    *Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
	Assignee    *string   `json:"assignee" binding:"omitempty,max=200"`
	Points      *int      `json:"points" binding:"omitempty,min=0,max=100"`
}

// MoveTaskRequest is the payload for moving a task to another column.
type MoveTaskRequest struct {
	ColumnID uuid.UUID `json:"column_id" binding:"required"`
}

// CreateBacklogItemRequest is the payload for adding a backlog item.
type CreateBacklogItemRequest struct {
	Title       string   `json:"title" binding:"required,min=1,max=200"`
	Description string   `json:"description" binding:"max=2000"`
	Priority    Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
	Points      int      `json:"points" binding:"min=0,max=100"`
}

// UpdateBacklogItemRequest is the payload for updating a backlog item.
type UpdateBacklogItemRequest struct {
	Title       *string   `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string   `json:"description" binding:"omitempty,max=2000"`
	Priority    *Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
	Points      *int      `json:"points" binding:"omitempty,min=0,max=100"`
}

// MoveToSprintRequest is the payload for promoting a backlog item into a
// sprint.
type MoveToSprintRequest struct {
	SprintID uuid.UUID `json:"sprint_id" binding:"required"`
}

// ColumnWithTasks is a column and its tasks, in board order.
type ColumnWithTasks struct {
	Column Column `json:"column"`
	Tasks  []Task `json:"tasks"`
}

// SprintBoard is a sprint with its full column and task layout.
type SprintBoard struct {
	Sprint  *Sprint           `json:"sprint"`
	Columns []ColumnWithTasks `json:"columns"`
}
