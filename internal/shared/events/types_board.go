package events

import "github.com/google/uuid"

// Event type constants for board activity.
const (
	TaskMovedType       = "TaskMoved"
	BacklogPromotedType = "BacklogPromoted"
	SprintCompletedType = "SprintCompleted"
)

// TaskMovedEvent is emitted when a task changes column.
type TaskMovedEvent struct {
	BaseEvent

	TaskID       uuid.UUID `json:"task_id"`
	SprintID     uuid.UUID `json:"sprint_id"`
	FromColumnID uuid.UUID `json:"from_column_id"`
	ToColumnID   uuid.UUID `json:"to_column_id"`
}

// NewTaskMovedEvent creates a new TaskMovedEvent.
func NewTaskMovedEvent(taskID, sprintID, fromColumnID, toColumnID uuid.UUID) *TaskMovedEvent {
	return &TaskMovedEvent{
		BaseEvent:    NewBaseEvent(TaskMovedType, taskID, "Task"),
		TaskID:       taskID,
		SprintID:     sprintID,
		FromColumnID: fromColumnID,
		ToColumnID:   toColumnID,
	}
}

// BacklogPromotedEvent is emitted when a backlog item is turned into a
// sprint task. The backlog item no longer exists when handlers run.
type BacklogPromotedEvent struct {
	BaseEvent

	BacklogItemID uuid.UUID `json:"backlog_item_id"`
	TaskID        uuid.UUID `json:"task_id"`
	SprintID      uuid.UUID `json:"sprint_id"`
}

// NewBacklogPromotedEvent creates a new BacklogPromotedEvent.
func NewBacklogPromotedEvent(backlogItemID, taskID, sprintID uuid.UUID) *BacklogPromotedEvent {
	return &BacklogPromotedEvent{
		BaseEvent:     NewBaseEvent(BacklogPromotedType, taskID, "Task"),
		BacklogItemID: backlogItemID,
		TaskID:        taskID,
		SprintID:      sprintID,
	}
}

// SprintCompletedEvent is emitted when a sprint is marked completed.
type SprintCompletedEvent struct {
	BaseEvent

	SprintID  uuid.UUID `json:"sprint_id"`
	ProjectID uuid.UUID `json:"project_id"`
}

// NewSprintCompletedEvent creates a new SprintCompletedEvent.
func NewSprintCompletedEvent(sprintID, projectID uuid.UUID) *SprintCompletedEvent {
	return &SprintCompletedEvent{
		BaseEvent: NewBaseEvent(SprintCompletedType, sprintID, "Sprint"),
		SprintID:  sprintID,
		ProjectID: projectID,
	}
}
