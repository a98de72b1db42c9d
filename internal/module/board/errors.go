package board

import "errors"

// Domain errors for the board module.
var (
	ErrSprintNotFound      = errors.New("sprint not found")
	ErrColumnNotFound      = errors.New("column not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrBacklogItemNotFound = errors.New("backlog item not found")

	ErrReservedColumn       = errors.New("default columns cannot be renamed or deleted")
	ErrColumnNotEmpty       = errors.New("column still contains tasks")
	ErrColumnSprintMismatch = errors.New("column belongs to a different sprint")
	ErrSprintCompleted      = errors.New("sprint is completed and read-only")
)
