package board

import (
	"time"

	"github.com/google/uuid"
)

// Default column titles. These are created lazily for every sprint and
// cannot be renamed or deleted.
const (
	ColumnToDo       = "TO DO"
	ColumnInProgress = "IN PROGRESS"
	ColumnDone       = "DONE"
)

// ReservedColumnTitles lists the default columns in board order.
func ReservedColumnTitles() []string {
	return []string{ColumnToDo, ColumnInProgress, ColumnDone}
}

// IsReservedColumnTitle checks whether a title belongs to a default column.
func IsReservedColumnTitle(title string) bool {
	switch title {
	case ColumnToDo, ColumnInProgress, ColumnDone:
		return true
	default:
		return false
	}
}

// Priority ranks tasks and backlog items.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid checks if the priority is valid.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Sprint is a time-boxed iteration within a project.
type Sprint struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID   uuid.UUID  `json:"project_id" gorm:"type:uuid;not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Completed   bool       `json:"completed" gorm:"not null;default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name.
func (Sprint) TableName() string {
	return "sprints"
}

// Column is a lane on a sprint board. Reserved columns carry one of the
// default titles and cannot be renamed or deleted.
type Column struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SprintID  uuid.UUID `json:"sprint_id" gorm:"type:uuid;not null;index"`
	Title     string    `json:"title" gorm:"not null"`
	Position  int       `json:"position" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Column) TableName() string {
	return "columns"
}

// IsReserved reports whether this is one of the default columns.
func (c *Column) IsReserved() bool {
	return IsReservedColumnTitle(c.Title)
}

// Task is a unit of work placed in a column of a sprint board.
type Task struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SprintID    uuid.UUID `json:"sprint_id" gorm:"type:uuid;not null;index"`
	ColumnID    uuid.UUID `json:"column_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority" gorm:"not null;default:medium"`
	Assignee    string    `json:"assignee,omitempty"`
	Points      int       `json:"points" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Task) TableName() string {
	return "tasks"
}

// BacklogItem is a candidate piece of work that has not been scheduled
// into a sprint yet.
type BacklogItem struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID   uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority" gorm:"not null;default:medium"`
	Points      int       `json:"points" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (BacklogItem) TableName() string {
	return "backlog_items"
}
