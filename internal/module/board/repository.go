package board

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines data access for sprints, columns, tasks and backlog
// items.
type Repository interface {
	CreateSprint(ctx context.Context, sprint *Sprint) error
	GetSprintByID(ctx context.Context, id uuid.UUID) (*Sprint, error)
	ListSprints(ctx context.Context, projectID uuid.UUID) ([]Sprint, error)
	UpdateSprint(ctx context.Context, sprint *Sprint) error
	DeleteSprintCascade(ctx context.Context, id uuid.UUID) error

	CreateColumn(ctx context.Context, column *Column) error
	GetColumnByID(ctx context.Context, id uuid.UUID) (*Column, error)
	ListColumns(ctx context.Context, sprintID uuid.UUID) ([]Column, error)
	UpdateColumn(ctx context.Context, column *Column) error
	DeleteColumn(ctx context.Context, id uuid.UUID) error
	CountTasksInColumn(ctx context.Context, columnID uuid.UUID) (int64, error)

	CreateTask(ctx context.Context, task *Task) error
	GetTaskByID(ctx context.Context, id uuid.UUID) (*Task, error)
	ListTasksBySprint(ctx context.Context, sprintID uuid.UUID) ([]Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, id uuid.UUID) error

	CreateBacklogItem(ctx context.Context, item *BacklogItem) error
	GetBacklogItemByID(ctx context.Context, id uuid.UUID) (*BacklogItem, error)
	ListBacklogItems(ctx context.Context, projectID uuid.UUID) ([]BacklogItem, error)
	UpdateBacklogItem(ctx context.Context, item *BacklogItem) error
	DeleteBacklogItem(ctx context.Context, id uuid.UUID) error

	// PromoteBacklogItem creates the task and deletes the backlog item in
	// one transaction.
	PromoteBacklogItem(ctx context.Context, itemID uuid.UUID, task *Task) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a new GORM-backed board repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateSprint(ctx context.Context, sprint *Sprint) error {
	return r.db.WithContext(ctx).Create(sprint).Error
}

func (r *gormRepository) GetSprintByID(ctx context.Context, id uuid.UUID) (*Sprint, error) {
	var sprint Sprint
	err := r.db.WithContext(ctx).First(&sprint, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSprintNotFound
		}
		return nil, err
	}
	return &sprint, nil
}

func (r *gormRepository) ListSprints(ctx context.Context, projectID uuid.UUID) ([]Sprint, error) {
	var sprints []Sprint
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&sprints).Error
	return sprints, err
}

func (r *gormRepository) UpdateSprint(ctx context.Context, sprint *Sprint) error {
	return r.db.WithContext(ctx).Save(sprint).Error
}

func (r *gormRepository) DeleteSprintCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sprint_id = ?", id).Delete(&Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sprint_id = ?", id).Delete(&Column{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&Sprint{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSprintNotFound
		}
		return nil
	})
}

func (r *gormRepository) CreateColumn(ctx context.Context, column *Column) error {
	return r.db.WithContext(ctx).Create(column).Error
}

func (r *gormRepository) GetColumnByID(ctx context.Context, id uuid.UUID) (*Column, error) {
	var column Column
	err := r.db.WithContext(ctx).First(&column, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrColumnNotFound
		}
		return nil, err
	}
	return &column, nil
}

func (r *gormRepository) ListColumns(ctx context.Context, sprintID uuid.UUID) ([]Column, error) {
	var columns []Column
	err := r.db.WithContext(ctx).
		Where("sprint_id = ?", sprintID).
		Order("position ASC, created_at ASC").
		Find(&columns).Error
	return columns, err
}

func (r *gormRepository) UpdateColumn(ctx context.Context, column *Column) error {
	return r.db.WithContext(ctx).Save(column).Error
}

func (r *gormRepository) DeleteColumn(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Column{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrColumnNotFound
	}
	return nil
}

func (r *gormRepository) CountTasksInColumn(ctx context.Context, columnID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Task{}).
		Where("column_id = ?", columnID).
		Count(&count).Error
	return count, err
}

func (r *gormRepository) CreateTask(ctx context.Context, task *Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *gormRepository) GetTaskByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	var task Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *gormRepository) ListTasksBySprint(ctx context.Context, sprintID uuid.UUID) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Where("sprint_id = ?", sprintID).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *gormRepository) UpdateTask(ctx context.Context, task *Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *gormRepository) DeleteTask(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *gormRepository) CreateBacklogItem(ctx context.Context, item *BacklogItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gormRepository) GetBacklogItemByID(ctx context.Context, id uuid.UUID) (*BacklogItem, error) {
	var item BacklogItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBacklogItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *gormRepository) ListBacklogItems(ctx context.Context, projectID uuid.UUID) ([]BacklogItem, error) {
	var items []BacklogItem
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *gormRepository) UpdateBacklogItem(ctx context.Context, item *BacklogItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *gormRepository) DeleteBacklogItem(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BacklogItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBacklogItemNotFound
	}
	return nil
}

// PromoteBacklogItem moves a backlog item onto a sprint board. The task
// insert and the backlog delete either both happen or neither does.
func (r *gormRepository) PromoteBacklogItem(ctx context.Context, itemID uuid.UUID, task *Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", itemID).Delete(&BacklogItem{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBacklogItemNotFound
		}
		return nil
	})
}
