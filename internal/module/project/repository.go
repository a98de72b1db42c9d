package project

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Repository defines data access for projects and collaborators.
type Repository interface {
	CreateProject(ctx context.Context, proj *Project) error
	GetProjectByID(ctx context.Context, id uuid.UUID) (*Project, error)
	UpdateProject(ctx context.Context, proj *Project) error
	DeleteProjectCascade(ctx context.Context, id uuid.UUID) error
	ListVisibleProjects(ctx context.Context, userID uuid.UUID, email string) ([]ProjectResponse, error)

	CreateCollaborator(ctx context.Context, collab *Collaborator) error
	GetCollaboratorByID(ctx context.Context, id uuid.UUID) (*Collaborator, error)
	GetCollaboratorByProjectAndEmail(ctx context.Context, projectID uuid.UUID, email string) (*Collaborator, error)
	ListCollaborators(ctx context.Context, projectID uuid.UUID) ([]Collaborator, error)
	UpdateCollaboratorStatus(ctx context.Context, id uuid.UUID, status CollaboratorStatus) error
	UpdateCollaboratorRole(ctx context.Context, id uuid.UUID, role Role) error
	DeleteCollaborator(ctx context.Context, id uuid.UUID) error
	ListPendingByEmail(ctx context.Context, email string) ([]PendingInvitation, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a new GORM-backed project repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateProject(ctx context.Context, proj *Project) error {
	return r.db.WithContext(ctx).Create(proj).Error
}

func (r *gormRepository) GetProjectByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	var proj Project
	err := r.db.WithContext(ctx).First(&proj, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &proj, nil
}

func (r *gormRepository) UpdateProject(ctx context.Context, proj *Project) error {
	return r.db.WithContext(ctx).Save(proj).Error
}

// DeleteProjectCascade removes a project and every row hanging off it in a
// single transaction. Tasks and columns reach the project through sprints.
func (r *gormRepository) DeleteProjectCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`DELETE FROM tasks WHERE sprint_id IN (SELECT id FROM sprints WHERE project_id = ?)`, id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			`DELETE FROM columns WHERE sprint_id IN (SELECT id FROM sprints WHERE project_id = ?)`, id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM sprints WHERE project_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM backlog_items WHERE project_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&Collaborator{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProjectNotFound
		}
		return nil
	})
}

type visibleProjectRow struct {
	ID          uuid.UUID `gorm:"column:id"`
	OwnerID     uuid.UUID `gorm:"column:owner_id"`
	Title       string    `gorm:"column:title"`
	Description string    `gorm:"column:description"`
	EndGoal     string    `gorm:"column:end_goal"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
	MyRole      Role      `gorm:"column:my_role"`
}

// ListVisibleProjects returns projects the user owns or has joined as an
// accepted collaborator, newest first. Pending invitations grant no
// visibility.
func (r *gormRepository) ListVisibleProjects(ctx context.Context, userID uuid.UUID, email string) ([]ProjectResponse, error) {
	var rows []visibleProjectRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.id, p.owner_id, p.title, p.description, p.end_goal,
		       p.created_at, p.updated_at,
		       CASE WHEN p.owner_id = ? THEN 'admin' ELSE c.role END AS my_role
		FROM projects p
		LEFT JOIN collaborators c
		       ON c.project_id = p.id
		      AND lower(c.email) = lower(?)
		      AND c.status = 'accepted'
		WHERE p.owner_id = ? OR c.id IS NOT NULL
		ORDER BY p.created_at DESC`,
		userID, email, userID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]ProjectResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, ProjectResponse{
			Project: &Project{
				ID:          row.ID,
				OwnerID:     row.OwnerID,
				Title:       row.Title,
				Description: row.Description,
				EndGoal:     row.EndGoal,
				CreatedAt:   row.CreatedAt,
				UpdatedAt:   row.UpdatedAt,
			},
			MyRole: row.MyRole,
		})
	}
	return result, nil
}

func (r *gormRepository) CreateCollaborator(ctx context.Context, collab *Collaborator) error {
	if err := r.db.WithContext(ctx).Create(collab).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateInvitation
		}
		return err
	}
	return nil
}

func (r *gormRepository) GetCollaboratorByID(ctx context.Context, id uuid.UUID) (*Collaborator, error) {
	var collab Collaborator
	err := r.db.WithContext(ctx).First(&collab, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return &collab, nil
}

func (r *gormRepository) GetCollaboratorByProjectAndEmail(ctx context.Context, projectID uuid.UUID, email string) (*Collaborator, error) {
	var collab Collaborator
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND lower(email) = lower(?)", projectID, email).
		First(&collab).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return &collab, nil
}

func (r *gormRepository) ListCollaborators(ctx context.Context, projectID uuid.UUID) ([]Collaborator, error) {
	var collabs []Collaborator
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&collabs).Error
	return collabs, err
}

func (r *gormRepository) UpdateCollaboratorStatus(ctx context.Context, id uuid.UUID, status CollaboratorStatus) error {
	result := r.db.WithContext(ctx).Model(&Collaborator{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

func (r *gormRepository) UpdateCollaboratorRole(ctx context.Context, id uuid.UUID, role Role) error {
	result := r.db.WithContext(ctx).Model(&Collaborator{}).
		Where("id = ?", id).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

func (r *gormRepository) DeleteCollaborator(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Collaborator{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

type pendingInvitationRow struct {
	CollabID           uuid.UUID          `gorm:"column:collab_id"`
	ProjectID          uuid.UUID          `gorm:"column:project_id"`
	Email              string             `gorm:"column:email"`
	Role               Role               `gorm:"column:role"`
	Status             CollaboratorStatus `gorm:"column:status"`
	CreatedAt          time.Time          `gorm:"column:created_at"`
	UpdatedAt          time.Time          `gorm:"column:updated_at"`
	ProjectTitle       string             `gorm:"column:project_title"`
	ProjectDescription string             `gorm:"column:project_description"`
}

// ListPendingByEmail returns pending invitations for the email, joined with
// their projects. The inner join drops invitations whose project has been
// deleted out from under them.
func (r *gormRepository) ListPendingByEmail(ctx context.Context, email string) ([]PendingInvitation, error) {
	var rows []pendingInvitationRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id AS collab_id, c.project_id, c.email, c.role, c.status,
		       c.created_at, c.updated_at,
		       p.title AS project_title, p.description AS project_description
		FROM collaborators c
		INNER JOIN projects p ON p.id = c.project_id
		WHERE lower(c.email) = lower(?) AND c.status = 'pending'
		ORDER BY c.created_at DESC`,
		email,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]PendingInvitation, 0, len(rows))
	for _, row := range rows {
		result = append(result, PendingInvitation{
			Collaborator: Collaborator{
				ID:        row.CollabID,
				ProjectID: row.ProjectID,
				Email:     row.Email,
				Role:      row.Role,
				Status:    row.Status,
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
			},
			Project: ProjectSummary{
				ID:          row.ProjectID,
				Title:       row.ProjectTitle,
				Description: row.ProjectDescription,
			},
		})
	}
	return result, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
