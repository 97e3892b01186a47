package store

import (
	"context"

	"github.com/monocle-dev/planboard/internal/models"
	"gorm.io/gorm"
)

// ProjectUpdate lists the fields a PUT may change. Nil means unchanged.
type ProjectUpdate struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
}

func (u ProjectUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Status == nil
}

func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	if project.Status == "" {
		project.Status = models.ProjectPlanned
	}
	return s.db.WithContext(ctx).Omit("Owner", "Tasks").Create(project).Error
}

func (s *Store) GetProject(ctx context.Context, id uint) (models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return models.Project{}, notFound(err, "Project not found")
	}
	return project, nil
}

// GetProjectDetail loads the project with its owner and its tasks, each with
// the assigned user.
func (s *Store) GetProjectDetail(ctx context.Context, id uint) (models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).
		Preload("Owner").
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("tasks.created_at ASC, tasks.id ASC") }).
		Preload("Tasks.AssignedUser").
		First(&project, id).Error
	if err != nil {
		return models.Project{}, notFound(err, "Project not found")
	}
	return project, nil
}

func (s *Store) ListProjectsByOwner(ctx context.Context, ownerID uint) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("tasks.created_at ASC, tasks.id ASC") }).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Store) UpdateProject(ctx context.Context, project *models.Project, update ProjectUpdate) error {
	if update.Name != nil {
		project.Name = *update.Name
	}
	if update.Description != nil {
		project.Description = *update.Description
	}
	if update.Status != nil {
		project.Status = *update.Status
	}

	return s.db.WithContext(ctx).
		Model(project).
		Updates(map[string]interface{}{
			"name":        project.Name,
			"description": project.Description,
			"status":      project.Status,
		}).Error
}

// DeleteProject removes the project with its tasks, memberships and
// notification rules in one transaction. Foreign keys cascade too, but not
// every deployment has them enforced (SQLite without the pragma), so the
// children are removed explicitly.
func (s *Store) DeleteProject(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.NotificationRule{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Project{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return notFound(err, "Project not found")
}
