package store

import (
	"context"

	"github.com/monocle-dev/planboard/internal/apperror"
	"github.com/monocle-dev/planboard/internal/models"
	"gorm.io/gorm"
)

// TaskFilter is conjunctive: every non-nil field must match. VisibleTo, when
// non-zero, limits results to tasks in projects that user owns or tasks
// assigned to that user.
type TaskFilter struct {
	Status         *models.TaskStatus
	AssignedUserID *uint
	ProjectID      *uint
	VisibleTo      uint
}

// TaskUpdate lists the fields a PUT may change. Nil means unchanged.
type TaskUpdate struct {
	Title          *string
	Description    *string
	Status         *models.TaskStatus
	AssignedUserID *uint
}

func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil && u.AssignedUserID == nil
}

// CreateTask inserts the task and makes sure its assignee is a member of the
// project. The assignee must exist.
func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	if task.Status == "" {
		task.Status = models.TaskTodo
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.Select("id", "owner_id").First(&project, task.ProjectID).Error; err != nil {
			return notFound(err, "Project not found")
		}

		ok, err := userExists(tx, task.AssignedUserID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Validation("Assigned user not found")
		}

		if err := tx.Omit("Project", "AssignedUser").Create(task).Error; err != nil {
			return err
		}

		if task.AssignedUserID != project.OwnerID {
			if _, err := addMember(tx, task.ProjectID, task.AssignedUserID); err != nil {
				return err
			}
		}

		return nil
	})
}

// GetTask loads a task with its project and assignee.
func (s *Store) GetTask(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).
		Preload("Project").
		Preload("AssignedUser").
		First(&task, id).Error
	if err != nil {
		return models.Task{}, notFound(err, "Task not found")
	}
	return task, nil
}

func (s *Store) FindTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Task{}).
		Preload("Project").
		Preload("AssignedUser")

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.AssignedUserID != nil {
		query = query.Where("tasks.assigned_user_id = ?", *filter.AssignedUserID)
	}
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.VisibleTo != 0 {
		query = query.
			Joins("JOIN projects ON projects.id = tasks.project_id").
			Where("(projects.owner_id = ? OR tasks.assigned_user_id = ?)", filter.VisibleTo, filter.VisibleTo)
	}

	var tasks []models.Task
	if err := query.Order("tasks.created_at ASC, tasks.id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindTasksByProjectID returns a project's tasks newest first, with assignees.
func (s *Store) FindTasksByProjectID(ctx context.Context, projectID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Preload("AssignedUser").
		Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTask applies update to task and persists it. A new assignee must
// exist and becomes a project member in the same transaction.
func (s *Store) UpdateTask(ctx context.Context, task *models.Task, update TaskUpdate) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if update.AssignedUserID != nil && *update.AssignedUserID != task.AssignedUserID {
			ok, err := userExists(tx, *update.AssignedUserID)
			if err != nil {
				return err
			}
			if !ok {
				return apperror.Validation("Assigned user not found")
			}

			var project models.Project
			if err := tx.Select("id", "owner_id").First(&project, task.ProjectID).Error; err != nil {
				return notFound(err, "Project not found")
			}
			if *update.AssignedUserID != project.OwnerID {
				if _, err := addMember(tx, task.ProjectID, *update.AssignedUserID); err != nil {
					return err
				}
			}

			task.AssignedUserID = *update.AssignedUserID
		}

		if update.Title != nil {
			task.Title = *update.Title
		}
		if update.Description != nil {
			task.Description = *update.Description
		}
		if update.Status != nil {
			task.Status = *update.Status
		}

		result := tx.Model(&models.Task{BaseModel: models.BaseModel{ID: task.ID}}).
			Updates(map[string]interface{}{
				"title":            task.Title,
				"description":      task.Description,
				"status":           task.Status,
				"assigned_user_id": task.AssignedUserID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("Task not found")
		}

		return tx.Preload("Project").Preload("AssignedUser").First(task, task.ID).Error
	})
}

func (s *Store) DeleteTask(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("Task not found")
	}
	return nil
}
