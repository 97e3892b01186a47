package store

import (
	"context"

	"github.com/monocle-dev/planboard/internal/apperror"
	"github.com/monocle-dev/planboard/internal/models"
	"gorm.io/gorm"
)

// AddMember records userID as a member of projectID. It reports whether a new
// membership was created; adding an existing member is not an error.
func (s *Store) AddMember(ctx context.Context, projectID, userID uint) (bool, error) {
	var created bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := userExists(tx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Validation("User not found")
		}

		created, err = addMember(tx, projectID, userID)
		return err
	})

	return created, err
}

func addMember(tx *gorm.DB, projectID, userID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	membership := models.ProjectMembership{
		ProjectID: projectID,
		UserID:    userID,
		Role:      models.RoleMember,
	}

	if err := tx.Omit("User", "Project").Create(&membership).Error; err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// IsMember is true for explicit members and for users holding a task in the
// project.
func (s *Store) IsMember(ctx context.Context, projectID, userID uint) (bool, error) {
	var count int64

	err := s.db.WithContext(ctx).
		Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	err = s.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("project_id = ? AND assigned_user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ProjectUsers returns the project's members together with everyone assigned
// a task in it, without duplicates, ordered by name.
func (s *Store) ProjectUsers(ctx context.Context, projectID uint) ([]models.User, error) {
	db := s.db.WithContext(ctx)

	members := db.Model(&models.ProjectMembership{}).Select("user_id").Where("project_id = ?", projectID)
	assignees := db.Model(&models.Task{}).Select("assigned_user_id").Where("project_id = ?", projectID)

	var users []models.User
	err := db.
		Where("id IN (?) OR id IN (?)", members, assignees).
		Order("name ASC, id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}
