package store

import (
	"context"

	"github.com/monocle-dev/planboard/internal/apperror"
	"github.com/monocle-dev/planboard/internal/models"
	"gorm.io/gorm"
)

// CreateNotificationRule inserts rule. IsActive carries a column default, so
// an inactive rule is written in two steps inside one transaction.
func (s *Store) CreateNotificationRule(ctx context.Context, rule *models.NotificationRule) error {
	active := rule.IsActive

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Project").Create(rule).Error; err != nil {
			return err
		}
		if active {
			return nil
		}
		rule.IsActive = false
		return tx.Model(rule).Update("is_active", false).Error
	})
}

func (s *Store) ListNotificationRules(ctx context.Context, projectID uint) ([]models.NotificationRule, error) {
	var rules []models.NotificationRule
	err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id ASC").Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// ActiveNotificationRules returns the enabled rules of a project listening for
// trigger.
func (s *Store) ActiveNotificationRules(ctx context.Context, projectID uint, trigger string) ([]models.NotificationRule, error) {
	var rules []models.NotificationRule
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND trigger_type = ? AND is_active = ?", projectID, trigger, true).
		Order("id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (s *Store) DeleteNotificationRule(ctx context.Context, projectID, ruleID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", ruleID, projectID).
		Delete(&models.NotificationRule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("Notification rule not found")
	}
	return nil
}
