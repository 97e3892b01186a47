package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/monocle-dev/planboard/internal/apperror"
	"github.com/monocle-dev/planboard/internal/models"
	"gorm.io/gorm"
)

// UserSummary is the team listing row: a user without the password hash plus
// how many projects they own and tasks they hold.
type UserSummary struct {
	ID           uint
	Name         string
	Email        string
	CreatedAt    time.Time
	ProjectCount int64
	TaskCount    int64
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a user. A taken email yields apperror.ErrConflict and no
// row is written.
func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.Conflict("Email already exists")
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, apperror.Conflict("Email already exists")
		}
		return models.User{}, err
	}

	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, notFound(err, "User not found")
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if err != nil {
		return models.User{}, notFound(err, "User not found")
	}
	return user, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, userID uint, passwordHash string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("User not found")
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]UserSummary, error) {
	var users []UserSummary

	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Select(`users.id, users.name, users.email, users.created_at,
			(SELECT COUNT(*) FROM projects WHERE projects.owner_id = users.id) AS project_count,
			(SELECT COUNT(*) FROM tasks WHERE tasks.assigned_user_id = users.id) AS task_count`).
		Order("users.name ASC, users.id ASC").
		Scan(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

// userExists is used to validate references carried in request bodies.
func userExists(tx *gorm.DB, id uint) (bool, error) {
	var user models.User
	err := tx.Select("id").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}
