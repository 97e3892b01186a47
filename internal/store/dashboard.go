package store

import (
	"context"

	"github.com/monocle-dev/planboard/internal/models"
	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalProjects     int64
	CompletedProjects int64
	TotalTasks        int64
	CompletedTasks    int64
	ActiveUsers       int64
	TasksByStatus     map[models.TaskStatus]int64
}

// visibleTasks scopes a task query to what userID may see on the board:
// tasks in projects they own plus tasks assigned to them.
func visibleTasks(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&models.Task{}).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("(projects.owner_id = ? OR tasks.assigned_user_id = ?)", userID, userID)
}

// Stats aggregates the caller's dashboard numbers. Projects are the ones the
// caller owns; tasks are the ones visible to the caller; active users are the
// distinct people holding tasks in the caller's projects.
func (s *Store) Stats(ctx context.Context, userID uint) (DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := DashboardStats{TasksByStatus: make(map[models.TaskStatus]int64)}

	if err := db.Model(&models.Project{}).Where("owner_id = ?", userID).Count(&stats.TotalProjects).Error; err != nil {
		return DashboardStats{}, err
	}

	err := db.Model(&models.Project{}).
		Where("owner_id = ? AND status = ?", userID, models.ProjectCompleted).
		Count(&stats.CompletedProjects).Error
	if err != nil {
		return DashboardStats{}, err
	}

	var rows []struct {
		Status models.TaskStatus
		Count  int64
	}
	err = visibleTasks(db, userID).
		Select("tasks.status AS status, COUNT(*) AS count").
		Group("tasks.status").
		Scan(&rows).Error
	if err != nil {
		return DashboardStats{}, err
	}

	for _, status := range []models.TaskStatus{models.TaskTodo, models.TaskInProgress, models.TaskDone} {
		stats.TasksByStatus[status] = 0
	}
	for _, row := range rows {
		stats.TasksByStatus[row.Status] = row.Count
		stats.TotalTasks += row.Count
	}
	stats.CompletedTasks = stats.TasksByStatus[models.TaskDone]

	err = db.Model(&models.Task{}).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.owner_id = ?", userID).
		Distinct("tasks.assigned_user_id").
		Count(&stats.ActiveUsers).Error
	if err != nil {
		return DashboardStats{}, err
	}

	return stats, nil
}

// RecentProjects returns the newest projects owned by userID, with owners.
func (s *Store) RecentProjects(ctx context.Context, userID uint, limit int) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// RecentTasks returns the newest tasks visible to userID, with project and
// assignee.
func (s *Store) RecentTasks(ctx context.Context, userID uint, limit int) ([]models.Task, error) {
	var tasks []models.Task
	err := visibleTasks(s.db.WithContext(ctx), userID).
		Preload("Project").
		Preload("AssignedUser").
		Order("tasks.created_at DESC, tasks.id DESC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
