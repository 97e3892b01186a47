package types

import (
	"time"

	"github.com/monocle-dev/planboard/internal/models"
)

// UserResponse is the public projection of a user. It never carries the
// password hash.
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type TeamMemberResponse struct {
	UserResponse
	ProjectCount int64 `json:"projectCount"`
	TaskCount    int64 `json:"taskCount"`
}

type ProjectResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	OwnerID     uint                 `json:"ownerUserId"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	Owner       *UserResponse        `json:"owner,omitempty"`
	Tasks       []TaskResponse       `json:"tasks,omitempty"`
}

type ProjectSummary struct {
	ID     uint                 `json:"id"`
	Name   string               `json:"name"`
	Status models.ProjectStatus `json:"status"`
}

type TaskResponse struct {
	ID             uint              `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Status         models.TaskStatus `json:"status"`
	ProjectID      uint              `json:"projectId"`
	AssignedUserID uint              `json:"assignedUserId"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
	AssignedUser   *UserResponse     `json:"assignedUser,omitempty"`
	Project        *ProjectSummary   `json:"project,omitempty"`
}

type TimelineUser struct {
	Name string `json:"name"`
}

type TimelineEvent struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
	User        TimelineUser `json:"user"`
}

type ActivityEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

type DashboardStatsResponse struct {
	TotalProjects     int64                       `json:"totalProjects"`
	CompletedProjects int64                       `json:"completedProjects"`
	TotalTasks        int64                       `json:"totalTasks"`
	CompletedTasks    int64                       `json:"completedTasks"`
	ActiveUsers       int64                       `json:"activeUsers"`
	TasksByStatus     map[models.TaskStatus]int64 `json:"tasksByStatus"`
}

type NotificationRuleResponse struct {
	ID          uint   `json:"id"`
	ProjectID   uint   `json:"projectId"`
	TriggerType string `json:"triggerType"`
	Channel     string `json:"channel"`
	IsActive    bool   `json:"isActive"`
	URL         string `json:"url"`
}

func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func NewProjectResponse(project models.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		OwnerID:     project.OwnerID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}

	if project.Owner.ID != 0 {
		owner := NewUserResponse(project.Owner)
		resp.Owner = &owner
	}

	if project.Tasks != nil {
		resp.Tasks = make([]TaskResponse, 0, len(project.Tasks))
		for _, task := range project.Tasks {
			resp.Tasks = append(resp.Tasks, NewTaskResponse(task))
		}
	}

	return resp
}

func NewTaskResponse(task models.Task) TaskResponse {
	resp := TaskResponse{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		ProjectID:      task.ProjectID,
		AssignedUserID: task.AssignedUserID,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}

	if task.AssignedUser.ID != 0 {
		assignee := NewUserResponse(task.AssignedUser)
		resp.AssignedUser = &assignee
	}

	if task.Project.ID != 0 {
		resp.Project = &ProjectSummary{
			ID:     task.Project.ID,
			Name:   task.Project.Name,
			Status: task.Project.Status,
		}
	}

	return resp
}

func NewTaskResponses(tasks []models.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, NewTaskResponse(task))
	}
	return out
}
