package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/planboard/internal/apperror"
	"github.com/monocle-dev/planboard/internal/models"
	"github.com/monocle-dev/planboard/internal/policy"
	"github.com/monocle-dev/planboard/internal/store"
	"github.com/monocle-dev/planboard/internal/types"
	"github.com/monocle-dev/planboard/internal/utils"
)

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,min=2"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type AddProjectUserRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// loadProject resolves the :id path parameter and returns it with the
// caller's id. Authorization is left to the caller.
func (h *Handler) loadProject(ctx *gin.Context) (uint, models.Project, error) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return 0, models.Project{}, err
	}

	projectID, err := utils.GetPathID(ctx, "id", "project ID")
	if err != nil {
		return 0, models.Project{}, err
	}

	project, err := h.Store.GetProject(ctx.Request.Context(), projectID)
	if err != nil {
		return 0, models.Project{}, err
	}

	return userID, project, nil
}

// ownedProject is loadProject for operations only the owner may perform. An
// unknown id is reported before a foreign one.
func (h *Handler) ownedProject(ctx *gin.Context) (models.Project, error) {
	userID, project, err := h.loadProject(ctx)
	if err != nil {
		return models.Project{}, err
	}

	if err := policy.RequireProjectOwner(userID, project); err != nil {
		return models.Project{}, err
	}

	return project, nil
}

func (h *Handler) CreateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	var body CreateProjectRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	name, err := trimmedText("name", body.Name, 2)
	if err != nil {
		respondError(ctx, err)
		return
	}

	project := models.Project{
		Name:        name,
		Description: body.Description,
		OwnerID:     userID,
	}

	if body.Status != "" {
		status, err := policy.ValidateProjectStatus(body.Status)
		if err != nil {
			respondError(ctx, err)
			return
		}
		project.Status = status
	}

	if err := h.Store.CreateProject(ctx.Request.Context(), &project); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewProjectResponse(project))
}

// ListProjects returns the caller's projects, newest first, with their tasks.
func (h *Handler) ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	projects, err := h.Store.ListProjectsByOwner(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		response = append(response, types.NewProjectResponse(project))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) GetProject(ctx *gin.Context) {
	project, err := h.ownedProject(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	detail, err := h.Store.GetProjectDetail(ctx.Request.Context(), project.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewProjectResponse(detail))
}

func (h *Handler) UpdateProject(ctx *gin.Context) {
	project, err := h.ownedProject(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	var body UpdateProjectRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	update := store.ProjectUpdate{Description: body.Description}

	if body.Name != nil {
		name, err := trimmedText("name", *body.Name, 2)
		if err != nil {
			respondError(ctx, err)
			return
		}
		update.Name = &name
	}

	if body.Status != nil {
		status, err := policy.ValidateProjectStatus(*body.Status)
		if err != nil {
			respondError(ctx, err)
			return
		}
		update.Status = &status
	}

	if update.Empty() {
		respondError(ctx, apperror.Validation("No valid fields to update"))
		return
	}

	if err := h.Store.UpdateProject(ctx.Request.Context(), &project, update); err != nil {
		respondError(ctx, err)
		return
	}

	h.broadcast(project.ID)

	ctx.JSON(http.StatusOK, types.NewProjectResponse(project))
}

func (h *Handler) DeleteProject(ctx *gin.Context) {
	userID, project, err := h.loadProject(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if !policy.CanDeleteProject(userID, project) {
		respondError(ctx, apperror.Forbidden("Not authorized"))
		return
	}

	if err := h.Store.DeleteProject(ctx.Request.Context(), project.ID); err != nil {
		respondError(ctx, err)
		return
	}

	h.broadcast(project.ID)

	ctx.Status(http.StatusNoContent)
}

// GetProjectTimeline lists one event per task, newest first.
func (h *Handler) GetProjectTimeline(ctx *gin.Context) {
	project, err := h.ownedProject(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	tasks, err := h.Store.FindTasksByProjectID(ctx.Request.Context(), project.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	timeline := make([]types.TimelineEvent, 0, len(tasks))
	for _, task := range tasks {
		timeline = append(timeline, types.TimelineEvent{
			ID:          fmt.Sprintf("task-%d", task.ID),
			Type:        "TASK_CREATED",
			Description: fmt.Sprintf("Task \"%s\" was created and assigned to %s", task.Title, task.AssignedUser.Name),
			Timestamp:   task.CreatedAt,
			User:        types.TimelineUser{Name: task.AssignedUser.Name},
		})
	}

	ctx.JSON(http.StatusOK, timeline)
}

// GetProjectUsers lists members and assignees of the project.
func (h *Handler) GetProjectUsers(ctx *gin.Context) {
	project, err := h.ownedProject(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	users, err := h.Store.ProjectUsers(ctx.Request.Context(), project.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.UserResponse, 0, len(users))
	for _, user := range users {
		response = append(response, types.NewUserResponse(user))
	}

	ctx.JSON(http.StatusOK, response)
}

// AddProjectUser makes a user a member of the project. Repeating the call is
// harmless. The owner is implicitly a member and is never recorded.
func (h *Handler) AddProjectUser(ctx *gin.Context) {
	project, err := h.ownedProject(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	var body AddProjectUserRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	user, err := h.memberToAdd(ctx.Request.Context(), project, body.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	h.broadcast(project.ID)

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User assigned successfully",
		"user":    types.NewUserResponse(user),
	})
}

func (h *Handler) memberToAdd(ctx context.Context, project models.Project, userID uint) (models.User, error) {
	if userID != project.OwnerID {
		if _, err := h.Store.AddMember(ctx, project.ID, userID); err != nil {
			return models.User{}, err
		}
	}
	return h.Store.GetUser(ctx, userID)
}

// ListProjectTasks returns the project's tasks newest first.
func (h *Handler) ListProjectTasks(ctx *gin.Context) {
	project, err := h.ownedProject(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	tasks, err := h.Store.FindTasksByProjectID(ctx.Request.Context(), project.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewTaskResponses(tasks))
}

// CreateProjectTask is CreateTask with the project taken from the path. The
// project is resolved and authorized before the body is read.
func (h *Handler) CreateProjectTask(ctx *gin.Context) {
	userID, project, err := h.loadProject(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if !policy.CanCreateTaskInProject(userID, project) {
		respondError(ctx, errCannotCreateTask)
		return
	}

	var body CreateTaskRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	h.createTask(ctx, project, body)
}
