package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/planboard/internal/apperror"
	"github.com/monocle-dev/planboard/internal/models"
	"github.com/monocle-dev/planboard/internal/policy"
	"github.com/monocle-dev/planboard/internal/services"
	"github.com/monocle-dev/planboard/internal/store"
	"github.com/monocle-dev/planboard/internal/types"
	"github.com/monocle-dev/planboard/internal/utils"
)

type CreateTaskRequest struct {
	Title          string `json:"title" binding:"required,min=2"`
	Description    string `json:"description"`
	Status         string `json:"status"`
	ProjectID      uint   `json:"projectId"`
	AssignedUserID uint   `json:"assignedUserId" binding:"required"`
}

type UpdateTaskRequest struct {
	Title          *string `json:"title" binding:"omitempty,min=2"`
	Description    *string `json:"description"`
	Status         *string `json:"status"`
	AssignedUserID *uint   `json:"assignedUserId"`
	ProjectID      *uint   `json:"projectId"`
}

// ListTasks returns the tasks visible to the caller, narrowed by the optional
// status, assignedUserId and projectId query parameters.
func (h *Handler) ListTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	filter := store.TaskFilter{VisibleTo: userID}

	if raw, ok := ctx.GetQuery("status"); ok {
		status, err := policy.ValidateTaskStatus(raw)
		if err != nil {
			respondError(ctx, err)
			return
		}
		filter.Status = &status
	}

	if filter.AssignedUserID, err = utils.GetQueryID(ctx, "assignedUserId"); err != nil {
		respondError(ctx, err)
		return
	}

	if filter.ProjectID, err = utils.GetQueryID(ctx, "projectId"); err != nil {
		respondError(ctx, err)
		return
	}

	tasks, err := h.Store.FindTasks(ctx.Request.Context(), filter)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewTaskResponses(tasks))
}

func (h *Handler) CreateTask(ctx *gin.Context) {
	var body CreateTaskRequest

	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	if body.ProjectID == 0 {
		respondError(ctx, apperror.Validation("projectId is required"))
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	project, err := h.Store.GetProject(ctx.Request.Context(), body.ProjectID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if !policy.CanCreateTaskInProject(userID, project) {
		respondError(ctx, errCannotCreateTask)
		return
	}

	h.createTask(ctx, project, body)
}

var errCannotCreateTask = apperror.Forbidden("Not authorized to create tasks in this project")

// createTask inserts a task into an already authorized project.
func (h *Handler) createTask(ctx *gin.Context, project models.Project, body CreateTaskRequest) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	title, err := trimmedText("title", body.Title, 2)
	if err != nil {
		respondError(ctx, err)
		return
	}

	task := models.Task{
		Title:          title,
		Description:    body.Description,
		ProjectID:      project.ID,
		AssignedUserID: body.AssignedUserID,
	}

	if body.Status != "" {
		if task.Status, err = policy.ValidateTaskStatus(body.Status); err != nil {
			respondError(ctx, err)
			return
		}
	}

	if err := h.Store.CreateTask(ctx.Request.Context(), &task); err != nil {
		respondError(ctx, err)
		return
	}

	created, err := h.Store.GetTask(ctx.Request.Context(), task.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	h.Notifier.Notify(services.TaskEvent{
		Trigger: models.TriggerTaskCreated,
		Project: created.Project,
		Task:    created,
		Actor:   caller.Name,
	})
	h.broadcast(project.ID)

	ctx.JSON(http.StatusOK, types.NewTaskResponse(created))
}

// GetTask is open to the project owner and the assignee.
func (h *Handler) GetTask(ctx *gin.Context) {
	userID, task, err := h.loadTask(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if !policy.CanMutateTask(userID, task, task.Project) {
		respondError(ctx, apperror.Forbidden("Not authorized"))
		return
	}

	ctx.JSON(http.StatusOK, types.NewTaskResponse(task))
}

// UpdateTask lets the owner change anything but the project, and the
// assignee change the status only. Fields sent with their current value do
// not count as changes.
func (h *Handler) UpdateTask(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	_, task, err := h.loadTask(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if !policy.CanMutateTask(caller.ID, task, task.Project) {
		respondError(ctx, apperror.Forbidden("Not authorized"))
		return
	}

	var body UpdateTaskRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	if body.ProjectID != nil && *body.ProjectID != task.ProjectID {
		respondError(ctx, apperror.Validation("projectId cannot be changed"))
		return
	}

	update, change, err := taskUpdateFrom(body, task)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := policy.AuthorizeTaskUpdate(caller.ID, task, task.Project, change); err != nil {
		respondError(ctx, err)
		return
	}

	if update.Empty() {
		ctx.JSON(http.StatusOK, types.NewTaskResponse(task))
		return
	}

	previous := task.Status
	if err := h.Store.UpdateTask(ctx.Request.Context(), &task, update); err != nil {
		respondError(ctx, err)
		return
	}

	if change.Status {
		h.Notifier.Notify(services.TaskEvent{
			Trigger:        models.TriggerTaskStatusChanged,
			Project:        task.Project,
			Task:           task,
			Actor:          caller.Name,
			PreviousStatus: previous,
		})
	}
	h.broadcast(task.ProjectID)

	ctx.JSON(http.StatusOK, types.NewTaskResponse(task))
}

func taskUpdateFrom(body UpdateTaskRequest, task models.Task) (store.TaskUpdate, policy.TaskChange, error) {
	var (
		update store.TaskUpdate
		change policy.TaskChange
	)

	if body.Title != nil {
		title, err := trimmedText("title", *body.Title, 2)
		if err != nil {
			return store.TaskUpdate{}, policy.TaskChange{}, err
		}
		if title != task.Title {
			update.Title = &title
			change.Details = true
		}
	}

	if body.Description != nil && *body.Description != task.Description {
		update.Description = body.Description
		change.Details = true
	}

	if body.Status != nil {
		status, err := policy.ValidateTaskStatus(*body.Status)
		if err != nil {
			return store.TaskUpdate{}, policy.TaskChange{}, err
		}
		if status != task.Status {
			update.Status = &status
			change.Status = true
		}
	}

	if body.AssignedUserID != nil && *body.AssignedUserID != task.AssignedUserID {
		if *body.AssignedUserID == 0 {
			return store.TaskUpdate{}, policy.TaskChange{}, apperror.Validation("Invalid assignedUserId")
		}
		update.AssignedUserID = body.AssignedUserID
		change.Reassign = true
	}

	return update, change, nil
}

func (h *Handler) DeleteTask(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	_, task, err := h.loadTask(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if !policy.CanDeleteTask(caller.ID, task, task.Project) {
		respondError(ctx, apperror.Forbidden("Not authorized"))
		return
	}

	if err := h.Store.DeleteTask(ctx.Request.Context(), task.ID); err != nil {
		respondError(ctx, err)
		return
	}

	h.Notifier.Notify(services.TaskEvent{
		Trigger: models.TriggerTaskDeleted,
		Project: task.Project,
		Task:    task,
		Actor:   caller.Name,
	})
	h.broadcast(task.ProjectID)

	ctx.Status(http.StatusNoContent)
}

// loadTask resolves the :id path parameter to a task with its project and
// assignee loaded.
func (h *Handler) loadTask(ctx *gin.Context) (uint, models.Task, error) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		return 0, models.Task{}, err
	}

	taskID, err := utils.GetPathID(ctx, "id", "task ID")
	if err != nil {
		return 0, models.Task{}, err
	}

	task, err := h.Store.GetTask(ctx.Request.Context(), taskID)
	if err != nil {
		return 0, models.Task{}, err
	}

	return userID, task, nil
}
