package policy

import (
	"github.com/monocle-dev/planboard/internal/apperror"
	"github.com/monocle-dev/planboard/internal/models"
)

// CanAccessProject reports whether the caller owns the project. Reading,
// updating and listing a project's users, tasks and timeline all need this.
func CanAccessProject(callerID uint, project models.Project) bool {
	return callerID != 0 && callerID == project.OwnerID
}

// CanMutateTask is true for the project owner and for the task's assignee.
func CanMutateTask(callerID uint, task models.Task, project models.Project) bool {
	if CanAccessProject(callerID, project) {
		return true
	}
	return callerID != 0 && callerID == task.AssignedUserID
}

func CanDeleteTask(callerID uint, task models.Task, project models.Project) bool {
	return CanAccessProject(callerID, project)
}

func CanDeleteProject(callerID uint, project models.Project) bool {
	return CanAccessProject(callerID, project)
}

func CanCreateTaskInProject(callerID uint, project models.Project) bool {
	return CanAccessProject(callerID, project)
}

// CanWatchProject covers the live board feed, which assignees and members
// need as much as the owner does.
func CanWatchProject(callerID uint, project models.Project, isMember bool) bool {
	return CanAccessProject(callerID, project) || (callerID != 0 && isMember)
}

// TaskChange describes which parts of a task an update touches.
type TaskChange struct {
	Status   bool
	Details  bool // title or description
	Reassign bool
}

// AuthorizeTaskUpdate applies CanMutateTask and then narrows what an assignee
// who is not the owner may change: the status only.
func AuthorizeTaskUpdate(callerID uint, task models.Task, project models.Project, change TaskChange) error {
	if !CanMutateTask(callerID, task, project) {
		return apperror.Forbidden("Not authorized")
	}
	if CanAccessProject(callerID, project) {
		return nil
	}
	if change.Details || change.Reassign {
		return apperror.Forbidden("Only the project owner can edit or reassign this task")
	}
	return nil
}

// RequireProjectOwner is CanAccessProject in error form.
func RequireProjectOwner(callerID uint, project models.Project) error {
	if !CanAccessProject(callerID, project) {
		return apperror.Forbidden("Not authorized")
	}
	return nil
}
