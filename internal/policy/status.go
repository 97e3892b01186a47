package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/monocle-dev/planboard/internal/apperror"
	"github.com/monocle-dev/planboard/internal/models"
)

var ErrInvalidStatus = errors.New("invalid status")

var (
	projectStatuses = []models.ProjectStatus{models.ProjectPlanned, models.ProjectOngoing, models.ProjectCompleted}
	taskStatuses    = []models.TaskStatus{models.TaskTodo, models.TaskInProgress, models.TaskDone}
)

// StatusError reports a value outside an entity's status set. It matches both
// ErrInvalidStatus and apperror.ErrValidation.
type StatusError struct {
	Entity  string
	Value   string
	Allowed []string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("invalid %s status %q (allowed: %s)", e.Entity, e.Value, strings.Join(e.Allowed, ", "))
}

func (e *StatusError) Unwrap() []error {
	return []error{ErrInvalidStatus, apperror.ErrValidation}
}

// ValidateProjectStatus accepts exactly PLANNED, ONGOING or COMPLETED. Any
// value may follow any other; only set membership is checked.
func ValidateProjectStatus(value string) (models.ProjectStatus, error) {
	for _, s := range projectStatuses {
		if string(s) == value {
			return s, nil
		}
	}
	return "", &StatusError{Entity: "project", Value: value, Allowed: names(projectStatuses)}
}

// ValidateTaskStatus accepts exactly TODO, IN_PROGRESS or DONE.
func ValidateTaskStatus(value string) (models.TaskStatus, error) {
	for _, s := range taskStatuses {
		if string(s) == value {
			return s, nil
		}
	}
	return "", &StatusError{Entity: "task", Value: value, Allowed: names(taskStatuses)}
}

func TaskStatuses() []models.TaskStatus {
	out := make([]models.TaskStatus, len(taskStatuses))
	copy(out, taskStatuses)
	return out
}

func names[S ~string](values []S) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
