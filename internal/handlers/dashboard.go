package handlers

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/planboard/internal/types"
	"github.com/monocle-dev/planboard/internal/utils"
)

const (
	recentItemsPerKind = 5
	maxActivityEvents  = 10
)

// GetDashboardStats returns the caller's aggregate counts.
func (h *Handler) GetDashboardStats(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	stats, err := h.Store.Stats(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.DashboardStatsResponse{
		TotalProjects:     stats.TotalProjects,
		CompletedProjects: stats.CompletedProjects,
		TotalTasks:        stats.TotalTasks,
		CompletedTasks:    stats.CompletedTasks,
		ActiveUsers:       stats.ActiveUsers,
		TasksByStatus:     stats.TasksByStatus,
	})
}

// GetDashboardActivity merges the caller's newest projects and tasks into one
// feed, newest first.
func (h *Handler) GetDashboardActivity(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	projects, err := h.Store.RecentProjects(ctx.Request.Context(), userID, recentItemsPerKind)
	if err != nil {
		respondError(ctx, err)
		return
	}

	tasks, err := h.Store.RecentTasks(ctx.Request.Context(), userID, recentItemsPerKind)
	if err != nil {
		respondError(ctx, err)
		return
	}

	activity := make([]types.ActivityEvent, 0, len(projects)+len(tasks))

	for _, project := range projects {
		activity = append(activity, types.ActivityEvent{
			ID:          fmt.Sprintf("project-%d", project.ID),
			Type:        "PROJECT_CREATED",
			Description: fmt.Sprintf("%s created project \"%s\"", project.Owner.Name, project.Name),
			Timestamp:   project.CreatedAt,
		})
	}

	for _, task := range tasks {
		activity = append(activity, types.ActivityEvent{
			ID:          fmt.Sprintf("task-%d", task.ID),
			Type:        "TASK_ASSIGNED",
			Description: fmt.Sprintf("%s was assigned to \"%s\" in %s", task.AssignedUser.Name, task.Title, task.Project.Name),
			Timestamp:   task.CreatedAt,
		})
	}

	sort.SliceStable(activity, func(i, j int) bool {
		return activity[i].Timestamp.After(activity[j].Timestamp)
	})

	if len(activity) > maxActivityEvents {
		activity = activity[:maxActivityEvents]
	}

	ctx.JSON(http.StatusOK, activity)
}
