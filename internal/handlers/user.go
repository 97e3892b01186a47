package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/planboard/internal/types"
)

// ListUsers returns everyone registered, with how many projects each owns and
// how many tasks each holds.
func (h *Handler) ListUsers(ctx *gin.Context) {
	summaries, err := h.Store.ListUsers(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	users := make([]types.TeamMemberResponse, 0, len(summaries))
	for _, s := range summaries {
		users = append(users, types.TeamMemberResponse{
			UserResponse: types.UserResponse{
				ID:        s.ID,
				Name:      s.Name,
				Email:     s.Email,
				CreatedAt: s.CreatedAt,
			},
			ProjectCount: s.ProjectCount,
			TaskCount:    s.TaskCount,
		})
	}

	ctx.JSON(http.StatusOK, users)
}
