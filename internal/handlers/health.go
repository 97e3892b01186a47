package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/planboard/internal/logging"
)

func (h *Handler) HealthCheck(ctx *gin.Context) {
	sqlDB, err := h.Store.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(ctx.Request.Context())
	}

	if err != nil {
		logging.Logger.WithError(err).Error("Health check failed")
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "error",
			"message":   "Database unavailable",
			"timestamp": time.Now().Format(time.RFC3339),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Planboard is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
