package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/planboard/internal/apperror"
	"github.com/monocle-dev/planboard/internal/logging"
	"github.com/monocle-dev/planboard/internal/models"
	"github.com/monocle-dev/planboard/internal/services"
	"github.com/monocle-dev/planboard/internal/types"
	"github.com/monocle-dev/planboard/internal/utils"
	"gorm.io/datatypes"
)

type CreateNotificationRuleRequest struct {
	TriggerType string `json:"triggerType" binding:"required,oneof=task_created task_status_changed task_deleted"`
	Channel     string `json:"channel" binding:"required,oneof=slack discord"`
	URL         string `json:"url" binding:"required,url"`
	IsActive    *bool  `json:"isActive"`
}

func newNotificationRuleResponse(rule models.NotificationRule) types.NotificationRuleResponse {
	var cfg models.WebhookConfig
	if err := json.Unmarshal(rule.Config, &cfg); err != nil {
		logging.Logger.WithError(err).WithField("rule_id", rule.ID).Warn("Unreadable notification rule config")
	}

	return types.NotificationRuleResponse{
		ID:          rule.ID,
		ProjectID:   rule.ProjectID,
		TriggerType: rule.TriggerType,
		Channel:     rule.Channel,
		IsActive:    rule.IsActive,
		URL:         cfg.URL,
	}
}

func (h *Handler) ListNotificationRules(ctx *gin.Context) {
	project, err := h.ownedProject(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	rules, err := h.Store.ListNotificationRules(ctx.Request.Context(), project.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.NotificationRuleResponse, 0, len(rules))
	for _, rule := range rules {
		response = append(response, newNotificationRuleResponse(rule))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) CreateNotificationRule(ctx *gin.Context) {
	project, err := h.ownedProject(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	var body CreateNotificationRuleRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	if err := services.CheckWebhookURL(body.URL); err != nil {
		respondError(ctx, apperror.Validation("%s", err.Error()))
		return
	}

	config, err := json.Marshal(models.WebhookConfig{URL: body.URL})
	if err != nil {
		respondError(ctx, err)
		return
	}

	rule := models.NotificationRule{
		ProjectID:   project.ID,
		TriggerType: body.TriggerType,
		Channel:     body.Channel,
		IsActive:    true,
		Config:      datatypes.JSON(config),
	}
	if body.IsActive != nil {
		rule.IsActive = *body.IsActive
	}

	if err := h.Store.CreateNotificationRule(ctx.Request.Context(), &rule); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, newNotificationRuleResponse(rule))
}

func (h *Handler) DeleteNotificationRule(ctx *gin.Context) {
	project, err := h.ownedProject(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ruleID, err := utils.GetPathID(ctx, "ruleId", "rule ID")
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := h.Store.DeleteNotificationRule(ctx.Request.Context(), project.ID, ruleID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
