package models

import (
	"gorm.io/datatypes"
)

const (
	ChannelSlack   = "slack"
	ChannelDiscord = "discord"
)

const (
	TriggerTaskCreated       = "task_created"
	TriggerTaskStatusChanged = "task_status_changed"
	TriggerTaskDeleted       = "task_deleted"
)

type NotificationRule struct {
	BaseModel

	ProjectID   uint           `gorm:"not null;index"`
	TriggerType string         `gorm:"not null;size:32"` // e.g. "task_created", "task_status_changed"
	Channel     string         `gorm:"not null;size:16"` // "slack" or "discord"
	IsActive    bool           `gorm:"default:true"`
	Config      datatypes.JSON // {"url": "..."}

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type WebhookConfig struct {
	URL string `json:"url"`
}
