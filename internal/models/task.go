package models

type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

type Task struct {
	BaseModel

	Title          string     `gorm:"not null"`
	Description    string     `gorm:"type:text"`
	Status         TaskStatus `gorm:"not null;size:16;index"`
	ProjectID      uint       `gorm:"not null;index"`
	AssignedUserID uint       `gorm:"not null;index"`

	// Relationships
	Project      Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	AssignedUser User    `gorm:"foreignKey:AssignedUserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
