package models

type ProjectStatus string

const (
	ProjectPlanned   ProjectStatus = "PLANNED"
	ProjectOngoing   ProjectStatus = "ONGOING"
	ProjectCompleted ProjectStatus = "COMPLETED"
)

type Project struct {
	BaseModel

	Name        string        `gorm:"not null"`
	Description string        `gorm:"type:text"`
	Status      ProjectStatus `gorm:"not null;size:16;index"`
	OwnerID     uint          `gorm:"not null;index"`

	// Relationships
	Owner User   `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tasks []Task `gorm:"foreignKey:ProjectID"`
}
