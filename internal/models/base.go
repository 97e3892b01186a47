package models

import "time"

// BaseModel is gorm.Model without soft deletes. Rows are removed for real so
// foreign key cascades and row counts stay truthful.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
