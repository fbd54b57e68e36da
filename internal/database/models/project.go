package models

import "time"

// Project is an isolated namespace owning its own materials and components,
// backed by one dedicated SQLite file. Bootstrap marks the project the
// registry creates on first startup; it can never be deleted.
type Project struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex;size:200" validate:"required,min=1,max=200"`
	Bootstrap bool      `json:"bootstrap" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for Project
func (Project) TableName() string {
	return "projects"
}
