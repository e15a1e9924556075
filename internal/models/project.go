package models

import "time"

// Project statuses mirror the dashboard's lifecycle buckets.
const (
	ProjectStatusPlanning  = "Planning"
	ProjectStatusActive    = "Active"
	ProjectStatusOnHold    = "On Hold"
	ProjectStatusCompleted = "Completed"
)

// Project is a construction project tracked by the dashboard.
type Project struct {
	BaseModel

	Name               string    `gorm:"type:varchar(255);not null" json:"name"`
	ClientName         string    `gorm:"type:varchar(255);not null" json:"client_name"`
	Location           string    `gorm:"type:varchar(255);not null" json:"location"`
	Description        string    `gorm:"type:text" json:"description"`
	Status             string    `gorm:"type:varchar(32);default:'Planning';index" json:"status"`
	Budget             float64   `gorm:"not null;default:0" json:"budget"`
	ProgressPercentage int       `gorm:"default:0" json:"progress_percentage"`
	StartDate          time.Time `gorm:"not null" json:"start_date"`
	EndDate            time.Time `gorm:"not null" json:"end_date"`
	Archived           bool      `gorm:"default:false;index" json:"archived"`
}
