package models

// Worker is a labourer or staff member, optionally assigned to a project.
type Worker struct {
	BaseModel

	Name      string  `gorm:"type:varchar(255);not null" json:"name"`
	Role      string  `gorm:"type:varchar(64);not null" json:"role"`
	DailyRate float64 `gorm:"not null" json:"daily_rate"`
	ProjectID *string `gorm:"type:uuid;index" json:"project_id"`
}
