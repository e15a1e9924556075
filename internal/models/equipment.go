package models

// Equipment is a machine or tool tracked by the dashboard.
type Equipment struct {
	BaseModel

	Name      string  `gorm:"type:varchar(255);not null" json:"name"`
	Type      string  `gorm:"type:varchar(64);not null;index" json:"type"`
	Condition string  `gorm:"type:varchar(32);not null" json:"condition"`
	Available bool    `gorm:"index" json:"available"`
	ProjectID *string `gorm:"type:uuid;index" json:"project_id"`
}
