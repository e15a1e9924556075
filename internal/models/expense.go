package models

import "time"

// Expense is a single budget expenditure attributed to a project.
type Expense struct {
	BaseModel

	ProjectID   string    `gorm:"type:uuid;not null;index" json:"project_id"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Category    string    `gorm:"type:varchar(64);not null;index" json:"category"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	Description string    `gorm:"type:text" json:"description"`

	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
}
