package models

import "time"

// MaintenanceLog records a service entry for a piece of equipment.
type MaintenanceLog struct {
	BaseModel

	EquipmentID string    `gorm:"type:uuid;not null;index" json:"equipment_id"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Cost        *float64  `json:"cost"`

	Equipment *Equipment `gorm:"foreignKey:EquipmentID;constraint:OnDelete:CASCADE" json:"equipment,omitempty"`
}
