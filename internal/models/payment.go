package models

import "time"

// Payment is a wage payment issued to a worker.
type Payment struct {
	BaseModel

	WorkerID    string    `gorm:"type:uuid;not null;index" json:"worker_id"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	Description string    `gorm:"type:text" json:"description"`

	Worker *Worker `gorm:"foreignKey:WorkerID;constraint:OnDelete:CASCADE" json:"worker,omitempty"`
}
