package models

import "time"

// Material transaction types.
const (
	TransactionIn     = "in"
	TransactionOut    = "out"
	TransactionAdjust = "adjust"
)

// MaterialTransaction records a stock movement against a material. The
// material quantity is adjusted atomically with the insert.
type MaterialTransaction struct {
	BaseModel

	MaterialID      string    `gorm:"type:uuid;not null;index" json:"material_id"`
	ProjectID       *string   `gorm:"type:uuid;index" json:"project_id"`
	TransactionType string    `gorm:"type:varchar(16);not null" json:"transaction_type"`
	Quantity        float64   `gorm:"not null" json:"quantity"`
	UnitCost        *float64  `json:"unit_cost"`
	Note            string    `gorm:"type:text" json:"note"`
	OccurredAt      time.Time `gorm:"not null;index" json:"occurred_at"`

	Material *Material `gorm:"foreignKey:MaterialID;constraint:OnDelete:CASCADE" json:"material,omitempty"`
}
