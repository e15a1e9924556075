package models

// Material is an inventory item, optionally assigned to a project.
type Material struct {
	BaseModel

	Name              string  `gorm:"type:varchar(255);not null" json:"name"`
	Category          string  `gorm:"type:varchar(64);not null;index" json:"category"`
	Quantity          float64 `gorm:"not null;default:0" json:"quantity"`
	UnitCost          float64 `gorm:"not null" json:"unit_cost"`
	LowStockThreshold float64 `gorm:"default:0" json:"low_stock_threshold"`
	Supplier          string  `gorm:"type:varchar(255)" json:"supplier"`
	ProjectID         *string `gorm:"type:uuid;index" json:"project_id"`
}

// LowStock reports whether the on-hand quantity is at or below the threshold.
func (m *Material) LowStock() bool {
	return m.LowStockThreshold > 0 && m.Quantity <= m.LowStockThreshold
}
