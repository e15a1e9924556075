package models

import "gorm.io/datatypes"

// NotificationRule is a per-(user, type) delivery toggle. Absence of a row
// means the type is enabled; the config blob is reserved for per-rule
// parameters (e.g. {"email": true}) and must survive enable/disable toggles.
type NotificationRule struct {
	BaseModel

	UserID  string         `gorm:"type:uuid;not null;uniqueIndex:idx_notification_rules_user_type" json:"user_id"`
	Type    string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_notification_rules_user_type" json:"type"`
	Enabled bool           `json:"enabled"`
	Config  datatypes.JSON `json:"config"`
}
