package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityEvent is an immutable, append-only record of something that happened
// in the system. Events are created by server-side logic only and are never
// updated or deleted through the API; visibility is admin-scoped.
type ActivityEvent struct {
	BaseModel

	ActorUserID *string        `gorm:"type:uuid;index" json:"actor_user_id"`
	Action      string         `gorm:"type:varchar(64);not null;index" json:"action"`
	EntityTable string         `gorm:"type:varchar(64);not null" json:"entity_table"`
	EntityID    *string        `gorm:"type:uuid" json:"entity_id"`
	Message     string         `gorm:"type:text;not null" json:"message"`
	Metadata    datatypes.JSON `json:"metadata"`
}

// ActivityEventState is the mutable per-(user, event) overlay. At most one row
// exists per pair; rows are created lazily on first interaction and updated in
// place with last-write-wins semantics.
type ActivityEventState struct {
	BaseModel

	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_event_states_user_event" json:"user_id"`
	EventID string `gorm:"type:uuid;not null;uniqueIndex:idx_event_states_user_event" json:"event_id"`

	ReadAt     *time.Time `json:"read_at"`
	ArchivedAt *time.Time `json:"archived_at"`
}
