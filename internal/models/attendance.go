package models

import "time"

// Attendance marks a worker present or absent on a calendar day. One row per
// (worker, date); writes upsert on that pair.
type Attendance struct {
	BaseModel

	WorkerID string    `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_worker_date" json:"worker_id"`
	Date     time.Time `gorm:"not null;uniqueIndex:idx_attendance_worker_date" json:"date"`
	Present  bool      `gorm:"default:true" json:"present"`

	Worker *Worker `gorm:"foreignKey:WorkerID;constraint:OnDelete:CASCADE" json:"worker,omitempty"`
}
