package database

import (
	"gorm.io/gorm"

	"github.com/sitedesk/sitedesk/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserRole{},
		&models.Project{},
		&models.Expense{},
		&models.Material{},
		&models.MaterialTransaction{},
		&models.Equipment{},
		&models.MaintenanceLog{},
		&models.Worker{},
		&models.Attendance{},
		&models.Payment{},
		&models.Document{},
		&models.FeedbackMessage{},
		&models.ActivityEvent{},
		&models.ActivityEventState{},
		&models.NotificationRule{},
		&models.CacheEntry{},
	)
}
