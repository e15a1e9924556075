package models

// Feedback message statuses.
const (
	FeedbackStatusOpen     = "open"
	FeedbackStatusResolved = "resolved"
)

// FeedbackMessage is a support/feedback note submitted by a user.
type FeedbackMessage struct {
	BaseModel

	UserID  string `gorm:"type:uuid;not null;index" json:"user_id"`
	Subject string `gorm:"type:varchar(255);not null" json:"subject"`
	Message string `gorm:"type:text;not null" json:"message"`
	Status  string `gorm:"type:varchar(32);default:'open'" json:"status"`
}
