package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/sitedesk/sitedesk/internal/models"
	apperrors "github.com/sitedesk/sitedesk/pkg/errors"
)

// SubmitFeedbackInput defines a feedback message from a signed-in user.
type SubmitFeedbackInput struct {
	UserID  string
	Subject string
	Message string
}

// FeedbackService manages support and feedback messages.
type FeedbackService struct {
	db       *gorm.DB
	activity *ActivityService
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(db *gorm.DB, activity *ActivityService) (*FeedbackService, error) {
	if db == nil {
		return nil, errors.New("feedback service: db is required")
	}
	return &FeedbackService{db: db, activity: activity}, nil
}

// Submit stores a new feedback message.
func (s *FeedbackService) Submit(ctx context.Context, input SubmitFeedbackInput) (*models.FeedbackMessage, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if strings.TrimSpace(input.Subject) == "" || strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.NewBadRequest("subject and message are required")
	}

	feedback := models.FeedbackMessage{
		UserID:  userID,
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
		Status:  models.FeedbackStatusOpen,
	}

	if err := s.db.WithContext(ctx).Create(&feedback).Error; err != nil {
		return nil, fmt.Errorf("feedback service: create feedback: %w", err)
	}

	logActivity(ctx, s.activity, userID, ActionCreated, "feedback_messages", feedback.ID,
		fmt.Sprintf("Feedback submitted: %s", feedback.Subject), nil)

	return &feedback, nil
}

// List returns feedback messages, newest first, optionally filtered by status.
func (s *FeedbackService) List(ctx context.Context, status string) ([]models.FeedbackMessage, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Order("created_at DESC")
	if status = strings.TrimSpace(status); status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []models.FeedbackMessage
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("feedback service: list feedback: %w", err)
	}
	return rows, nil
}

// Resolve marks a feedback message as resolved.
func (s *FeedbackService) Resolve(ctx context.Context, actorID, id string) (*models.FeedbackMessage, error) {
	ctx = ensureContext(ctx)

	var feedback models.FeedbackMessage
	if err := s.db.WithContext(ctx).First(&feedback, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("feedback service: load feedback: %w", err)
	}

	if feedback.Status != models.FeedbackStatusResolved {
		if err := s.db.WithContext(ctx).Model(&feedback).
			Update("status", models.FeedbackStatusResolved).Error; err != nil {
			return nil, fmt.Errorf("feedback service: resolve feedback: %w", err)
		}
		feedback.Status = models.FeedbackStatusResolved

		logActivity(ctx, s.activity, actorID, ActionUpdated, "feedback_messages", feedback.ID,
			fmt.Sprintf("Feedback resolved: %s", feedback.Subject), nil)
	}

	return &feedback, nil
}
