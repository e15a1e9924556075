package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sitedesk/sitedesk/internal/models"
)

// NotificationRuleDTO is the API-friendly notification rule payload.
type NotificationRuleDTO struct {
	ID      string         `json:"id,omitempty"`
	UserID  string         `json:"user_id"`
	Type    string         `json:"type"`
	Enabled bool           `json:"enabled"`
	Config  map[string]any `json:"config,omitempty"`
}

// NotificationRuleService manages per-user notification delivery rules.
// A missing rule row means the type is enabled for that user.
type NotificationRuleService struct {
	db *gorm.DB
}

// NewNotificationRuleService constructs a NotificationRuleService.
func NewNotificationRuleService(db *gorm.DB) (*NotificationRuleService, error) {
	if db == nil {
		return nil, errors.New("notification rule service: db is required")
	}
	return &NotificationRuleService{db: db}, nil
}

// ListForUser returns the stored rules for the supplied user.
func (s *NotificationRuleService) ListForUser(ctx context.Context, userID string) ([]NotificationRuleDTO, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("notification rule service: user id is required")
	}

	var rows []models.NotificationRule
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("type ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification rule service: list rules: %w", err)
	}

	items := make([]NotificationRuleDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotificationRule(row))
	}
	return items, nil
}

// Enabled reports whether the supplied event type is enabled for the user.
// Absence of a rule row means enabled.
func (s *NotificationRuleService) Enabled(ctx context.Context, userID, ruleType string) (bool, error) {
	ctx = ensureContext(ctx)

	var rule models.NotificationRule
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", strings.TrimSpace(userID), normaliseRuleType(ruleType)).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("notification rule service: load rule: %w", err)
	}
	return rule.Enabled, nil
}

// SetEnabled upserts the rule toggle for (user, type) without touching the
// stored config blob.
func (s *NotificationRuleService) SetEnabled(ctx context.Context, userID, ruleType string, enabled bool) (*NotificationRuleDTO, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	ruleType = normaliseRuleType(ruleType)
	if userID == "" || ruleType == "" {
		return nil, errors.New("notification rule service: user id and type are required")
	}

	rule := models.NotificationRule{
		UserID:  userID,
		Type:    ruleType,
		Enabled: enabled,
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}},
			DoUpdates: clause.Assignments(map[string]any{"enabled": enabled}),
		}).
		Create(&rule).Error; err != nil {
		return nil, fmt.Errorf("notification rule service: upsert rule: %w", err)
	}

	stored, err := s.load(ctx, userID, ruleType)
	if err != nil {
		return nil, err
	}
	dto := mapNotificationRule(*stored)
	return &dto, nil
}

// UpdateConfig replaces the config blob for (user, type), creating the rule
// when missing. The enabled flag is left untouched for existing rules.
func (s *NotificationRuleService) UpdateConfig(ctx context.Context, userID, ruleType string, config map[string]any) (*NotificationRuleDTO, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	ruleType = normaliseRuleType(ruleType)
	if userID == "" || ruleType == "" {
		return nil, errors.New("notification rule service: user id and type are required")
	}

	blob, err := encodeJSON(config)
	if err != nil {
		return nil, fmt.Errorf("notification rule service: marshal config: %w", err)
	}

	rule := models.NotificationRule{
		UserID:  userID,
		Type:    ruleType,
		Enabled: true,
		Config:  blob,
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}},
			DoUpdates: clause.Assignments(map[string]any{"config": blob}),
		}).
		Create(&rule).Error; err != nil {
		return nil, fmt.Errorf("notification rule service: upsert config: %w", err)
	}

	stored, err := s.load(ctx, userID, ruleType)
	if err != nil {
		return nil, err
	}
	dto := mapNotificationRule(*stored)
	return &dto, nil
}

// EmailRecipients returns the email addresses of active admins whose rule for
// the supplied event type both is enabled and opts in to email delivery.
func (s *NotificationRuleService) EmailRecipients(ctx context.Context, ruleType string) ([]string, error) {
	ctx = ensureContext(ctx)
	ruleType = normaliseRuleType(ruleType)

	var admins []models.User
	if err := s.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.user_id = users.id AND user_roles.role = ?", models.RoleAdmin).
		Where("users.is_active = ?", true).
		Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("notification rule service: load admins: %w", err)
	}

	var recipients []string
	for _, admin := range admins {
		var rule models.NotificationRule
		err := s.db.WithContext(ctx).
			Where("user_id = ? AND type = ?", admin.ID, ruleType).
			First(&rule).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// No rule means enabled, but email delivery is opt-in.
				continue
			}
			return nil, fmt.Errorf("notification rule service: load rule: %w", err)
		}
		if !rule.Enabled {
			continue
		}
		if cfg := decodeJSON(rule.Config); cfg != nil {
			if email, ok := cfg["email"].(bool); ok && email {
				recipients = append(recipients, admin.Email)
			}
		}
	}
	return recipients, nil
}

func (s *NotificationRuleService) load(ctx context.Context, userID, ruleType string) (*models.NotificationRule, error) {
	var rule models.NotificationRule
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, ruleType).
		First(&rule).Error; err != nil {
		return nil, fmt.Errorf("notification rule service: reload rule: %w", err)
	}
	return &rule, nil
}

func mapNotificationRule(row models.NotificationRule) NotificationRuleDTO {
	return NotificationRuleDTO{
		ID:      row.ID,
		UserID:  row.UserID,
		Type:    row.Type,
		Enabled: row.Enabled,
		Config:  decodeJSON(row.Config),
	}
}

func normaliseRuleType(ruleType string) string {
	return strings.ToLower(strings.TrimSpace(ruleType))
}
