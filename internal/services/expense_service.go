package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sitedesk/sitedesk/internal/models"
	apperrors "github.com/sitedesk/sitedesk/pkg/errors"
)

// CreateExpenseInput defines attributes required to record an expense.
type CreateExpenseInput struct {
	ProjectID   string
	Amount      float64
	Category    string
	Date        time.Time
	Description string
}

// UpdateExpenseInput carries optional field updates; nil means unchanged.
type UpdateExpenseInput struct {
	Amount      *float64
	Category    *string
	Date        *time.Time
	Description *string
}

// ListExpensesInput filters the expense listing.
type ListExpensesInput struct {
	ProjectID string
	Category  string
	From      *time.Time
	To        *time.Time
}

// ExpenseService manages project expenditures.
type ExpenseService struct {
	db       *gorm.DB
	activity *ActivityService
}

// NewExpenseService constructs an ExpenseService.
func NewExpenseService(db *gorm.DB, activity *ActivityService) (*ExpenseService, error) {
	if db == nil {
		return nil, errors.New("expense service: db is required")
	}
	return &ExpenseService{db: db, activity: activity}, nil
}

// Create records an expense against a project.
func (s *ExpenseService) Create(ctx context.Context, actorID string, input CreateExpenseInput) (*models.Expense, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.ProjectID) == "" {
		return nil, apperrors.NewBadRequest("project id is required")
	}
	if input.Amount <= 0 {
		return nil, apperrors.NewBadRequest("amount must be positive")
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, apperrors.NewBadRequest("category is required")
	}

	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", input.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("expense service: load project: %w", err)
	}

	expense := models.Expense{
		ProjectID:   project.ID,
		Amount:      input.Amount,
		Category:    strings.TrimSpace(input.Category),
		Date:        input.Date,
		Description: strings.TrimSpace(input.Description),
	}
	if expense.Date.IsZero() {
		expense.Date = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, fmt.Errorf("expense service: create expense: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionCreated, "expenses", expense.ID,
		fmt.Sprintf("Expense of %.2f recorded for %q", expense.Amount, project.Name),
		map[string]any{"category": expense.Category, "project_id": project.ID})

	return &expense, nil
}

// List returns expenses, newest first, with optional filters.
func (s *ExpenseService) List(ctx context.Context, input ListExpensesInput) ([]models.Expense, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Order("date DESC")
	if projectID := strings.TrimSpace(input.ProjectID); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if category := strings.TrimSpace(input.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if input.From != nil {
		query = query.Where("date >= ?", *input.From)
	}
	if input.To != nil {
		query = query.Where("date <= ?", *input.To)
	}

	var expenses []models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("expense service: list expenses: %w", err)
	}
	return expenses, nil
}

// Get loads a single expense by id.
func (s *ExpenseService) Get(ctx context.Context, id string) (*models.Expense, error) {
	ctx = ensureContext(ctx)

	var expense models.Expense
	if err := s.db.WithContext(ctx).First(&expense, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("expense service: load expense: %w", err)
	}
	return &expense, nil
}

// Update applies the supplied field changes.
func (s *ExpenseService) Update(ctx context.Context, actorID, id string, input UpdateExpenseInput) (*models.Expense, error) {
	ctx = ensureContext(ctx)

	expense, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Amount != nil {
		if *input.Amount <= 0 {
			return nil, apperrors.NewBadRequest("amount must be positive")
		}
		updates["amount"] = *input.Amount
	}
	if input.Category != nil {
		updates["category"] = strings.TrimSpace(*input.Category)
	}
	if input.Date != nil {
		updates["date"] = *input.Date
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}

	if len(updates) == 0 {
		return expense, nil
	}

	if err := s.db.WithContext(ctx).Model(expense).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("expense service: update expense: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionUpdated, "expenses", expense.ID,
		"Expense updated", map[string]any{"fields": updateKeys(updates)})

	return s.Get(ctx, id)
}

// Delete removes an expense.
func (s *ExpenseService) Delete(ctx context.Context, actorID, id string) error {
	ctx = ensureContext(ctx)

	expense, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(expense).Error; err != nil {
		return fmt.Errorf("expense service: delete expense: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionDeleted, "expenses", expense.ID,
		"Expense deleted", nil)
	return nil
}
