package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/sitedesk/sitedesk/internal/models"
)

// DashboardStats aggregates the headline figures shown on the dashboard.
type DashboardStats struct {
	ActiveProjects     int64             `json:"active_projects"`
	TotalBudget        float64           `json:"total_budget"`
	TotalSpent         float64           `json:"total_spent"`
	LowStockCount      int64             `json:"low_stock_count"`
	EquipmentInUse     int64             `json:"equipment_in_use"`
	WorkerCount        int64             `json:"worker_count"`
	ProjectsByStatus   map[string]int64  `json:"projects_by_status"`
	ExpensesByMonth    []MonthlyExpense  `json:"expenses_by_month"`
	ExpensesByCategory []CategoryExpense `json:"expenses_by_category"`
}

// MonthlyExpense is a month bucket of total spend.
type MonthlyExpense struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// CategoryExpense is a category bucket of total spend.
type CategoryExpense struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// DashboardService computes aggregate statistics across the domain tables.
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(db *gorm.DB) (*DashboardService, error) {
	if db == nil {
		return nil, errors.New("dashboard service: db is required")
	}
	return &DashboardService{db: db}, nil
}

// Stats computes the dashboard aggregates. Month buckets cover the trailing
// twelve months and are grouped in-process to stay vendor neutral.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	ctx = ensureContext(ctx)
	stats := &DashboardStats{ProjectsByStatus: map[string]int64{}}

	if err := s.db.WithContext(ctx).Model(&models.Project{}).
		Where("status = ? AND archived = ?", models.ProjectStatusActive, false).
		Count(&stats.ActiveProjects).Error; err != nil {
		return nil, fmt.Errorf("dashboard service: count active projects: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Project{}).
		Where("archived = ?", false).
		Select("COALESCE(SUM(budget), 0)").
		Scan(&stats.TotalBudget).Error; err != nil {
		return nil, fmt.Errorf("dashboard service: sum budgets: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalSpent).Error; err != nil {
		return nil, fmt.Errorf("dashboard service: sum expenses: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Material{}).
		Where("low_stock_threshold > 0 AND quantity <= low_stock_threshold").
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, fmt.Errorf("dashboard service: count low stock: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Equipment{}).
		Where("available = ?", false).
		Count(&stats.EquipmentInUse).Error; err != nil {
		return nil, fmt.Errorf("dashboard service: count equipment in use: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Worker{}).
		Count(&stats.WorkerCount).Error; err != nil {
		return nil, fmt.Errorf("dashboard service: count workers: %w", err)
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var statuses []statusCount
	if err := s.db.WithContext(ctx).Model(&models.Project{}).
		Where("archived = ?", false).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&statuses).Error; err != nil {
		return nil, fmt.Errorf("dashboard service: group projects by status: %w", err)
	}
	for _, row := range statuses {
		stats.ProjectsByStatus[row.Status] = row.Count
	}

	since := time.Now().UTC().AddDate(-1, 0, 0)
	var expenses []models.Expense
	if err := s.db.WithContext(ctx).
		Where("date >= ?", since).
		Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("dashboard service: load recent expenses: %w", err)
	}

	stats.ExpensesByMonth = bucketByMonth(expenses)
	stats.ExpensesByCategory = bucketByCategory(expenses)

	return stats, nil
}

func bucketByMonth(expenses []models.Expense) []MonthlyExpense {
	totals := map[string]float64{}
	for _, expense := range expenses {
		totals[expense.Date.UTC().Format("2006-01")] += expense.Amount
	}

	months := make([]string, 0, len(totals))
	for month := range totals {
		months = append(months, month)
	}
	sort.Strings(months)

	buckets := make([]MonthlyExpense, 0, len(months))
	for _, month := range months {
		buckets = append(buckets, MonthlyExpense{Month: month, Total: totals[month]})
	}
	return buckets
}

func bucketByCategory(expenses []models.Expense) []CategoryExpense {
	totals := map[string]float64{}
	for _, expense := range expenses {
		totals[expense.Category] += expense.Amount
	}

	categories := make([]string, 0, len(totals))
	for category := range totals {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	buckets := make([]CategoryExpense, 0, len(categories))
	for _, category := range categories {
		buckets = append(buckets, CategoryExpense{Category: category, Total: totals[category]})
	}
	return buckets
}
