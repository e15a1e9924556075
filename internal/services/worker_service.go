package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sitedesk/sitedesk/internal/models"
	apperrors "github.com/sitedesk/sitedesk/pkg/errors"
)

// CreateWorkerInput defines attributes required to register a worker.
type CreateWorkerInput struct {
	Name      string
	Role      string
	DailyRate float64
	ProjectID *string
}

// UpdateWorkerInput carries optional field updates; nil means unchanged.
type UpdateWorkerInput struct {
	Name      *string
	Role      *string
	DailyRate *float64
	ProjectID *string
}

// MarkAttendanceInput records presence for a worker on a calendar day.
type MarkAttendanceInput struct {
	WorkerID string
	Date     time.Time
	Present  bool
}

// RecordPaymentInput describes a wage payment.
type RecordPaymentInput struct {
	WorkerID    string
	Amount      float64
	Date        time.Time
	Description string
}

// WorkerService manages workers, attendance and payments.
type WorkerService struct {
	db       *gorm.DB
	activity *ActivityService
}

// NewWorkerService constructs a WorkerService.
func NewWorkerService(db *gorm.DB, activity *ActivityService) (*WorkerService, error) {
	if db == nil {
		return nil, errors.New("worker service: db is required")
	}
	return &WorkerService{db: db, activity: activity}, nil
}

// Create registers a new worker.
func (s *WorkerService) Create(ctx context.Context, actorID string, input CreateWorkerInput) (*models.Worker, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewBadRequest("worker name is required")
	}
	if input.DailyRate < 0 {
		return nil, apperrors.NewBadRequest("daily rate cannot be negative")
	}

	worker := models.Worker{
		Name:      strings.TrimSpace(input.Name),
		Role:      defaultIfEmpty(strings.TrimSpace(input.Role), "labourer"),
		DailyRate: input.DailyRate,
		ProjectID: input.ProjectID,
	}

	if err := s.db.WithContext(ctx).Create(&worker).Error; err != nil {
		return nil, fmt.Errorf("worker service: create worker: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionCreated, "workers", worker.ID,
		fmt.Sprintf("Worker %q registered", worker.Name), nil)

	return &worker, nil
}

// List returns workers ordered by name, optionally scoped to a project.
func (s *WorkerService) List(ctx context.Context, projectID string) ([]models.Worker, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Order("name ASC")
	if projectID = strings.TrimSpace(projectID); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var workers []models.Worker
	if err := query.Find(&workers).Error; err != nil {
		return nil, fmt.Errorf("worker service: list workers: %w", err)
	}
	return workers, nil
}

// Get loads a single worker by id.
func (s *WorkerService) Get(ctx context.Context, id string) (*models.Worker, error) {
	ctx = ensureContext(ctx)

	var worker models.Worker
	if err := s.db.WithContext(ctx).First(&worker, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("worker service: load worker: %w", err)
	}
	return &worker, nil
}

// Update applies the supplied field changes.
func (s *WorkerService) Update(ctx context.Context, actorID, id string, input UpdateWorkerInput) (*models.Worker, error) {
	ctx = ensureContext(ctx)

	worker, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Role != nil {
		updates["role"] = strings.TrimSpace(*input.Role)
	}
	if input.DailyRate != nil {
		if *input.DailyRate < 0 {
			return nil, apperrors.NewBadRequest("daily rate cannot be negative")
		}
		updates["daily_rate"] = *input.DailyRate
	}
	if input.ProjectID != nil {
		updates["project_id"] = *input.ProjectID
	}

	if len(updates) == 0 {
		return worker, nil
	}

	if err := s.db.WithContext(ctx).Model(worker).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("worker service: update worker: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionUpdated, "workers", worker.ID,
		fmt.Sprintf("Worker %q updated", worker.Name), map[string]any{"fields": updateKeys(updates)})

	return s.Get(ctx, id)
}

// Delete removes a worker and dependent attendance/payment rows.
func (s *WorkerService) Delete(ctx context.Context, actorID, id string) error {
	ctx = ensureContext(ctx)

	worker, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(worker).Error; err != nil {
		return fmt.Errorf("worker service: delete worker: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionDeleted, "workers", worker.ID,
		fmt.Sprintf("Worker %q removed", worker.Name), nil)
	return nil
}

// MarkAttendance upserts the attendance row for (worker, date).
// Marking the same day twice overwrites the present flag.
func (s *WorkerService) MarkAttendance(ctx context.Context, input MarkAttendanceInput) (*models.Attendance, error) {
	ctx = ensureContext(ctx)

	worker, err := s.Get(ctx, input.WorkerID)
	if err != nil {
		return nil, err
	}

	day := truncateToDay(input.Date)
	attendance := models.Attendance{
		WorkerID: worker.ID,
		Date:     day,
		Present:  input.Present,
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "worker_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]any{"present": input.Present}),
		}).
		Create(&attendance).Error; err != nil {
		return nil, fmt.Errorf("worker service: mark attendance: %w", err)
	}

	var stored models.Attendance
	if err := s.db.WithContext(ctx).
		Where("worker_id = ? AND date = ?", worker.ID, day).
		First(&stored).Error; err != nil {
		return nil, fmt.Errorf("worker service: reload attendance: %w", err)
	}
	return &stored, nil
}

// Attendance returns attendance rows for a worker inside the supplied range.
func (s *WorkerService) Attendance(ctx context.Context, workerID string, from, to time.Time) ([]models.Attendance, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Where("worker_id = ?", strings.TrimSpace(workerID)).
		Order("date DESC")
	if !from.IsZero() {
		query = query.Where("date >= ?", truncateToDay(from))
	}
	if !to.IsZero() {
		query = query.Where("date <= ?", truncateToDay(to))
	}

	var rows []models.Attendance
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("worker service: list attendance: %w", err)
	}
	return rows, nil
}

// RecordPayment registers a wage payment for a worker.
func (s *WorkerService) RecordPayment(ctx context.Context, actorID string, input RecordPaymentInput) (*models.Payment, error) {
	ctx = ensureContext(ctx)

	if input.Amount <= 0 {
		return nil, apperrors.NewBadRequest("amount must be positive")
	}

	worker, err := s.Get(ctx, input.WorkerID)
	if err != nil {
		return nil, err
	}

	payment := models.Payment{
		WorkerID:    worker.ID,
		Amount:      input.Amount,
		Date:        input.Date,
		Description: strings.TrimSpace(input.Description),
	}
	if payment.Date.IsZero() {
		payment.Date = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, fmt.Errorf("worker service: create payment: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionCreated, "payments", payment.ID,
		fmt.Sprintf("Payment of %.2f issued to %q", payment.Amount, worker.Name), nil)

	return &payment, nil
}

// Payments returns payments for a worker, newest first.
func (s *WorkerService) Payments(ctx context.Context, workerID string) ([]models.Payment, error) {
	ctx = ensureContext(ctx)

	var rows []models.Payment
	if err := s.db.WithContext(ctx).
		Where("worker_id = ?", strings.TrimSpace(workerID)).
		Order("date DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("worker service: list payments: %w", err)
	}
	return rows, nil
}

func truncateToDay(value time.Time) time.Time {
	if value.IsZero() {
		value = time.Now()
	}
	value = value.UTC()
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
