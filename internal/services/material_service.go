package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sitedesk/sitedesk/internal/models"
	apperrors "github.com/sitedesk/sitedesk/pkg/errors"
	"github.com/sitedesk/sitedesk/pkg/logger"
)

// CreateMaterialInput defines attributes required to add an inventory item.
type CreateMaterialInput struct {
	Name              string
	Category          string
	Quantity          float64
	UnitCost          float64
	LowStockThreshold float64
	Supplier          string
	ProjectID         *string
}

// UpdateMaterialInput carries optional field updates; nil means unchanged.
type UpdateMaterialInput struct {
	Name              *string
	Category          *string
	UnitCost          *float64
	LowStockThreshold *float64
	Supplier          *string
	ProjectID         *string
}

// RecordTransactionInput describes a stock movement.
type RecordTransactionInput struct {
	MaterialID      string
	ProjectID       *string
	TransactionType string
	Quantity        float64
	UnitCost        *float64
	Note            string
	OccurredAt      time.Time
}

// MaterialService manages inventory items and their stock movements.
type MaterialService struct {
	db       *gorm.DB
	activity *ActivityService
}

// NewMaterialService constructs a MaterialService.
func NewMaterialService(db *gorm.DB, activity *ActivityService) (*MaterialService, error) {
	if db == nil {
		return nil, errors.New("material service: db is required")
	}
	return &MaterialService{db: db, activity: activity}, nil
}

// Create persists a new material.
func (s *MaterialService) Create(ctx context.Context, actorID string, input CreateMaterialInput) (*models.Material, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewBadRequest("material name is required")
	}
	if input.Quantity < 0 {
		return nil, apperrors.NewBadRequest("quantity cannot be negative")
	}

	material := models.Material{
		Name:              strings.TrimSpace(input.Name),
		Category:          defaultIfEmpty(strings.TrimSpace(input.Category), "general"),
		Quantity:          input.Quantity,
		UnitCost:          input.UnitCost,
		LowStockThreshold: input.LowStockThreshold,
		Supplier:          strings.TrimSpace(input.Supplier),
		ProjectID:         input.ProjectID,
	}

	if err := s.db.WithContext(ctx).Create(&material).Error; err != nil {
		return nil, fmt.Errorf("material service: create material: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionCreated, "materials", material.ID,
		fmt.Sprintf("Material %q added to inventory", material.Name), nil)

	return &material, nil
}

// List returns materials ordered by name, optionally filtered.
func (s *MaterialService) List(ctx context.Context, category, projectID string, lowStockOnly bool) ([]models.Material, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Order("name ASC")
	if category = strings.TrimSpace(category); category != "" {
		query = query.Where("category = ?", category)
	}
	if projectID = strings.TrimSpace(projectID); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if lowStockOnly {
		query = query.Where("low_stock_threshold > 0 AND quantity <= low_stock_threshold")
	}

	var materials []models.Material
	if err := query.Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("material service: list materials: %w", err)
	}
	return materials, nil
}

// Get loads a single material by id.
func (s *MaterialService) Get(ctx context.Context, id string) (*models.Material, error) {
	ctx = ensureContext(ctx)

	var material models.Material
	if err := s.db.WithContext(ctx).First(&material, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("material service: load material: %w", err)
	}
	return &material, nil
}

// Update applies the supplied field changes. Quantity moves only through
// RecordTransaction so the audit trail stays complete.
func (s *MaterialService) Update(ctx context.Context, actorID, id string, input UpdateMaterialInput) (*models.Material, error) {
	ctx = ensureContext(ctx)

	material, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		updates["category"] = strings.TrimSpace(*input.Category)
	}
	if input.UnitCost != nil {
		updates["unit_cost"] = *input.UnitCost
	}
	if input.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *input.LowStockThreshold
	}
	if input.Supplier != nil {
		updates["supplier"] = strings.TrimSpace(*input.Supplier)
	}
	if input.ProjectID != nil {
		updates["project_id"] = *input.ProjectID
	}

	if len(updates) == 0 {
		return material, nil
	}

	if err := s.db.WithContext(ctx).Model(material).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("material service: update material: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionUpdated, "materials", material.ID,
		fmt.Sprintf("Material %q updated", material.Name), map[string]any{"fields": updateKeys(updates)})

	return s.Get(ctx, id)
}

// Delete removes a material and its transactions.
func (s *MaterialService) Delete(ctx context.Context, actorID, id string) error {
	ctx = ensureContext(ctx)

	material, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(material).Error; err != nil {
		return fmt.Errorf("material service: delete material: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionDeleted, "materials", material.ID,
		fmt.Sprintf("Material %q removed from inventory", material.Name), nil)
	return nil
}

// RecordTransaction inserts a stock movement and adjusts the on-hand quantity
// in the same transaction. "in" adds, "out" subtracts, "adjust" sets.
func (s *MaterialService) RecordTransaction(ctx context.Context, actorID string, input RecordTransactionInput) (*models.MaterialTransaction, error) {
	ctx = ensureContext(ctx)

	switch input.TransactionType {
	case models.TransactionIn, models.TransactionOut, models.TransactionAdjust:
	default:
		return nil, apperrors.NewBadRequest("unknown transaction type")
	}
	if input.Quantity < 0 {
		return nil, apperrors.NewBadRequest("quantity cannot be negative")
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	var material models.Material
	transaction := models.MaterialTransaction{
		MaterialID:      strings.TrimSpace(input.MaterialID),
		ProjectID:       input.ProjectID,
		TransactionType: input.TransactionType,
		Quantity:        input.Quantity,
		UnitCost:        input.UnitCost,
		Note:            strings.TrimSpace(input.Note),
		OccurredAt:      occurredAt,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&material, "id = ?", transaction.MaterialID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("material service: load material: %w", err)
		}

		newQuantity := material.Quantity
		switch transaction.TransactionType {
		case models.TransactionIn:
			newQuantity += transaction.Quantity
		case models.TransactionOut:
			newQuantity -= transaction.Quantity
			if newQuantity < 0 {
				return apperrors.NewBadRequest("insufficient stock for this movement")
			}
		case models.TransactionAdjust:
			newQuantity = transaction.Quantity
		}

		if err := tx.Create(&transaction).Error; err != nil {
			return fmt.Errorf("material service: create transaction: %w", err)
		}
		if err := tx.Model(&material).Update("quantity", newQuantity).Error; err != nil {
			return fmt.Errorf("material service: adjust quantity: %w", err)
		}
		material.Quantity = newQuantity
		return nil
	})
	if err != nil {
		return nil, err
	}

	logActivity(ctx, s.activity, actorID, ActionStockMoved, "materials", material.ID,
		fmt.Sprintf("Stock %s of %.2f on %q", transaction.TransactionType, transaction.Quantity, material.Name),
		map[string]any{"transaction_type": transaction.TransactionType, "quantity": transaction.Quantity})

	if material.LowStock() && s.activity != nil {
		// The stock movement already committed; a failed event append must
		// not surface as a failed transaction.
		if err := s.activity.LogLowStock(ctx, &material); err != nil {
			logger.WithModule("activity").Warn("append low stock event", zap.Error(err))
		}
	}

	return &transaction, nil
}

// Transactions returns the movement history for a material, newest first.
func (s *MaterialService) Transactions(ctx context.Context, materialID string) ([]models.MaterialTransaction, error) {
	ctx = ensureContext(ctx)

	var rows []models.MaterialTransaction
	if err := s.db.WithContext(ctx).
		Where("material_id = ?", strings.TrimSpace(materialID)).
		Order("occurred_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("material service: list transactions: %w", err)
	}
	return rows, nil
}

// ScanLowStock appends a low_stock event for every material at or below its
// threshold. Used by the scheduled maintenance job.
func (s *MaterialService) ScanLowStock(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	if s.activity == nil {
		return 0, nil
	}

	var materials []models.Material
	if err := s.db.WithContext(ctx).
		Where("low_stock_threshold > 0 AND quantity <= low_stock_threshold").
		Find(&materials).Error; err != nil {
		return 0, fmt.Errorf("material service: scan low stock: %w", err)
	}

	for i := range materials {
		if err := s.activity.LogLowStock(ctx, &materials[i]); err != nil {
			return 0, err
		}
	}
	return len(materials), nil
}
