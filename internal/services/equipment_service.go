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

// CreateEquipmentInput defines attributes required to register equipment.
type CreateEquipmentInput struct {
	Name      string
	Type      string
	Condition string
	Available bool
	ProjectID *string
}

// UpdateEquipmentInput carries optional field updates; nil means unchanged.
type UpdateEquipmentInput struct {
	Name      *string
	Type      *string
	Condition *string
	Available *bool
	ProjectID *string
}

// LogMaintenanceInput describes a maintenance entry for a piece of equipment.
type LogMaintenanceInput struct {
	EquipmentID string
	Date        time.Time
	Description string
	Cost        *float64
}

// EquipmentService manages machines, tools and their maintenance history.
type EquipmentService struct {
	db       *gorm.DB
	activity *ActivityService
}

// NewEquipmentService constructs an EquipmentService.
func NewEquipmentService(db *gorm.DB, activity *ActivityService) (*EquipmentService, error) {
	if db == nil {
		return nil, errors.New("equipment service: db is required")
	}
	return &EquipmentService{db: db, activity: activity}, nil
}

// Create registers a new piece of equipment.
func (s *EquipmentService) Create(ctx context.Context, actorID string, input CreateEquipmentInput) (*models.Equipment, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewBadRequest("equipment name is required")
	}

	equipment := models.Equipment{
		Name:      strings.TrimSpace(input.Name),
		Type:      defaultIfEmpty(strings.TrimSpace(input.Type), "general"),
		Condition: defaultIfEmpty(strings.TrimSpace(input.Condition), "good"),
		Available: input.Available,
		ProjectID: input.ProjectID,
	}

	if err := s.db.WithContext(ctx).Create(&equipment).Error; err != nil {
		return nil, fmt.Errorf("equipment service: create equipment: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionCreated, "equipment", equipment.ID,
		fmt.Sprintf("Equipment %q registered", equipment.Name), nil)

	return &equipment, nil
}

// List returns equipment ordered by name, optionally filtered.
func (s *EquipmentService) List(ctx context.Context, equipmentType, projectID string, availableOnly bool) ([]models.Equipment, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Order("name ASC")
	if equipmentType = strings.TrimSpace(equipmentType); equipmentType != "" {
		query = query.Where("type = ?", equipmentType)
	}
	if projectID = strings.TrimSpace(projectID); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if availableOnly {
		query = query.Where("available = ?", true)
	}

	var equipment []models.Equipment
	if err := query.Find(&equipment).Error; err != nil {
		return nil, fmt.Errorf("equipment service: list equipment: %w", err)
	}
	return equipment, nil
}

// Get loads a single piece of equipment by id.
func (s *EquipmentService) Get(ctx context.Context, id string) (*models.Equipment, error) {
	ctx = ensureContext(ctx)

	var equipment models.Equipment
	if err := s.db.WithContext(ctx).First(&equipment, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("equipment service: load equipment: %w", err)
	}
	return &equipment, nil
}

// Update applies the supplied field changes.
func (s *EquipmentService) Update(ctx context.Context, actorID, id string, input UpdateEquipmentInput) (*models.Equipment, error) {
	ctx = ensureContext(ctx)

	equipment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Type != nil {
		updates["type"] = strings.TrimSpace(*input.Type)
	}
	if input.Condition != nil {
		updates["condition"] = strings.TrimSpace(*input.Condition)
	}
	if input.Available != nil {
		updates["available"] = *input.Available
	}
	if input.ProjectID != nil {
		updates["project_id"] = *input.ProjectID
	}

	if len(updates) == 0 {
		return equipment, nil
	}

	if err := s.db.WithContext(ctx).Model(equipment).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("equipment service: update equipment: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionUpdated, "equipment", equipment.ID,
		fmt.Sprintf("Equipment %q updated", equipment.Name), map[string]any{"fields": updateKeys(updates)})

	return s.Get(ctx, id)
}

// Delete removes a piece of equipment and its maintenance logs.
func (s *EquipmentService) Delete(ctx context.Context, actorID, id string) error {
	ctx = ensureContext(ctx)

	equipment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(equipment).Error; err != nil {
		return fmt.Errorf("equipment service: delete equipment: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionDeleted, "equipment", equipment.ID,
		fmt.Sprintf("Equipment %q removed", equipment.Name), nil)
	return nil
}

// LogMaintenance records a service entry for the equipment.
func (s *EquipmentService) LogMaintenance(ctx context.Context, actorID string, input LogMaintenanceInput) (*models.MaintenanceLog, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewBadRequest("maintenance description is required")
	}

	equipment, err := s.Get(ctx, input.EquipmentID)
	if err != nil {
		return nil, err
	}

	entry := models.MaintenanceLog{
		EquipmentID: equipment.ID,
		Date:        input.Date,
		Description: strings.TrimSpace(input.Description),
		Cost:        input.Cost,
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("equipment service: create maintenance log: %w", err)
	}

	logActivity(ctx, s.activity, actorID, ActionMaintenance, "equipment", equipment.ID,
		fmt.Sprintf("Maintenance logged for %q", equipment.Name), nil)

	return &entry, nil
}

// MaintenanceHistory returns maintenance entries for the equipment, newest first.
func (s *EquipmentService) MaintenanceHistory(ctx context.Context, equipmentID string) ([]models.MaintenanceLog, error) {
	ctx = ensureContext(ctx)

	var rows []models.MaintenanceLog
	if err := s.db.WithContext(ctx).
		Where("equipment_id = ?", strings.TrimSpace(equipmentID)).
		Order("date DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("equipment service: list maintenance logs: %w", err)
	}
	return rows, nil
}
