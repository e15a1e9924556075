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

// CreateProjectInput defines attributes required to create a project.
type CreateProjectInput struct {
	Name               string
	ClientName         string
	Location           string
	Description        string
	Status             string
	Budget             float64
	ProgressPercentage int
	StartDate          time.Time
	EndDate            time.Time
}

// UpdateProjectInput carries optional field updates; nil means unchanged.
type UpdateProjectInput struct {
	Name               *string
	ClientName         *string
	Location           *string
	Description        *string
	Status             *string
	Budget             *float64
	ProgressPercentage *int
	StartDate          *time.Time
	EndDate            *time.Time
}

// ListProjectsInput filters the project listing.
type ListProjectsInput struct {
	Status          string
	IncludeArchived bool
}

// ProjectService manages construction projects.
type ProjectService struct {
	db       *gorm.DB
	activity *ActivityService
}

// NewProjectService constructs a ProjectService.
func NewProjectService(db *gorm.DB, activity *ActivityService) (*ProjectService, error) {
	if db == nil {
		return nil, errors.New("project service: db is required")
	}
	return &ProjectService{db: db, activity: activity}, nil
}

// Create persists a new project and logs an activity event.
func (s *ProjectService) Create(ctx context.Context, actorID string, input CreateProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewBadRequest("project name is required")
	}
	status := defaultIfEmpty(input.Status, models.ProjectStatusPlanning)
	if !validProjectStatus(status) {
		return nil, apperrors.NewBadRequest("unknown project status")
	}

	project := models.Project{
		Name:               strings.TrimSpace(input.Name),
		ClientName:         strings.TrimSpace(input.ClientName),
		Location:           strings.TrimSpace(input.Location),
		Description:        strings.TrimSpace(input.Description),
		Status:             status,
		Budget:             input.Budget,
		ProgressPercentage: clampPercentage(input.ProgressPercentage),
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
	}

	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, fmt.Errorf("project service: create project: %w", err)
	}

	s.logActivity(ctx, actorID, ActionCreated, project.ID,
		fmt.Sprintf("Project %q created", project.Name), nil)

	return &project, nil
}

// List returns projects, newest first, optionally filtered by status.
func (s *ProjectService) List(ctx context.Context, input ListProjectsInput) ([]models.Project, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Order("created_at DESC")
	if !input.IncludeArchived {
		query = query.Where("archived = ?", false)
	}
	if status := strings.TrimSpace(input.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("project service: list projects: %w", err)
	}
	return projects, nil
}

// Get loads a single project by id.
func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	ctx = ensureContext(ctx)

	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("project service: load project: %w", err)
	}
	return &project, nil
}

// Update applies the supplied field changes and logs an activity event.
func (s *ProjectService) Update(ctx context.Context, actorID, id string, input UpdateProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.NewBadRequest("project name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.ClientName != nil {
		updates["client_name"] = strings.TrimSpace(*input.ClientName)
	}
	if input.Location != nil {
		updates["location"] = strings.TrimSpace(*input.Location)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		if !validProjectStatus(*input.Status) {
			return nil, apperrors.NewBadRequest("unknown project status")
		}
		updates["status"] = *input.Status
	}
	if input.Budget != nil {
		updates["budget"] = *input.Budget
	}
	if input.ProgressPercentage != nil {
		updates["progress_percentage"] = clampPercentage(*input.ProgressPercentage)
	}
	if input.StartDate != nil {
		updates["start_date"] = *input.StartDate
	}
	if input.EndDate != nil {
		updates["end_date"] = *input.EndDate
	}

	if len(updates) == 0 {
		return project, nil
	}

	if err := s.db.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("project service: update project: %w", err)
	}

	s.logActivity(ctx, actorID, ActionUpdated, project.ID,
		fmt.Sprintf("Project %q updated", project.Name), map[string]any{"fields": updateKeys(updates)})

	return s.Get(ctx, id)
}

// SetArchived toggles the archived flag and logs an activity event.
func (s *ProjectService) SetArchived(ctx context.Context, actorID, id string, archived bool) (*models.Project, error) {
	ctx = ensureContext(ctx)

	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(project).Update("archived", archived).Error; err != nil {
		return nil, fmt.Errorf("project service: archive project: %w", err)
	}

	verb := "archived"
	if !archived {
		verb = "restored"
	}
	s.logActivity(ctx, actorID, ActionArchivedOp, project.ID,
		fmt.Sprintf("Project %q %s", project.Name, verb), nil)

	return s.Get(ctx, id)
}

// Delete removes a project and its dependent rows.
func (s *ProjectService) Delete(ctx context.Context, actorID, id string) error {
	ctx = ensureContext(ctx)

	project, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(project).Error; err != nil {
		return fmt.Errorf("project service: delete project: %w", err)
	}

	s.logActivity(ctx, actorID, ActionDeleted, project.ID,
		fmt.Sprintf("Project %q deleted", project.Name), nil)
	return nil
}

func (s *ProjectService) logActivity(ctx context.Context, actorID, action, entityID, message string, metadata map[string]any) {
	logActivity(ctx, s.activity, actorID, action, "projects", entityID, message, metadata)
}

func validProjectStatus(status string) bool {
	switch status {
	case models.ProjectStatusPlanning, models.ProjectStatusActive,
		models.ProjectStatusOnHold, models.ProjectStatusCompleted:
		return true
	}
	return false
}

func clampPercentage(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func updateKeys(updates map[string]any) []string {
	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	return keys
}
