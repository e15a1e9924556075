package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sitedesk/sitedesk/internal/database/testutil"
	"github.com/sitedesk/sitedesk/internal/models"
	apperrors "github.com/sitedesk/sitedesk/pkg/errors"
)

func TestProjectLifecycle(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	activity := newActivityService(t, db)
	svc, err := NewProjectService(db, activity)
	require.NoError(t, err)
	ctx := context.Background()

	project, err := svc.Create(ctx, "user-1", CreateProjectInput{
		Name:       "Riverside Apartments",
		ClientName: "Acme Corp",
		Location:   "Riverside",
		Budget:     500000,
		StartDate:  time.Now(),
		EndDate:    time.Now().AddDate(1, 0, 0),
	})
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusPlanning, project.Status)

	status := models.ProjectStatusActive
	progress := 140
	updated, err := svc.Update(ctx, "user-1", project.ID, UpdateProjectInput{
		Status:             &status,
		ProgressPercentage: &progress,
	})
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusActive, updated.Status)
	require.Equal(t, 100, updated.ProgressPercentage)

	// Archived projects drop out of the default listing.
	_, err = svc.SetArchived(ctx, "user-1", project.ID, true)
	require.NoError(t, err)

	visible, err := svc.List(ctx, ListProjectsInput{})
	require.NoError(t, err)
	require.Empty(t, visible)

	all, err := svc.List(ctx, ListProjectsInput{IncludeArchived: true})
	require.NoError(t, err)
	require.Len(t, all, 1)

	// Every mutation appended an activity event.
	var events int64
	require.NoError(t, db.Model(&models.ActivityEvent{}).
		Where("entity_table = ?", "projects").
		Count(&events).Error)
	require.EqualValues(t, 3, events)
}

func TestProjectValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewProjectService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, "user-1", CreateProjectInput{Name: "  "})
	require.Error(t, err)

	_, err = svc.Create(ctx, "user-1", CreateProjectInput{Name: "X", Status: "Demolished"})
	require.Error(t, err)

	_, err = svc.Get(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
