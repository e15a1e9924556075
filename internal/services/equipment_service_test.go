package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitedesk/sitedesk/internal/database/testutil"
	"github.com/sitedesk/sitedesk/internal/models"
)

func TestEquipmentCreateUnavailablePersists(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	activity := newActivityService(t, db)
	svc, err := NewEquipmentService(db, activity)
	require.NoError(t, err)
	ctx := context.Background()

	item, err := svc.Create(ctx, "user-1", CreateEquipmentInput{
		Name:      "Excavator",
		Type:      "heavy",
		Condition: "good",
		Available: false,
	})
	require.NoError(t, err)
	require.False(t, item.Available)

	var stored models.Equipment
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	require.False(t, stored.Available)

	// An in-use machine must not show up in the available-only listing.
	available, err := svc.List(ctx, "", "", true)
	require.NoError(t, err)
	require.Empty(t, available)

	all, err := svc.List(ctx, "", "", false)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestEquipmentAvailabilityToggle(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	activity := newActivityService(t, db)
	svc, err := NewEquipmentService(db, activity)
	require.NoError(t, err)
	ctx := context.Background()

	item, err := svc.Create(ctx, "user-1", CreateEquipmentInput{
		Name:      "Crane",
		Type:      "heavy",
		Condition: "good",
		Available: true,
	})
	require.NoError(t, err)
	require.True(t, item.Available)

	unavailable := false
	updated, err := svc.Update(ctx, "user-1", item.ID, UpdateEquipmentInput{Available: &unavailable})
	require.NoError(t, err)
	require.False(t, updated.Available)

	reloaded, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	require.False(t, reloaded.Available)
}
