package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sitedesk/sitedesk/internal/database/testutil"
	"github.com/sitedesk/sitedesk/internal/models"
)

func newActivityService(t *testing.T, db *gorm.DB) *ActivityService {
	t.Helper()

	svc, err := NewActivityService(db, ActivityServiceOptions{})
	require.NoError(t, err)
	return svc
}

func seedUser(t *testing.T, db *gorm.DB, id, email string, roles ...string) models.User {
	t.Helper()

	user := models.User{
		BaseModel:    models.BaseModel{ID: id},
		Email:        email,
		Name:         email,
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	for _, role := range roles {
		require.NoError(t, db.Create(&models.UserRole{UserID: id, Role: role}).Error)
	}
	return user
}

func logEvent(t *testing.T, svc *ActivityService, action, message string) ActivityItemDTO {
	t.Helper()

	item, err := svc.Log(context.Background(), LogActivityInput{
		Action:      action,
		EntityTable: "projects",
		Message:     message,
	})
	require.NoError(t, err)
	return *item
}

func TestActivityListMergesOverlay(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newActivityService(t, db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "alice@example.com", models.RoleAdmin)

	first := logEvent(t, svc, ActionCreated, "Project Riverside created")
	second := logEvent(t, svc, ActionUpdated, "Project Riverside updated")

	_, err := svc.MarkRead(ctx, "user-1", first.ID, true)
	require.NoError(t, err)

	feed, err := svc.List(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, feed.Items, 2)

	// Newest first; untouched events default both timestamps to null.
	require.Equal(t, second.ID, feed.Items[0].ID)
	require.Nil(t, feed.Items[0].ReadAt)
	require.Nil(t, feed.Items[0].ArchivedAt)

	require.Equal(t, first.ID, feed.Items[1].ID)
	require.NotNil(t, feed.Items[1].ReadAt)
	require.Nil(t, feed.Items[1].ArchivedAt)

	require.Equal(t, 1, feed.UnreadCount)
}

func TestActivityUnreadCountExcludesArchived(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newActivityService(t, db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "alice@example.com")

	kept := logEvent(t, svc, ActionCreated, "one")
	archived := logEvent(t, svc, ActionCreated, "two")

	_, err := svc.SetArchived(ctx, "user-1", archived.ID, true)
	require.NoError(t, err)

	feed, err := svc.List(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Equal(t, 1, feed.UnreadCount)

	// Active and archived partition the item set.
	var active, archivedCount int
	for _, item := range feed.Items {
		if item.ArchivedAt != nil {
			archivedCount++
		} else {
			active++
		}
	}
	require.Equal(t, 1, active)
	require.Equal(t, 1, archivedCount)
	_ = kept
}

func TestActivityMarkReadIsIdempotent(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newActivityService(t, db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "alice@example.com")
	event := logEvent(t, svc, ActionCreated, "one")

	first, err := svc.MarkRead(ctx, "user-1", event.ID, true)
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)

	second, err := svc.MarkRead(ctx, "user-1", event.ID, true)
	require.NoError(t, err)
	require.NotNil(t, second.ReadAt)

	// Still exactly one state row for the pair.
	var count int64
	require.NoError(t, db.Model(&models.ActivityEventState{}).
		Where("user_id = ? AND event_id = ?", "user-1", event.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	// Unread round-trips back to null.
	cleared, err := svc.MarkRead(ctx, "user-1", event.ID, false)
	require.NoError(t, err)
	require.Nil(t, cleared.ReadAt)
}

func TestActivityArchiveLeavesReadUntouched(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newActivityService(t, db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "alice@example.com")
	event := logEvent(t, svc, ActionCreated, "one")

	_, err := svc.MarkRead(ctx, "user-1", event.ID, true)
	require.NoError(t, err)

	archived, err := svc.SetArchived(ctx, "user-1", event.ID, true)
	require.NoError(t, err)
	require.NotNil(t, archived.ArchivedAt)
	require.NotNil(t, archived.ReadAt)

	restored, err := svc.SetArchived(ctx, "user-1", event.ID, false)
	require.NoError(t, err)
	require.Nil(t, restored.ArchivedAt)
	require.NotNil(t, restored.ReadAt)
}

func TestActivityMarkAllReadTouchesOnlyActiveUnread(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newActivityService(t, db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "alice@example.com")

	unread := logEvent(t, svc, ActionCreated, "unread")
	read := logEvent(t, svc, ActionCreated, "read")
	archived := logEvent(t, svc, ActionCreated, "archived")

	_, err := svc.MarkRead(ctx, "user-1", read.ID, true)
	require.NoError(t, err)
	_, err = svc.SetArchived(ctx, "user-1", archived.ID, true)
	require.NoError(t, err)

	touched, err := svc.MarkAllRead(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 1, touched)

	feed, err := svc.List(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Equal(t, 0, feed.UnreadCount)

	for _, item := range feed.Items {
		if item.ID == archived.ID {
			// Archived items are skipped entirely.
			require.Nil(t, item.ReadAt)
		}
		if item.ID == unread.ID {
			require.NotNil(t, item.ReadAt)
		}
	}

	// A second call finds nothing to touch.
	touched, err = svc.MarkAllRead(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 0, touched)
}

func TestActivityListEmptyUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newActivityService(t, db)

	feed, err := svc.List(context.Background(), "", 0)
	require.NoError(t, err)
	require.Empty(t, feed.Items)
	require.Equal(t, 0, feed.UnreadCount)

	feed, err = svc.List(context.Background(), "nobody", 0)
	require.NoError(t, err)
	require.Empty(t, feed.Items)
}

func TestActivityMarkReadUnknownEvent(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newActivityService(t, db)

	_, err := svc.MarkRead(context.Background(), "user-1", "missing", true)
	require.Error(t, err)
}

func TestActivityStatesAreScopedPerUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newActivityService(t, db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "alice@example.com")
	seedUser(t, db, "user-2", "bob@example.com")

	event := logEvent(t, svc, ActionCreated, "shared")

	_, err := svc.MarkRead(ctx, "user-1", event.ID, true)
	require.NoError(t, err)

	feed, err := svc.List(ctx, "user-2", 0)
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	require.Nil(t, feed.Items[0].ReadAt)
	require.Equal(t, 1, feed.UnreadCount)
}

func TestActivityLowStockDedupe(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newActivityService(t, db)
	ctx := context.Background()

	material := models.Material{
		Name:              "Cement",
		Category:          "consumable",
		Quantity:          2,
		LowStockThreshold: 5,
	}
	require.NoError(t, db.Create(&material).Error)

	require.NoError(t, svc.LogLowStock(ctx, &material))
	require.NoError(t, svc.LogLowStock(ctx, &material))

	var count int64
	require.NoError(t, db.Model(&models.ActivityEvent{}).
		Where("action = ?", ActionLowStock).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestActivityRetentionSweep(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewActivityService(db, ActivityServiceOptions{RetentionMax: 3})
	require.NoError(t, err)
	ctx := context.Background()

	seedUser(t, db, "user-1", "alice@example.com")

	// Stagger created_at so ordering is deterministic.
	base := time.Now().Add(-time.Hour)
	var oldest string
	for i := 0; i < 5; i++ {
		event := models.ActivityEvent{
			Action:      ActionCreated,
			EntityTable: "projects",
			Message:     "event",
		}
		event.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&event).Error)
		if i == 0 {
			oldest = event.ID
		}
	}

	_, err = svc.MarkRead(ctx, "user-1", oldest, true)
	require.NoError(t, err)

	removed, err := svc.RetentionSweep(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	var events int64
	require.NoError(t, db.Model(&models.ActivityEvent{}).Count(&events).Error)
	require.EqualValues(t, 3, events)

	// Overlay rows for swept events are removed too.
	var states int64
	require.NoError(t, db.Model(&models.ActivityEventState{}).Count(&states).Error)
	require.EqualValues(t, 0, states)
}
