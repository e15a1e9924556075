package maintenance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sitedesk/sitedesk/internal/cache"
	"github.com/sitedesk/sitedesk/internal/database/testutil"
	"github.com/sitedesk/sitedesk/internal/models"
	"github.com/sitedesk/sitedesk/internal/services"
)

func TestRunOnceSweepsActivityAndCache(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	activity, err := services.NewActivityService(db, services.ActivityServiceOptions{RetentionMax: 2})
	require.NoError(t, err)
	materials, err := services.NewMaterialService(db, activity)
	require.NoError(t, err)
	store := cache.NewDatabaseStore(db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		event := models.ActivityEvent{
			Action:      services.ActionCreated,
			EntityTable: "projects",
			Message:     fmt.Sprintf("event %d", i),
		}
		require.NoError(t, db.Create(&event).Error)
		require.NoError(t, db.Model(&event).Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	require.NoError(t, store.Set(context.Background(), "stale", []byte("x"), time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	cleaner := NewCleaner(activity, materials, store)
	require.NoError(t, cleaner.RunOnce(context.Background()))

	var remaining int64
	require.NoError(t, db.Model(&models.ActivityEvent{}).Count(&remaining).Error)
	require.EqualValues(t, 2, remaining)

	_, found, err := store.Get(context.Background(), "stale")
	require.NoError(t, err)
	require.False(t, found)
}

func TestStartRegistersJobsAndStops(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	activity, err := services.NewActivityService(db, services.ActivityServiceOptions{})
	require.NoError(t, err)

	cleaner := NewCleaner(activity, nil, nil,
		WithSweepSchedule("@every 1h"),
		WithLowStockSchedule("@every 1h"),
		WithCacheSchedule("@every 1h"))

	require.NoError(t, cleaner.Start())
	<-cleaner.Stop().Done()
}
