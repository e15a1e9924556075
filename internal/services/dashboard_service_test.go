package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sitedesk/sitedesk/internal/database/testutil"
	"github.com/sitedesk/sitedesk/internal/models"
)

func TestDashboardStats(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewDashboardService(db)
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Now().UTC()
	projects := []models.Project{
		{Name: "A", ClientName: "c", Location: "l", Status: models.ProjectStatusActive, Budget: 1000, StartDate: now, EndDate: now},
		{Name: "B", ClientName: "c", Location: "l", Status: models.ProjectStatusPlanning, Budget: 500, StartDate: now, EndDate: now},
		{Name: "C", ClientName: "c", Location: "l", Status: models.ProjectStatusActive, Budget: 900, StartDate: now, EndDate: now, Archived: true},
	}
	for i := range projects {
		require.NoError(t, db.Create(&projects[i]).Error)
	}

	expenses := []models.Expense{
		{ProjectID: projects[0].ID, Amount: 100, Category: "labour", Date: now},
		{ProjectID: projects[0].ID, Amount: 50, Category: "materials", Date: now.AddDate(0, -1, 0)},
		{ProjectID: projects[1].ID, Amount: 25, Category: "labour", Date: now},
	}
	for i := range expenses {
		require.NoError(t, db.Create(&expenses[i]).Error)
	}

	require.NoError(t, db.Create(&models.Material{Name: "Cement", Category: "c", Quantity: 2, LowStockThreshold: 5}).Error)
	require.NoError(t, db.Create(&models.Equipment{Name: "Crane", Type: "heavy", Condition: "good", Available: false}).Error)
	require.NoError(t, db.Create(&models.Worker{Name: "Omar", Role: "mason", DailyRate: 100}).Error)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	require.EqualValues(t, 1, stats.ActiveProjects)
	require.EqualValues(t, 1500, stats.TotalBudget)
	require.EqualValues(t, 175, stats.TotalSpent)
	require.EqualValues(t, 1, stats.LowStockCount)
	require.EqualValues(t, 1, stats.EquipmentInUse)
	require.EqualValues(t, 1, stats.WorkerCount)

	require.EqualValues(t, 1, stats.ProjectsByStatus[models.ProjectStatusActive])
	require.EqualValues(t, 1, stats.ProjectsByStatus[models.ProjectStatusPlanning])

	require.Len(t, stats.ExpensesByMonth, 2)
	require.Len(t, stats.ExpensesByCategory, 2)

	var labour float64
	for _, bucket := range stats.ExpensesByCategory {
		if bucket.Category == "labour" {
			labour = bucket.Total
		}
	}
	require.EqualValues(t, 125, labour)
}
