package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sitedesk/sitedesk/internal/database/testutil"
	"github.com/sitedesk/sitedesk/internal/models"
)

func TestReportRendering(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewReportService(db)
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Now().UTC()
	project := models.Project{
		Name: "Harbour Bridge", ClientName: "City", Location: "Harbour",
		Status: models.ProjectStatusActive, Budget: 10000, StartDate: now, EndDate: now,
	}
	require.NoError(t, db.Create(&project).Error)
	require.NoError(t, db.Create(&models.Expense{
		ProjectID: project.ID, Amount: 1234.56, Category: "labour", Date: now, Description: "crew wages",
	}).Error)

	xlsx, err := svc.FinancialReportXLSX(ctx, now.AddDate(0, -1, 0), now.AddDate(0, 1, 0))
	require.NoError(t, err)
	// XLSX files are zip archives.
	require.True(t, bytes.HasPrefix(xlsx, []byte("PK")))

	pdf, err := svc.FinancialReportPDF(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	summaryXLSX, err := svc.ProjectSummaryXLSX(ctx)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(summaryXLSX, []byte("PK")))

	summaryPDF, err := svc.ProjectSummaryPDF(ctx)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(summaryPDF, []byte("%PDF")))
}
