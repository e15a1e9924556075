package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/sitedesk/sitedesk/internal/models"
)

// ReportService renders financial and project reports as Excel and PDF files.
type ReportService struct {
	db *gorm.DB
}

// NewReportService constructs a ReportService.
func NewReportService(db *gorm.DB) (*ReportService, error) {
	if db == nil {
		return nil, errors.New("report service: db is required")
	}
	return &ReportService{db: db}, nil
}

type financialRow struct {
	Date        time.Time
	ProjectName string
	Category    string
	Description string
	Amount      float64
}

func (s *ReportService) financialRows(ctx context.Context, from, to time.Time) ([]financialRow, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("expenses.date, projects.name AS project_name, expenses.category, expenses.description, expenses.amount").
		Joins("JOIN projects ON projects.id = expenses.project_id").
		Order("expenses.date ASC")
	if !from.IsZero() {
		query = query.Where("expenses.date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("expenses.date <= ?", to)
	}

	var rows []financialRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("report service: load expenses: %w", err)
	}
	return rows, nil
}

// FinancialReportXLSX renders date-ranged expenses as an Excel workbook.
func (s *ReportService) FinancialReportXLSX(ctx context.Context, from, to time.Time) ([]byte, error) {
	ctx = ensureContext(ctx)

	rows, err := s.financialRows(ctx, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Financial Report"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Project", "Category", "Description", "Amount"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("report service: write header: %w", err)
		}
	}

	var total float64
	for i, row := range rows {
		values := []any{
			row.Date.Format("2006-01-02"),
			row.ProjectName,
			row.Category,
			row.Description,
			row.Amount,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("report service: write row: %w", err)
			}
		}
		total += row.Amount
	}

	totalLabel, _ := excelize.CoordinatesToCellName(4, len(rows)+3)
	totalCell, _ := excelize.CoordinatesToCellName(5, len(rows)+3)
	if err := f.SetCellValue(sheet, totalLabel, "Total"); err != nil {
		return nil, fmt.Errorf("report service: write total: %w", err)
	}
	if err := f.SetCellValue(sheet, totalCell, total); err != nil {
		return nil, fmt.Errorf("report service: write total: %w", err)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("report service: render workbook: %w", err)
	}
	return buffer.Bytes(), nil
}

// FinancialReportPDF renders date-ranged expenses as a PDF document.
func (s *ReportService) FinancialReportPDF(ctx context.Context, from, to time.Time) ([]byte, error) {
	ctx = ensureContext(ctx)

	rows, err := s.financialRows(ctx, from, to)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Financial Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 10)
	widths := []float64{25, 55, 30, 55, 25}
	headers := []string{"Date", "Project", "Category", "Description", "Amount"}
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	var total float64
	for _, row := range rows {
		pdf.CellFormat(widths[0], 6, row.Date.Format("2006-01-02"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, row.ProjectName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, row.Category, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, row.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", row.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
		total += row.Amount
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3], 7, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 7, fmt.Sprintf("%.2f", total), "1", 0, "R", false, 0, "")

	var buffer bytes.Buffer
	if err := pdf.Output(&buffer); err != nil {
		return nil, fmt.Errorf("report service: render pdf: %w", err)
	}
	return buffer.Bytes(), nil
}

// ProjectSummaryXLSX renders per-project budget versus spend as a workbook.
func (s *ReportService) ProjectSummaryXLSX(ctx context.Context) ([]byte, error) {
	ctx = ensureContext(ctx)

	summaries, err := s.projectSummaries(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Project Summary"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Project", "Client", "Status", "Progress %", "Budget", "Spent", "Remaining"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("report service: write header: %w", err)
		}
	}

	for i, summary := range summaries {
		values := []any{
			summary.Name,
			summary.ClientName,
			summary.Status,
			summary.Progress,
			summary.Budget,
			summary.Spent,
			summary.Budget - summary.Spent,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("report service: write row: %w", err)
			}
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("report service: render workbook: %w", err)
	}
	return buffer.Bytes(), nil
}

// ProjectSummaryPDF renders per-project budget versus spend as a PDF document.
func (s *ReportService) ProjectSummaryPDF(ctx context.Context) ([]byte, error) {
	ctx = ensureContext(ctx)

	summaries, err := s.projectSummaries(ctx)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Project Summary")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 10)
	widths := []float64{50, 40, 25, 25, 25, 25}
	headers := []string{"Project", "Client", "Status", "Budget", "Spent", "Remaining"}
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, summary := range summaries {
		pdf.CellFormat(widths[0], 6, summary.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, summary.ClientName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, summary.Status, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.2f", summary.Budget), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", summary.Spent), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, fmt.Sprintf("%.2f", summary.Budget-summary.Spent), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buffer bytes.Buffer
	if err := pdf.Output(&buffer); err != nil {
		return nil, fmt.Errorf("report service: render pdf: %w", err)
	}
	return buffer.Bytes(), nil
}

type projectSummary struct {
	Name       string
	ClientName string
	Status     string
	Progress   int
	Budget     float64
	Spent      float64
}

func (s *ReportService) projectSummaries(ctx context.Context) ([]projectSummary, error) {
	var projects []models.Project
	if err := s.db.WithContext(ctx).
		Where("archived = ?", false).
		Order("name ASC").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("report service: load projects: %w", err)
	}

	summaries := make([]projectSummary, 0, len(projects))
	for _, project := range projects {
		var spent float64
		if err := s.db.WithContext(ctx).Model(&models.Expense{}).
			Where("project_id = ?", project.ID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&spent).Error; err != nil {
			return nil, fmt.Errorf("report service: sum project spend: %w", err)
		}
		summaries = append(summaries, projectSummary{
			Name:       project.Name,
			ClientName: project.ClientName,
			Status:     project.Status,
			Progress:   project.ProgressPercentage,
			Budget:     project.Budget,
			Spent:      spent,
		})
	}
	return summaries, nil
}
