package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/pkg/errors"
	"github.com/sitedesk/sitedesk/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// ReportHandler exposes spreadsheet and PDF report downloads.
type ReportHandler struct {
	reports *services.ReportService
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Financial renders the expense report in the requested format
// (`?format=xlsx` or `?format=pdf`, default xlsx).
func (h *ReportHandler) Financial(c *gin.Context) {
	from := parseDateQuery(c, "from")
	to := parseDateQuery(c, "to")

	switch reportFormat(c) {
	case "xlsx":
		data, err := h.reports.FinancialReportXLSX(requestContext(c), from, to)
		if err != nil {
			response.Error(c, err)
			return
		}
		sendAttachment(c, data, contentTypeXLSX, "financial-report.xlsx")
	case "pdf":
		data, err := h.reports.FinancialReportPDF(requestContext(c), from, to)
		if err != nil {
			response.Error(c, err)
			return
		}
		sendAttachment(c, data, contentTypePDF, "financial-report.pdf")
	default:
		response.Error(c, errors.NewBadRequest("format must be xlsx or pdf"))
	}
}

// ProjectSummary renders the per-project budget report.
func (h *ReportHandler) ProjectSummary(c *gin.Context) {
	switch reportFormat(c) {
	case "xlsx":
		data, err := h.reports.ProjectSummaryXLSX(requestContext(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		sendAttachment(c, data, contentTypeXLSX, "project-summary.xlsx")
	case "pdf":
		data, err := h.reports.ProjectSummaryPDF(requestContext(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		sendAttachment(c, data, contentTypePDF, "project-summary.pdf")
	default:
		response.Error(c, errors.NewBadRequest("format must be xlsx or pdf"))
	}
}

func reportFormat(c *gin.Context) string {
	format := c.DefaultQuery("format", "xlsx")
	if format != "xlsx" && format != "pdf" {
		return ""
	}
	return format
}

func sendAttachment(c *gin.Context, data []byte, contentType, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", len(data)))
	c.Header("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	c.Data(http.StatusOK, contentType, data)
}
