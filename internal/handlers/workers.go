package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/middleware"
	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/pkg/response"
)

// WorkerHandler exposes worker, attendance and payment endpoints.
type WorkerHandler struct {
	workers *services.WorkerService
}

// NewWorkerHandler constructs a WorkerHandler.
func NewWorkerHandler(workers *services.WorkerService) *WorkerHandler {
	return &WorkerHandler{workers: workers}
}

type createWorkerRequest struct {
	Name      string  `json:"name" validate:"required,max=255"`
	Role      string  `json:"role" validate:"required,max=64"`
	DailyRate float64 `json:"daily_rate" validate:"gte=0"`
	ProjectID *string `json:"project_id"`
}

type updateWorkerRequest struct {
	Name      *string  `json:"name"`
	Role      *string  `json:"role"`
	DailyRate *float64 `json:"daily_rate"`
	ProjectID *string  `json:"project_id"`
}

type markAttendanceRequest struct {
	Date    time.Time `json:"date" validate:"required"`
	Present bool      `json:"present"`
}

type recordPaymentRequest struct {
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

// Create registers a worker.
func (h *WorkerHandler) Create(c *gin.Context) {
	var req createWorkerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	worker, err := h.workers.Create(requestContext(c), c.GetString(middleware.CtxUserIDKey), services.CreateWorkerInput{
		Name:      req.Name,
		Role:      req.Role,
		DailyRate: req.DailyRate,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, worker)
}

// List returns workers, optionally scoped to a project.
func (h *WorkerHandler) List(c *gin.Context) {
	workers, err := h.workers.List(requestContext(c), c.Query("project_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, workers)
}

// Get returns a single worker.
func (h *WorkerHandler) Get(c *gin.Context) {
	worker, err := h.workers.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, worker)
}

// Update applies partial changes to a worker.
func (h *WorkerHandler) Update(c *gin.Context) {
	var req updateWorkerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	worker, err := h.workers.Update(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("id"), services.UpdateWorkerInput{
		Name:      req.Name,
		Role:      req.Role,
		DailyRate: req.DailyRate,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, worker)
}

// Delete removes a worker.
func (h *WorkerHandler) Delete(c *gin.Context) {
	if err := h.workers.Delete(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// MarkAttendance upserts the presence flag for the worker on a day.
func (h *WorkerHandler) MarkAttendance(c *gin.Context) {
	var req markAttendanceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	record, err := h.workers.MarkAttendance(requestContext(c), services.MarkAttendanceInput{
		WorkerID: c.Param("id"),
		Date:     req.Date,
		Present:  req.Present,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, record)
}

// Attendance returns attendance records for a worker in a date range.
func (h *WorkerHandler) Attendance(c *gin.Context) {
	from := parseDateQuery(c, "from")
	to := parseDateQuery(c, "to")

	records, err := h.workers.Attendance(requestContext(c), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, records)
}

// RecordPayment stores a wage payment for the worker.
func (h *WorkerHandler) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	payment, err := h.workers.RecordPayment(requestContext(c), c.GetString(middleware.CtxUserIDKey), services.RecordPaymentInput{
		WorkerID:    c.Param("id"),
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, payment)
}

// Payments returns wage payments for the worker.
func (h *WorkerHandler) Payments(c *gin.Context) {
	payments, err := h.workers.Payments(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, payments)
}
