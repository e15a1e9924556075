package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/middleware"
	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/pkg/response"
)

// ExpenseHandler exposes expense CRUD endpoints.
type ExpenseHandler struct {
	expenses *services.ExpenseService
}

// NewExpenseHandler constructs an ExpenseHandler.
func NewExpenseHandler(expenses *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

type createExpenseRequest struct {
	ProjectID   string    `json:"project_id" validate:"required"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	Category    string    `json:"category" validate:"required,max=64"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

type updateExpenseRequest struct {
	Amount      *float64   `json:"amount"`
	Category    *string    `json:"category"`
	Date        *time.Time `json:"date"`
	Description *string    `json:"description"`
}

// Create records an expense against a project.
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req createExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}

	expense, err := h.expenses.Create(requestContext(c), c.GetString(middleware.CtxUserIDKey), services.CreateExpenseInput{
		ProjectID:   req.ProjectID,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, expense)
}

// List returns expenses with optional project/category/date filters.
func (h *ExpenseHandler) List(c *gin.Context) {
	input := services.ListExpensesInput{
		ProjectID: c.Query("project_id"),
		Category:  c.Query("category"),
	}
	if from := parseDateQuery(c, "from"); !from.IsZero() {
		input.From = &from
	}
	if to := parseDateQuery(c, "to"); !to.IsZero() {
		input.To = &to
	}

	expenses, err := h.expenses.List(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, expenses)
}

// Update applies partial changes to an expense.
func (h *ExpenseHandler) Update(c *gin.Context) {
	var req updateExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}

	expense, err := h.expenses.Update(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("id"), services.UpdateExpenseInput{
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, expense)
}

// Delete removes an expense.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	if err := h.expenses.Delete(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
