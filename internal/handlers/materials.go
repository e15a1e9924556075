package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/middleware"
	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/pkg/response"
)

// MaterialHandler exposes inventory and stock movement endpoints.
type MaterialHandler struct {
	materials *services.MaterialService
}

// NewMaterialHandler constructs a MaterialHandler.
func NewMaterialHandler(materials *services.MaterialService) *MaterialHandler {
	return &MaterialHandler{materials: materials}
}

type createMaterialRequest struct {
	Name              string  `json:"name" validate:"required,max=255"`
	Category          string  `json:"category" validate:"required,max=64"`
	Quantity          float64 `json:"quantity" validate:"gte=0"`
	UnitCost          float64 `json:"unit_cost" validate:"gte=0"`
	LowStockThreshold float64 `json:"low_stock_threshold" validate:"gte=0"`
	Supplier          string  `json:"supplier"`
	ProjectID         *string `json:"project_id"`
}

type updateMaterialRequest struct {
	Name              *string  `json:"name"`
	Category          *string  `json:"category"`
	UnitCost          *float64 `json:"unit_cost"`
	LowStockThreshold *float64 `json:"low_stock_threshold"`
	Supplier          *string  `json:"supplier"`
	ProjectID         *string  `json:"project_id"`
}

type recordTransactionRequest struct {
	TransactionType string    `json:"transaction_type" validate:"required"`
	Quantity        float64   `json:"quantity" validate:"gte=0"`
	UnitCost        *float64  `json:"unit_cost"`
	ProjectID       *string   `json:"project_id"`
	Note            string    `json:"note"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Create adds an inventory item.
func (h *MaterialHandler) Create(c *gin.Context) {
	var req createMaterialRequest
	if !bindAndValidate(c, &req) {
		return
	}

	material, err := h.materials.Create(requestContext(c), c.GetString(middleware.CtxUserIDKey), services.CreateMaterialInput{
		Name:              req.Name,
		Category:          req.Category,
		Quantity:          req.Quantity,
		UnitCost:          req.UnitCost,
		LowStockThreshold: req.LowStockThreshold,
		Supplier:          req.Supplier,
		ProjectID:         req.ProjectID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, material)
}

// List returns inventory items with optional filters.
func (h *MaterialHandler) List(c *gin.Context) {
	materials, err := h.materials.List(requestContext(c), c.Query("category"), c.Query("project_id"), parseBoolQuery(c, "low_stock"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, materials)
}

// Get returns a single inventory item.
func (h *MaterialHandler) Get(c *gin.Context) {
	material, err := h.materials.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, material)
}

// Update changes item attributes. Quantity moves only through transactions.
func (h *MaterialHandler) Update(c *gin.Context) {
	var req updateMaterialRequest
	if !bindAndValidate(c, &req) {
		return
	}

	material, err := h.materials.Update(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("id"), services.UpdateMaterialInput{
		Name:              req.Name,
		Category:          req.Category,
		UnitCost:          req.UnitCost,
		LowStockThreshold: req.LowStockThreshold,
		Supplier:          req.Supplier,
		ProjectID:         req.ProjectID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, material)
}

// Delete removes an inventory item.
func (h *MaterialHandler) Delete(c *gin.Context) {
	if err := h.materials.Delete(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// RecordTransaction applies a stock movement to the item.
func (h *MaterialHandler) RecordTransaction(c *gin.Context) {
	var req recordTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	transaction, err := h.materials.RecordTransaction(requestContext(c), c.GetString(middleware.CtxUserIDKey), services.RecordTransactionInput{
		MaterialID:      c.Param("id"),
		ProjectID:       req.ProjectID,
		TransactionType: req.TransactionType,
		Quantity:        req.Quantity,
		UnitCost:        req.UnitCost,
		Note:            req.Note,
		OccurredAt:      req.OccurredAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, transaction)
}

// Transactions returns the movement history for an item.
func (h *MaterialHandler) Transactions(c *gin.Context) {
	transactions, err := h.materials.Transactions(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, transactions)
}
