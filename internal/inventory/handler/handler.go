package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/auth"
	"github.com/fekuna/omnipos-edge-agent/internal/inventory"
	"github.com/fekuna/omnipos-edge-agent/internal/inventory/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger *zap.Logger
}

func NewInventoryHandler(uc inventory.UseCase, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

type receiveBatchRequest struct {
	ProductID      string    `json:"product_id" binding:"required"`
	LotNumber      string    `json:"lot_number" binding:"required"`
	ExpirationDate time.Time `json:"expiration_date" binding:"required"`
	Quantity       int       `json:"quantity" binding:"required,gt=0"`
	UnitCost       float64   `json:"unit_cost"`
	ReceivedDate   time.Time `json:"received_date"`
}

func (h *InventoryHandler) ReceiveBatch(c *gin.Context) {
	var req receiveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := auth.FromContext(c.Request.Context())
	input := &dto.ReceiveBatchInput{
		ProductID:      req.ProductID,
		LotNumber:      req.LotNumber,
		ExpirationDate: req.ExpirationDate,
		Quantity:       req.Quantity,
		UnitCost:       req.UnitCost,
		ReceivedDate:   req.ReceivedDate,
		UserID:         user.UserID,
	}

	batch, err := h.uc.ReceiveBatch(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("failed to receive batch", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, batch)
}

type adjustStockRequest struct {
	ProductID      string `json:"product_id" binding:"required"`
	BatchID        string `json:"batch_id"`
	MovementType   string `json:"movement_type" binding:"required"`
	QuantityChange int    `json:"quantity_change" binding:"required"`
	Reason         string `json:"reason"`
}

func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := auth.FromContext(c.Request.Context())
	input := &dto.AdjustStockInput{
		ProductID:      req.ProductID,
		BatchID:        req.BatchID,
		MovementType:   req.MovementType,
		QuantityChange: req.QuantityChange,
		Reason:         req.Reason,
		UserID:         user.UserID,
	}

	mov, err := h.uc.AdjustStock(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, mov)
}

func (h *InventoryHandler) ListMovements(c *gin.Context) {
	filters := &dto.MovementFilters{
		ProductID:    c.Query("product_id"),
		MovementType: c.Query("movement_type"),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "page_size", 50),
	}

	movements, count, err := h.uc.ListMovements(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"movements": movements, "total": count})
}

func (h *InventoryHandler) ListExpiring(c *gin.Context) {
	days := queryInt(c, "days", 30)

	batches, err := h.uc.ListExpiring(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"batches": batches, "within_days": days})
}

func (h *InventoryHandler) CheckDrift(c *gin.Context) {
	report, err := h.uc.CheckDrift(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report, "drifted": report.Drifted()})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
