package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-edge-agent/internal/supplier"
	"github.com/fekuna/omnipos-edge-agent/internal/supplier/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SupplierHandler struct {
	uc     supplier.UseCase
	logger *zap.Logger
}

func NewSupplierHandler(uc supplier.UseCase, log *zap.Logger) *SupplierHandler {
	return &SupplierHandler{
		uc:     uc,
		logger: log,
	}
}

type createSupplierRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req createSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.uc.CreateSupplier(c.Request.Context(), &dto.CreateSupplierInput{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		h.logger.Error("failed to create supplier", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, s)
}

func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.uc.ListSuppliers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suppliers": suppliers})
}

type createOrderRequest struct {
	SupplierID string  `json:"supplier_id" binding:"required"`
	Total      float64 `json:"total"`
}

func (h *SupplierHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.uc.CreateOrder(c.Request.Context(), &dto.CreateOrderInput{
		SupplierID: req.SupplierID,
		Total:      req.Total,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *SupplierHandler) ListOrders(c *gin.Context) {
	orders, err := h.uc.ListOrders(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *SupplierHandler) MarkOrderReceived(c *gin.Context) {
	order, err := h.uc.MarkOrderReceived(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, order)
}
