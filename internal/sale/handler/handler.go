package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/auth"
	"github.com/fekuna/omnipos-edge-agent/internal/inventory"
	"github.com/fekuna/omnipos-edge-agent/internal/sale"
	"github.com/fekuna/omnipos-edge-agent/internal/sale/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SaleHandler struct {
	uc     sale.UseCase
	logger *zap.Logger
}

func NewSaleHandler(uc sale.UseCase, log *zap.Logger) *SaleHandler {
	return &SaleHandler{
		uc:     uc,
		logger: log,
	}
}

type saleItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unit_price"`
}

type createSaleRequest struct {
	PaymentMethod string            `json:"payment_method" binding:"required"`
	AmountPaid    float64           `json:"amount_paid"`
	Items         []saleItemRequest `json:"items" binding:"required,min=1"`
}

func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := auth.FromContext(c.Request.Context())
	input := &dto.CreateSaleInput{
		UserID:        user.UserID,
		PaymentMethod: req.PaymentMethod,
		AmountPaid:    req.AmountPaid,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, dto.SaleItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	s, err := h.uc.CreateSale(c.Request.Context(), input)
	if err != nil {
		var insufficient *inventory.InsufficientStockError
		if errors.As(err, &insufficient) {
			c.JSON(http.StatusConflict, gin.H{
				"error":      insufficient.Error(),
				"product_id": insufficient.ProductID,
				"available":  insufficient.Available,
				"requested":  insufficient.Requested,
			})
			return
		}
		h.logger.Error("failed to create sale", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, s)
}

type editSaleRequest struct {
	Quantities map[string]int `json:"quantities" binding:"required"`
	AmountPaid *float64       `json:"amount_paid"`
}

func (h *SaleHandler) EditSale(c *gin.Context) {
	var req editSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := auth.FromContext(c.Request.Context())
	input := &dto.EditSaleInput{
		SaleID:     c.Param("id"),
		UserID:     user.UserID,
		Quantities: req.Quantities,
		AmountPaid: req.AmountPaid,
	}

	s, err := h.uc.EditSale(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s)
}

type creditPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Method string  `json:"method" binding:"required"`
}

func (h *SaleHandler) RecordCreditPayment(c *gin.Context) {
	var req creditPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := auth.FromContext(c.Request.Context())
	input := &dto.CreditPaymentInput{
		SaleID: c.Param("id"),
		Amount: req.Amount,
		Method: req.Method,
		UserID: user.UserID,
	}

	payment, err := h.uc.RecordCreditPayment(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, payment)
}

func (h *SaleHandler) GetSale(c *gin.Context) {
	s, err := h.uc.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
		return
	}

	c.JSON(http.StatusOK, s)
}

func (h *SaleHandler) ListSales(c *gin.Context) {
	filters := &dto.SaleFilters{
		UserID:        c.Query("user_id"),
		PaymentStatus: c.Query("payment_status"),
		Page:          queryInt(c, "page", 1),
		PageSize:      queryInt(c, "page_size", 20),
	}
	if t, err := time.Parse(time.RFC3339, c.Query("start_date")); err == nil {
		filters.StartDate = &t
	}
	if t, err := time.Parse(time.RFC3339, c.Query("end_date")); err == nil {
		filters.EndDate = &t
	}

	sales, count, err := h.uc.ListSales(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sales": sales, "total": count})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
