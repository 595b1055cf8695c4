package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-edge-agent/internal/product"
	"github.com/fekuna/omnipos-edge-agent/internal/product/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductHandler struct {
	uc     product.UseCase
	logger *zap.Logger
}

func NewProductHandler(uc product.UseCase, log *zap.Logger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

type createProductRequest struct {
	Name     string  `json:"name" binding:"required"`
	Barcode  string  `json:"barcode"`
	MinStock int     `json:"min_stock"`
	Price    float64 `json:"price" binding:"required"`
	BuyPrice float64 `json:"buy_price"`
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := &dto.CreateProductInput{
		Name:     req.Name,
		Barcode:  req.Barcode,
		MinStock: req.MinStock,
		Price:    req.Price,
		BuyPrice: req.BuyPrice,
	}

	p, err := h.uc.CreateProduct(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := &dto.UpdateProductInput{
		ID:       c.Param("id"),
		Name:     req.Name,
		Barcode:  req.Barcode,
		MinStock: req.MinStock,
		Price:    req.Price,
		BuyPrice: req.BuyPrice,
	}

	p, err := h.uc.UpdateProduct(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.uc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	filters := &dto.ProductFilters{
		SearchQuery: c.Query("q"),
		LowStock:    c.Query("low_stock") == "true",
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "page_size", 20),
	}

	products, count, err := h.uc.ListProducts(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":  products,
		"total":     count,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

func (h *ProductHandler) ListLowStock(c *gin.Context) {
	products, count, err := h.uc.ListLowStock(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "total": count})
}

// Helper
func queryInt(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
