package expense

import (
	"net/http"

	"github.com/fekuna/omnipos-edge-agent/internal/auth"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	uc *UseCase
}

func NewHandler(uc *UseCase) *Handler {
	return &Handler{uc: uc}
}

type recordExpenseRequest struct {
	Label    string  `json:"label" binding:"required"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
}

func (h *Handler) RecordExpense(c *gin.Context) {
	var req recordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := auth.FromContext(c.Request.Context())
	e, err := h.uc.RecordExpense(c.Request.Context(), req.Label, req.Category, req.Amount, user.UserID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, e)
}

func (h *Handler) ListExpenses(c *gin.Context) {
	expenses, err := h.uc.ListExpenses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}
