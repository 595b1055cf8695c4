package server

import (
	"context"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/auth"
	expensePkg "github.com/fekuna/omnipos-edge-agent/internal/expense"
	invHandler "github.com/fekuna/omnipos-edge-agent/internal/inventory/handler"
	prodHandler "github.com/fekuna/omnipos-edge-agent/internal/product/handler"
	saleHandler "github.com/fekuna/omnipos-edge-agent/internal/sale/handler"
	supHandler "github.com/fekuna/omnipos-edge-agent/internal/supplier/handler"
	syncPkg "github.com/fekuna/omnipos-edge-agent/internal/sync"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Config struct {
	Addr   string
	AppEnv string
}

// Server is the local HTTP surface the POS frontend talks to. It binds on
// loopback: the agent is not a public service, the desktop shell is its only
// client. Every request is served from the local replica, connectivity or not.
type Server struct {
	cfg    Config
	http   *http.Server
	logger *zap.Logger
}

type Handlers struct {
	Products  *prodHandler.ProductHandler
	Inventory *invHandler.InventoryHandler
	Sales     *saleHandler.SaleHandler
	Suppliers *supHandler.SupplierHandler
	Expenses  *expensePkg.Handler
	Runner    *syncPkg.Runner
}

func New(cfg Config, h Handlers, log *zap.Logger) *Server {
	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(userContext())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.Products.ListProducts)
		v1.GET("/products/low-stock", h.Products.ListLowStock)
		v1.GET("/products/:id", h.Products.GetProduct)

		v1.POST("/sales", h.Sales.CreateSale)
		v1.GET("/sales", h.Sales.ListSales)
		v1.GET("/sales/:id", h.Sales.GetSale)
		v1.POST("/sales/:id/payments", h.Sales.RecordCreditPayment)

		v1.GET("/batches/expiring", h.Inventory.ListExpiring)
		v1.GET("/movements", h.Inventory.ListMovements)

		v1.GET("/sync/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, h.Runner.Status())
		})
		v1.POST("/sync/trigger", func(c *gin.Context) {
			h.Runner.TriggerSync()
			c.JSON(http.StatusAccepted, gin.H{"message": "sync requested"})
		})
	}

	admin := v1.Group("", requireRole(auth.RoleAdmin))
	{
		admin.POST("/products", h.Products.CreateProduct)
		admin.PUT("/products/:id", h.Products.UpdateProduct)

		admin.POST("/batches", h.Inventory.ReceiveBatch)
		admin.POST("/stock/adjust", h.Inventory.AdjustStock)
		admin.GET("/products/:id/drift", h.Inventory.CheckDrift)

		admin.PATCH("/sales/:id", h.Sales.EditSale)

		admin.POST("/suppliers", h.Suppliers.CreateSupplier)
		admin.GET("/suppliers", h.Suppliers.ListSuppliers)
		admin.POST("/supplier-orders", h.Suppliers.CreateOrder)
		admin.GET("/suppliers/:id/orders", h.Suppliers.ListOrders)
		admin.POST("/supplier-orders/:id/receive", h.Suppliers.MarkOrderReceived)

		admin.POST("/expenses", h.Expenses.RecordExpense)
		admin.GET("/expenses", h.Expenses.ListExpenses)
	}

	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		logger: log,
	}
}

func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.cfg.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// userContext stamps the acting user onto the request context. The desktop
// shell authenticates locally and passes identity in headers; the agent
// trusts them because it only listens on loopback.
func userContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.UserContext{
			UserID: c.GetHeader("X-User-ID"),
			Role:   c.GetHeader("X-User-Role"),
		}
		if user.Role == "" {
			user.Role = auth.RoleCashier
		}
		c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), user))
		c.Next()
	}
}

func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.FromContext(c.Request.Context()).Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}
