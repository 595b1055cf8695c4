package sync

import (
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
)

// Wire types mirror the remote API, which speaks camelCase. The local
// replica speaks snake_case throughout, so every entity crossing the sync
// boundary goes through one of the translations below - nothing else in the
// codebase knows the remote field names.

type WireProduct struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Barcode   *string   `json:"barcode"`
	Stock     int       `json:"stock"`
	MinStock  int       `json:"minStock"`
	Price     float64   `json:"price"`
	BuyPrice  float64   `json:"buyPrice"`
	RemoteID  *string   `json:"remoteId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WireBatch struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"productId"`
	LotNumber      string    `json:"lotNumber"`
	ExpirationDate time.Time `json:"expirationDate"`
	Quantity       int       `json:"quantity"`
	InitialQty     int       `json:"initialQty"`
	UnitCost       float64   `json:"unitCost"`
	ReceivedDate   time.Time `json:"receivedDate"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type WireSaleItem struct {
	ID        string  `json:"id"`
	SaleID    string  `json:"saleId"`
	ProductID string  `json:"productId"`
	BatchID   *string `json:"batchId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type WireSale struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId"`
	Total         float64        `json:"total"`
	PaymentMethod string         `json:"paymentMethod"`
	PaymentStatus string         `json:"paymentStatus"`
	AmountPaid    float64        `json:"amountPaid"`
	AmountDue     float64        `json:"amountDue"`
	EditCount     int            `json:"editCount"`
	ModifiedAt    *time.Time     `json:"modifiedAt"`
	Items         []WireSaleItem `json:"items"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type WireMovement struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"productId"`
	MovementType   string    `json:"movementType"`
	QuantityChange int       `json:"quantityChange"`
	Reason         string    `json:"reason"`
	UserID         *string   `json:"userId"`
	CreatedAt      time.Time `json:"createdAt"`
}

type WireSupplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WireSupplierOrder struct {
	ID         string    `json:"id"`
	SupplierID string    `json:"supplierId"`
	Status     string    `json:"status"`
	Total      float64   `json:"total"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type WireExpense struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WireCreditPayment struct {
	ID        string    `json:"id"`
	SaleID    string    `json:"saleId"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PushRequest wraps one outbox entry. The client-minted entity id is the
// idempotency key: the server treats re-delivery of the same id as a no-op
// upsert.
type PushRequest struct {
	EntityType string      `json:"entityType"`
	Action     string      `json:"action"`
	ClientID   string      `json:"clientId"`
	Payload    interface{} `json:"payload"`
}

// PushResponse carries back any canonical fields the server assigned.
type PushResponse struct {
	Success     bool      `json:"success"`
	RemoteID    *string   `json:"remoteId"`
	ServerStock *int      `json:"serverStock"`
	ServerTime  time.Time `json:"serverTime"`
	Message     string    `json:"message"`
}

type PullData struct {
	Products       []WireProduct       `json:"products"`
	ProductBatches []WireBatch         `json:"productBatches"`
	Sales          []WireSale          `json:"sales"`
	StockMovements []WireMovement      `json:"stockMovements"`
	Suppliers      []WireSupplier      `json:"suppliers"`
	SupplierOrders []WireSupplierOrder `json:"supplierOrders"`
	Expenses       []WireExpense       `json:"expenses"`
	CreditPayments []WireCreditPayment `json:"creditPayments"`
}

type PullResponse struct {
	Success    bool      `json:"success"`
	Data       PullData  `json:"data"`
	ServerTime time.Time `json:"serverTime"`
}

func productToWire(p *model.Product) WireProduct {
	return WireProduct{
		ID:        p.ID,
		Name:      p.Name,
		Barcode:   p.Barcode,
		Stock:     p.Stock,
		MinStock:  p.MinStock,
		Price:     p.Price,
		BuyPrice:  p.BuyPrice,
		RemoteID:  p.RemoteID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func productFromWire(w *WireProduct) *model.Product {
	return &model.Product{
		BaseModel: model.BaseModel{ID: w.ID, CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt},
		Name:      w.Name,
		Barcode:   w.Barcode,
		Stock:     w.Stock,
		MinStock:  w.MinStock,
		Price:     w.Price,
		BuyPrice:  w.BuyPrice,
		RemoteID:  w.RemoteID,
		// A pulled record is the server's word: stock and server stock agree.
		ServerStock: w.Stock,
		Synced:      true,
	}
}

func batchToWire(b *model.ProductBatch) WireBatch {
	return WireBatch{
		ID:             b.ID,
		ProductID:      b.ProductID,
		LotNumber:      b.LotNumber,
		ExpirationDate: b.ExpirationDate,
		Quantity:       b.Quantity,
		InitialQty:     b.InitialQty,
		UnitCost:       b.UnitCost,
		ReceivedDate:   b.ReceivedDate,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func batchFromWire(w *WireBatch) *model.ProductBatch {
	return &model.ProductBatch{
		BaseModel:      model.BaseModel{ID: w.ID, CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt},
		ProductID:      w.ProductID,
		LotNumber:      w.LotNumber,
		ExpirationDate: w.ExpirationDate,
		Quantity:       w.Quantity,
		InitialQty:     w.InitialQty,
		UnitCost:       w.UnitCost,
		ReceivedDate:   w.ReceivedDate,
		Synced:         true,
	}
}

func saleToWire(s *model.Sale) WireSale {
	items := make([]WireSaleItem, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, WireSaleItem{
			ID:        it.ID,
			SaleID:    it.SaleID,
			ProductID: it.ProductID,
			BatchID:   it.BatchID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return WireSale{
		ID:            s.ID,
		UserID:        s.UserID,
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		PaymentStatus: s.PaymentStatus,
		AmountPaid:    s.AmountPaid,
		AmountDue:     s.AmountDue,
		EditCount:     s.EditCount,
		ModifiedAt:    s.ModifiedAt,
		Items:         items,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func saleFromWire(w *WireSale) *model.Sale {
	items := make([]model.SaleItem, 0, len(w.Items))
	for _, it := range w.Items {
		items = append(items, model.SaleItem{
			ID:        it.ID,
			SaleID:    it.SaleID,
			ProductID: it.ProductID,
			BatchID:   it.BatchID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return &model.Sale{
		BaseModel:     model.BaseModel{ID: w.ID, CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt},
		UserID:        w.UserID,
		Total:         w.Total,
		PaymentMethod: w.PaymentMethod,
		PaymentStatus: w.PaymentStatus,
		AmountPaid:    w.AmountPaid,
		AmountDue:     w.AmountDue,
		EditCount:     w.EditCount,
		ModifiedAt:    w.ModifiedAt,
		Synced:        true,
		Items:         items,
	}
}

func movementToWire(m *model.StockMovement) WireMovement {
	return WireMovement{
		ID:             m.ID,
		ProductID:      m.ProductID,
		MovementType:   m.MovementType,
		QuantityChange: m.QuantityChange,
		Reason:         m.Reason,
		UserID:         m.UserID,
		CreatedAt:      m.CreatedAt,
	}
}

func movementFromWire(w *WireMovement) *model.StockMovement {
	return &model.StockMovement{
		ID:             w.ID,
		ProductID:      w.ProductID,
		MovementType:   w.MovementType,
		QuantityChange: w.QuantityChange,
		Reason:         w.Reason,
		UserID:         w.UserID,
		Synced:         true,
		CreatedAt:      w.CreatedAt,
	}
}

func supplierToWire(s *model.Supplier) WireSupplier {
	return WireSupplier{
		ID:        s.ID,
		Name:      s.Name,
		Phone:     s.Phone,
		Email:     s.Email,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func supplierFromWire(w *WireSupplier) *model.Supplier {
	return &model.Supplier{
		BaseModel: model.BaseModel{ID: w.ID, CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt},
		Name:      w.Name,
		Phone:     w.Phone,
		Email:     w.Email,
		Synced:    true,
	}
}

func supplierOrderToWire(o *model.SupplierOrder) WireSupplierOrder {
	return WireSupplierOrder{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		Status:     o.Status,
		Total:      o.Total,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func supplierOrderFromWire(w *WireSupplierOrder) *model.SupplierOrder {
	return &model.SupplierOrder{
		BaseModel:  model.BaseModel{ID: w.ID, CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt},
		SupplierID: w.SupplierID,
		Status:     w.Status,
		Total:      w.Total,
		Synced:     true,
	}
}

func expenseToWire(e *model.Expense) WireExpense {
	return WireExpense{
		ID:        e.ID,
		Label:     e.Label,
		Category:  e.Category,
		Amount:    e.Amount,
		UserID:    e.UserID,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func expenseFromWire(w *WireExpense) *model.Expense {
	return &model.Expense{
		BaseModel: model.BaseModel{ID: w.ID, CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt},
		Label:     w.Label,
		Category:  w.Category,
		Amount:    w.Amount,
		UserID:    w.UserID,
		Synced:    true,
	}
}

func creditPaymentToWire(c *model.CreditPayment) WireCreditPayment {
	return WireCreditPayment{
		ID:        c.ID,
		SaleID:    c.SaleID,
		Amount:    c.Amount,
		Method:    c.Method,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func creditPaymentFromWire(w *WireCreditPayment) *model.CreditPayment {
	return &model.CreditPayment{
		BaseModel: model.BaseModel{ID: w.ID, CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt},
		SaleID:    w.SaleID,
		Amount:    w.Amount,
		Method:    w.Method,
		UserID:    w.UserID,
		Synced:    true,
	}
}
