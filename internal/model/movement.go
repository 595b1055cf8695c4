package model

import "time"

const (
	MovementSale           = "SALE"
	MovementReceipt        = "RECEIPT"
	MovementAdjustment     = "ADJUSTMENT"
	MovementSaleEdit       = "SALE_EDIT"
	MovementDamaged        = "DAMAGED"
	MovementExpired        = "EXPIRED"
	MovementSupplierReturn = "SUPPLIER_RETURN"
	MovementInventory      = "INVENTORY"
)

// StockMovement is append-only. Product.Stock is updated in the same
// transaction as every insert, so folding all movements over the last
// server-acknowledged stock must reproduce the current counter.
type StockMovement struct {
	ID             string    `db:"id" json:"id"`
	ProductID      string    `db:"product_id" json:"product_id"`
	MovementType   string    `db:"movement_type" json:"movement_type"`
	QuantityChange int       `db:"quantity_change" json:"quantity_change"` // Signed
	Reason         string    `db:"reason" json:"reason"`
	UserID         *string   `db:"user_id" json:"user_id"`
	Synced         bool      `db:"synced" json:"synced"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
