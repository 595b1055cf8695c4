package dto

import "time"

type ReceiveBatchInput struct {
	ProductID      string
	LotNumber      string
	ExpirationDate time.Time
	Quantity       int
	UnitCost       float64
	ReceivedDate   time.Time
	UserID         string
}

type AdjustStockInput struct {
	ProductID      string
	BatchID        string // Optional: also decrement a specific lot
	MovementType   string // ADJUSTMENT, DAMAGED, EXPIRED, SUPPLIER_RETURN, INVENTORY
	QuantityChange int    // Signed
	Reason         string
	UserID         string
}
