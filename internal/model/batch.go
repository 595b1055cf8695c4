package model

import "time"

// ProductBatch is a received inventory lot with its own expiration date,
// tracked separately from the aggregate Product.Stock counter.
type ProductBatch struct {
	BaseModel
	ProductID      string    `db:"product_id" json:"product_id"`
	LotNumber      string    `db:"lot_number" json:"lot_number"`
	ExpirationDate time.Time `db:"expiration_date" json:"expiration_date"`
	Quantity       int       `db:"quantity" json:"quantity"` // Remaining
	InitialQty     int       `db:"initial_qty" json:"initial_qty"`
	UnitCost       float64   `db:"unit_cost" json:"unit_cost"`
	ReceivedDate   time.Time `db:"received_date" json:"received_date"`
	Synced         bool      `db:"synced" json:"synced"`
}
