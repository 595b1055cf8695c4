package model

type Supplier struct {
	BaseModel
	Name   string  `db:"name" json:"name"`
	Phone  *string `db:"phone" json:"phone"`
	Email  *string `db:"email" json:"email"`
	Synced bool    `db:"synced" json:"synced"`
}

const (
	SupplierOrderPending  = "pending"
	SupplierOrderReceived = "received"
)

type SupplierOrder struct {
	BaseModel
	SupplierID string  `db:"supplier_id" json:"supplier_id"`
	Status     string  `db:"status" json:"status"`
	Total      float64 `db:"total" json:"total"`
	Synced     bool    `db:"synced" json:"synced"`
}
