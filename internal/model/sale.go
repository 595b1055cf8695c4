package model

import "time"

const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPartial = "partial"
	PaymentStatusUnpaid  = "unpaid"
)

type Sale struct {
	BaseModel
	UserID        string     `db:"user_id" json:"user_id"`
	Total         float64    `db:"total" json:"total"`
	PaymentMethod string     `db:"payment_method" json:"payment_method"`
	PaymentStatus string     `db:"payment_status" json:"payment_status"`
	AmountPaid    float64    `db:"amount_paid" json:"amount_paid"`
	AmountDue     float64    `db:"amount_due" json:"amount_due"`
	EditCount     int        `db:"edit_count" json:"edit_count"`
	ModifiedAt    *time.Time `db:"modified_at" json:"modified_at"`
	Synced        bool       `db:"synced" json:"synced"`
	Items         []SaleItem `db:"-" json:"items"` // Loaded separately, not a column
}

type SaleItem struct {
	ID        string  `db:"id" json:"id"`
	SaleID    string  `db:"sale_id" json:"sale_id"`
	ProductID string  `db:"product_id" json:"product_id"`
	BatchID   *string `db:"batch_id" json:"batch_id"` // FEFO traceability, nullable
	Quantity  int     `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
}
