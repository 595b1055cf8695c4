package model

type Expense struct {
	BaseModel
	Label    string  `db:"label" json:"label"`
	Category string  `db:"category" json:"category"`
	Amount   float64 `db:"amount" json:"amount"`
	UserID   string  `db:"user_id" json:"user_id"`
	Synced   bool    `db:"synced" json:"synced"`
}

type CreditPayment struct {
	BaseModel
	SaleID string  `db:"sale_id" json:"sale_id"`
	Amount float64 `db:"amount" json:"amount"`
	Method string  `db:"method" json:"method"`
	UserID string  `db:"user_id" json:"user_id"`
	Synced bool    `db:"synced" json:"synced"`
}
