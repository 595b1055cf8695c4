package dto

type SaleItemInput struct {
	ProductID string
	Quantity  int
	UnitPrice float64
}

type CreateSaleInput struct {
	UserID        string
	PaymentMethod string
	AmountPaid    float64
	Items         []SaleItemInput
}

type EditSaleInput struct {
	SaleID string
	UserID string
	// Quantities maps sale item id to its new quantity. A quantity of zero
	// removes the line and returns its stock.
	Quantities map[string]int
	AmountPaid *float64
}

type CreditPaymentInput struct {
	SaleID string
	Amount float64
	Method string
	UserID string
}
