package dto

type CreateSupplierInput struct {
	Name  string
	Phone string
	Email string
}

type CreateOrderInput struct {
	SupplierID string
	Total      float64
}
