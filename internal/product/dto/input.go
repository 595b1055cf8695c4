package dto

type CreateProductInput struct {
	Name     string
	Barcode  string
	MinStock int
	Price    float64
	BuyPrice float64
}

type UpdateProductInput struct {
	ID       string
	Name     string
	Barcode  string
	MinStock int
	Price    float64
	BuyPrice float64
}
