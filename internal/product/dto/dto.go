package dto

type ProductFilters struct {
	SearchQuery string
	LowStock    bool // stock <= min_stock
	Page        int
	PageSize    int
}
