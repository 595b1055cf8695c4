package dto

import "time"

type SaleFilters struct {
	UserID        string
	PaymentStatus string
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	PageSize      int
}
