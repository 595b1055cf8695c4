package dto

import "time"

type MovementFilters struct {
	ProductID    string
	MovementType string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}

// DriftReport compares the denormalized stock counter against the movement
// ledger. Drift means the two disagree; it is surfaced, never auto-corrected.
type DriftReport struct {
	ProductID     string `json:"product_id"`
	Stock         int    `json:"stock"`
	ServerStock   int    `json:"server_stock"`
	UnsyncedDelta int    `json:"unsynced_delta"` // Sum of unsynced movement quantity changes
}

// Drifted reports whether the ledger and the counter disagree.
func (r *DriftReport) Drifted() bool {
	return r.UnsyncedDelta != r.Stock-r.ServerStock
}
