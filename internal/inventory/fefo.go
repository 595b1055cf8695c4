package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
)

// Allocation is one slice of a FEFO plan: take Quantity units from BatchID.
type Allocation struct {
	BatchID        string    `json:"batch_id"`
	LotNumber      string    `json:"lot_number"`
	ExpirationDate time.Time `json:"expiration_date"`
	Quantity       int       `json:"quantity"`
}

// InsufficientStockError is returned when the batches cannot cover the
// requested quantity. Nothing has been allocated when it is returned.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available=%d requested=%d",
		e.ProductID, e.Available, e.Requested)
}

// Allocate builds a first-expired-first-out plan against a batch snapshot.
// Pure function: it never mutates the batches, and it either returns a plan
// summing exactly to requested or fails with *InsufficientStockError.
//
// Ordering is deterministic: expiration date ascending, then received date
// ascending, then batch id ascending. The explicit tie-breaks make the plan
// reproducible from the same snapshot regardless of input order.
func Allocate(productID string, batches []model.ProductBatch, requested int) ([]Allocation, error) {
	if requested <= 0 {
		return nil, fmt.Errorf("requested quantity must be positive, got %d", requested)
	}

	candidates := make([]model.ProductBatch, 0, len(batches))
	available := 0
	for _, b := range batches {
		if b.Quantity <= 0 {
			continue
		}
		candidates = append(candidates, b)
		available += b.Quantity
	}

	if available < requested {
		return nil, &InsufficientStockError{
			ProductID: productID,
			Available: available,
			Requested: requested,
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.ExpirationDate.Equal(b.ExpirationDate) {
			return a.ExpirationDate.Before(b.ExpirationDate)
		}
		if !a.ReceivedDate.Equal(b.ReceivedDate) {
			return a.ReceivedDate.Before(b.ReceivedDate)
		}
		return a.ID < b.ID
	})

	var plan []Allocation
	remaining := requested
	for _, b := range candidates {
		if remaining == 0 {
			break
		}
		take := b.Quantity
		if take > remaining {
			take = remaining
		}
		plan = append(plan, Allocation{
			BatchID:        b.ID,
			LotNumber:      b.LotNumber,
			ExpirationDate: b.ExpirationDate,
			Quantity:       take,
		})
		remaining -= take
	}

	return plan, nil
}
