package inventory

import (
	"context"

	"github.com/fekuna/omnipos-edge-agent/internal/inventory/dto"
	"github.com/fekuna/omnipos-edge-agent/internal/model"
)

type UseCase interface {
	ReceiveBatch(ctx context.Context, input *dto.ReceiveBatchInput) (*model.ProductBatch, error)
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.StockMovement, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
	ListExpiring(ctx context.Context, withinDays int) ([]model.ProductBatch, error)

	// CheckDrift compares the movement ledger against the denormalized stock
	// counter. A drifted report is a data-integrity warning for the operator;
	// nothing is ever corrected automatically.
	CheckDrift(ctx context.Context, productID string) (*dto.DriftReport, error)
}
