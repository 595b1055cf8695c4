package inventory

import (
	"context"

	"github.com/fekuna/omnipos-edge-agent/internal/inventory/dto"
	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Batches
	ActiveBatches(ctx context.Context, productID string) ([]model.ProductBatch, error)
	GetBatch(ctx context.Context, id string) (*model.ProductBatch, error)
	ExpiringBatches(ctx context.Context, before int) ([]model.ProductBatch, error)
	InsertBatch(ctx context.Context, tx *sqlx.Tx, b *model.ProductBatch) error
	DecrementBatch(ctx context.Context, tx *sqlx.Tx, batchID string, qty int) error
	IncrementBatch(ctx context.Context, tx *sqlx.Tx, batchID string, qty int) error
	UpsertBatch(ctx context.Context, tx *sqlx.Tx, b *model.ProductBatch) error
	MarkBatchSynced(ctx context.Context, id string) error

	// Movements / Audit
	InsertMovement(ctx context.Context, tx *sqlx.Tx, m *model.StockMovement) error
	ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error)
	UnsyncedMovementTotal(ctx context.Context, productID string) (int, error)
	MarkMovementSynced(ctx context.Context, id string) error
	UpsertMovement(ctx context.Context, tx *sqlx.Tx, m *model.StockMovement) error
}
