package product

import (
	"context"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/product/dto"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Create(ctx context.Context, tx *sqlx.Tx, p *model.Product) error
	Update(ctx context.Context, tx *sqlx.Tx, p *model.Product) error

	// AdjustStock applies a signed delta to the denormalized counter. It
	// fails if the result would go negative.
	AdjustStock(ctx context.Context, tx *sqlx.Tx, productID string, delta int) error

	// Sync bookkeeping
	MarkSynced(ctx context.Context, id string, remoteID *string, serverStock *int) error
	Upsert(ctx context.Context, tx *sqlx.Tx, p *model.Product) error
}
