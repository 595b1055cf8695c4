package supplier

import (
	"context"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Supplier, error)
	FindAll(ctx context.Context) ([]model.Supplier, error)
	Create(ctx context.Context, tx *sqlx.Tx, s *model.Supplier) error
	Update(ctx context.Context, tx *sqlx.Tx, s *model.Supplier) error
	Upsert(ctx context.Context, tx *sqlx.Tx, s *model.Supplier) error
	MarkSynced(ctx context.Context, id string) error

	GetOrder(ctx context.Context, id string) (*model.SupplierOrder, error)
	ListOrders(ctx context.Context, supplierID string) ([]model.SupplierOrder, error)
	CreateOrder(ctx context.Context, tx *sqlx.Tx, o *model.SupplierOrder) error
	UpdateOrder(ctx context.Context, tx *sqlx.Tx, o *model.SupplierOrder) error
	UpsertOrder(ctx context.Context, tx *sqlx.Tx, o *model.SupplierOrder) error
	MarkOrderSynced(ctx context.Context, id string) error
}
