package supplier

import (
	"context"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/supplier/dto"
)

type UseCase interface {
	CreateSupplier(ctx context.Context, input *dto.CreateSupplierInput) (*model.Supplier, error)
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.SupplierOrder, error)
	ListOrders(ctx context.Context, supplierID string) ([]model.SupplierOrder, error)
	MarkOrderReceived(ctx context.Context, orderID string) (*model.SupplierOrder, error)
}
