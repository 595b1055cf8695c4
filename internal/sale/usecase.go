package sale

import (
	"context"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/sale/dto"
)

type UseCase interface {
	// CreateSale allocates stock FEFO and commits the sale, its items, the
	// batch decrements, the SALE movements and the outbox entry as one
	// transaction. It never commits a partial sale: insufficient stock on
	// any line aborts the whole thing before a single write.
	CreateSale(ctx context.Context, input *dto.CreateSaleInput) (*model.Sale, error)
	EditSale(ctx context.Context, input *dto.EditSaleInput) (*model.Sale, error)
	RecordCreditPayment(ctx context.Context, input *dto.CreditPaymentInput) (*model.CreditPayment, error)
	GetSale(ctx context.Context, id string) (*model.Sale, error)
	ListSales(ctx context.Context, filters *dto.SaleFilters) ([]model.Sale, int, error)
}
