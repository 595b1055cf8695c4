package sale

import (
	"context"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/sale/dto"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	InsertSale(ctx context.Context, tx *sqlx.Tx, s *model.Sale) error
	InsertItem(ctx context.Context, tx *sqlx.Tx, item *model.SaleItem) error
	UpdateSale(ctx context.Context, tx *sqlx.Tx, s *model.Sale) error
	UpdateItemQuantity(ctx context.Context, tx *sqlx.Tx, itemID string, quantity int) error
	DeleteItem(ctx context.Context, tx *sqlx.Tx, itemID string) error

	// GetSale loads a sale with its items.
	GetSale(ctx context.Context, id string) (*model.Sale, error)
	ListSales(ctx context.Context, f *dto.SaleFilters) ([]model.Sale, int, error)

	MarkSynced(ctx context.Context, id string) error
	Upsert(ctx context.Context, tx *sqlx.Tx, s *model.Sale) error

	InsertCreditPayment(ctx context.Context, tx *sqlx.Tx, c *model.CreditPayment) error
	MarkCreditPaymentSynced(ctx context.Context, id string) error
	UpsertCreditPayment(ctx context.Context, tx *sqlx.Tx, c *model.CreditPayment) error
}
