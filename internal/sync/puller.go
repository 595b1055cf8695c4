package sync

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-edge-agent/internal/expense"
	"github.com/fekuna/omnipos-edge-agent/internal/inventory"
	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/outbox"
	"github.com/fekuna/omnipos-edge-agent/internal/product"
	"github.com/fekuna/omnipos-edge-agent/internal/sale"
	"github.com/fekuna/omnipos-edge-agent/internal/store"
	"github.com/fekuna/omnipos-edge-agent/internal/supplier"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Puller merges server snapshots into the local replica. Incoming records
// lose to a pending outbox entry for the same entity (local unsynced work is
// never regressed) and to a newer local row (last writer wins).
type Puller struct {
	store     *store.Store
	state     *StateRepository
	outbox    outbox.Repository
	client    Client
	products  product.Repository
	inventory inventory.Repository
	sales     sale.Repository
	suppliers supplier.Repository
	expenses  expense.Repository
	logger    *zap.Logger
}

func NewPuller(s *store.Store, state *StateRepository, ob outbox.Repository, client Client,
	products product.Repository, inv inventory.Repository, sales sale.Repository,
	suppliers supplier.Repository, expenses expense.Repository, log *zap.Logger) *Puller {
	return &Puller{
		store:     s,
		state:     state,
		outbox:    ob,
		client:    client,
		products:  products,
		inventory: inv,
		sales:     sales,
		suppliers: suppliers,
		expenses:  expenses,
		logger:    log,
	}
}

// InitialSync bootstraps an empty replica from a full role-filtered server
// snapshot. Every record lands with synced = true and the watermark starts
// at the server time that produced the snapshot.
func (p *Puller) InitialSync(ctx context.Context, role string) error {
	resp, err := p.client.Pull(ctx, nil, role)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("initial sync rejected by server")
	}

	if err := p.merge(ctx, &resp.Data); err != nil {
		return err
	}
	if err := p.state.SetRole(ctx, role); err != nil {
		return err
	}
	if err := p.state.AdvanceWatermark(ctx, resp.ServerTime); err != nil {
		return err
	}

	p.logger.Info("initial sync complete",
		zap.String("role", role),
		zap.Int("products", len(resp.Data.Products)),
		zap.Int("sales", len(resp.Data.Sales)),
		zap.Time("watermark", resp.ServerTime),
	)
	return nil
}

// IncrementalSync pulls everything newer than the watermark and merges it.
// Empty arrays are a valid "no changes" answer.
func (p *Puller) IncrementalSync(ctx context.Context) error {
	since, err := p.state.Watermark(ctx)
	if err != nil {
		return err
	}
	role, err := p.state.Role(ctx)
	if err != nil {
		return err
	}

	resp, err := p.client.Pull(ctx, since, role)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("incremental pull rejected by server")
	}

	if err := p.merge(ctx, &resp.Data); err != nil {
		return err
	}
	return p.state.AdvanceWatermark(ctx, resp.ServerTime)
}

// merge applies one pull payload in a single transaction, reference data
// first so foreign keys resolve. Pending-outbox checks run before the
// transaction opens; staleness is enforced by the upserts themselves.
func (p *Puller) merge(ctx context.Context, data *PullData) error {
	suppliers, err := p.filterSuppliers(ctx, data.Suppliers)
	if err != nil {
		return err
	}
	products, err := p.filterProducts(ctx, data.Products)
	if err != nil {
		return err
	}
	batches, err := p.filterBatches(ctx, data.ProductBatches)
	if err != nil {
		return err
	}
	orders, err := p.filterOrders(ctx, data.SupplierOrders)
	if err != nil {
		return err
	}
	sales, err := p.filterSales(ctx, data.Sales)
	if err != nil {
		return err
	}
	expenses, err := p.filterExpenses(ctx, data.Expenses)
	if err != nil {
		return err
	}
	credits, err := p.filterCredits(ctx, data.CreditPayments)
	if err != nil {
		return err
	}

	return p.store.InTx(ctx, func(tx *sqlx.Tx) error {
		for i := range suppliers {
			if err := p.suppliers.Upsert(ctx, tx, &suppliers[i]); err != nil {
				return err
			}
		}
		for i := range products {
			if err := p.products.Upsert(ctx, tx, &products[i]); err != nil {
				return err
			}
		}
		for i := range batches {
			if err := p.inventory.UpsertBatch(ctx, tx, &batches[i]); err != nil {
				return err
			}
		}
		for i := range orders {
			if err := p.suppliers.UpsertOrder(ctx, tx, &orders[i]); err != nil {
				return err
			}
		}
		for i := range sales {
			if err := p.sales.Upsert(ctx, tx, &sales[i]); err != nil {
				return err
			}
		}
		for _, w := range data.StockMovements {
			// Append-only: re-pulled movements are no-ops.
			if err := p.inventory.UpsertMovement(ctx, tx, movementFromWire(&w)); err != nil {
				return err
			}
		}
		for i := range expenses {
			if err := p.expenses.Upsert(ctx, tx, &expenses[i]); err != nil {
				return err
			}
		}
		for i := range credits {
			if err := p.sales.UpsertCreditPayment(ctx, tx, &credits[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Puller) skip(ctx context.Context, entityType, id string) (bool, error) {
	pending, err := p.outbox.HasPending(ctx, entityType, id)
	if err != nil {
		return false, err
	}
	if pending {
		p.logger.Debug("pull skipped, local change pending",
			zap.String("entity_type", entityType), zap.String("entity_id", id))
	}
	return pending, nil
}

func (p *Puller) filterSuppliers(ctx context.Context, in []WireSupplier) ([]model.Supplier, error) {
	out := make([]model.Supplier, 0, len(in))
	for _, w := range in {
		pending, err := p.skip(ctx, model.EntitySupplier, w.ID)
		if err != nil {
			return nil, err
		}
		if !pending {
			out = append(out, *supplierFromWire(&w))
		}
	}
	return out, nil
}

func (p *Puller) filterProducts(ctx context.Context, in []WireProduct) ([]model.Product, error) {
	out := make([]model.Product, 0, len(in))
	for _, w := range in {
		pending, err := p.skip(ctx, model.EntityProduct, w.ID)
		if err != nil {
			return nil, err
		}
		if !pending {
			out = append(out, *productFromWire(&w))
		}
	}
	return out, nil
}

func (p *Puller) filterBatches(ctx context.Context, in []WireBatch) ([]model.ProductBatch, error) {
	out := make([]model.ProductBatch, 0, len(in))
	for _, w := range in {
		pending, err := p.skip(ctx, model.EntityProductBatch, w.ID)
		if err != nil {
			return nil, err
		}
		if !pending {
			out = append(out, *batchFromWire(&w))
		}
	}
	return out, nil
}

func (p *Puller) filterOrders(ctx context.Context, in []WireSupplierOrder) ([]model.SupplierOrder, error) {
	out := make([]model.SupplierOrder, 0, len(in))
	for _, w := range in {
		pending, err := p.skip(ctx, model.EntitySupplierOrder, w.ID)
		if err != nil {
			return nil, err
		}
		if !pending {
			out = append(out, *supplierOrderFromWire(&w))
		}
	}
	return out, nil
}

func (p *Puller) filterSales(ctx context.Context, in []WireSale) ([]model.Sale, error) {
	out := make([]model.Sale, 0, len(in))
	for _, w := range in {
		pending, err := p.skip(ctx, model.EntitySale, w.ID)
		if err != nil {
			return nil, err
		}
		if !pending {
			out = append(out, *saleFromWire(&w))
		}
	}
	return out, nil
}

func (p *Puller) filterExpenses(ctx context.Context, in []WireExpense) ([]model.Expense, error) {
	out := make([]model.Expense, 0, len(in))
	for _, w := range in {
		pending, err := p.skip(ctx, model.EntityExpense, w.ID)
		if err != nil {
			return nil, err
		}
		if !pending {
			out = append(out, *expenseFromWire(&w))
		}
	}
	return out, nil
}

func (p *Puller) filterCredits(ctx context.Context, in []WireCreditPayment) ([]model.CreditPayment, error) {
	out := make([]model.CreditPayment, 0, len(in))
	for _, w := range in {
		pending, err := p.skip(ctx, model.EntityCreditPayment, w.ID)
		if err != nil {
			return nil, err
		}
		if !pending {
			out = append(out, *creditPaymentFromWire(&w))
		}
	}
	return out, nil
}
