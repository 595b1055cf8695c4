package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/inventory"
	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/outbox"
	"github.com/fekuna/omnipos-edge-agent/internal/product"
	"github.com/fekuna/omnipos-edge-agent/internal/sale"
	"github.com/fekuna/omnipos-edge-agent/internal/sale/dto"
	"github.com/fekuna/omnipos-edge-agent/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type saleUseCase struct {
	store     *store.Store
	repo      sale.Repository
	products  product.Repository
	inventory inventory.Repository
	outbox    outbox.Repository
	logger    *zap.Logger
}

func NewSaleUseCase(s *store.Store, repo sale.Repository, products product.Repository, inv inventory.Repository, ob outbox.Repository, log *zap.Logger) sale.UseCase {
	return &saleUseCase{
		store:     s,
		repo:      repo,
		products:  products,
		inventory: inv,
		outbox:    ob,
		logger:    log,
	}
}

// linePlan is a per-line FEFO plan computed before any write happens.
type linePlan struct {
	input dto.SaleItemInput
	plan  []inventory.Allocation
}

func (uc *saleUseCase) CreateSale(ctx context.Context, input *dto.CreateSaleInput) (*model.Sale, error) {
	if len(input.Items) == 0 {
		return nil, errors.New("sale has no items")
	}

	// 1. Build the full allocation plan first. Allocation is pure, so a
	// failure on the third line leaves nothing to undo. The snapshot is
	// fetched once per product and earlier lines' allocations are deducted
	// from it, so two lines for the same product never claim the same units.
	snapshots := make(map[string][]model.ProductBatch)
	plans := make([]linePlan, 0, len(input.Items))
	for _, item := range input.Items {
		batches, ok := snapshots[item.ProductID]
		if !ok {
			var err error
			batches, err = uc.inventory.ActiveBatches(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
		}
		plan, err := inventory.Allocate(item.ProductID, batches, item.Quantity)
		if err != nil {
			return nil, err
		}
		snapshots[item.ProductID] = consume(batches, plan)
		plans = append(plans, linePlan{input: item, plan: plan})
	}

	now := time.Now().UTC()
	total := 0.0
	for _, item := range input.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}

	s := &model.Sale{
		BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		UserID:        input.UserID,
		Total:         total,
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: paymentStatus(total, input.AmountPaid),
		AmountPaid:    input.AmountPaid,
		AmountDue:     total - input.AmountPaid,
	}
	if s.AmountDue < 0 {
		s.AmountDue = 0
	}

	userID := input.UserID

	// 2. Apply the plan atomically. Batch decrements are guarded, so if a
	// concurrent write consumed a batch between snapshot and here, the
	// transaction rolls back instead of overselling.
	err := uc.store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := uc.repo.InsertSale(ctx, tx, s); err != nil {
			return err
		}

		for _, lp := range plans {
			for _, alloc := range lp.plan {
				batchID := alloc.BatchID
				item := model.SaleItem{
					ID:        uuid.New().String(),
					SaleID:    s.ID,
					ProductID: lp.input.ProductID,
					BatchID:   &batchID,
					Quantity:  alloc.Quantity,
					UnitPrice: lp.input.UnitPrice,
				}
				if err := uc.repo.InsertItem(ctx, tx, &item); err != nil {
					return err
				}
				s.Items = append(s.Items, item)

				if err := uc.inventory.DecrementBatch(ctx, tx, alloc.BatchID, alloc.Quantity); err != nil {
					return err
				}
			}

			movement := &model.StockMovement{
				ID:             uuid.New().String(),
				ProductID:      lp.input.ProductID,
				MovementType:   model.MovementSale,
				QuantityChange: -lp.input.Quantity,
				Reason:         fmt.Sprintf("sale %s", s.ID),
				UserID:         &userID,
				CreatedAt:      now,
			}
			if err := uc.inventory.InsertMovement(ctx, tx, movement); err != nil {
				return err
			}
			if err := uc.products.AdjustStock(ctx, tx, lp.input.ProductID, -lp.input.Quantity); err != nil {
				return err
			}
			if err := uc.outbox.Enqueue(ctx, tx, model.EntityStockMovement, movement.ID, model.SyncActionCreate, movement); err != nil {
				return err
			}
		}

		// Items ride inside the sale payload, so the server never sees a
		// sale and its items as separately ordered entries.
		return uc.outbox.Enqueue(ctx, tx, model.EntitySale, s.ID, model.SyncActionCreate, s)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("sale completed",
		zap.String("sale_id", s.ID),
		zap.Float64("total", s.Total),
		zap.Int("items", len(s.Items)),
	)
	return s, nil
}

// consume deducts a line's allocation from the batch snapshot so a later
// line for the same product sees what is actually left.
func consume(batches []model.ProductBatch, plan []inventory.Allocation) []model.ProductBatch {
	for _, alloc := range plan {
		for i := range batches {
			if batches[i].ID == alloc.BatchID {
				batches[i].Quantity -= alloc.Quantity
				break
			}
		}
	}
	return batches
}

func (uc *saleUseCase) EditSale(ctx context.Context, input *dto.EditSaleInput) (*model.Sale, error) {
	s, err := uc.repo.GetSale(ctx, input.SaleID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("sale %s not found", input.SaleID)
	}

	now := time.Now().UTC()
	userID := input.UserID

	type itemDelta struct {
		item   model.SaleItem
		newQty int
	}
	var deltas []itemDelta
	for _, item := range s.Items {
		newQty, ok := input.Quantities[item.ID]
		if !ok || newQty == item.Quantity {
			continue
		}
		if newQty > item.Quantity {
			return nil, errors.New("sale edits can only reduce quantities; ring up a new sale to add stock")
		}
		if newQty < 0 {
			return nil, fmt.Errorf("invalid quantity %d for item %s", newQty, item.ID)
		}
		deltas = append(deltas, itemDelta{item: item, newQty: newQty})
	}
	if len(deltas) == 0 {
		return s, nil
	}

	err = uc.store.InTx(ctx, func(tx *sqlx.Tx) error {
		for _, d := range deltas {
			returned := d.item.Quantity - d.newQty

			if d.newQty == 0 {
				if err := uc.repo.DeleteItem(ctx, tx, d.item.ID); err != nil {
					return err
				}
			} else {
				if err := uc.repo.UpdateItemQuantity(ctx, tx, d.item.ID, d.newQty); err != nil {
					return err
				}
			}

			// Returned units go back to the exact lot they came from.
			if d.item.BatchID != nil {
				if err := uc.inventory.IncrementBatch(ctx, tx, *d.item.BatchID, returned); err != nil {
					return err
				}
			}

			movement := &model.StockMovement{
				ID:             uuid.New().String(),
				ProductID:      d.item.ProductID,
				MovementType:   model.MovementSaleEdit,
				QuantityChange: returned,
				Reason:         fmt.Sprintf("sale %s edited", s.ID),
				UserID:         &userID,
				CreatedAt:      now,
			}
			if err := uc.inventory.InsertMovement(ctx, tx, movement); err != nil {
				return err
			}
			if err := uc.products.AdjustStock(ctx, tx, d.item.ProductID, returned); err != nil {
				return err
			}
			if err := uc.outbox.Enqueue(ctx, tx, model.EntityStockMovement, movement.ID, model.SyncActionCreate, movement); err != nil {
				return err
			}

			s.Total -= float64(returned) * d.item.UnitPrice
		}

		if input.AmountPaid != nil {
			s.AmountPaid = *input.AmountPaid
		}
		s.AmountDue = s.Total - s.AmountPaid
		if s.AmountDue < 0 {
			s.AmountDue = 0
		}
		s.PaymentStatus = paymentStatus(s.Total, s.AmountPaid)
		s.EditCount++
		s.ModifiedAt = &now
		s.UpdatedAt = now
		s.Synced = false

		if err := uc.repo.UpdateSale(ctx, tx, s); err != nil {
			return err
		}

		// Rebuild items for the payload after the in-place edits.
		fresh, err := uc.loadItemsTx(ctx, tx, s.ID)
		if err != nil {
			return err
		}
		s.Items = fresh

		return uc.outbox.Enqueue(ctx, tx, model.EntitySale, s.ID, model.SyncActionUpdate, s)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("sale edited", zap.String("sale_id", s.ID), zap.Int("edit_count", s.EditCount))
	return s, nil
}

func (uc *saleUseCase) loadItemsTx(ctx context.Context, tx *sqlx.Tx, saleID string) ([]model.SaleItem, error) {
	var items []model.SaleItem
	err := tx.SelectContext(ctx, &items,
		`SELECT * FROM sale_items WHERE sale_id = ? ORDER BY id ASC`, saleID)
	return items, err
}

func (uc *saleUseCase) RecordCreditPayment(ctx context.Context, input *dto.CreditPaymentInput) (*model.CreditPayment, error) {
	s, err := uc.repo.GetSale(ctx, input.SaleID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("sale %s not found", input.SaleID)
	}
	if input.Amount <= 0 {
		return nil, errors.New("payment amount must be positive")
	}
	if input.Amount > s.AmountDue {
		return nil, fmt.Errorf("payment %.2f exceeds amount due %.2f", input.Amount, s.AmountDue)
	}

	now := time.Now().UTC()
	payment := &model.CreditPayment{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		SaleID:    s.ID,
		Amount:    input.Amount,
		Method:    input.Method,
		UserID:    input.UserID,
	}

	s.AmountPaid += input.Amount
	s.AmountDue -= input.Amount
	s.PaymentStatus = paymentStatus(s.Total, s.AmountPaid)
	s.UpdatedAt = now
	s.Synced = false

	err = uc.store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := uc.repo.UpdateSale(ctx, tx, s); err != nil {
			return err
		}
		if err := uc.repo.InsertCreditPayment(ctx, tx, payment); err != nil {
			return err
		}
		if err := uc.outbox.Enqueue(ctx, tx, model.EntityCreditPayment, payment.ID, model.SyncActionCreate, payment); err != nil {
			return err
		}
		return uc.outbox.Enqueue(ctx, tx, model.EntitySale, s.ID, model.SyncActionUpdate, s)
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}

func (uc *saleUseCase) GetSale(ctx context.Context, id string) (*model.Sale, error) {
	return uc.repo.GetSale(ctx, id)
}

func (uc *saleUseCase) ListSales(ctx context.Context, filters *dto.SaleFilters) ([]model.Sale, int, error) {
	return uc.repo.ListSales(ctx, filters)
}

func paymentStatus(total, paid float64) string {
	switch {
	case paid >= total:
		return model.PaymentStatusPaid
	case paid > 0:
		return model.PaymentStatusPartial
	default:
		return model.PaymentStatusUnpaid
	}
}
