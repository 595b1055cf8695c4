package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/inventory"
	"github.com/fekuna/omnipos-edge-agent/internal/inventory/dto"
	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/outbox"
	"github.com/fekuna/omnipos-edge-agent/internal/product"
	"github.com/fekuna/omnipos-edge-agent/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	store    *store.Store
	repo     inventory.Repository
	products product.Repository
	outbox   outbox.Repository
	logger   *zap.Logger
}

func NewInventoryUseCase(s *store.Store, repo inventory.Repository, products product.Repository, ob outbox.Repository, log *zap.Logger) inventory.UseCase {
	return &inventoryUseCase{
		store:    s,
		repo:     repo,
		products: products,
		outbox:   ob,
		logger:   log,
	}
}

func (uc *inventoryUseCase) ReceiveBatch(ctx context.Context, input *dto.ReceiveBatchInput) (*model.ProductBatch, error) {
	if input.Quantity <= 0 {
		return nil, errors.New("received quantity must be positive")
	}

	p, err := uc.products.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %s not found", input.ProductID)
	}

	now := time.Now().UTC()
	received := input.ReceivedDate
	if received.IsZero() {
		received = now
	}

	batch := &model.ProductBatch{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ProductID:      input.ProductID,
		LotNumber:      input.LotNumber,
		ExpirationDate: input.ExpirationDate,
		Quantity:       input.Quantity,
		InitialQty:     input.Quantity,
		UnitCost:       input.UnitCost,
		ReceivedDate:   received,
	}

	var userID *string
	if input.UserID != "" {
		userID = &input.UserID
	}
	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      input.ProductID,
		MovementType:   model.MovementReceipt,
		QuantityChange: input.Quantity,
		Reason:         fmt.Sprintf("lot %s received", input.LotNumber),
		UserID:         userID,
		CreatedAt:      now,
	}

	// Batch insert, ledger append, counter bump and outbox entries commit
	// together or not at all.
	err = uc.store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := uc.repo.InsertBatch(ctx, tx, batch); err != nil {
			return err
		}
		if err := uc.repo.InsertMovement(ctx, tx, movement); err != nil {
			return err
		}
		if err := uc.products.AdjustStock(ctx, tx, input.ProductID, input.Quantity); err != nil {
			return err
		}
		if err := uc.outbox.Enqueue(ctx, tx, model.EntityProductBatch, batch.ID, model.SyncActionCreate, batch); err != nil {
			return err
		}
		return uc.outbox.Enqueue(ctx, tx, model.EntityStockMovement, movement.ID, model.SyncActionCreate, movement)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("batch received",
		zap.String("product_id", input.ProductID),
		zap.String("lot_number", input.LotNumber),
		zap.Int("quantity", input.Quantity),
	)
	return batch, nil
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.StockMovement, error) {
	switch input.MovementType {
	case model.MovementAdjustment, model.MovementDamaged, model.MovementExpired,
		model.MovementSupplierReturn, model.MovementInventory:
	default:
		return nil, fmt.Errorf("movement type %q is not a manual adjustment", input.MovementType)
	}
	if input.QuantityChange == 0 {
		return nil, errors.New("quantity change must be non-zero")
	}

	var userID *string
	if input.UserID != "" {
		userID = &input.UserID
	}
	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      input.ProductID,
		MovementType:   input.MovementType,
		QuantityChange: input.QuantityChange,
		Reason:         input.Reason,
		UserID:         userID,
		CreatedAt:      time.Now().UTC(),
	}

	err := uc.store.InTx(ctx, func(tx *sqlx.Tx) error {
		if input.BatchID != "" && input.QuantityChange < 0 {
			if err := uc.repo.DecrementBatch(ctx, tx, input.BatchID, -input.QuantityChange); err != nil {
				return err
			}
		}
		if err := uc.repo.InsertMovement(ctx, tx, movement); err != nil {
			return err
		}
		if err := uc.products.AdjustStock(ctx, tx, input.ProductID, input.QuantityChange); err != nil {
			return err
		}
		return uc.outbox.Enqueue(ctx, tx, model.EntityStockMovement, movement.ID, model.SyncActionCreate, movement)
	})
	if err != nil {
		return nil, err
	}

	return movement, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *inventoryUseCase) ListExpiring(ctx context.Context, withinDays int) ([]model.ProductBatch, error) {
	return uc.repo.ExpiringBatches(ctx, withinDays)
}

func (uc *inventoryUseCase) CheckDrift(ctx context.Context, productID string) (*dto.DriftReport, error) {
	p, err := uc.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %s not found", productID)
	}

	unsynced, err := uc.repo.UnsyncedMovementTotal(ctx, productID)
	if err != nil {
		return nil, err
	}

	report := &dto.DriftReport{
		ProductID:     productID,
		Stock:         p.Stock,
		ServerStock:   p.ServerStock,
		UnsyncedDelta: unsynced,
	}
	if report.Drifted() {
		uc.logger.Warn("stock ledger drift detected",
			zap.String("product_id", productID),
			zap.Int("stock", p.Stock),
			zap.Int("server_stock", p.ServerStock),
			zap.Int("unsynced_delta", unsynced),
		)
	}
	return report, nil
}
