package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/outbox"
	"github.com/fekuna/omnipos-edge-agent/internal/store"
	"github.com/fekuna/omnipos-edge-agent/internal/supplier"
	"github.com/fekuna/omnipos-edge-agent/internal/supplier/dto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type supplierUseCase struct {
	store  *store.Store
	repo   supplier.Repository
	outbox outbox.Repository
	logger *zap.Logger
}

func NewSupplierUseCase(s *store.Store, repo supplier.Repository, ob outbox.Repository, log *zap.Logger) supplier.UseCase {
	return &supplierUseCase{
		store:  s,
		repo:   repo,
		outbox: ob,
		logger: log,
	}
}

func (uc *supplierUseCase) CreateSupplier(ctx context.Context, input *dto.CreateSupplierInput) (*model.Supplier, error) {
	if input.Name == "" {
		return nil, errors.New("supplier name is required")
	}

	now := time.Now().UTC()
	s := &model.Supplier{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:      input.Name,
	}
	if input.Phone != "" {
		s.Phone = &input.Phone
	}
	if input.Email != "" {
		s.Email = &input.Email
	}

	err := uc.store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := uc.repo.Create(ctx, tx, s); err != nil {
			return err
		}
		return uc.outbox.Enqueue(ctx, tx, model.EntitySupplier, s.ID, model.SyncActionCreate, s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *supplierUseCase) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *supplierUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.SupplierOrder, error) {
	sup, err := uc.repo.FindByID(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, fmt.Errorf("supplier %s not found", input.SupplierID)
	}

	now := time.Now().UTC()
	o := &model.SupplierOrder{
		BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		SupplierID: input.SupplierID,
		Status:     model.SupplierOrderPending,
		Total:      input.Total,
	}

	err = uc.store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := uc.repo.CreateOrder(ctx, tx, o); err != nil {
			return err
		}
		return uc.outbox.Enqueue(ctx, tx, model.EntitySupplierOrder, o.ID, model.SyncActionCreate, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *supplierUseCase) ListOrders(ctx context.Context, supplierID string) ([]model.SupplierOrder, error) {
	return uc.repo.ListOrders(ctx, supplierID)
}

// MarkOrderReceived closes the order. The received lots themselves are
// registered through inventory.ReceiveBatch, one call per lot.
func (uc *supplierUseCase) MarkOrderReceived(ctx context.Context, orderID string) (*model.SupplierOrder, error) {
	o, err := uc.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("supplier order %s not found", orderID)
	}
	if o.Status == model.SupplierOrderReceived {
		return o, nil
	}

	o.Status = model.SupplierOrderReceived
	o.Synced = false
	o.UpdatedAt = time.Now().UTC()

	err = uc.store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := uc.repo.UpdateOrder(ctx, tx, o); err != nil {
			return err
		}
		return uc.outbox.Enqueue(ctx, tx, model.EntitySupplierOrder, o.ID, model.SyncActionUpdate, o)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("supplier order received", zap.String("order_id", o.ID))
	return o, nil
}
