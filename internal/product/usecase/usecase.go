package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/outbox"
	"github.com/fekuna/omnipos-edge-agent/internal/product"
	"github.com/fekuna/omnipos-edge-agent/internal/product/dto"
	"github.com/fekuna/omnipos-edge-agent/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type productUseCase struct {
	store  *store.Store
	repo   product.Repository
	outbox outbox.Repository
	logger *zap.Logger
}

func NewProductUseCase(s *store.Store, repo product.Repository, ob outbox.Repository, log *zap.Logger) product.UseCase {
	return &productUseCase{
		store:  s,
		repo:   repo,
		outbox: ob,
		logger: log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	now := time.Now().UTC()

	var barcode *string
	if input.Barcode != "" {
		barcode = &input.Barcode
	}

	p := &model.Product{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:      input.Name,
		Barcode:   barcode,
		Stock:     0, // Stock only moves through movements
		MinStock:  input.MinStock,
		Price:     input.Price,
		BuyPrice:  input.BuyPrice,
		Synced:    false,
	}

	err := uc.store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := uc.repo.Create(ctx, tx, p); err != nil {
			return err
		}
		return uc.outbox.Enqueue(ctx, tx, model.EntityProduct, p.ID, model.SyncActionCreate, p)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("product created", zap.String("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.New("product not found")
	}

	p.Name = input.Name
	if input.Barcode != "" {
		bc := input.Barcode
		p.Barcode = &bc
	} else {
		p.Barcode = nil
	}
	p.MinStock = input.MinStock
	p.Price = input.Price
	p.BuyPrice = input.BuyPrice
	p.Synced = false
	p.UpdatedAt = time.Now().UTC()

	err = uc.store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := uc.repo.Update(ctx, tx, p); err != nil {
			return err
		}
		return uc.outbox.Enqueue(ctx, tx, model.EntityProduct, p.ID, model.SyncActionUpdate, p)
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *productUseCase) ListLowStock(ctx context.Context, page, pageSize int) ([]model.Product, int, error) {
	return uc.repo.FindAll(ctx, &dto.ProductFilters{
		LowStock: true,
		Page:     page,
		PageSize: pageSize,
	})
}
