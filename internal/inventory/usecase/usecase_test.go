package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/inventory"
	"github.com/fekuna/omnipos-edge-agent/internal/inventory/dto"
	invRepo "github.com/fekuna/omnipos-edge-agent/internal/inventory/repository"
	"github.com/fekuna/omnipos-edge-agent/internal/model"
	obRepo "github.com/fekuna/omnipos-edge-agent/internal/outbox/repository"
	"github.com/fekuna/omnipos-edge-agent/internal/product"
	prodRepo "github.com/fekuna/omnipos-edge-agent/internal/product/repository"
	"github.com/fekuna/omnipos-edge-agent/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store    *store.Store
	products product.Repository
	repo     inventory.Repository
	outbox   *obRepo.SQLiteRepository
	uc       inventory.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	products := prodRepo.NewSQLiteRepository(s)
	repo := invRepo.NewSQLiteRepository(s)
	ob := obRepo.NewSQLiteRepository(s)
	return &fixture{
		store:    s,
		products: products,
		repo:     repo,
		outbox:   ob,
		uc:       NewInventoryUseCase(s, repo, products, ob, zap.NewNop()),
	}
}

func (f *fixture) seedProduct(t *testing.T, id string) {
	t.Helper()
	now := time.Now().UTC()
	p := &model.Product{
		BaseModel: model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		Name:      "Test Product " + id,
		Price:     10,
	}
	err := f.store.InTx(context.Background(), func(tx *sqlx.Tx) error {
		return f.products.Create(context.Background(), tx, p)
	})
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func TestReceiveBatchCommitsEverythingTogether(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedProduct(t, "p1")

	batch, err := f.uc.ReceiveBatch(ctx, &dto.ReceiveBatchInput{
		ProductID:      "p1",
		LotNumber:      "LOT-A",
		ExpirationDate: time.Now().UTC().Add(90 * 24 * time.Hour),
		Quantity:       40,
		UnitCost:       2.5,
		UserID:         "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 40, batch.Quantity)
	assert.Equal(t, 40, batch.InitialQty)

	// Counter bumped.
	assert.Equal(t, 40, f.stock(t, "p1"))

	// Ledger appended.
	movements, total, err := f.repo.ListMovements(ctx, &dto.MovementFilters{ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementReceipt, movements[0].MovementType)
	assert.Equal(t, 40, movements[0].QuantityChange)

	// Batch and movement both queued for push.
	entries, err := f.outbox.Due(ctx, time.Now().UTC(), 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.EntityProductBatch, entries[0].EntityType)
	assert.Equal(t, model.EntityStockMovement, entries[1].EntityType)
}

func TestReceiveBatchUnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.ReceiveBatch(context.Background(), &dto.ReceiveBatchInput{
		ProductID:      "ghost",
		LotNumber:      "LOT-A",
		ExpirationDate: time.Now().UTC().Add(time.Hour),
		Quantity:       5,
	})
	assert.Error(t, err)
}

func TestAdjustStockValidatesMovementType(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1")

	_, err := f.uc.AdjustStock(context.Background(), &dto.AdjustStockInput{
		ProductID:      "p1",
		MovementType:   model.MovementSale, // Sales go through the sale flow
		QuantityChange: -1,
	})
	assert.Error(t, err)

	_, err = f.uc.AdjustStock(context.Background(), &dto.AdjustStockInput{
		ProductID:      "p1",
		MovementType:   model.MovementAdjustment,
		QuantityChange: 0,
	})
	assert.Error(t, err)
}

func TestAdjustStockNeverGoesNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedProduct(t, "p1")

	_, err := f.uc.AdjustStock(ctx, &dto.AdjustStockInput{
		ProductID:      "p1",
		MovementType:   model.MovementDamaged,
		QuantityChange: -5,
		Reason:         "dropped pallet",
	})
	require.Error(t, err)

	// The failed adjustment left nothing behind.
	assert.Zero(t, f.stock(t, "p1"))
	_, total, err := f.repo.ListMovements(ctx, &dto.MovementFilters{ProductID: "p1"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestAdjustStockDecrementsBatchWhenGiven(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedProduct(t, "p1")

	batch, err := f.uc.ReceiveBatch(ctx, &dto.ReceiveBatchInput{
		ProductID:      "p1",
		LotNumber:      "LOT-A",
		ExpirationDate: time.Now().UTC().Add(time.Hour),
		Quantity:       10,
	})
	require.NoError(t, err)

	_, err = f.uc.AdjustStock(ctx, &dto.AdjustStockInput{
		ProductID:      "p1",
		BatchID:        batch.ID,
		MovementType:   model.MovementExpired,
		QuantityChange: -4,
		Reason:         "past expiry",
	})
	require.NoError(t, err)

	assert.Equal(t, 6, f.stock(t, "p1"))
	got, err := f.repo.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Quantity)
}

func TestCheckDriftCleanLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedProduct(t, "p1")

	_, err := f.uc.ReceiveBatch(ctx, &dto.ReceiveBatchInput{
		ProductID:      "p1",
		LotNumber:      "LOT-A",
		ExpirationDate: time.Now().UTC().Add(time.Hour),
		Quantity:       25,
	})
	require.NoError(t, err)

	report, err := f.uc.CheckDrift(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 25, report.Stock)
	assert.Equal(t, 0, report.ServerStock)
	assert.Equal(t, 25, report.UnsyncedDelta)
	assert.False(t, report.Drifted(), "unsynced movements must account exactly for stock minus server stock")
}

func TestCheckDriftDetectsMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedProduct(t, "p1")

	_, err := f.uc.ReceiveBatch(ctx, &dto.ReceiveBatchInput{
		ProductID:      "p1",
		LotNumber:      "LOT-A",
		ExpirationDate: time.Now().UTC().Add(time.Hour),
		Quantity:       25,
	})
	require.NoError(t, err)

	// Tamper with the counter behind the ledger's back.
	_, err = f.store.DB.Exec(`UPDATE products SET stock = 30 WHERE id = 'p1'`)
	require.NoError(t, err)

	report, err := f.uc.CheckDrift(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, report.Drifted())
	// Nothing was auto-corrected.
	assert.Equal(t, 30, f.stock(t, "p1"))
}

func TestListExpiring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedProduct(t, "p1")

	_, err := f.uc.ReceiveBatch(ctx, &dto.ReceiveBatchInput{
		ProductID:      "p1",
		LotNumber:      "SOON",
		ExpirationDate: time.Now().UTC().Add(5 * 24 * time.Hour),
		Quantity:       5,
	})
	require.NoError(t, err)
	_, err = f.uc.ReceiveBatch(ctx, &dto.ReceiveBatchInput{
		ProductID:      "p1",
		LotNumber:      "LATER",
		ExpirationDate: time.Now().UTC().Add(300 * 24 * time.Hour),
		Quantity:       5,
	})
	require.NoError(t, err)

	batches, err := f.uc.ListExpiring(ctx, 30)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "SOON", batches[0].LotNumber)
}
