package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	obRepo "github.com/fekuna/omnipos-edge-agent/internal/outbox/repository"
	"github.com/fekuna/omnipos-edge-agent/internal/product"
	"github.com/fekuna/omnipos-edge-agent/internal/product/dto"
	prodRepo "github.com/fekuna/omnipos-edge-agent/internal/product/repository"
	"github.com/fekuna/omnipos-edge-agent/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store  *store.Store
	outbox *obRepo.SQLiteRepository
	uc     product.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ob := obRepo.NewSQLiteRepository(s)
	return &fixture{
		store:  s,
		outbox: ob,
		uc:     NewProductUseCase(s, prodRepo.NewSQLiteRepository(s), ob, zap.NewNop()),
	}
}

func (f *fixture) queueEntries(t *testing.T) []model.SyncQueueEntry {
	t.Helper()
	entries, err := f.outbox.Due(context.Background(), time.Now().UTC(), 10, 0)
	require.NoError(t, err)
	return entries
}

func TestCreateProductEnqueuesOutboxEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.uc.CreateProduct(ctx, &dto.CreateProductInput{
		Name:     "Paracetamol 500mg",
		Barcode:  "123456",
		MinStock: 10,
		Price:    5.00,
		BuyPrice: 3.20,
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	assert.Zero(t, p.Stock, "new products start empty, stock only moves through movements")
	assert.False(t, p.Synced)

	entries := f.queueEntries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, model.EntityProduct, entries[0].EntityType)
	assert.Equal(t, p.ID, entries[0].EntityID)
	assert.Equal(t, model.SyncActionCreate, entries[0].Action)
}

func TestUpdateProductEnqueuesUpdateEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "Ibuprofen", Price: 8.0})
	require.NoError(t, err)

	updated, err := f.uc.UpdateProduct(ctx, &dto.UpdateProductInput{
		ID:       p.ID,
		Name:     "Ibuprofen 400mg",
		MinStock: 5,
		Price:    9.0,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ibuprofen 400mg", updated.Name)

	entries := f.queueEntries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, model.SyncActionUpdate, entries[1].Action)
}

func TestUpdateUnknownProductFails(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{ID: "nope", Name: "x"})
	assert.Error(t, err)
}

func TestListProductsSearchAndPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Amoxicillin", "Amlodipine", "Cetirizine"} {
		_, err := f.uc.CreateProduct(ctx, &dto.CreateProductInput{Name: name, Price: 1})
		require.NoError(t, err)
	}

	products, total, err := f.uc.ListProducts(ctx, &dto.ProductFilters{SearchQuery: "Am", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, products, 2)
	assert.Equal(t, "Amlodipine", products[0].Name, "listing is name-ordered")

	paged, total, err := f.uc.ListProducts(ctx, &dto.ProductFilters{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, paged, 1)
}

func TestListLowStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	low, err := f.uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "Low", MinStock: 5, Price: 1})
	require.NoError(t, err)
	_, err = f.uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "NoThreshold", Price: 1})
	require.NoError(t, err)

	products, total, err := f.uc.ListLowStock(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total, "products without a min_stock threshold are not low")
	require.Len(t, products, 1)
	assert.Equal(t, low.ID, products[0].ID)
}

func TestGetProductMissingReturnsNil(t *testing.T) {
	f := newFixture(t)

	p, err := f.uc.GetProduct(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
}
