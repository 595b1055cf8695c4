package inventory

import (
	"testing"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batch(id string, qty int, expiresIn time.Duration, receivedAgo time.Duration) model.ProductBatch {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return model.ProductBatch{
		BaseModel:      model.BaseModel{ID: id},
		ProductID:      "prod-1",
		LotNumber:      "LOT-" + id,
		ExpirationDate: now.Add(expiresIn),
		Quantity:       qty,
		InitialQty:     qty,
		ReceivedDate:   now.Add(-receivedAgo),
	}
}

func TestAllocateSpansBatches(t *testing.T) {
	batches := []model.ProductBatch{
		batch("a", 10, 30*24*time.Hour, 0),
		batch("b", 20, 90*24*time.Hour, 0),
	}

	plan, err := Allocate("prod-1", batches, 15)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, "a", plan[0].BatchID)
	assert.Equal(t, 10, plan[0].Quantity)
	assert.Equal(t, "b", plan[1].BatchID)
	assert.Equal(t, 5, plan[1].Quantity)
}

func TestAllocateInsufficientStock(t *testing.T) {
	batches := []model.ProductBatch{
		batch("a", 10, 30*24*time.Hour, 0),
		batch("b", 20, 90*24*time.Hour, 0),
	}

	plan, err := Allocate("prod-1", batches, 1000)
	require.Error(t, err)
	assert.Nil(t, plan)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "prod-1", insufficient.ProductID)
	assert.Equal(t, 30, insufficient.Available)
	assert.Equal(t, 1000, insufficient.Requested)
}

func TestAllocatePicksEarliestExpiration(t *testing.T) {
	// Input order deliberately reversed from expiration order.
	batches := []model.ProductBatch{
		batch("late", 50, 365*24*time.Hour, 0),
		batch("soon", 50, 7*24*time.Hour, 0),
		batch("mid", 50, 60*24*time.Hour, 0),
	}

	plan, err := Allocate("prod-1", batches, 60)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "soon", plan[0].BatchID)
	assert.Equal(t, 50, plan[0].Quantity)
	assert.Equal(t, "mid", plan[1].BatchID)
	assert.Equal(t, 10, plan[1].Quantity)
}

func TestAllocateTieBreaks(t *testing.T) {
	same := 30 * 24 * time.Hour

	t.Run("received date breaks expiration ties", func(t *testing.T) {
		batches := []model.ProductBatch{
			batch("newer", 10, same, 1*24*time.Hour),
			batch("older", 10, same, 10*24*time.Hour),
		}
		plan, err := Allocate("prod-1", batches, 5)
		require.NoError(t, err)
		assert.Equal(t, "older", plan[0].BatchID)
	})

	t.Run("id breaks full ties", func(t *testing.T) {
		batches := []model.ProductBatch{
			batch("b", 10, same, 0),
			batch("a", 10, same, 0),
		}
		plan, err := Allocate("prod-1", batches, 5)
		require.NoError(t, err)
		assert.Equal(t, "a", plan[0].BatchID)
	})
}

func TestAllocateSkipsEmptyBatches(t *testing.T) {
	batches := []model.ProductBatch{
		batch("empty", 0, 7*24*time.Hour, 0),
		batch("full", 10, 30*24*time.Hour, 0),
	}

	plan, err := Allocate("prod-1", batches, 10)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "full", plan[0].BatchID)
}

func TestAllocateExactFit(t *testing.T) {
	batches := []model.ProductBatch{batch("a", 10, 30*24*time.Hour, 0)}

	plan, err := Allocate("prod-1", batches, 10)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, 10, plan[0].Quantity)
}

func TestAllocateRejectsNonPositiveRequest(t *testing.T) {
	batches := []model.ProductBatch{batch("a", 10, 30*24*time.Hour, 0)}

	_, err := Allocate("prod-1", batches, 0)
	assert.Error(t, err)
	_, err = Allocate("prod-1", batches, -3)
	assert.Error(t, err)
}

func TestAllocateDoesNotMutateInput(t *testing.T) {
	batches := []model.ProductBatch{
		batch("b", 20, 90*24*time.Hour, 0),
		batch("a", 10, 30*24*time.Hour, 0),
	}

	_, err := Allocate("prod-1", batches, 25)
	require.NoError(t, err)

	// Snapshot order and quantities are untouched.
	assert.Equal(t, "b", batches[0].ID)
	assert.Equal(t, 20, batches[0].Quantity)
	assert.Equal(t, "a", batches[1].ID)
	assert.Equal(t, 10, batches[1].Quantity)
}

func TestAllocatePlanSumsToRequested(t *testing.T) {
	batches := []model.ProductBatch{
		batch("a", 3, 10*24*time.Hour, 0),
		batch("b", 7, 20*24*time.Hour, 0),
		batch("c", 11, 30*24*time.Hour, 0),
	}

	for _, requested := range []int{1, 3, 10, 21} {
		plan, err := Allocate("prod-1", batches, requested)
		require.NoError(t, err)

		total := 0
		for _, a := range plan {
			total += a.Quantity
		}
		assert.Equal(t, requested, total)
	}
}
