package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func (f *syncFixture) newPuller(baseURL string) *Puller {
	client := NewClient(&ClientConfig{BaseURL: baseURL, Timeout: 2 * time.Second})
	return NewPuller(f.store, f.state, f.outbox, client,
		f.products, f.inventory, f.sales, f.suppliers, f.expenses, zap.NewNop())
}

type pullCall struct {
	lastSyncAt string
	role       string
}

func pullServer(t *testing.T, respond func() *PullResponse) (*httptest.Server, *[]pullCall) {
	t.Helper()
	var calls []pullCall
	mux := http.NewServeMux()
	mux.HandleFunc("/sync/pull", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, pullCall{
			lastSyncAt: r.URL.Query().Get("lastSyncAt"),
			role:       r.URL.Query().Get("role"),
		})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(respond())
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, &calls
}

func wireProduct(id, name string, stock int, updatedAt time.Time) WireProduct {
	return WireProduct{
		ID:        id,
		Name:      name,
		Stock:     stock,
		Price:     5,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func TestInitialSyncBootstrapsReplica(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	serverTime := time.Now().UTC().Truncate(time.Second)

	ts, calls := pullServer(t, func() *PullResponse {
		return &PullResponse{
			Success: true,
			Data: PullData{
				Products: []WireProduct{
					wireProduct("p1", "Paracetamol", 30, serverTime),
					wireProduct("p2", "Ibuprofen", 12, serverTime),
				},
				Suppliers: []WireSupplier{{
					ID: "sup1", Name: "ACME Pharma", CreatedAt: serverTime, UpdatedAt: serverTime,
				}},
			},
			ServerTime: serverTime,
		}
	})

	require.NoError(t, f.newPuller(ts.URL).InitialSync(ctx, "admin"))

	require.Len(t, *calls, 1)
	assert.Equal(t, "admin", (*calls)[0].role)
	assert.Empty(t, (*calls)[0].lastSyncAt, "bootstrap pulls the full snapshot")

	p, err := f.products.FindByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 30, p.Stock)
	assert.Equal(t, 30, p.ServerStock, "a pulled record is the server's word")
	assert.True(t, p.Synced)

	role, err := f.state.Role(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", role)

	watermark, err := f.state.Watermark(ctx)
	require.NoError(t, err)
	require.NotNil(t, watermark)
	assert.True(t, watermark.Equal(serverTime))
}

func TestIncrementalSyncSendsWatermark(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	serverTime := time.Now().UTC().Truncate(time.Second)

	ts, calls := pullServer(t, func() *PullResponse {
		return &PullResponse{Success: true, ServerTime: serverTime}
	})

	puller := f.newPuller(ts.URL)
	require.NoError(t, puller.InitialSync(ctx, "cashier"))
	require.NoError(t, puller.IncrementalSync(ctx))

	require.Len(t, *calls, 2)
	assert.Equal(t, "cashier", (*calls)[1].role)
	assert.NotEmpty(t, (*calls)[1].lastSyncAt, "incremental pulls resume from the watermark")
}

func TestPullLastWriterWins(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	// Local row, already synced (no pending outbox entry), updated recently.
	local := &model.Product{
		BaseModel: model.BaseModel{ID: "p1", CreatedAt: now.Add(-time.Hour), UpdatedAt: now},
		Name:      "Local Name",
		Price:     9,
		Synced:    true,
	}
	err := f.store.InTx(ctx, func(tx *sqlx.Tx) error {
		return f.products.Create(ctx, tx, local)
	})
	require.NoError(t, err)

	t.Run("older server record loses", func(t *testing.T) {
		ts, _ := pullServer(t, func() *PullResponse {
			return &PullResponse{
				Success:    true,
				Data:       PullData{Products: []WireProduct{wireProduct("p1", "Stale Server Name", 5, now.Add(-time.Minute))}},
				ServerTime: now,
			}
		})
		require.NoError(t, f.newPuller(ts.URL).IncrementalSync(ctx))

		p, err := f.products.FindByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "Local Name", p.Name)
	})

	t.Run("newer server record wins", func(t *testing.T) {
		ts, _ := pullServer(t, func() *PullResponse {
			return &PullResponse{
				Success:    true,
				Data:       PullData{Products: []WireProduct{wireProduct("p1", "Fresh Server Name", 5, now.Add(time.Minute))}},
				ServerTime: now.Add(time.Minute),
			}
		})
		require.NoError(t, f.newPuller(ts.URL).IncrementalSync(ctx))

		p, err := f.products.FindByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "Fresh Server Name", p.Name)
	})
}

func TestPullNeverOverwritesPendingLocalWork(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	f.seedProductWithEntry(t, "p1") // Leaves a PENDING outbox entry

	ts, _ := pullServer(t, func() *PullResponse {
		return &PullResponse{
			Success:    true,
			Data:       PullData{Products: []WireProduct{wireProduct("p1", "Server Name", 5, now.Add(time.Hour))}},
			ServerTime: now,
		}
	})
	require.NoError(t, f.newPuller(ts.URL).IncrementalSync(ctx))

	// Even a strictly newer server record loses to unpushed local changes.
	p, err := f.products.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Product p1", p.Name)
	assert.False(t, p.Synced)
}

func TestWatermarkNeverMovesBackwards(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	newer := time.Now().UTC().Truncate(time.Second)
	older := newer.Add(-time.Hour)

	serverTime := newer
	ts, _ := pullServer(t, func() *PullResponse {
		return &PullResponse{Success: true, ServerTime: serverTime}
	})
	puller := f.newPuller(ts.URL)
	require.NoError(t, puller.InitialSync(ctx, "admin"))

	// A delayed response carrying an older server time must not regress it.
	serverTime = older
	require.NoError(t, puller.IncrementalSync(ctx))

	watermark, err := f.state.Watermark(ctx)
	require.NoError(t, err)
	require.NotNil(t, watermark)
	assert.True(t, watermark.Equal(newer))
}

func TestPullMergesMovementsAppendOnly(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	ts, _ := pullServer(t, func() *PullResponse {
		return &PullResponse{
			Success: true,
			Data: PullData{
				Products: []WireProduct{wireProduct("p1", "Paracetamol", 10, now)},
				StockMovements: []WireMovement{{
					ID: "m1", ProductID: "p1", MovementType: model.MovementReceipt,
					QuantityChange: 10, CreatedAt: now,
				}},
			},
			ServerTime: now,
		}
	})
	puller := f.newPuller(ts.URL)
	require.NoError(t, puller.InitialSync(ctx, "admin"))

	// Pulling the same snapshot twice is a no-op, not a duplicate.
	require.NoError(t, puller.IncrementalSync(ctx))

	var count int
	require.NoError(t, f.store.DB.Get(&count, `SELECT count(*) FROM stock_movements`))
	assert.Equal(t, 1, count)
}

func TestPullRejectedByServer(t *testing.T) {
	f := newSyncFixture(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/sync/pull", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	err := f.newPuller(ts.URL).InitialSync(context.Background(), "admin")
	require.Error(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
