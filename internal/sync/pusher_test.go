package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/expense"
	invRepo "github.com/fekuna/omnipos-edge-agent/internal/inventory/repository"
	"github.com/fekuna/omnipos-edge-agent/internal/model"
	obRepo "github.com/fekuna/omnipos-edge-agent/internal/outbox/repository"
	prodRepo "github.com/fekuna/omnipos-edge-agent/internal/product/repository"
	saleRepo "github.com/fekuna/omnipos-edge-agent/internal/sale/repository"
	"github.com/fekuna/omnipos-edge-agent/internal/store"
	supRepo "github.com/fekuna/omnipos-edge-agent/internal/supplier/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type syncFixture struct {
	store     *store.Store
	outbox    *obRepo.SQLiteRepository
	products  *prodRepo.SQLiteRepository
	inventory *invRepo.SQLiteRepository
	sales     *saleRepo.SQLiteRepository
	suppliers *supRepo.SQLiteRepository
	expenses  *expense.SQLiteRepository
	state     *StateRepository
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	s, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return &syncFixture{
		store:     s,
		outbox:    obRepo.NewSQLiteRepository(s),
		products:  prodRepo.NewSQLiteRepository(s),
		inventory: invRepo.NewSQLiteRepository(s),
		sales:     saleRepo.NewSQLiteRepository(s),
		suppliers: supRepo.NewSQLiteRepository(s),
		expenses:  expense.NewSQLiteRepository(s),
		state:     NewStateRepository(s),
	}
}

func (f *syncFixture) newPusher(baseURL string) *Pusher {
	client := NewClient(&ClientConfig{BaseURL: baseURL, Timeout: 2 * time.Second})
	return NewPusher(PusherConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     time.Minute,
		MaxAttempts:    3,
		Retention:      24 * time.Hour,
	}, f.outbox, client, f.products, f.inventory, f.sales, f.suppliers, f.expenses, zap.NewNop())
}

func (f *syncFixture) seedProductWithEntry(t *testing.T, id string) {
	t.Helper()
	now := time.Now().UTC()
	p := &model.Product{
		BaseModel: model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		Name:      "Product " + id,
		Price:     10,
	}
	err := f.store.InTx(context.Background(), func(tx *sqlx.Tx) error {
		if err := f.products.Create(context.Background(), tx, p); err != nil {
			return err
		}
		return f.outbox.Enqueue(context.Background(), tx, model.EntityProduct, id, model.SyncActionCreate, p)
	})
	require.NoError(t, err)
}

func (f *syncFixture) enqueue(t *testing.T, entityType, entityID string, payload interface{}) {
	t.Helper()
	err := f.store.InTx(context.Background(), func(tx *sqlx.Tx) error {
		return f.outbox.Enqueue(context.Background(), tx, entityType, entityID, model.SyncActionCreate, payload)
	})
	require.NoError(t, err)
}

func (f *syncFixture) queueRow(t *testing.T, entityID string) model.SyncQueueEntry {
	t.Helper()
	var e model.SyncQueueEntry
	err := f.store.DB.Get(&e, `SELECT * FROM sync_queue WHERE entity_id = ?`, entityID)
	require.NoError(t, err)
	return e
}

func pushServer(t *testing.T, respond func(req *PushRequest) (int, *PushResponse)) (*httptest.Server, *[]PushRequest) {
	t.Helper()
	var received []PushRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/sync/push", func(w http.ResponseWriter, r *http.Request) {
		var req PushRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		received = append(received, req)

		code, resp := respond(&req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if resp != nil {
			json.NewEncoder(w).Encode(resp)
		}
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, &received
}

func okResponse(req *PushRequest) (int, *PushResponse) {
	return http.StatusOK, &PushResponse{Success: true, ServerTime: time.Now().UTC()}
}

func TestDrainMarksEntrySyncedAndMergesServerFields(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	f.seedProductWithEntry(t, "p1")

	remoteID := "srv-900"
	serverStock := 42
	ts, received := pushServer(t, func(req *PushRequest) (int, *PushResponse) {
		return http.StatusOK, &PushResponse{
			Success:     true,
			RemoteID:    &remoteID,
			ServerStock: &serverStock,
			ServerTime:  time.Now().UTC(),
		}
	})

	require.NoError(t, f.newPusher(ts.URL).Drain(ctx))

	require.Len(t, *received, 1)
	assert.Equal(t, model.EntityProduct, (*received)[0].EntityType)
	assert.Equal(t, "p1", (*received)[0].ClientID, "client-minted id rides as the idempotency key")

	entry := f.queueRow(t, "p1")
	assert.Equal(t, model.SyncStatusSynced, entry.Status)
	require.NotNil(t, entry.SyncedAt)

	p, err := f.products.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.Synced)
	require.NotNil(t, p.RemoteID)
	assert.Equal(t, remoteID, *p.RemoteID)
	assert.Equal(t, serverStock, p.ServerStock)
}

func TestDrainPushesInDependencyOrder(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	// Enqueue out of dependency order.
	now := time.Now().UTC()
	mov := &model.StockMovement{ID: uuid.New().String(), ProductID: "p1", MovementType: model.MovementSale, QuantityChange: -1, CreatedAt: now}
	f.enqueue(t, model.EntityStockMovement, mov.ID, mov)
	f.seedProductWithEntry(t, "p1")
	sup := &model.Supplier{BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}, Name: "ACME Pharma"}
	f.enqueue(t, model.EntitySupplier, sup.ID, sup)

	ts, received := pushServer(t, okResponse)
	require.NoError(t, f.newPusher(ts.URL).Drain(ctx))

	require.Len(t, *received, 3)
	assert.Equal(t, model.EntitySupplier, (*received)[0].EntityType)
	assert.Equal(t, model.EntityProduct, (*received)[1].EntityType)
	assert.Equal(t, model.EntityStockMovement, (*received)[2].EntityType)
}

func TestDrainTranslatesPayloadToWireFormat(t *testing.T) {
	f := newSyncFixture(t)
	f.seedProductWithEntry(t, "p1")

	ts, received := pushServer(t, okResponse)
	require.NoError(t, f.newPusher(ts.URL).Drain(context.Background()))

	require.Len(t, *received, 1)
	payload, err := json.Marshal((*received)[0].Payload)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"minStock"`, "the wire speaks camelCase")
	assert.NotContains(t, string(payload), `"min_stock"`)
}

func TestServerErrorSchedulesRetry(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	f.seedProductWithEntry(t, "p1")

	ts, _ := pushServer(t, func(req *PushRequest) (int, *PushResponse) {
		return http.StatusInternalServerError, nil
	})

	before := time.Now().UTC()
	require.NoError(t, f.newPusher(ts.URL).Drain(ctx))

	entry := f.queueRow(t, "p1")
	assert.Equal(t, model.SyncStatusFailed, entry.Status)
	assert.Equal(t, 1, entry.RetryCount)
	require.NotNil(t, entry.NextRetryAt, "5xx failures stay retryable")
	assert.True(t, entry.NextRetryAt.After(before))
	require.NotNil(t, entry.LastError)

	p, err := f.products.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, p.Synced, "the record stays unsynced until the push lands")
}

func TestValidationRejectionIsTerminal(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	f.seedProductWithEntry(t, "p1")

	ts, _ := pushServer(t, func(req *PushRequest) (int, *PushResponse) {
		return http.StatusBadRequest, nil
	})

	require.NoError(t, f.newPusher(ts.URL).Drain(ctx))

	entry := f.queueRow(t, "p1")
	assert.Equal(t, model.SyncStatusFailed, entry.Status)
	assert.Nil(t, entry.NextRetryAt, "4xx rejections never retry")

	dead, err := f.outbox.DeadCount(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, dead)
}

func TestCorruptPayloadIsTerminal(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	_, err := f.store.DB.Exec(`
        INSERT INTO sync_queue (entity_type, entity_id, action, payload, status, created_at)
        VALUES ('product', 'p1', 'CREATE', 'not json', 'PENDING', ?)
    `, time.Now().UTC())
	require.NoError(t, err)

	ts, received := pushServer(t, okResponse)
	require.NoError(t, f.newPusher(ts.URL).Drain(ctx))

	assert.Empty(t, *received, "an undecodable entry never reaches the server")
	entry := f.queueRow(t, "p1")
	assert.Equal(t, model.SyncStatusFailed, entry.Status)
	assert.Nil(t, entry.NextRetryAt)
}

func TestDrainPurgesOldSyncedEntries(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	f.seedProductWithEntry(t, "p1")

	ts, _ := pushServer(t, okResponse)
	pusher := f.newPusher(ts.URL)
	require.NoError(t, pusher.Drain(ctx))

	// Age the synced entry past retention, then run another cycle.
	_, err := f.store.DB.Exec(`UPDATE sync_queue SET synced_at = ? WHERE entity_id = 'p1'`,
		time.Now().UTC().Add(-48*time.Hour))
	require.NoError(t, err)
	require.NoError(t, pusher.Drain(ctx))

	var count int
	require.NoError(t, f.store.DB.Get(&count, `SELECT count(*) FROM sync_queue`))
	assert.Zero(t, count)
}

func TestRetryDelayGrowsAndCaps(t *testing.T) {
	f := newSyncFixture(t)
	p := f.newPusher("http://unused")

	first := p.retryDelay(0)
	second := p.retryDelay(1)
	fifth := p.retryDelay(4)

	assert.Equal(t, time.Second, first)
	assert.Greater(t, second, first)
	assert.LessOrEqual(t, fifth, time.Minute)
}

func TestDrainRecoversEntryStrandedByInterruptedPush(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	f.seedProductWithEntry(t, "p1")

	// Simulate a push cut off mid-flight: the entry was claimed but the
	// process died before a verdict landed.
	entry := f.queueRow(t, "p1")
	require.NoError(t, f.outbox.MarkSyncing(ctx, entry.ID))

	ts, received := pushServer(t, okResponse)
	require.NoError(t, f.newPusher(ts.URL).Drain(ctx))

	require.Len(t, *received, 1)
	row := f.queueRow(t, "p1")
	assert.Equal(t, model.SyncStatusSynced, row.Status)
}
