package outbox

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Enqueue records a pending mutation in the caller's transaction, so the
	// outbox entry and the business write commit or roll back together.
	Enqueue(ctx context.Context, tx *sqlx.Tx, entityType, entityID, action string, payload interface{}) error

	// Due snapshots the entries eligible for a push cycle: PENDING plus FAILED
	// entries whose backoff has elapsed and that are still under the attempt
	// cap. Ordered by entity dependency rank, then FIFO by id.
	Due(ctx context.Context, now time.Time, maxAttempts, limit int) ([]model.SyncQueueEntry, error)

	MarkSyncing(ctx context.Context, id int64) error
	// ResetSyncing returns SYNCING entries to PENDING. A push interrupted
	// mid-flight (crash, shutdown during the HTTP call) leaves its entry
	// SYNCING, a state nothing else ever picks up again. The single local
	// writer makes the blanket reset safe: when a drain starts, no push can
	// legitimately be in flight.
	ResetSyncing(ctx context.Context) (int64, error)
	MarkSynced(ctx context.Context, id int64, at time.Time) error
	// MarkFailed records the error. Retryable failures get a nextRetry time;
	// terminal ones keep nextRetry nil and are never picked up again.
	MarkFailed(ctx context.Context, id int64, errMsg string, nextRetry *time.Time) error

	HasPending(ctx context.Context, entityType, entityID string) (bool, error)
	PendingCount(ctx context.Context) (int, error)
	DeadCount(ctx context.Context, maxAttempts int) (int, error)
	PurgeSynced(ctx context.Context, olderThan time.Time) (int64, error)
}

// rank orders entity types so reference data is pushed before transactional
// data that references it. Children embedded in a parent payload (sale items)
// never appear here at all.
var rank = map[string]int{
	model.EntitySupplier:      0,
	model.EntityProduct:       1,
	model.EntityProductBatch:  2,
	model.EntitySupplierOrder: 2,
	model.EntitySale:          3,
	model.EntityStockMovement: 4,
	model.EntityExpense:       4,
	model.EntityCreditPayment: 5,
}

// Rank returns the dependency rank for an entity type. Unknown types sort
// last so they still drain after everything they could depend on.
func Rank(entityType string) int {
	if r, ok := rank[entityType]; ok {
		return r
	}
	return 99
}
