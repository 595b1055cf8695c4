package model

import (
	"encoding/json"
	"time"
)

const (
	SyncStatusPending = "PENDING"
	SyncStatusSyncing = "SYNCING"
	SyncStatusSynced  = "SYNCED"
	SyncStatusFailed  = "FAILED"
)

const (
	SyncActionCreate = "CREATE"
	SyncActionUpdate = "UPDATE"
	SyncActionDelete = "DELETE"
)

// Entity types carried by the sync queue. The push engine dispatches
// exhaustively on these, so adding one here means teaching the pusher
// how to decode and translate it.
const (
	EntitySupplier      = "supplier"
	EntityProduct       = "product"
	EntityProductBatch  = "product_batch"
	EntitySupplierOrder = "supplier_order"
	EntitySale          = "sale"
	EntityStockMovement = "stock_movement"
	EntityExpense       = "expense"
	EntityCreditPayment = "credit_payment"
)

// SyncQueueEntry is the write-ahead outbox row. It is always inserted in
// the same local transaction as the business mutation it describes.
// The autoincrement ID gives per-entity FIFO order for free.
type SyncQueueEntry struct {
	ID          int64           `db:"id" json:"id"`
	EntityType  string          `db:"entity_type" json:"entity_type"`
	EntityID    string          `db:"entity_id" json:"entity_id"` // Client-minted uuid, doubles as upsert key
	Action      string          `db:"action" json:"action"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	Status      string          `db:"status" json:"status"`
	RetryCount  int             `db:"retry_count" json:"retry_count"`
	LastError   *string         `db:"last_error" json:"last_error"`
	NextRetryAt *time.Time      `db:"next_retry_at" json:"next_retry_at"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	SyncedAt    *time.Time      `db:"synced_at" json:"synced_at"`
}
