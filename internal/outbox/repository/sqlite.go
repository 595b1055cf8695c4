package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/outbox"
	"github.com/fekuna/omnipos-edge-agent/internal/store"
	"github.com/jmoiron/sqlx"
)

type SQLiteRepository struct {
	Store *store.Store
}

func NewSQLiteRepository(s *store.Store) *SQLiteRepository {
	return &SQLiteRepository{Store: s}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, tx *sqlx.Tx, entityType, entityID, action string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", entityType, err)
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO sync_queue (entity_type, entity_id, action, payload, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, entityType, entityID, action, string(data), model.SyncStatusPending, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to enqueue %s %s: %w", entityType, action, err)
	}
	return nil
}

func (r *SQLiteRepository) Due(ctx context.Context, now time.Time, maxAttempts, limit int) ([]model.SyncQueueEntry, error) {
	var entries []model.SyncQueueEntry
	query := `
        SELECT * FROM sync_queue
        WHERE status = ?
           OR (status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ? AND retry_count < ?)
        ORDER BY id ASC
    `
	err := r.Store.DB.SelectContext(ctx, &entries, query,
		model.SyncStatusPending, model.SyncStatusFailed, now, maxAttempts)
	if err != nil {
		return nil, err
	}

	// Dependency order across entity types; id order (FIFO) within a type.
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := outbox.Rank(entries[i].EntityType), outbox.Rank(entries[j].EntityType)
		if ri != rj {
			return ri < rj
		}
		return entries[i].ID < entries[j].ID
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *SQLiteRepository) MarkSyncing(ctx context.Context, id int64) error {
	_, err := r.Store.DB.ExecContext(ctx,
		`UPDATE sync_queue SET status = ? WHERE id = ?`, model.SyncStatusSyncing, id)
	return err
}

func (r *SQLiteRepository) ResetSyncing(ctx context.Context) (int64, error) {
	res, err := r.Store.DB.ExecContext(ctx,
		`UPDATE sync_queue SET status = ? WHERE status = ?`,
		model.SyncStatusPending, model.SyncStatusSyncing)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64, at time.Time) error {
	_, err := r.Store.DB.ExecContext(ctx,
		`UPDATE sync_queue SET status = ?, synced_at = ?, last_error = NULL WHERE id = ?`,
		model.SyncStatusSynced, at, id)
	return err
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetry *time.Time) error {
	_, err := r.Store.DB.ExecContext(ctx, `
        UPDATE sync_queue
        SET status = ?, retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
        WHERE id = ?
    `, model.SyncStatusFailed, errMsg, nextRetry, id)
	return err
}

func (r *SQLiteRepository) HasPending(ctx context.Context, entityType, entityID string) (bool, error) {
	var exists bool
	err := r.Store.DB.GetContext(ctx, &exists, `
        SELECT EXISTS(
            SELECT 1 FROM sync_queue
            WHERE entity_type = ? AND entity_id = ? AND status IN (?, ?, ?)
        )
    `, entityType, entityID, model.SyncStatusPending, model.SyncStatusSyncing, model.SyncStatusFailed)
	return exists, err
}

func (r *SQLiteRepository) PendingCount(ctx context.Context) (int, error) {
	var count int
	err := r.Store.DB.GetContext(ctx, &count, `
        SELECT count(*) FROM sync_queue WHERE status IN (?, ?, ?)
    `, model.SyncStatusPending, model.SyncStatusSyncing, model.SyncStatusFailed)
	return count, err
}

// DeadCount counts entries needing manual attention: terminal failures
// (no retry scheduled) and retryable ones that exhausted the attempt cap.
func (r *SQLiteRepository) DeadCount(ctx context.Context, maxAttempts int) (int, error) {
	var count int
	err := r.Store.DB.GetContext(ctx, &count, `
        SELECT count(*) FROM sync_queue
        WHERE status = ? AND (next_retry_at IS NULL OR retry_count >= ?)
    `, model.SyncStatusFailed, maxAttempts)
	return count, err
}

func (r *SQLiteRepository) PurgeSynced(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.Store.DB.ExecContext(ctx,
		`DELETE FROM sync_queue WHERE status = ? AND synced_at < ?`,
		model.SyncStatusSynced, olderThan)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
