package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-edge-agent/internal/inventory/dto"
	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/store"
	"github.com/jmoiron/sqlx"
)

type SQLiteRepository struct {
	Store *store.Store
}

func NewSQLiteRepository(s *store.Store) *SQLiteRepository {
	return &SQLiteRepository{Store: s}
}

func (r *SQLiteRepository) ActiveBatches(ctx context.Context, productID string) ([]model.ProductBatch, error) {
	var batches []model.ProductBatch
	query := `
        SELECT * FROM product_batches
        WHERE product_id = ? AND quantity > 0
        ORDER BY expiration_date ASC, received_date ASC, id ASC
    `
	err := r.Store.DB.SelectContext(ctx, &batches, query, productID)
	return batches, err
}

func (r *SQLiteRepository) GetBatch(ctx context.Context, id string) (*model.ProductBatch, error) {
	var b model.ProductBatch
	err := r.Store.DB.GetContext(ctx, &b, `SELECT * FROM product_batches WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Caller decides whether missing is an error
		}
		return nil, err
	}
	return &b, nil
}

// ExpiringBatches returns non-empty lots expiring within the next `days` days.
func (r *SQLiteRepository) ExpiringBatches(ctx context.Context, days int) ([]model.ProductBatch, error) {
	var batches []model.ProductBatch
	query := `
        SELECT * FROM product_batches
        WHERE quantity > 0 AND expiration_date <= datetime('now', ?)
        ORDER BY expiration_date ASC
    `
	err := r.Store.DB.SelectContext(ctx, &batches, query, fmt.Sprintf("+%d days", days))
	return batches, err
}

func (r *SQLiteRepository) InsertBatch(ctx context.Context, tx *sqlx.Tx, b *model.ProductBatch) error {
	query := `
        INSERT INTO product_batches (
            id, product_id, lot_number, expiration_date, quantity, initial_qty,
            unit_cost, received_date, synced, created_at, updated_at
        )
        VALUES (
            :id, :product_id, :lot_number, :expiration_date, :quantity, :initial_qty,
            :unit_cost, :received_date, :synced, :created_at, :updated_at
        )
    `
	_, err := tx.NamedExecContext(ctx, query, b)
	return err
}

func (r *SQLiteRepository) DecrementBatch(ctx context.Context, tx *sqlx.Tx, batchID string, qty int) error {
	res, err := tx.ExecContext(ctx, `
        UPDATE product_batches
        SET quantity = quantity - ?, synced = 0, updated_at = CURRENT_TIMESTAMP
        WHERE id = ? AND quantity >= ?
    `, qty, batchID, qty)
	if err != nil {
		return fmt.Errorf("failed to decrement batch %s: %w", batchID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("batch %s has fewer than %d units", batchID, qty)
	}
	return nil
}

func (r *SQLiteRepository) IncrementBatch(ctx context.Context, tx *sqlx.Tx, batchID string, qty int) error {
	res, err := tx.ExecContext(ctx, `
        UPDATE product_batches
        SET quantity = quantity + ?, synced = 0, updated_at = CURRENT_TIMESTAMP
        WHERE id = ? AND quantity + ? <= initial_qty
    `, qty, batchID, qty)
	if err != nil {
		return fmt.Errorf("failed to increment batch %s: %w", batchID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("batch %s cannot hold %d more units", batchID, qty)
	}
	return nil
}

// UpsertBatch applies a server record during pull. Last writer wins; the
// caller has already checked timestamps and pending outbox entries.
func (r *SQLiteRepository) UpsertBatch(ctx context.Context, tx *sqlx.Tx, b *model.ProductBatch) error {
	query := `
        INSERT INTO product_batches (
            id, product_id, lot_number, expiration_date, quantity, initial_qty,
            unit_cost, received_date, synced, created_at, updated_at
        )
        VALUES (
            :id, :product_id, :lot_number, :expiration_date, :quantity, :initial_qty,
            :unit_cost, :received_date, :synced, :created_at, :updated_at
        )
        ON CONFLICT (id) DO UPDATE SET
            lot_number = excluded.lot_number,
            expiration_date = excluded.expiration_date,
            quantity = excluded.quantity,
            initial_qty = excluded.initial_qty,
            unit_cost = excluded.unit_cost,
            received_date = excluded.received_date,
            synced = excluded.synced,
            updated_at = excluded.updated_at
        WHERE excluded.updated_at > product_batches.updated_at
    `
	_, err := tx.NamedExecContext(ctx, query, b)
	return err
}

func (r *SQLiteRepository) MarkBatchSynced(ctx context.Context, id string) error {
	_, err := r.Store.DB.ExecContext(ctx, `UPDATE product_batches SET synced = 1 WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepository) InsertMovement(ctx context.Context, tx *sqlx.Tx, m *model.StockMovement) error {
	query := `
        INSERT INTO stock_movements (
            id, product_id, movement_type, quantity_change, reason, user_id, synced, created_at
        )
        VALUES (
            :id, :product_id, :movement_type, :quantity_change, :reason, :user_id, :synced, :created_at
        )
    `
	_, err := tx.NamedExecContext(ctx, query, m)
	return err
}

func (r *SQLiteRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
	rows, err := r.Store.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return nil, 0, err
		}
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC, id DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.Store.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	var items []model.StockMovement
	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *SQLiteRepository) UnsyncedMovementTotal(ctx context.Context, productID string) (int, error) {
	var total int
	err := r.Store.DB.GetContext(ctx, &total, `
        SELECT COALESCE(SUM(quantity_change), 0) FROM stock_movements
        WHERE product_id = ? AND synced = 0
    `, productID)
	return total, err
}

func (r *SQLiteRepository) MarkMovementSynced(ctx context.Context, id string) error {
	_, err := r.Store.DB.ExecContext(ctx, `UPDATE stock_movements SET synced = 1 WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepository) UpsertMovement(ctx context.Context, tx *sqlx.Tx, m *model.StockMovement) error {
	query := `
        INSERT INTO stock_movements (
            id, product_id, movement_type, quantity_change, reason, user_id, synced, created_at
        )
        VALUES (
            :id, :product_id, :movement_type, :quantity_change, :reason, :user_id, :synced, :created_at
        )
        ON CONFLICT (id) DO NOTHING
    `
	// Movements are append-only; a re-pulled movement is never rewritten.
	_, err := tx.NamedExecContext(ctx, query, m)
	return err
}
