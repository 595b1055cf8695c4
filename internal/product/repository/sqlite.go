package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/product/dto"
	"github.com/fekuna/omnipos-edge-agent/internal/store"
	"github.com/jmoiron/sqlx"
)

type SQLiteRepository struct {
	Store *store.Store
}

func NewSQLiteRepository(s *store.Store) *SQLiteRepository {
	return &SQLiteRepository{Store: s}
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.Store.DB.GetContext(ctx, &p, `SELECT * FROM products WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Caller handles missing products
		}
		return nil, err
	}
	return &p, nil
}

func (r *SQLiteRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.SearchQuery != "" {
		conditions = append(conditions, "(name LIKE :q OR barcode = :barcode)")
		args["q"] = "%" + f.SearchQuery + "%"
		args["barcode"] = f.SearchQuery
	}
	if f.LowStock {
		conditions = append(conditions, "stock <= min_stock AND min_stock > 0")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery := "SELECT count(*) FROM products" + whereClause
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

	query := "SELECT * FROM products" + whereClause + " ORDER BY name ASC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.Store.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	var items []model.Product
	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *SQLiteRepository) Create(ctx context.Context, tx *sqlx.Tx, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, name, barcode, stock, min_stock, price, buy_price,
            remote_id, server_stock, synced, created_at, updated_at
        )
        VALUES (
            :id, :name, :barcode, :stock, :min_stock, :price, :buy_price,
            :remote_id, :server_stock, :synced, :created_at, :updated_at
        )
    `
	_, err := tx.NamedExecContext(ctx, query, p)
	return err
}

func (r *SQLiteRepository) Update(ctx context.Context, tx *sqlx.Tx, p *model.Product) error {
	query := `
        UPDATE products SET
            name = :name, barcode = :barcode, min_stock = :min_stock,
            price = :price, buy_price = :buy_price, synced = :synced,
            updated_at = :updated_at
        WHERE id = :id
    `
	// Stock is deliberately not written here: only AdjustStock moves it,
	// always alongside a movement insert.
	_, err := tx.NamedExecContext(ctx, query, p)
	return err
}

func (r *SQLiteRepository) AdjustStock(ctx context.Context, tx *sqlx.Tx, productID string, delta int) error {
	res, err := tx.ExecContext(ctx, `
        UPDATE products
        SET stock = stock + ?, synced = 0, updated_at = CURRENT_TIMESTAMP
        WHERE id = ? AND stock + ? >= 0
    `, delta, productID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust stock for %s: %w", productID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("stock for product %s would go negative (delta %d)", productID, delta)
	}
	return nil
}

// MarkSynced flips the synced flag after a successful push and merges back
// the canonical fields the server assigned.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, remoteID *string, serverStock *int) error {
	query := `UPDATE products SET synced = 1`
	args := []interface{}{}
	if remoteID != nil {
		query += `, remote_id = ?`
		args = append(args, *remoteID)
	}
	if serverStock != nil {
		query += `, server_stock = ?`
		args = append(args, *serverStock)
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	_, err := r.Store.DB.ExecContext(ctx, query, args...)
	return err
}

func (r *SQLiteRepository) Upsert(ctx context.Context, tx *sqlx.Tx, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, name, barcode, stock, min_stock, price, buy_price,
            remote_id, server_stock, synced, created_at, updated_at
        )
        VALUES (
            :id, :name, :barcode, :stock, :min_stock, :price, :buy_price,
            :remote_id, :server_stock, :synced, :created_at, :updated_at
        )
        ON CONFLICT (id) DO UPDATE SET
            name = excluded.name,
            barcode = excluded.barcode,
            stock = excluded.stock,
            min_stock = excluded.min_stock,
            price = excluded.price,
            buy_price = excluded.buy_price,
            remote_id = excluded.remote_id,
            server_stock = excluded.server_stock,
            synced = excluded.synced,
            updated_at = excluded.updated_at
        WHERE excluded.updated_at > products.updated_at
    `
	// Last writer wins: a server record older than the local row is a no-op.
	_, err := tx.NamedExecContext(ctx, query, p)
	return err
}
