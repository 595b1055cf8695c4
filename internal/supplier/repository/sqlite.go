package repository

import (
	"context"
	"database/sql"
	"errors"

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

func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (*model.Supplier, error) {
	var s model.Supplier
	err := r.Store.DB.GetContext(ctx, &s, `SELECT * FROM suppliers WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteRepository) FindAll(ctx context.Context) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.Store.DB.SelectContext(ctx, &suppliers, `SELECT * FROM suppliers ORDER BY name ASC`)
	return suppliers, err
}

func (r *SQLiteRepository) Create(ctx context.Context, tx *sqlx.Tx, s *model.Supplier) error {
	query := `
        INSERT INTO suppliers (id, name, phone, email, synced, created_at, updated_at)
        VALUES (:id, :name, :phone, :email, :synced, :created_at, :updated_at)
    `
	_, err := tx.NamedExecContext(ctx, query, s)
	return err
}

func (r *SQLiteRepository) Update(ctx context.Context, tx *sqlx.Tx, s *model.Supplier) error {
	query := `
        UPDATE suppliers SET name = :name, phone = :phone, email = :email,
            synced = :synced, updated_at = :updated_at
        WHERE id = :id
    `
	_, err := tx.NamedExecContext(ctx, query, s)
	return err
}

func (r *SQLiteRepository) Upsert(ctx context.Context, tx *sqlx.Tx, s *model.Supplier) error {
	query := `
        INSERT INTO suppliers (id, name, phone, email, synced, created_at, updated_at)
        VALUES (:id, :name, :phone, :email, :synced, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET
            name = excluded.name,
            phone = excluded.phone,
            email = excluded.email,
            synced = excluded.synced,
            updated_at = excluded.updated_at
        WHERE excluded.updated_at > suppliers.updated_at
    `
	_, err := tx.NamedExecContext(ctx, query, s)
	return err
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.Store.DB.ExecContext(ctx, `UPDATE suppliers SET synced = 1 WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepository) GetOrder(ctx context.Context, id string) (*model.SupplierOrder, error) {
	var o model.SupplierOrder
	err := r.Store.DB.GetContext(ctx, &o, `SELECT * FROM supplier_orders WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *SQLiteRepository) ListOrders(ctx context.Context, supplierID string) ([]model.SupplierOrder, error) {
	var orders []model.SupplierOrder
	query := `SELECT * FROM supplier_orders`
	args := []interface{}{}
	if supplierID != "" {
		query += ` WHERE supplier_id = ?`
		args = append(args, supplierID)
	}
	query += ` ORDER BY created_at DESC`
	err := r.Store.DB.SelectContext(ctx, &orders, query, args...)
	return orders, err
}

func (r *SQLiteRepository) CreateOrder(ctx context.Context, tx *sqlx.Tx, o *model.SupplierOrder) error {
	query := `
        INSERT INTO supplier_orders (id, supplier_id, status, total, synced, created_at, updated_at)
        VALUES (:id, :supplier_id, :status, :total, :synced, :created_at, :updated_at)
    `
	_, err := tx.NamedExecContext(ctx, query, o)
	return err
}

func (r *SQLiteRepository) UpdateOrder(ctx context.Context, tx *sqlx.Tx, o *model.SupplierOrder) error {
	query := `
        UPDATE supplier_orders SET status = :status, total = :total,
            synced = :synced, updated_at = :updated_at
        WHERE id = :id
    `
	_, err := tx.NamedExecContext(ctx, query, o)
	return err
}

func (r *SQLiteRepository) UpsertOrder(ctx context.Context, tx *sqlx.Tx, o *model.SupplierOrder) error {
	query := `
        INSERT INTO supplier_orders (id, supplier_id, status, total, synced, created_at, updated_at)
        VALUES (:id, :supplier_id, :status, :total, :synced, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET
            status = excluded.status,
            total = excluded.total,
            synced = excluded.synced,
            updated_at = excluded.updated_at
        WHERE excluded.updated_at > supplier_orders.updated_at
    `
	_, err := tx.NamedExecContext(ctx, query, o)
	return err
}

func (r *SQLiteRepository) MarkOrderSynced(ctx context.Context, id string) error {
	_, err := r.Store.DB.ExecContext(ctx, `UPDATE supplier_orders SET synced = 1 WHERE id = ?`, id)
	return err
}
