package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/sale/dto"
	"github.com/fekuna/omnipos-edge-agent/internal/store"
	"github.com/jmoiron/sqlx"
)

type SQLiteRepository struct {
	Store *store.Store
}

func NewSQLiteRepository(s *store.Store) *SQLiteRepository {
	return &SQLiteRepository{Store: s}
}

func (r *SQLiteRepository) InsertSale(ctx context.Context, tx *sqlx.Tx, s *model.Sale) error {
	query := `
        INSERT INTO sales (
            id, user_id, total, payment_method, payment_status, amount_paid,
            amount_due, edit_count, modified_at, synced, created_at, updated_at
        )
        VALUES (
            :id, :user_id, :total, :payment_method, :payment_status, :amount_paid,
            :amount_due, :edit_count, :modified_at, :synced, :created_at, :updated_at
        )
    `
	_, err := tx.NamedExecContext(ctx, query, s)
	return err
}

func (r *SQLiteRepository) InsertItem(ctx context.Context, tx *sqlx.Tx, item *model.SaleItem) error {
	query := `
        INSERT INTO sale_items (id, sale_id, product_id, batch_id, quantity, unit_price)
        VALUES (:id, :sale_id, :product_id, :batch_id, :quantity, :unit_price)
    `
	_, err := tx.NamedExecContext(ctx, query, item)
	return err
}

func (r *SQLiteRepository) UpdateSale(ctx context.Context, tx *sqlx.Tx, s *model.Sale) error {
	query := `
        UPDATE sales SET
            total = :total, payment_status = :payment_status, amount_paid = :amount_paid,
            amount_due = :amount_due, edit_count = :edit_count, modified_at = :modified_at,
            synced = :synced, updated_at = :updated_at
        WHERE id = :id
    `
	_, err := tx.NamedExecContext(ctx, query, s)
	return err
}

func (r *SQLiteRepository) UpdateItemQuantity(ctx context.Context, tx *sqlx.Tx, itemID string, quantity int) error {
	_, err := tx.ExecContext(ctx, `UPDATE sale_items SET quantity = ? WHERE id = ?`, quantity, itemID)
	return err
}

func (r *SQLiteRepository) DeleteItem(ctx context.Context, tx *sqlx.Tx, itemID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE id = ?`, itemID)
	return err
}

func (r *SQLiteRepository) GetSale(ctx context.Context, id string) (*model.Sale, error) {
	var s model.Sale
	err := r.Store.DB.GetContext(ctx, &s, `SELECT * FROM sales WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	err = r.Store.DB.SelectContext(ctx, &s.Items,
		`SELECT * FROM sale_items WHERE sale_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteRepository) ListSales(ctx context.Context, f *dto.SaleFilters) ([]model.Sale, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.UserID != "" {
		conditions = append(conditions, "user_id = :user_id")
		args["user_id"] = f.UserID
	}
	if f.PaymentStatus != "" {
		conditions = append(conditions, "payment_status = :payment_status")
		args["payment_status"] = f.PaymentStatus
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
	countQuery := "SELECT count(*) FROM sales" + whereClause
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

	query := "SELECT * FROM sales" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.Store.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	var sales []model.Sale
	err = nstmt.SelectContext(ctx, &sales, args)
	return sales, count, err
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.Store.DB.ExecContext(ctx, `UPDATE sales SET synced = 1 WHERE id = ?`, id)
	return err
}

// Upsert applies a server sale during pull, replacing its items wholesale.
func (r *SQLiteRepository) Upsert(ctx context.Context, tx *sqlx.Tx, s *model.Sale) error {
	query := `
        INSERT INTO sales (
            id, user_id, total, payment_method, payment_status, amount_paid,
            amount_due, edit_count, modified_at, synced, created_at, updated_at
        )
        VALUES (
            :id, :user_id, :total, :payment_method, :payment_status, :amount_paid,
            :amount_due, :edit_count, :modified_at, :synced, :created_at, :updated_at
        )
        ON CONFLICT (id) DO UPDATE SET
            total = excluded.total,
            payment_status = excluded.payment_status,
            amount_paid = excluded.amount_paid,
            amount_due = excluded.amount_due,
            edit_count = excluded.edit_count,
            modified_at = excluded.modified_at,
            synced = excluded.synced,
            updated_at = excluded.updated_at
        WHERE excluded.updated_at > sales.updated_at
    `
	res, err := tx.NamedExecContext(ctx, query, s)
	if err != nil {
		return err
	}

	// Zero rows means the local sale is newer; leave its items alone too.
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = ?`, s.ID); err != nil {
		return err
	}
	for i := range s.Items {
		if err := r.InsertItem(ctx, tx, &s.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) InsertCreditPayment(ctx context.Context, tx *sqlx.Tx, c *model.CreditPayment) error {
	query := `
        INSERT INTO credit_payments (id, sale_id, amount, method, user_id, synced, created_at, updated_at)
        VALUES (:id, :sale_id, :amount, :method, :user_id, :synced, :created_at, :updated_at)
    `
	_, err := tx.NamedExecContext(ctx, query, c)
	return err
}

func (r *SQLiteRepository) MarkCreditPaymentSynced(ctx context.Context, id string) error {
	_, err := r.Store.DB.ExecContext(ctx, `UPDATE credit_payments SET synced = 1 WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepository) UpsertCreditPayment(ctx context.Context, tx *sqlx.Tx, c *model.CreditPayment) error {
	query := `
        INSERT INTO credit_payments (id, sale_id, amount, method, user_id, synced, created_at, updated_at)
        VALUES (:id, :sale_id, :amount, :method, :user_id, :synced, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET
            amount = excluded.amount,
            method = excluded.method,
            synced = excluded.synced,
            updated_at = excluded.updated_at
        WHERE excluded.updated_at > credit_payments.updated_at
    `
	_, err := tx.NamedExecContext(ctx, query, c)
	return err
}
