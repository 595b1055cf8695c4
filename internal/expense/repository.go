package expense

import (
	"context"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/store"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, e *model.Expense) error
	List(ctx context.Context) ([]model.Expense, error)
	Upsert(ctx context.Context, tx *sqlx.Tx, e *model.Expense) error
	MarkSynced(ctx context.Context, id string) error
}

type SQLiteRepository struct {
	Store *store.Store
}

func NewSQLiteRepository(s *store.Store) *SQLiteRepository {
	return &SQLiteRepository{Store: s}
}

func (r *SQLiteRepository) Insert(ctx context.Context, tx *sqlx.Tx, e *model.Expense) error {
	query := `
        INSERT INTO expenses (id, label, category, amount, user_id, synced, created_at, updated_at)
        VALUES (:id, :label, :category, :amount, :user_id, :synced, :created_at, :updated_at)
    `
	_, err := tx.NamedExecContext(ctx, query, e)
	return err
}

func (r *SQLiteRepository) List(ctx context.Context) ([]model.Expense, error) {
	var expenses []model.Expense
	err := r.Store.DB.SelectContext(ctx, &expenses, `SELECT * FROM expenses ORDER BY created_at DESC`)
	return expenses, err
}

func (r *SQLiteRepository) Upsert(ctx context.Context, tx *sqlx.Tx, e *model.Expense) error {
	query := `
        INSERT INTO expenses (id, label, category, amount, user_id, synced, created_at, updated_at)
        VALUES (:id, :label, :category, :amount, :user_id, :synced, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET
            label = excluded.label,
            category = excluded.category,
            amount = excluded.amount,
            synced = excluded.synced,
            updated_at = excluded.updated_at
        WHERE excluded.updated_at > expenses.updated_at
    `
	_, err := tx.NamedExecContext(ctx, query, e)
	return err
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.Store.DB.ExecContext(ctx, `UPDATE expenses SET synced = 1 WHERE id = ?`, id)
	return err
}
