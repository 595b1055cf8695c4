package expense

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/model"
	"github.com/fekuna/omnipos-edge-agent/internal/outbox"
	"github.com/fekuna/omnipos-edge-agent/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UseCase struct {
	store  *store.Store
	repo   Repository
	outbox outbox.Repository
}

func NewUseCase(s *store.Store, repo Repository, ob outbox.Repository) *UseCase {
	return &UseCase{store: s, repo: repo, outbox: ob}
}

func (uc *UseCase) RecordExpense(ctx context.Context, label, category string, amount float64, userID string) (*model.Expense, error) {
	if amount <= 0 {
		return nil, errors.New("expense amount must be positive")
	}

	now := time.Now().UTC()
	e := &model.Expense{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Label:     label,
		Category:  category,
		Amount:    amount,
		UserID:    userID,
	}

	err := uc.store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := uc.repo.Insert(ctx, tx, e); err != nil {
			return err
		}
		return uc.outbox.Enqueue(ctx, tx, model.EntityExpense, e.ID, model.SyncActionCreate, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (uc *UseCase) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	return uc.repo.List(ctx)
}
