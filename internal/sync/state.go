package sync

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/store"
)

// StateRepository persists the pull watermark and the role the replica was
// bootstrapped with. One row, updated in place.
type StateRepository struct {
	Store *store.Store
}

func NewStateRepository(s *store.Store) *StateRepository {
	return &StateRepository{Store: s}
}

func (r *StateRepository) Watermark(ctx context.Context) (*time.Time, error) {
	var t *time.Time
	err := r.Store.DB.GetContext(ctx, &t, `SELECT last_sync_at FROM sync_state WHERE id = 1`)
	return t, err
}

// AdvanceWatermark moves the cursor forward. It never moves it back: a
// stale serverTime from a delayed response is ignored.
func (r *StateRepository) AdvanceWatermark(ctx context.Context, t time.Time) error {
	_, err := r.Store.DB.ExecContext(ctx, `
        UPDATE sync_state SET last_sync_at = ?
        WHERE id = 1 AND (last_sync_at IS NULL OR last_sync_at < ?)
    `, t, t)
	return err
}

func (r *StateRepository) Role(ctx context.Context) (string, error) {
	var role string
	err := r.Store.DB.GetContext(ctx, &role, `SELECT role FROM sync_state WHERE id = 1`)
	return role, err
}

func (r *StateRepository) SetRole(ctx context.Context, role string) error {
	_, err := r.Store.DB.ExecContext(ctx, `UPDATE sync_state SET role = ? WHERE id = 1`, role)
	return err
}
