package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBootstrapsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replica.db")

	s, err := Open(&Config{Path: path, BusyTimeout: time.Second})
	require.NoError(t, err)
	defer s.Close()

	var name string
	err = s.DB.Get(&name, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'products'`)
	require.NoError(t, err)
	assert.Equal(t, "products", name)

	// Single state row seeded with a nil watermark.
	var count int
	require.NoError(t, s.DB.Get(&count, `SELECT count(*) FROM sync_state`))
	assert.Equal(t, 1, count)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replica.db")

	s, err := Open(&Config{Path: path, BusyTimeout: time.Second})
	require.NoError(t, err)
	_, err = s.DB.Exec(`INSERT INTO products (id, name, created_at, updated_at) VALUES ('p1', 'Aspirin', ?, ?)`,
		time.Now().UTC(), time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening the same file must not clobber existing data.
	s, err = Open(&Config{Path: path, BusyTimeout: time.Second})
	require.NoError(t, err)
	defer s.Close()

	var count int
	require.NoError(t, s.DB.Get(&count, `SELECT count(*) FROM products`))
	assert.Equal(t, 1, count)
}

func TestInTxRollsBackOnError(t *testing.T) {
	s, err := OpenMemory()
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	boom := errors.New("boom")

	err = s.InTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO products (id, name, created_at, updated_at) VALUES ('p1', 'Aspirin', ?, ?)`,
			time.Now().UTC(), time.Now().UTC())
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, s.DB.Get(&count, `SELECT count(*) FROM products`))
	assert.Zero(t, count)
}

func TestInTxCommits(t *testing.T) {
	s, err := OpenMemory()
	require.NoError(t, err)
	defer s.Close()

	err = s.InTx(context.Background(), func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO products (id, name, created_at, updated_at) VALUES ('p1', 'Aspirin', ?, ?)`,
			time.Now().UTC(), time.Now().UTC())
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, s.DB.Get(&count, `SELECT count(*) FROM products`))
	assert.Equal(t, 1, count)
}

func TestSchemaRejectsNegativeStock(t *testing.T) {
	s, err := OpenMemory()
	require.NoError(t, err)
	defer s.Close()

	_, err = s.DB.Exec(`INSERT INTO products (id, name, stock, created_at, updated_at) VALUES ('p1', 'Aspirin', -1, ?, ?)`,
		time.Now().UTC(), time.Now().UTC())
	assert.Error(t, err)
}
