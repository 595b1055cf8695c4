package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type Config struct {
	Path        string
	BusyTimeout time.Duration
}

// Store owns the local replica database. It is passed explicitly to every
// repository so tests can run against isolated instances; there is no
// package-level handle. A single Store per process is assumed: concurrent
// writers from a second process racing on the same file are not supported.
type Store struct {
	DB *sqlx.DB
}

func Open(cfg *Config) (*Store, error) {
	// _time_format=sqlite stores time.Time in the text format sqlite's own
	// datetime() functions understand, so date comparisons work in SQL.
	dsn := fmt.Sprintf("%s?_time_format=sqlite&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
	}

	// modernc sqlite serializes writes anyway; one connection avoids
	// SQLITE_BUSY churn between the sync engine and local writes.
	db.SetMaxOpenConns(1)

	s := &Store{DB: db}
	if err := s.bootstrap(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenMemory opens a throwaway in-memory replica, used by tests.
func OpenMemory() (*Store, error) {
	db, err := sqlx.Connect("sqlite", ":memory:?_time_format=sqlite&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open in-memory sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{DB: db}
	if err := s.bootstrap(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) bootstrap() error {
	if _, err := s.DB.Exec(schema); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// InTx runs fn inside a transaction with all-or-nothing visibility. Any
// storage-engine fault (begin/commit failure) is wrapped in *TxError so
// callers can distinguish it from domain errors returned by fn.
func (s *Store) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return &TxError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return &TxError{Op: "commit", Err: err}
	}
	return nil
}
