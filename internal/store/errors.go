package store

import "fmt"

// TxError indicates a storage-engine fault (begin/commit failed). It is
// fatal for the operation that hit it and must never pass silently.
type TxError struct {
	Op  string
	Err error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("local transaction %s: %v", e.Op, e.Err)
}

func (e *TxError) Unwrap() error {
	return e.Err
}
