package repository

import "context"

// TxManager is the explicit unit-of-work boundary. WithinTx runs fn and
// commits when it returns nil; any error rolls every write back and is
// returned to the caller unmodified.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
