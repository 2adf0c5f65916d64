package repositories

import "context"

// TxManager runs a function inside a single database transaction. The
// context passed to fn carries the transaction; repository methods invoked
// with it join the transaction instead of the pool. fn returning an error
// rolls everything back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
