package pgsql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saccokit/sacco-ledger/internal/apperrors"
)

// DBConn is the subset of pgxpool.Pool the repositories use. pgx.Tx
// satisfies it too, which is what lets a repository transparently join an
// ambient transaction, and pgxmock stands in for it in tests.
type DBConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type txContextKey struct{}

// ContextWithTx returns a context carrying the transaction.
func ContextWithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext extracts the ambient transaction, if any.
func TxFromContext(ctx context.Context) pgx.Tx {
	if tx, ok := ctx.Value(txContextKey{}).(pgx.Tx); ok {
		return tx
	}
	return nil
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db DBConn
}

// conn returns the ambient transaction when the context carries one and the
// pool otherwise, so every repository method works inside and outside
// WithinTx without separate code paths.
func (r *BaseRepository) conn(ctx context.Context) DBConn {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// PgxTxManager runs functions inside a single pgx transaction.
type PgxTxManager struct {
	db DBConn
}

// NewPgxTxManager creates a transaction manager over the given pool.
func NewPgxTxManager(db DBConn) *PgxTxManager {
	return &PgxTxManager{db: db}
}

// WithinTx begins a transaction, stores it in the context and runs fn. A
// context that already carries a transaction joins it instead of nesting.
func (m *PgxTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) && !errors.Is(rbErr, sql.ErrTxDone) {
			_ = rbErr
		}
	}()

	if err := fn(ContextWithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}
