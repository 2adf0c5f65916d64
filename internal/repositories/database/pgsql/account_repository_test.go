package pgsql

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saccokit/sacco-ledger/internal/apperrors"
	"github.com/saccokit/sacco-ledger/internal/core/domain"
)

func TestAccountRepository_FindAccountByCode(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPgxAccountRepository(mock)
	now := time.Now()

	query := `SELECT account_id, code, name, account_type, currency, balance, description, is_active, created_at, created_by, last_updated_at, last_updated_by FROM accounts WHERE code = \$1;`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{
			"account_id", "code", "name", "account_type", "currency", "balance",
			"description", "is_active", "created_at", "created_by", "last_updated_at", "last_updated_by",
		}).AddRow(
			"acc-1", domain.CodeCashbox, "Cashbox", "cash", "KES", decimal.RequireFromString("1500"),
			"", true, now, "system", now, "system",
		)
		mock.ExpectQuery(query).WithArgs(domain.CodeCashbox).WillReturnRows(rows)

		acc, err := repo.FindAccountByCode(ctx, domain.CodeCashbox)
		require.NoError(t, err)
		assert.Equal(t, "acc-1", acc.AccountID)
		assert.Equal(t, domain.AccountCash, acc.Type)
		assert.True(t, acc.Balance.Equal(decimal.RequireFromString("1500")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("MISSING").WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindAccountByCode(ctx, "MISSING")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_ApplyBalanceDeltas(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPgxAccountRepository(mock)
	now := time.Now()

	query := `
		UPDATE accounts
		SET balance = COALESCE\(balance, 0\) \+ \$2, last_updated_at = \$3, last_updated_by = \$4
		WHERE account_id = \$1;
	`

	t.Run("applies each delta", func(t *testing.T) {
		delta := decimal.RequireFromString("250")
		batch := mock.ExpectBatch()
		batch.ExpectExec(query).WithArgs("acc-1", delta, now, "user-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.ApplyBalanceDeltas(ctx, map[string]decimal.Decimal{"acc-1": delta}, "user-1", now)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero deltas are skipped", func(t *testing.T) {
		err := repo.ApplyBalanceDeltas(ctx, map[string]decimal.Decimal{"acc-1": decimal.Zero}, "user-1", now)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing account surfaces as not found", func(t *testing.T) {
		delta := decimal.RequireFromString("10")
		batch := mock.ExpectBatch()
		batch.ExpectExec(query).WithArgs("acc-gone", delta, now, "user-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.ApplyBalanceDeltas(ctx, map[string]decimal.Decimal{"acc-gone": delta}, "user-1", now)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_LockAccountsByIDs(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPgxAccountRepository(mock)
	now := time.Now()

	query := `SELECT account_id, code, name, account_type, currency, balance, description, is_active, created_at, created_by, last_updated_at, last_updated_by FROM accounts WHERE account_id = ANY\(\$1\) ORDER BY account_id FOR UPDATE;`

	t.Run("locks in sorted id order", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{
			"account_id", "code", "name", "account_type", "currency", "balance",
			"description", "is_active", "created_at", "created_by", "last_updated_at", "last_updated_by",
		}).AddRow(
			"acc-1", domain.CodeCashbox, "Cashbox", "cash", "KES", decimal.RequireFromString("1500"),
			"", true, now, "system", now, "system",
		).AddRow(
			"acc-2", domain.CodeMemberSavingsPayable, "Member Savings Payable", "gl", "KES", decimal.RequireFromString("3000"),
			"", true, now, "system", now, "system",
		)
		mock.ExpectQuery(query).WithArgs([]string{"acc-1", "acc-2"}).WillReturnRows(rows)

		accounts, err := repo.LockAccountsByIDs(ctx, []string{"acc-2", "acc-1"})
		require.NoError(t, err)
		assert.Len(t, accounts, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty id list skips the query", func(t *testing.T) {
		accounts, err := repo.LockAccountsByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, accounts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_SaveAccountDuplicate(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPgxAccountRepository(mock)
	now := time.Now()

	acc := domain.Account{
		AccountID: "acc-1",
		Code:      domain.CodeCashbox,
		Name:      "Cashbox",
		Type:      domain.AccountCash,
		Currency:  "KES",
		IsActive:  true,
		AuditFields: domain.AuditFields{
			CreatedAt: now, CreatedBy: "system", LastUpdatedAt: now, LastUpdatedBy: "system",
		},
	}

	mock.ExpectExec(`INSERT INTO accounts`).
		WithArgs(acc.AccountID, acc.Code, acc.Name, "cash", acc.Currency, acc.Balance,
			acc.Description, acc.IsActive, now, "system", now, "system").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.SaveAccount(ctx, acc)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
