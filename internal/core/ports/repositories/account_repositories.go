package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its stable chart-of-accounts code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves accounts, optionally filtered to financial types only.
	ListAccounts(ctx context.Context, financialOnly bool, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's details (not its balance).
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// AccountBalanceSupport defines the balance mutations used by posting and
// reconciliation. Increments are applied atomically in SQL.
type AccountBalanceSupport interface {
	// LockAccountsByIDs selects the accounts FOR UPDATE inside the ambient transaction.
	LockAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ApplyBalanceDeltas adds each delta to the matching account balance.
	ApplyBalanceDeltas(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error

	// SetAccountBalance overwrites a stored balance with a recomputed value.
	SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountBalanceSupport
}
