package models

import (
	"github.com/shopspring/decimal"
)

// AccountType mirrors domain.AccountType for persistence.
type AccountType string

// Account is a persisted ledger account. Code is the stable key the
// posting layer resolves accounts by; Name is for display only.
type Account struct {
	AccountID   string          `db:"account_id"`
	Code        string          `db:"code"`
	Name        string          `db:"name"`
	AccountType AccountType     `db:"account_type"`
	Currency    string          `db:"currency"`
	Balance     decimal.Decimal `db:"balance"`
	Description string          `db:"description"`
	IsActive    bool            `db:"is_active"`
	AuditFields
}
