package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member is a cooperative member with cached savings and loan balances.
type Member struct {
	MemberID    string          `db:"member_id"`
	Name        string          `db:"name"`
	Balance     decimal.Decimal `db:"balance"`
	LoanBalance decimal.Decimal `db:"loan_balance"`
	IsActive    bool            `db:"is_active"`
}

// MemberLedgerEntry is one row in a member's personal ledger.
// BalanceAfter snapshots the member balance right after the movement.
type MemberLedgerEntry struct {
	EntryID      string          `db:"entry_id"`
	MemberID     string          `db:"member_id"`
	EntryType    string          `db:"entry_type"`
	Amount       decimal.Decimal `db:"amount"`
	Description  string          `db:"description"`
	Reference    string          `db:"reference"`
	SourceKind   string          `db:"source_kind"`
	SourceID     string          `db:"source_id"`
	BalanceAfter decimal.Decimal `db:"balance_after"`
	EntryDate    time.Time       `db:"entry_date"`
}
