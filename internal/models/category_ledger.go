package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryLedger is a persisted per-category summary book.
type CategoryLedger struct {
	CategoryLedgerID string          `db:"category_ledger_id"`
	Name             string          `db:"name"`
	Kind             string          `db:"kind"`
	TotalAmount      decimal.Decimal `db:"total_amount"`
	Balance          decimal.Decimal `db:"balance"`
	AuditFields
}

// CategoryLedgerEntry is one persisted movement in a category ledger.
type CategoryLedgerEntry struct {
	EntryID          string          `db:"entry_id"`
	CategoryLedgerID string          `db:"category_ledger_id"`
	MemberID         *string         `db:"member_id"`
	Amount           decimal.Decimal `db:"amount"`
	Description      string          `db:"description"`
	Reference        *string         `db:"reference"`
	SourceKind       string          `db:"source_kind"`
	SourceID         string          `db:"source_id"`
	BalanceAfter     decimal.Decimal `db:"balance_after"`
	EntryDate        time.Time       `db:"entry_date"`
	AuditFields
}
