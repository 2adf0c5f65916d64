package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is one persisted debit/credit pair. The (source_kind,
// source_id) columns tie the entry to the transaction that minted it.
type JournalEntry struct {
	EntryID         string          `db:"entry_id"`
	EntryDate       time.Time       `db:"entry_date"`
	Reference       *string         `db:"reference"`
	Description     string          `db:"description"`
	Narration       string          `db:"narration"`
	DebitAccountID  string          `db:"debit_account_id"`
	DebitAmount     decimal.Decimal `db:"debit_amount"`
	CreditAccountID string          `db:"credit_account_id"`
	CreditAmount    decimal.Decimal `db:"credit_amount"`
	Category        string          `db:"category"`
	SourceKind      string          `db:"source_kind"`
	SourceID        string          `db:"source_id"`
	IsReversal      bool            `db:"is_reversal"`
	AuditFields
}
