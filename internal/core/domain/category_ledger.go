package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryKind classifies a category ledger for the coop-wide
// income/expense summary.
type CategoryKind string

const (
	CategoryIncome  CategoryKind = "income"
	CategoryExpense CategoryKind = "expense"
)

// CategoryLedger groups journal activity by reporting category
// (monthly contributions, fines, loan interest and so on). TotalAmount
// accumulates gross inflows; Balance nets reversals back out.
type CategoryLedger struct {
	CategoryLedgerID string
	Name             string
	Kind             CategoryKind
	TotalAmount      decimal.Decimal
	Balance          decimal.Decimal
	AuditFields
}

// CategorySummary nets the income categories against the expense
// categories across the whole coop.
type CategorySummary struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Net          decimal.Decimal
}

// CategoryLedgerEntry is one movement inside a category ledger,
// carrying the source transaction it came from and the category
// balance after the movement was applied.
type CategoryLedgerEntry struct {
	EntryID          string
	CategoryLedgerID string
	MemberID         *string
	Amount           decimal.Decimal
	Description      string
	Reference        *string
	SourceKind       SourceKind
	SourceID         string
	BalanceAfter     decimal.Decimal
	Date             time.Time
	AuditFields
}
