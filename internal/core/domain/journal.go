package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEntryAccountMissing    = errors.New("journal entry requires both a debit and a credit account")
	ErrEntrySameAccount       = errors.New("journal entry cannot debit and credit the same account")
	ErrEntryAmountNotPositive = errors.New("journal entry amount must be positive")
	ErrEntryUnbalanced        = errors.New("journal entry debit amount must equal credit amount")
)

// SourceKind identifies which source transaction a journal entry belongs to.
type SourceKind string

const (
	SourceDeposit    SourceKind = "deposit"
	SourceWithdrawal SourceKind = "withdrawal"
	SourceRepayment  SourceKind = "repayment"
	SourceFine       SourceKind = "fine"
	SourceLoan       SourceKind = "loan"
	SourceDiagnostic SourceKind = "diagnostic"
)

// VoidReferencePrefix marks journal entries minted by voiding a transaction.
const VoidReferencePrefix = "VOID-"

// JournalEntry is one balanced double-entry posting: a single debit/credit
// pair attributed to two distinct accounts. Entries belonging to a source
// transaction are located through the explicit (SourceKind, SourceID) key;
// Narration carries human-readable key:value tags for the audit trail only.
type JournalEntry struct {
	EntryID         string          `json:"entryID"`
	Date            time.Time       `json:"date"`
	Reference       *string         `json:"reference"` // Globally unique when present
	Description     string          `json:"description"`
	Narration       string          `json:"narration"`
	DebitAccountID  string          `json:"debitAccountID"`
	DebitAmount     decimal.Decimal `json:"debitAmount"`
	CreditAccountID string          `json:"creditAccountID"`
	CreditAmount    decimal.Decimal `json:"creditAmount"`
	Category        string          `json:"category"`
	SourceKind      SourceKind      `json:"sourceKind"`
	SourceID        string          `json:"sourceID"`
	IsReversal      bool            `json:"isReversal"` // True for entries created by a void
	AuditFields
}

// Validate enforces the per-entry invariants: both sides carry the same
// positive amount and the two accounts differ.
func (e JournalEntry) Validate() error {
	if e.DebitAccountID == "" || e.CreditAccountID == "" {
		return ErrEntryAccountMissing
	}
	if e.DebitAccountID == e.CreditAccountID {
		return ErrEntrySameAccount
	}
	if e.DebitAmount.LessThanOrEqual(decimal.Zero) {
		return ErrEntryAmountNotPositive
	}
	if !e.DebitAmount.Equal(e.CreditAmount) {
		return ErrEntryUnbalanced
	}
	return nil
}

// JournalFilter narrows a journal listing. Nil fields are ignored.
type JournalFilter struct {
	AccountID *string
	Category  *string
	From      *time.Time
	To        *time.Time
}

// IsZero reports whether no filter field is set.
func (f JournalFilter) IsZero() bool {
	return f.AccountID == nil && f.Category == nil && f.From == nil && f.To == nil
}

// MoneyFlow totals real cash movement over a period. Money in debits a
// financial account, money out credits one; GL and liability accounts are
// excluded.
type MoneyFlow struct {
	From     *time.Time      `json:"from,omitempty"`
	To       *time.Time      `json:"to,omitempty"`
	MoneyIn  decimal.Decimal `json:"moneyIn"`
	MoneyOut decimal.Decimal `json:"moneyOut"`
	Net      decimal.Decimal `json:"net"`
}

// AccountLedgerLine is one entry of a per-account statement with the running
// balance after the line (debit increases, credit decreases).
type AccountLedgerLine struct {
	Entry          JournalEntry    `json:"entry"`
	Side           string          `json:"side"` // "debit" or "credit"
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// LedgerSummary aggregates the whole journal. In proper double-entry books
// TotalDebits always equals TotalCredits.
type LedgerSummary struct {
	EntryCount   int             `json:"entryCount"`
	TotalDebits  decimal.Decimal `json:"totalDebits"`
	TotalCredits decimal.Decimal `json:"totalCredits"`
	TotalAssets  decimal.Decimal `json:"totalAssets"` // Financial accounts only
}
