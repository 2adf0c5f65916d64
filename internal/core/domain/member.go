package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member is the slice of the member surface this core consumes: existence
// checks and aggregate balance movements. Registration and profile data are
// owned elsewhere.
type Member struct {
	MemberID    string          `json:"memberID"`
	Name        string          `json:"name"`
	Balance     decimal.Decimal `json:"balance"`     // Savings position
	LoanBalance decimal.Decimal `json:"loanBalance"` // Outstanding borrowings
	IsActive    bool            `json:"isActive"`
}

// MemberLedgerEntryType tags an entry in a member's personal ledger.
type MemberLedgerEntryType string

const (
	LedgerContribution MemberLedgerEntryType = "contribution"
	LedgerDeposit      MemberLedgerEntryType = "deposit"
	LedgerWithdrawal   MemberLedgerEntryType = "withdrawal"
	LedgerRepayment    MemberLedgerEntryType = "loan_repayment"
	LedgerFinePayment  MemberLedgerEntryType = "fine_payment"
	LedgerAdjustment   MemberLedgerEntryType = "adjustment"
)

// MemberLedgerEntry is one row of a member's personal ledger. It is a
// materialized book of its own: Amount is signed and BalanceAfter snapshots
// the member's aggregate balance at write time.
type MemberLedgerEntry struct {
	EntryID      string                `json:"entryID"`
	MemberID     string                `json:"memberID"`
	Type         MemberLedgerEntryType `json:"type"`
	Amount       decimal.Decimal       `json:"amount"`
	Description  string                `json:"description"`
	Reference    string                `json:"reference"`
	SourceKind   SourceKind            `json:"sourceKind"`
	SourceID     string                `json:"sourceID"`
	BalanceAfter decimal.Decimal       `json:"balanceAfter"`
	Date         time.Time             `json:"date"`
}
