package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositType distinguishes the two kinds of member inflows: periodic
// contributions credited to the member's savings, and ad-hoc deposits.
type DepositType string

const (
	DepositTypeContribution DepositType = "contribution"
	DepositTypeDeposit      DepositType = "deposit"
)

// Deposit records money received from a member into one of the
// cooperative's financial accounts. Posting a deposit debits the
// receiving financial account and credits the member-facing income or
// savings account, and mirrors the movement into the member's personal
// ledger and the matching category ledger.
type Deposit struct {
	DepositID   string
	MemberID    string
	AccountID   string // receiving financial account
	Type        DepositType
	Amount      decimal.Decimal
	Reference   *string
	Description string
	Date        time.Time
	IsVoided    bool
	VoidedAt    *time.Time
	VoidReason  *string
	AuditFields
}
