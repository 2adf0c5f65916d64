package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalType distinguishes a member drawing down savings from an
// operational expense paid out of a financial account.
type WithdrawalType string

const (
	WithdrawalTypeMember  WithdrawalType = "member"
	WithdrawalTypeExpense WithdrawalType = "expense"
)

// Withdrawal records money leaving a financial account, either handed
// to a member against their savings or spent as an expense.
type Withdrawal struct {
	WithdrawalID string
	MemberID     *string // nil for pure expense withdrawals
	AccountID    string  // paying financial account
	Type         WithdrawalType
	Amount       decimal.Decimal
	Reference    *string
	Description  string
	Date         time.Time
	IsVoided     bool
	VoidedAt     *time.Time
	VoidReason   *string
	AuditFields
}
