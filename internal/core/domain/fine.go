package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type FineStatus string

const (
	FineStatusUnpaid  FineStatus = "unpaid"
	FineStatusPartial FineStatus = "partial"
	FineStatusPaid    FineStatus = "paid"
)

// Fine is a penalty levied against a member, usually tied to a loan.
// Accruing a fine posts Dr Fines Receivable / Cr Fine Income; payments
// arrive through the repayment waterfall and settle fines oldest first.
type Fine struct {
	FineID     string
	MemberID   string
	LoanID     *string
	Amount     decimal.Decimal
	PaidAmount decimal.Decimal
	Status     FineStatus
	Reason     string
	LeviedAt   time.Time
	AuditFields
}

// Outstanding is the unpaid remainder of the fine.
func (f Fine) Outstanding() decimal.Decimal {
	out := f.Amount.Sub(f.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}
