package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Allocation is the waterfall breakdown of a repayment amount. The
// three portions always sum to the amount paid: fines are settled
// first, then outstanding interest, and whatever remains reduces
// principal.
type Allocation struct {
	Fines     decimal.Decimal
	Interest  decimal.Decimal
	Principal decimal.Decimal
}

// Total is the sum of the three portions.
func (a Allocation) Total() decimal.Decimal {
	return a.Fines.Add(a.Interest).Add(a.Principal)
}

// FinePayment records how much of a repayment's fine portion landed on
// one specific fine.
type FinePayment struct {
	FineID string
	Amount decimal.Decimal
}

// Repayment records a member paying down a loan. The stored allocation
// is the authoritative split; voiding a repayment rolls the split back.
type Repayment struct {
	RepaymentID string
	LoanID      string
	MemberID    string
	AccountID   string // receiving financial account
	Amount      decimal.Decimal
	Allocation  Allocation
	Reference   *string
	Description string
	Date        time.Time
	IsVoided    bool
	VoidedAt    *time.Time
	VoidReason  *string
	AuditFields
}
