package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InterestType string

const (
	InterestTypeFlat     InterestType = "flat"
	InterestTypeReducing InterestType = "reducing"
)

type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "active"
	LoanStatusCompleted LoanStatus = "completed"
	LoanStatusDefaulted LoanStatus = "defaulted"
)

// Loan is a member loan with its agreed terms and running totals. The
// interest totals are fixed at disbursement; RepaidAmount accumulates
// the principal and interest portions of posted repayments.
type Loan struct {
	LoanID        string
	MemberID      string
	Principal     decimal.Decimal
	InterestRate  decimal.Decimal // annual rate in percent
	InterestType  InterestType
	DurationMonths int
	TotalInterest decimal.Decimal
	TotalPayable  decimal.Decimal
	RepaidAmount  decimal.Decimal
	Status        LoanStatus
	DisbursedAt   time.Time
	AuditFields
}

// OutstandingBalance is what the member still owes on principal plus
// interest, ignoring fines.
func (l Loan) OutstandingBalance() decimal.Decimal {
	out := l.TotalPayable.Sub(l.RepaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// ScheduleInstallment is one row of a loan's amortization schedule.
type ScheduleInstallment struct {
	Number    int
	DueDate   time.Time
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Total     decimal.Decimal
	Balance   decimal.Decimal // principal remaining after this installment
}
