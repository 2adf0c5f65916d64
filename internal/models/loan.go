package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan is a persisted member loan.
type Loan struct {
	LoanID         string          `db:"loan_id"`
	MemberID       string          `db:"member_id"`
	Principal      decimal.Decimal `db:"principal"`
	InterestRate   decimal.Decimal `db:"interest_rate"`
	InterestType   string          `db:"interest_type"`
	DurationMonths int             `db:"duration_months"`
	TotalInterest  decimal.Decimal `db:"total_interest"`
	TotalPayable   decimal.Decimal `db:"total_payable"`
	RepaidAmount   decimal.Decimal `db:"repaid_amount"`
	Status         string          `db:"status"`
	DisbursedAt    time.Time       `db:"disbursed_at"`
	AuditFields
}

// Fine is a persisted penalty against a member.
type Fine struct {
	FineID     string          `db:"fine_id"`
	MemberID   string          `db:"member_id"`
	LoanID     *string         `db:"loan_id"`
	Amount     decimal.Decimal `db:"amount"`
	PaidAmount decimal.Decimal `db:"paid_amount"`
	Status     string          `db:"status"`
	Reason     string          `db:"reason"`
	LeviedAt   time.Time       `db:"levied_at"`
	AuditFields
}

// FinePayment links a repayment's fine portion to the fines it settled.
type FinePayment struct {
	FinePaymentID string          `db:"fine_payment_id"`
	RepaymentID   string          `db:"repayment_id"`
	FineID        string          `db:"fine_id"`
	Amount        decimal.Decimal `db:"amount"`
}
