package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deposit is a persisted member inflow.
type Deposit struct {
	DepositID   string          `db:"deposit_id"`
	MemberID    string          `db:"member_id"`
	AccountID   string          `db:"account_id"`
	DepositType string          `db:"deposit_type"`
	Amount      decimal.Decimal `db:"amount"`
	Reference   *string         `db:"reference"`
	Description string          `db:"description"`
	TxnDate     time.Time       `db:"txn_date"`
	IsVoided    bool            `db:"is_voided"`
	VoidedAt    *time.Time      `db:"voided_at"`
	VoidReason  *string         `db:"void_reason"`
	AuditFields
}

// Withdrawal is a persisted outflow, member-facing or expense.
type Withdrawal struct {
	WithdrawalID   string          `db:"withdrawal_id"`
	MemberID       *string         `db:"member_id"`
	AccountID      string          `db:"account_id"`
	WithdrawalType string          `db:"withdrawal_type"`
	Amount         decimal.Decimal `db:"amount"`
	Reference      *string         `db:"reference"`
	Description    string          `db:"description"`
	TxnDate        time.Time       `db:"txn_date"`
	IsVoided       bool            `db:"is_voided"`
	VoidedAt       *time.Time      `db:"voided_at"`
	VoidReason     *string         `db:"void_reason"`
	AuditFields
}

// Repayment is a persisted loan repayment with its stored waterfall split.
type Repayment struct {
	RepaymentID     string          `db:"repayment_id"`
	LoanID          string          `db:"loan_id"`
	MemberID        string          `db:"member_id"`
	AccountID       string          `db:"account_id"`
	Amount          decimal.Decimal `db:"amount"`
	FinesPortion    decimal.Decimal `db:"fines_portion"`
	InterestPortion decimal.Decimal `db:"interest_portion"`
	PrincipalPortion decimal.Decimal `db:"principal_portion"`
	Reference       *string         `db:"reference"`
	Description     string          `db:"description"`
	TxnDate         time.Time       `db:"txn_date"`
	IsVoided        bool            `db:"is_voided"`
	VoidedAt        *time.Time      `db:"voided_at"`
	VoidReason      *string         `db:"void_reason"`
	AuditFields
}
