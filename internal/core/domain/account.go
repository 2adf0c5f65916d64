package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType classifies an account. Financial types hold real money; GL and
// liability accounts are bookkeeping contra accounts.
type AccountType string

const (
	AccountCash        AccountType = "cash"
	AccountBank        AccountType = "bank"
	AccountMobileMoney AccountType = "mobileMoney"
	AccountPettyCash   AccountType = "pettyCash"
	AccountGL          AccountType = "gl"
	AccountLiability   AccountType = "liability"
)

// FinancialAccountTypes are the account types counted in money-in/out totals.
// GL and liability accounts are excluded so placeholder accounts never distort
// the cooperative's asset position.
var FinancialAccountTypes = []AccountType{
	AccountCash, AccountBank, AccountMobileMoney, AccountPettyCash,
}

// IsFinancial reports whether t represents a real money-holding account.
func (t AccountType) IsFinancial() bool {
	switch t {
	case AccountCash, AccountBank, AccountMobileMoney, AccountPettyCash:
		return true
	}
	return false
}

// Account is one row of the chart of accounts. Balance is maintained
// transactionally at posting time and equals the net of all journal entries
// referencing the account (sum of debits minus sum of credits).
type Account struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"` // Stable machine identifier, unique
	Name        string          `json:"name"` // Display name, unique
	Type        AccountType     `json:"type"`
	Currency    string          `json:"currency"`
	Balance     decimal.Decimal `json:"balance"`
	Description string          `json:"description"`
	IsActive    bool            `json:"isActive"`
	AuditFields
}

// Well-known chart-of-accounts codes seeded by migration. EnsureAccount
// re-creates any of these that go missing, so postings are self-healing.
const (
	CodeCashbox              = "CASHBOX"
	CodeLoansLedger          = "LOANS_LEDGER"
	CodeInterestReceivable   = "INTEREST_RECEIVABLE"
	CodeInterestIncome       = "INTEREST_INCOME"
	CodeFinesReceivable      = "FINES_RECEIVABLE"
	CodeFineIncome           = "FINE_INCOME"
	CodeMemberSavingsPayable = "MEMBER_SAVINGS_PAYABLE"
	CodeContributionReceived = "MONTHLY_CONTRIBUTION_RECEIVED"
	CodeExpenseClearing      = "EXPENSE_CLEARING"
)
