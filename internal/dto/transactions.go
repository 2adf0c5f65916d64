package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
)

// CreateDepositRequest defines the data needed to post a deposit.
type CreateDepositRequest struct {
	MemberID    string             `json:"memberID" binding:"required"`
	AccountID   string             `json:"accountID" binding:"required"`
	Type        domain.DepositType `json:"type" binding:"required,oneof=contribution deposit"`
	Amount      decimal.Decimal    `json:"amount" binding:"required"`
	Reference   *string            `json:"reference"`
	Description string             `json:"description"`
	Date        time.Time          `json:"date"`
}

// UpdateDepositRequest amends a live deposit. Pointers distinguish
// zero-value updates from fields not provided.
type UpdateDepositRequest struct {
	MemberID    *string          `json:"memberID"`
	AccountID   *string          `json:"accountID"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Date        *time.Time       `json:"date"`
}

// CreateWithdrawalRequest defines the data needed to post a withdrawal.
type CreateWithdrawalRequest struct {
	MemberID    *string               `json:"memberID"`
	AccountID   string                `json:"accountID" binding:"required"`
	Type        domain.WithdrawalType `json:"type" binding:"required,oneof=member expense"`
	Amount      decimal.Decimal       `json:"amount" binding:"required"`
	Reference   *string               `json:"reference"`
	Description string                `json:"description"`
	Date        time.Time             `json:"date"`
}

// UpdateWithdrawalRequest amends a live withdrawal.
type UpdateWithdrawalRequest struct {
	MemberID    *string          `json:"memberID"`
	AccountID   *string          `json:"accountID"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Date        *time.Time       `json:"date"`
}

// VoidRequest carries the reason for voiding a transaction.
type VoidRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreateRepaymentRequest defines the data needed to post a loan repayment.
type CreateRepaymentRequest struct {
	LoanID      string          `json:"loanID" binding:"required"`
	AccountID   string          `json:"accountID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Reference   *string         `json:"reference"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// UpdateRepaymentRequest amends a live repayment.
type UpdateRepaymentRequest struct {
	AccountID   *string          `json:"accountID"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Date        *time.Time       `json:"date"`
}

// PreviewAllocationRequest asks for a waterfall split without posting.
type PreviewAllocationRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// AllocationResponse is the waterfall breakdown of a repayment amount.
type AllocationResponse struct {
	Fines     decimal.Decimal `json:"fines"`
	Interest  decimal.Decimal `json:"interest"`
	Principal decimal.Decimal `json:"principal"`
	Total     decimal.Decimal `json:"total"`
}

// ToAllocationResponse converts a domain.Allocation to its DTO
func ToAllocationResponse(a domain.Allocation) AllocationResponse {
	return AllocationResponse{
		Fines:     a.Fines,
		Interest:  a.Interest,
		Principal: a.Principal,
		Total:     a.Total(),
	}
}

// DepositResponse defines the data returned for a deposit.
type DepositResponse struct {
	DepositID   string          `json:"depositID"`
	MemberID    string          `json:"memberID"`
	AccountID   string          `json:"accountID"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   *string         `json:"reference"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	IsVoided    bool            `json:"isVoided"`
	VoidedAt    *time.Time      `json:"voidedAt,omitempty"`
	VoidReason  *string         `json:"voidReason,omitempty"`
}

// ToDepositResponse converts a domain.Deposit to its DTO
func ToDepositResponse(d *domain.Deposit) DepositResponse {
	return DepositResponse{
		DepositID:   d.DepositID,
		MemberID:    d.MemberID,
		AccountID:   d.AccountID,
		Type:        string(d.Type),
		Amount:      d.Amount,
		Reference:   d.Reference,
		Description: d.Description,
		Date:        d.Date,
		IsVoided:    d.IsVoided,
		VoidedAt:    d.VoidedAt,
		VoidReason:  d.VoidReason,
	}
}

// ToListDepositResponse converts a slice of domain.Deposit to response DTOs
func ToListDepositResponse(ds []domain.Deposit) []DepositResponse {
	res := make([]DepositResponse, len(ds))
	for i := range ds {
		res[i] = ToDepositResponse(&ds[i])
	}
	return res
}

// WithdrawalResponse defines the data returned for a withdrawal.
type WithdrawalResponse struct {
	WithdrawalID string          `json:"withdrawalID"`
	MemberID     *string         `json:"memberID,omitempty"`
	AccountID    string          `json:"accountID"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Reference    *string         `json:"reference"`
	Description  string          `json:"description"`
	Date         time.Time       `json:"date"`
	IsVoided     bool            `json:"isVoided"`
	VoidedAt     *time.Time      `json:"voidedAt,omitempty"`
	VoidReason   *string         `json:"voidReason,omitempty"`
}

// ToWithdrawalResponse converts a domain.Withdrawal to its DTO
func ToWithdrawalResponse(w *domain.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		WithdrawalID: w.WithdrawalID,
		MemberID:     w.MemberID,
		AccountID:    w.AccountID,
		Type:         string(w.Type),
		Amount:       w.Amount,
		Reference:    w.Reference,
		Description:  w.Description,
		Date:         w.Date,
		IsVoided:     w.IsVoided,
		VoidedAt:     w.VoidedAt,
		VoidReason:   w.VoidReason,
	}
}

// ToListWithdrawalResponse converts a slice of domain.Withdrawal to DTOs
func ToListWithdrawalResponse(ws []domain.Withdrawal) []WithdrawalResponse {
	res := make([]WithdrawalResponse, len(ws))
	for i := range ws {
		res[i] = ToWithdrawalResponse(&ws[i])
	}
	return res
}

// RepaymentResponse defines the data returned for a repayment.
type RepaymentResponse struct {
	RepaymentID string             `json:"repaymentID"`
	LoanID      string             `json:"loanID"`
	MemberID    string             `json:"memberID"`
	AccountID   string             `json:"accountID"`
	Amount      decimal.Decimal    `json:"amount"`
	Allocation  AllocationResponse `json:"allocation"`
	Reference   *string            `json:"reference"`
	Description string             `json:"description"`
	Date        time.Time          `json:"date"`
	IsVoided    bool               `json:"isVoided"`
	VoidedAt    *time.Time         `json:"voidedAt,omitempty"`
	VoidReason  *string            `json:"voidReason,omitempty"`
}

// ToRepaymentResponse converts a domain.Repayment to its DTO
func ToRepaymentResponse(r *domain.Repayment) RepaymentResponse {
	return RepaymentResponse{
		RepaymentID: r.RepaymentID,
		LoanID:      r.LoanID,
		MemberID:    r.MemberID,
		AccountID:   r.AccountID,
		Amount:      r.Amount,
		Allocation:  ToAllocationResponse(r.Allocation),
		Reference:   r.Reference,
		Description: r.Description,
		Date:        r.Date,
		IsVoided:    r.IsVoided,
		VoidedAt:    r.VoidedAt,
		VoidReason:  r.VoidReason,
	}
}

// ToListRepaymentResponse converts a slice of domain.Repayment to DTOs
func ToListRepaymentResponse(rs []domain.Repayment) []RepaymentResponse {
	res := make([]RepaymentResponse, len(rs))
	for i := range rs {
		res[i] = ToRepaymentResponse(&rs[i])
	}
	return res
}

// ListTransactionsParams defines query parameters for deposit and
// withdrawal listings.
type ListTransactionsParams struct {
	MemberID *string `form:"memberID"`
	Limit    int     `form:"limit,default=20"`
	Offset   int     `form:"offset,default=0"`
}
