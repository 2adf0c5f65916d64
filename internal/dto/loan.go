package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
)

// CreateLoanRequest defines the data needed to disburse a loan.
type CreateLoanRequest struct {
	MemberID       string              `json:"memberID" binding:"required"`
	Principal      decimal.Decimal     `json:"principal" binding:"required"`
	InterestRate   decimal.Decimal     `json:"interestRate" binding:"required"`
	InterestType   domain.InterestType `json:"interestType" binding:"required,oneof=flat reducing"`
	DurationMonths int                 `json:"durationMonths" binding:"required,min=1"`
	AccountID      string              `json:"accountID" binding:"required"` // paying financial account
	DisbursedAt    time.Time           `json:"disbursedAt"`
}

// LoanResponse defines the data returned for a loan.
type LoanResponse struct {
	LoanID         string          `json:"loanID"`
	MemberID       string          `json:"memberID"`
	Principal      decimal.Decimal `json:"principal"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	InterestType   string          `json:"interestType"`
	DurationMonths int             `json:"durationMonths"`
	TotalInterest  decimal.Decimal `json:"totalInterest"`
	TotalPayable   decimal.Decimal `json:"totalPayable"`
	RepaidAmount   decimal.Decimal `json:"repaidAmount"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	Status         string          `json:"status"`
	DisbursedAt    time.Time       `json:"disbursedAt"`
}

// ToLoanResponse converts a domain.Loan to its DTO
func ToLoanResponse(l *domain.Loan) LoanResponse {
	return LoanResponse{
		LoanID:         l.LoanID,
		MemberID:       l.MemberID,
		Principal:      l.Principal,
		InterestRate:   l.InterestRate,
		InterestType:   string(l.InterestType),
		DurationMonths: l.DurationMonths,
		TotalInterest:  l.TotalInterest,
		TotalPayable:   l.TotalPayable,
		RepaidAmount:   l.RepaidAmount,
		Outstanding:    l.OutstandingBalance(),
		Status:         string(l.Status),
		DisbursedAt:    l.DisbursedAt,
	}
}

// ToListLoanResponse converts a slice of domain.Loan to response DTOs
func ToListLoanResponse(ls []domain.Loan) []LoanResponse {
	res := make([]LoanResponse, len(ls))
	for i := range ls {
		res[i] = ToLoanResponse(&ls[i])
	}
	return res
}

// ScheduleInstallmentResponse is one amortization schedule row.
type ScheduleInstallmentResponse struct {
	Number    int             `json:"number"`
	DueDate   time.Time       `json:"dueDate"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Total     decimal.Decimal `json:"total"`
	Balance   decimal.Decimal `json:"balance"`
}

// ToScheduleResponse converts schedule installments to response DTOs
func ToScheduleResponse(rows []domain.ScheduleInstallment) []ScheduleInstallmentResponse {
	res := make([]ScheduleInstallmentResponse, len(rows))
	for i, r := range rows {
		res[i] = ScheduleInstallmentResponse{
			Number:    r.Number,
			DueDate:   r.DueDate,
			Principal: r.Principal,
			Interest:  r.Interest,
			Total:     r.Total,
			Balance:   r.Balance,
		}
	}
	return res
}

// CreateFineRequest defines the data needed to levy a fine.
type CreateFineRequest struct {
	MemberID string          `json:"memberID" binding:"required"`
	LoanID   *string         `json:"loanID"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Reason   string          `json:"reason" binding:"required"`
}

// FineResponse defines the data returned for a fine.
type FineResponse struct {
	FineID      string          `json:"fineID"`
	MemberID    string          `json:"memberID"`
	LoanID      *string         `json:"loanID,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	PaidAmount  decimal.Decimal `json:"paidAmount"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Status      string          `json:"status"`
	Reason      string          `json:"reason"`
	LeviedAt    time.Time       `json:"leviedAt"`
}

// ToFineResponse converts a domain.Fine to its DTO
func ToFineResponse(f *domain.Fine) FineResponse {
	return FineResponse{
		FineID:      f.FineID,
		MemberID:    f.MemberID,
		LoanID:      f.LoanID,
		Amount:      f.Amount,
		PaidAmount:  f.PaidAmount,
		Outstanding: f.Outstanding(),
		Status:      string(f.Status),
		Reason:      f.Reason,
		LeviedAt:    f.LeviedAt,
	}
}

// ToListFineResponse converts a slice of domain.Fine to response DTOs
func ToListFineResponse(fs []domain.Fine) []FineResponse {
	res := make([]FineResponse, len(fs))
	for i := range fs {
		res[i] = ToFineResponse(&fs[i])
	}
	return res
}
