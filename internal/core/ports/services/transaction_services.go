package services

import (
	"context"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
	"github.com/saccokit/sacco-ledger/internal/dto"
)

// DepositSvcFacade drives the deposit lifecycle: post, amend, void, delete.
type DepositSvcFacade interface {
	CreateDeposit(ctx context.Context, req dto.CreateDepositRequest, userID string) (*domain.Deposit, error)
	GetDepositByID(ctx context.Context, depositID string) (*domain.Deposit, error)
	ListDeposits(ctx context.Context, memberID *string, limit int, offset int) ([]domain.Deposit, error)

	// UpdateDeposit amends a live deposit, rebuilding its postings when any
	// money field changed.
	UpdateDeposit(ctx context.Context, depositID string, req dto.UpdateDepositRequest, userID string) (*domain.Deposit, error)

	// VoidDeposit mints mirrored reversal entries and marks the deposit voided.
	VoidDeposit(ctx context.Context, depositID string, reason string, userID string) (*domain.Deposit, error)

	// DeleteDeposit removes a live deposit and its postings, or strips a
	// voided deposit's reversal entries and source row.
	DeleteDeposit(ctx context.Context, depositID string, userID string) error
}

// WithdrawalSvcFacade drives the withdrawal lifecycle.
type WithdrawalSvcFacade interface {
	CreateWithdrawal(ctx context.Context, req dto.CreateWithdrawalRequest, userID string) (*domain.Withdrawal, error)
	GetWithdrawalByID(ctx context.Context, withdrawalID string) (*domain.Withdrawal, error)
	ListWithdrawals(ctx context.Context, memberID *string, limit int, offset int) ([]domain.Withdrawal, error)
	UpdateWithdrawal(ctx context.Context, withdrawalID string, req dto.UpdateWithdrawalRequest, userID string) (*domain.Withdrawal, error)
	VoidWithdrawal(ctx context.Context, withdrawalID string, reason string, userID string) (*domain.Withdrawal, error)
	DeleteWithdrawal(ctx context.Context, withdrawalID string, userID string) error
}

// RepaymentSvcFacade drives loan repayments and the allocation waterfall.
type RepaymentSvcFacade interface {
	// PreviewAllocation computes the fines/interest/principal split for an
	// amount against a loan without posting anything.
	PreviewAllocation(ctx context.Context, loanID string, req dto.PreviewAllocationRequest) (*domain.Allocation, error)

	CreateRepayment(ctx context.Context, req dto.CreateRepaymentRequest, userID string) (*domain.Repayment, error)
	GetRepaymentByID(ctx context.Context, repaymentID string) (*domain.Repayment, error)
	ListRepaymentsByLoan(ctx context.Context, loanID string) ([]domain.Repayment, error)

	// UpdateRepayment amends a live repayment, re-running the waterfall and
	// rebuilding its postings when any money field changed.
	UpdateRepayment(ctx context.Context, repaymentID string, req dto.UpdateRepaymentRequest, userID string) (*domain.Repayment, error)

	VoidRepayment(ctx context.Context, repaymentID string, reason string, userID string) (*domain.Repayment, error)
	DeleteRepayment(ctx context.Context, repaymentID string, userID string) error
}

// LoanSvcFacade covers loan issuance, fines and schedules.
type LoanSvcFacade interface {
	CreateLoan(ctx context.Context, req dto.CreateLoanRequest, userID string) (*domain.Loan, error)
	GetLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)
	ListLoansByMember(ctx context.Context, memberID string) ([]domain.Loan, error)

	// GetSchedule builds the loan's amortization schedule from its terms.
	GetSchedule(ctx context.Context, loanID string) ([]domain.ScheduleInstallment, error)

	// AccrueFine levies a fine and posts Dr Fines Receivable / Cr Fine Income.
	AccrueFine(ctx context.Context, req dto.CreateFineRequest, userID string) (*domain.Fine, error)

	ListFinesByMember(ctx context.Context, memberID string) ([]domain.Fine, error)
}
