package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
)

// LoanRepository persists member loans.
type LoanRepository interface {
	SaveLoan(ctx context.Context, loan domain.Loan) error
	FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)
	FindLoanByIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error)
	ListLoansByMember(ctx context.Context, memberID string) ([]domain.Loan, error)

	// ApplyRepaidDelta adjusts the loan's cumulative repaid amount and, when
	// the new total settles or reopens the loan, flips its status.
	ApplyRepaidDelta(ctx context.Context, loanID string, delta decimal.Decimal, status domain.LoanStatus, userID string) error
}

// FineRepository persists fines and their settlement state.
type FineRepository interface {
	SaveFine(ctx context.Context, fine domain.Fine) error
	FindFineByID(ctx context.Context, fineID string) (*domain.Fine, error)

	// ListOutstandingFines returns a member's unpaid and partial fines for one
	// loan in creation order (oldest settled first by the waterfall).
	ListOutstandingFines(ctx context.Context, memberID string, loanID *string) ([]domain.Fine, error)

	ListFinesByMember(ctx context.Context, memberID string) ([]domain.Fine, error)

	// ApplyFinePayment adds paid to the fine's paid amount and sets its status.
	ApplyFinePayment(ctx context.Context, fineID string, paid decimal.Decimal, status domain.FineStatus, userID string) error
}
