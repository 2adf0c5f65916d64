package repositories

import (
	"context"
	"time"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
)

// DepositRepository persists deposits and contributions.
type DepositRepository interface {
	SaveDeposit(ctx context.Context, deposit domain.Deposit) error
	UpdateDeposit(ctx context.Context, deposit domain.Deposit) error
	FindDepositByID(ctx context.Context, depositID string) (*domain.Deposit, error)
	ListDeposits(ctx context.Context, memberID *string, limit int, offset int) ([]domain.Deposit, error)
	MarkDepositVoided(ctx context.Context, depositID string, reason string, userID string, now time.Time) error
	DeleteDeposit(ctx context.Context, depositID string) error
}

// WithdrawalRepository persists withdrawals and expense payouts.
type WithdrawalRepository interface {
	SaveWithdrawal(ctx context.Context, withdrawal domain.Withdrawal) error
	UpdateWithdrawal(ctx context.Context, withdrawal domain.Withdrawal) error
	FindWithdrawalByID(ctx context.Context, withdrawalID string) (*domain.Withdrawal, error)
	ListWithdrawals(ctx context.Context, memberID *string, limit int, offset int) ([]domain.Withdrawal, error)
	MarkWithdrawalVoided(ctx context.Context, withdrawalID string, reason string, userID string, now time.Time) error
	DeleteWithdrawal(ctx context.Context, withdrawalID string) error
}

// RepaymentRepository persists loan repayments and their fine payments.
type RepaymentRepository interface {
	SaveRepayment(ctx context.Context, repayment domain.Repayment, finePayments []domain.FinePayment) error
	UpdateRepayment(ctx context.Context, repayment domain.Repayment, finePayments []domain.FinePayment) error
	FindRepaymentByID(ctx context.Context, repaymentID string) (*domain.Repayment, error)
	ListRepaymentsByLoan(ctx context.Context, loanID string) ([]domain.Repayment, error)
	FindFinePaymentsByRepayment(ctx context.Context, repaymentID string) ([]domain.FinePayment, error)
	MarkRepaymentVoided(ctx context.Context, repaymentID string, reason string, userID string, now time.Time) error
	DeleteRepayment(ctx context.Context, repaymentID string) error
}
