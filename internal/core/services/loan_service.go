package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/apperrors"
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	portsrepo "github.com/saccokit/sacco-ledger/internal/core/ports/repositories"
	portssvc "github.com/saccokit/sacco-ledger/internal/core/ports/services"
	"github.com/saccokit/sacco-ledger/internal/dto"
	"github.com/saccokit/sacco-ledger/internal/middleware"
	"github.com/saccokit/sacco-ledger/internal/utils/allocation"
	"github.com/saccokit/sacco-ledger/internal/utils/refgen"
)

// Category ledger names fed by loans and fines.
const (
	CategoryLoans        = "Loans"
	CategoryLoanInterest = "Loan Interest"
	CategoryFines        = "Fines"
)

type LoanService struct {
	txManager  portsrepo.TxManager
	loanRepo   portsrepo.LoanRepository
	fineRepo   portsrepo.FineRepository
	accountSvc portssvc.AccountSvcFacade
	post       *posting
}

func NewLoanService(
	txManager portsrepo.TxManager,
	loanRepo portsrepo.LoanRepository,
	fineRepo portsrepo.FineRepository,
	accountSvc portssvc.AccountSvcFacade,
	post *posting,
) *LoanService {
	return &LoanService{
		txManager:  txManager,
		loanRepo:   loanRepo,
		fineRepo:   fineRepo,
		accountSvc: accountSvc,
		post:       post,
	}
}

// CreateLoan disburses a loan: principal moves from the paying account
// into the loans ledger, interest for the full term is accrued up front,
// and the member's loan balance takes on the total payable.
func (s *LoanService) CreateLoan(ctx context.Context, req dto.CreateLoanRequest, userID string) (*domain.Loan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Principal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: loan principal must be positive", apperrors.ErrValidation)
	}
	if req.InterestRate.IsNegative() {
		return nil, fmt.Errorf("%w: interest rate cannot be negative", apperrors.ErrValidation)
	}

	member, err := s.post.memberRepo.FindMemberByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if !member.IsActive {
		return nil, fmt.Errorf("%w: member %s is inactive", apperrors.ErrValidation, member.MemberID)
	}

	now := time.Now()
	disbursedAt := req.DisbursedAt
	if disbursedAt.IsZero() {
		disbursedAt = now
	}

	totalInterest := allocation.TotalInterest(req.Principal, req.InterestRate, req.InterestType, req.DurationMonths)
	loan := domain.Loan{
		LoanID:         uuid.NewString(),
		MemberID:       req.MemberID,
		Principal:      req.Principal,
		InterestRate:   req.InterestRate,
		InterestType:   req.InterestType,
		DurationMonths: req.DurationMonths,
		TotalInterest:  totalInterest,
		TotalPayable:   req.Principal.Add(totalInterest),
		RepaidAmount:   decimal.Zero,
		Status:         domain.LoanStatusActive,
		DisbursedAt:    disbursedAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	reference, err := refgen.New(refgen.PrefixLoan, disbursedAt)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to generate reference", err)
	}

	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		payingAccount, err := s.post.accountRepo.FindAccountByID(ctx, req.AccountID)
		if err != nil {
			return err
		}
		if err := checkFinancialAccount(payingAccount); err != nil {
			return err
		}
		if payingAccount.Balance.LessThan(req.Principal) {
			return fmt.Errorf("%w: account %s holds %s, cannot disburse %s",
				apperrors.ErrValidation, payingAccount.Code, payingAccount.Balance, req.Principal)
		}

		loansLedger, err := s.accountSvc.EnsureAccount(ctx, domain.CodeLoansLedger, "Loans Ledger", domain.AccountGL, userID)
		if err != nil {
			return err
		}

		if err := s.loanRepo.SaveLoan(ctx, loan); err != nil {
			return err
		}

		narration := fmt.Sprintf("LoanId:%s | MemberId:%s", loan.LoanID, loan.MemberID)
		audit := domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID}
		entries := []domain.JournalEntry{{
			EntryID:         uuid.NewString(),
			Date:            disbursedAt,
			Reference:       &reference,
			Description:     fmt.Sprintf("Loan disbursed to %s", member.Name),
			Narration:       narration,
			DebitAccountID:  loansLedger.AccountID,
			DebitAmount:     loan.Principal,
			CreditAccountID: payingAccount.AccountID,
			CreditAmount:    loan.Principal,
			Category:        CategoryLoans,
			SourceKind:      domain.SourceLoan,
			SourceID:        loan.LoanID,
			AuditFields:     audit,
		}}

		if totalInterest.IsPositive() {
			interestReceivable, err := s.accountSvc.EnsureAccount(ctx, domain.CodeInterestReceivable, "Interest Receivable", domain.AccountGL, userID)
			if err != nil {
				return err
			}
			interestIncome, err := s.accountSvc.EnsureAccount(ctx, domain.CodeInterestIncome, "Interest Income", domain.AccountGL, userID)
			if err != nil {
				return err
			}
			interestRef := reference + "-INT"
			entries = append(entries, domain.JournalEntry{
				EntryID:         uuid.NewString(),
				Date:            disbursedAt,
				Reference:       &interestRef,
				Description:     fmt.Sprintf("Interest accrued on loan to %s", member.Name),
				Narration:       narration,
				DebitAccountID:  interestReceivable.AccountID,
				DebitAmount:     totalInterest,
				CreditAccountID: interestIncome.AccountID,
				CreditAmount:    totalInterest,
				Category:        CategoryLoanInterest,
				SourceKind:      domain.SourceLoan,
				SourceID:        loan.LoanID,
				AuditFields:     audit,
			})
		}

		if err := s.post.postEntries(ctx, entries, userID, now); err != nil {
			return err
		}

		if err := s.post.memberRepo.ApplyMemberDeltas(ctx, loan.MemberID, decimal.Zero, loan.TotalPayable); err != nil {
			return err
		}

		memberID := loan.MemberID
		if err := s.post.appendCategoryEntry(ctx, CategoryLoans, domain.CategoryExpense, domain.CategoryLedgerEntry{
			MemberID:    &memberID,
			Amount:      loan.Principal,
			Description: fmt.Sprintf("Loan disbursed to %s", member.Name),
			Reference:   &reference,
			SourceKind:  domain.SourceLoan,
			SourceID:    loan.LoanID,
			Date:        disbursedAt,
		}, userID, now); err != nil {
			return err
		}
		if totalInterest.IsPositive() {
			if err := s.post.appendCategoryEntry(ctx, CategoryLoanInterest, domain.CategoryIncome, domain.CategoryLedgerEntry{
				MemberID:    &memberID,
				Amount:      totalInterest,
				Description: fmt.Sprintf("Interest accrued on loan to %s", member.Name),
				Reference:   &reference,
				SourceKind:  domain.SourceLoan,
				SourceID:    loan.LoanID,
				Date:        disbursedAt,
			}, userID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			logger.Error("failed to disburse loan", slog.Any("error", err))
		}
		return nil, err
	}

	logger.Info("loan disbursed",
		slog.String("loanID", loan.LoanID),
		slog.String("memberID", loan.MemberID),
		slog.String("principal", loan.Principal.String()),
		slog.String("totalPayable", loan.TotalPayable.String()))
	return &loan, nil
}

func (s *LoanService) GetLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	return s.loanRepo.FindLoanByID(ctx, loanID)
}

func (s *LoanService) ListLoansByMember(ctx context.Context, memberID string) ([]domain.Loan, error) {
	return s.loanRepo.ListLoansByMember(ctx, memberID)
}

func (s *LoanService) GetSchedule(ctx context.Context, loanID string) ([]domain.ScheduleInstallment, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return allocation.Schedule(*loan), nil
}

// AccrueFine levies a fine: Dr Fines Receivable / Cr Fine Income, with a
// matching movement in the fines category ledger. The member's cash and
// savings are untouched until the fine is settled through a repayment.
func (s *LoanService) AccrueFine(ctx context.Context, req dto.CreateFineRequest, userID string) (*domain.Fine, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: fine amount must be positive", apperrors.ErrValidation)
	}

	member, err := s.post.memberRepo.FindMemberByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if req.LoanID != nil {
		loan, err := s.loanRepo.FindLoanByID(ctx, *req.LoanID)
		if err != nil {
			return nil, err
		}
		if loan.MemberID != req.MemberID {
			return nil, fmt.Errorf("%w: loan %s does not belong to member %s", apperrors.ErrValidation, loan.LoanID, req.MemberID)
		}
	}

	now := time.Now()
	fine := domain.Fine{
		FineID:     uuid.NewString(),
		MemberID:   req.MemberID,
		LoanID:     req.LoanID,
		Amount:     req.Amount,
		PaidAmount: decimal.Zero,
		Status:     domain.FineStatusUnpaid,
		Reason:     req.Reason,
		LeviedAt:   now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	reference, err := refgen.New(refgen.PrefixFine, now)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to generate reference", err)
	}

	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		finesReceivable, err := s.accountSvc.EnsureAccount(ctx, domain.CodeFinesReceivable, "Fines Receivable", domain.AccountGL, userID)
		if err != nil {
			return err
		}
		fineIncome, err := s.accountSvc.EnsureAccount(ctx, domain.CodeFineIncome, "Fine Income", domain.AccountGL, userID)
		if err != nil {
			return err
		}

		if err := s.fineRepo.SaveFine(ctx, fine); err != nil {
			return err
		}

		entry := domain.JournalEntry{
			EntryID:         uuid.NewString(),
			Date:            now,
			Reference:       &reference,
			Description:     fmt.Sprintf("Fine levied on %s: %s", member.Name, req.Reason),
			Narration:       fmt.Sprintf("FineId:%s | MemberId:%s", fine.FineID, fine.MemberID),
			DebitAccountID:  finesReceivable.AccountID,
			DebitAmount:     fine.Amount,
			CreditAccountID: fineIncome.AccountID,
			CreditAmount:    fine.Amount,
			Category:        CategoryFines,
			SourceKind:      domain.SourceFine,
			SourceID:        fine.FineID,
			AuditFields:     domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID},
		}
		if err := s.post.postEntries(ctx, []domain.JournalEntry{entry}, userID, now); err != nil {
			return err
		}

		memberID := fine.MemberID
		return s.post.appendCategoryEntry(ctx, CategoryFines, domain.CategoryIncome, domain.CategoryLedgerEntry{
			MemberID:    &memberID,
			Amount:      fine.Amount,
			Description: fmt.Sprintf("Fine levied: %s", req.Reason),
			Reference:   &reference,
			SourceKind:  domain.SourceFine,
			SourceID:    fine.FineID,
			Date:        now,
		}, userID, now)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			logger.Error("failed to accrue fine", slog.Any("error", err))
		}
		return nil, err
	}

	logger.Info("fine accrued",
		slog.String("fineID", fine.FineID),
		slog.String("memberID", fine.MemberID),
		slog.String("amount", fine.Amount.String()))
	return &fine, nil
}

func (s *LoanService) ListFinesByMember(ctx context.Context, memberID string) ([]domain.Fine, error) {
	return s.fineRepo.ListFinesByMember(ctx, memberID)
}
