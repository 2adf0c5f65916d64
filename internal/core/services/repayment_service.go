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

// CategoryLoanRepayments collects repayment cash receipts.
const CategoryLoanRepayments = "Loan Repayments"

type RepaymentService struct {
	txManager     portsrepo.TxManager
	repaymentRepo portsrepo.RepaymentRepository
	loanRepo      portsrepo.LoanRepository
	fineRepo      portsrepo.FineRepository
	accountSvc    portssvc.AccountSvcFacade
	post          *posting
}

func NewRepaymentService(
	txManager portsrepo.TxManager,
	repaymentRepo portsrepo.RepaymentRepository,
	loanRepo portsrepo.LoanRepository,
	fineRepo portsrepo.FineRepository,
	accountSvc portssvc.AccountSvcFacade,
	post *posting,
) *RepaymentService {
	return &RepaymentService{
		txManager:     txManager,
		repaymentRepo: repaymentRepo,
		loanRepo:      loanRepo,
		fineRepo:      fineRepo,
		accountSvc:    accountSvc,
		post:          post,
	}
}

// priorInterestPaid sums the interest portions of a loan's live repayments.
// excludeID skips one repayment, used when re-allocating an amended one.
func (s *RepaymentService) priorInterestPaid(ctx context.Context, loanID string, excludeID string) (decimal.Decimal, error) {
	repayments, err := s.repaymentRepo.ListRepaymentsByLoan(ctx, loanID)
	if err != nil {
		return decimal.Zero, err
	}
	paid := decimal.Zero
	for _, r := range repayments {
		if !r.IsVoided && r.RepaymentID != excludeID {
			paid = paid.Add(r.Allocation.Interest)
		}
	}
	return paid, nil
}

// allocate runs the waterfall for an amount against a loan's current state,
// returning the split and the outstanding fines it drew on.
func (s *RepaymentService) allocate(ctx context.Context, loan *domain.Loan, amount decimal.Decimal, excludeID string) (domain.Allocation, []domain.Fine, error) {
	fines, err := s.fineRepo.ListOutstandingFines(ctx, loan.MemberID, &loan.LoanID)
	if err != nil {
		return domain.Allocation{}, nil, err
	}
	outstandingFines := decimal.Zero
	for _, f := range fines {
		outstandingFines = outstandingFines.Add(f.Outstanding())
	}

	capacity := outstandingFines.Add(loan.OutstandingBalance())
	if amount.GreaterThan(capacity) {
		return domain.Allocation{}, nil, fmt.Errorf("%w: amount %s exceeds outstanding fines and loan balance of %s",
			apperrors.ErrValidation, amount, capacity)
	}

	interestPaid, err := s.priorInterestPaid(ctx, loan.LoanID, excludeID)
	if err != nil {
		return domain.Allocation{}, nil, err
	}
	remainingInterest := allocation.RemainingInterest(loan.TotalInterest, interestPaid)

	alloc, err := allocation.Split(amount, outstandingFines, remainingInterest)
	if err != nil {
		return domain.Allocation{}, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	return alloc, fines, nil
}

func (s *RepaymentService) PreviewAllocation(ctx context.Context, loanID string, req dto.PreviewAllocationRequest) (*domain.Allocation, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	alloc, _, err := s.allocate(ctx, loan, req.Amount, "")
	if err != nil {
		return nil, err
	}
	return &alloc, nil
}

func (s *RepaymentService) CreateRepayment(ctx context.Context, req dto.CreateRepaymentRequest, userID string) (*domain.Repayment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: repayment amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	reference := req.Reference
	if reference == nil || *reference == "" {
		ref, err := refgen.New(refgen.PrefixRepayment, date)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to generate reference", err)
		}
		reference = &ref
	}

	var repayment domain.Repayment
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		loan, err := s.loanRepo.FindLoanByIDForUpdate(ctx, req.LoanID)
		if err != nil {
			return err
		}
		if loan.Status == domain.LoanStatusCompleted {
			// A completed loan can still carry unpaid fines.
			fines, err := s.fineRepo.ListOutstandingFines(ctx, loan.MemberID, &loan.LoanID)
			if err != nil {
				return err
			}
			if len(fines) == 0 {
				return fmt.Errorf("%w: loan %s is fully repaid", apperrors.ErrConflict, loan.LoanID)
			}
		}

		account, err := s.post.accountRepo.FindAccountByID(ctx, req.AccountID)
		if err != nil {
			return err
		}
		if err := checkFinancialAccount(account); err != nil {
			return err
		}

		alloc, fines, err := s.allocate(ctx, loan, req.Amount, "")
		if err != nil {
			return err
		}
		finePayments := allocation.DistributeFines(alloc.Fines, fines)

		repayment = domain.Repayment{
			RepaymentID: uuid.NewString(),
			LoanID:      loan.LoanID,
			MemberID:    loan.MemberID,
			AccountID:   req.AccountID,
			Amount:      req.Amount,
			Allocation:  alloc,
			Reference:   reference,
			Description: req.Description,
			Date:        date,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := s.repaymentRepo.SaveRepayment(ctx, repayment, finePayments); err != nil {
			return err
		}

		if err := s.postRepayment(ctx, repayment, account.AccountID, userID, now); err != nil {
			return err
		}
		if err := s.settleRepaymentEffects(ctx, loan, alloc, fines, finePayments, userID); err != nil {
			return err
		}

		return s.recordRepaymentBooks(ctx, repayment, finePayments, userID, now)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("failed to create repayment", slog.Any("error", err))
		}
		return nil, err
	}

	logger.Info("repayment posted",
		slog.String("repaymentID", repayment.RepaymentID),
		slog.String("loanID", repayment.LoanID),
		slog.String("amount", repayment.Amount.String()),
		slog.String("fines", repayment.Allocation.Fines.String()),
		slog.String("interest", repayment.Allocation.Interest.String()),
		slog.String("principal", repayment.Allocation.Principal.String()))
	return &repayment, nil
}

// settleRepaymentEffects applies an allocation's side effects: settles fines
// oldest first per the distribution, grows the loan's repaid amount, and
// pulls the member's loan balance down.
func (s *RepaymentService) settleRepaymentEffects(ctx context.Context, loan *domain.Loan, alloc domain.Allocation, fines []domain.Fine, finePayments []domain.FinePayment, userID string) error {
	fineByID := make(map[string]domain.Fine, len(fines))
	for _, f := range fines {
		fineByID[f.FineID] = f
	}
	for _, fp := range finePayments {
		fine := fineByID[fp.FineID]
		newPaid := fine.PaidAmount.Add(fp.Amount)
		status := domain.FineStatusPartial
		if newPaid.GreaterThanOrEqual(fine.Amount) {
			status = domain.FineStatusPaid
		}
		if err := s.fineRepo.ApplyFinePayment(ctx, fp.FineID, fp.Amount, status, userID); err != nil {
			return err
		}
	}

	loanDelta := alloc.Interest.Add(alloc.Principal)
	if loanDelta.IsPositive() {
		status := domain.LoanStatusActive
		if loan.RepaidAmount.Add(loanDelta).GreaterThanOrEqual(loan.TotalPayable) {
			status = domain.LoanStatusCompleted
		}
		if err := s.loanRepo.ApplyRepaidDelta(ctx, loan.LoanID, loanDelta, status, userID); err != nil {
			return err
		}
		if err := s.post.memberRepo.ApplyMemberDeltas(ctx, loan.MemberID, decimal.Zero, loanDelta.Neg()); err != nil {
			return err
		}
	}
	return nil
}

// postRepayment writes up to three journal pairs, one per waterfall
// portion, all debiting the receiving cash account.
func (s *RepaymentService) postRepayment(ctx context.Context, r domain.Repayment, cashAccountID string, userID string, now time.Time) error {
	narration := fmt.Sprintf("LoanId:%s | MemberId:%s | PaidAmount:%s", r.LoanID, r.MemberID, r.Amount)
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID}

	type portion struct {
		amount  decimal.Decimal
		code    string
		name    string
		suffix  string
		detail  string
		accType domain.AccountType
	}
	portions := []portion{
		{r.Allocation.Fines, domain.CodeFinesReceivable, "Fines Receivable", "-FINE", "fine settlement", domain.AccountGL},
		{r.Allocation.Interest, domain.CodeInterestReceivable, "Interest Receivable", "-INT", "interest", domain.AccountGL},
		{r.Allocation.Principal, domain.CodeLoansLedger, "Loans Ledger", "-PRIN", "principal", domain.AccountGL},
	}

	var entries []domain.JournalEntry
	for _, p := range portions {
		if !p.amount.IsPositive() {
			continue
		}
		counter, err := s.accountSvc.EnsureAccount(ctx, p.code, p.name, p.accType, userID)
		if err != nil {
			return err
		}
		ref := *r.Reference + p.suffix
		entries = append(entries, domain.JournalEntry{
			EntryID:         uuid.NewString(),
			Date:            r.Date,
			Reference:       &ref,
			Description:     fmt.Sprintf("Loan repayment %s", p.detail),
			Narration:       narration,
			DebitAccountID:  cashAccountID,
			DebitAmount:     p.amount,
			CreditAccountID: counter.AccountID,
			CreditAmount:    p.amount,
			Category:        CategoryLoanRepayments,
			SourceKind:      domain.SourceRepayment,
			SourceID:        r.RepaymentID,
			AuditFields:     audit,
		})
	}
	return s.post.postEntries(ctx, entries, userID, now)
}

// recordRepaymentBooks mirrors a posted repayment into the member's
// personal ledger and the repayments category ledger.
func (s *RepaymentService) recordRepaymentBooks(ctx context.Context, r domain.Repayment, finePayments []domain.FinePayment, userID string, now time.Time) error {
	loanPortion := r.Allocation.Interest.Add(r.Allocation.Principal)
	if loanPortion.IsPositive() {
		if err := s.post.appendMemberEntry(ctx, domain.MemberLedgerEntry{
			MemberID:    r.MemberID,
			Type:        domain.LedgerRepayment,
			Amount:      loanPortion,
			Description: "Loan repayment",
			Reference:   *r.Reference,
			SourceKind:  domain.SourceRepayment,
			SourceID:    r.RepaymentID,
			Date:        r.Date,
		}); err != nil {
			return err
		}
	}
	if r.Allocation.Fines.IsPositive() {
		if err := s.post.appendMemberEntry(ctx, domain.MemberLedgerEntry{
			MemberID:    r.MemberID,
			Type:        domain.LedgerFinePayment,
			Amount:      r.Allocation.Fines,
			Description: fmt.Sprintf("Fine settlement across %d fine(s)", len(finePayments)),
			Reference:   *r.Reference,
			SourceKind:  domain.SourceRepayment,
			SourceID:    r.RepaymentID,
			Date:        r.Date,
		}); err != nil {
			return err
		}
	}

	memberID := r.MemberID
	return s.post.appendCategoryEntry(ctx, CategoryLoanRepayments, domain.CategoryIncome, domain.CategoryLedgerEntry{
		MemberID:    &memberID,
		Amount:      r.Amount,
		Description: "Loan repayment received",
		Reference:   r.Reference,
		SourceKind:  domain.SourceRepayment,
		SourceID:    r.RepaymentID,
		Date:        r.Date,
	}, userID, now)
}

func (s *RepaymentService) GetRepaymentByID(ctx context.Context, repaymentID string) (*domain.Repayment, error) {
	return s.repaymentRepo.FindRepaymentByID(ctx, repaymentID)
}

func (s *RepaymentService) ListRepaymentsByLoan(ctx context.Context, loanID string) ([]domain.Repayment, error) {
	return s.repaymentRepo.ListRepaymentsByLoan(ctx, loanID)
}

func (s *RepaymentService) UpdateRepayment(ctx context.Context, repaymentID string, req dto.UpdateRepaymentRequest, userID string) (*domain.Repayment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	repayment, err := s.repaymentRepo.FindRepaymentByID(ctx, repaymentID)
	if err != nil {
		return nil, err
	}
	if repayment.IsVoided {
		return nil, fmt.Errorf("%w: repayment %s is voided and cannot be edited", apperrors.ErrConflict, repaymentID)
	}

	moneyChanged := false
	if req.AccountID != nil && *req.AccountID != repayment.AccountID {
		repayment.AccountID = *req.AccountID
		moneyChanged = true
	}
	if req.Amount != nil && !req.Amount.Equal(repayment.Amount) {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: repayment amount must be positive", apperrors.ErrValidation)
		}
		repayment.Amount = *req.Amount
		moneyChanged = true
	}
	if req.Date != nil && !req.Date.Equal(repayment.Date) {
		repayment.Date = *req.Date
		moneyChanged = true
	}
	if req.Description != nil {
		repayment.Description = *req.Description
	}

	now := time.Now()
	repayment.LastUpdatedAt = now
	repayment.LastUpdatedBy = userID

	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if !moneyChanged {
			finePayments, err := s.repaymentRepo.FindFinePaymentsByRepayment(ctx, repaymentID)
			if err != nil {
				return err
			}
			return s.repaymentRepo.UpdateRepayment(ctx, *repayment, finePayments)
		}

		// Undo the old posting completely, then re-run the waterfall
		// against the restored loan and fine state. The allocation on
		// the fetched struct is still the old one at this point.
		if err := s.rollbackRepaymentState(ctx, repayment, userID); err != nil {
			return err
		}
		if err := s.post.unpostSource(ctx, domain.SourceRepayment, repaymentID, userID, now); err != nil {
			return err
		}

		loan, err := s.loanRepo.FindLoanByIDForUpdate(ctx, repayment.LoanID)
		if err != nil {
			return err
		}
		account, err := s.post.accountRepo.FindAccountByID(ctx, repayment.AccountID)
		if err != nil {
			return err
		}
		if err := checkFinancialAccount(account); err != nil {
			return err
		}

		alloc, fines, err := s.allocate(ctx, loan, repayment.Amount, repaymentID)
		if err != nil {
			return err
		}
		finePayments := allocation.DistributeFines(alloc.Fines, fines)
		repayment.Allocation = alloc

		if err := s.repaymentRepo.UpdateRepayment(ctx, *repayment, finePayments); err != nil {
			return err
		}
		if err := s.postRepayment(ctx, *repayment, account.AccountID, userID, now); err != nil {
			return err
		}
		if err := s.settleRepaymentEffects(ctx, loan, alloc, fines, finePayments, userID); err != nil {
			return err
		}
		return s.recordRepaymentBooks(ctx, *repayment, finePayments, userID, now)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("failed to update repayment", slog.Any("error", err))
		}
		return nil, err
	}

	logger.Info("repayment updated", slog.String("repaymentID", repaymentID), slog.Bool("reposted", moneyChanged))
	return repayment, nil
}

// rollbackRepaymentState undoes the fine, loan and member-balance effects
// of a posted repayment. Used by both void and live delete.
func (s *RepaymentService) rollbackRepaymentState(ctx context.Context, r *domain.Repayment, userID string) error {
	finePayments, err := s.repaymentRepo.FindFinePaymentsByRepayment(ctx, r.RepaymentID)
	if err != nil {
		return err
	}
	for _, fp := range finePayments {
		fine, err := s.fineRepo.FindFineByID(ctx, fp.FineID)
		if err != nil {
			return err
		}
		newPaid := fine.PaidAmount.Sub(fp.Amount)
		status := domain.FineStatusPartial
		if !newPaid.IsPositive() {
			status = domain.FineStatusUnpaid
		}
		if err := s.fineRepo.ApplyFinePayment(ctx, fp.FineID, fp.Amount.Neg(), status, userID); err != nil {
			return err
		}
	}

	loanDelta := r.Allocation.Interest.Add(r.Allocation.Principal)
	if loanDelta.IsPositive() {
		loan, err := s.loanRepo.FindLoanByIDForUpdate(ctx, r.LoanID)
		if err != nil {
			return err
		}
		status := domain.LoanStatusActive
		if loan.RepaidAmount.Sub(loanDelta).GreaterThanOrEqual(loan.TotalPayable) {
			status = domain.LoanStatusCompleted
		}
		if err := s.loanRepo.ApplyRepaidDelta(ctx, r.LoanID, loanDelta.Neg(), status, userID); err != nil {
			return err
		}
		if err := s.post.memberRepo.ApplyMemberDeltas(ctx, r.MemberID, decimal.Zero, loanDelta); err != nil {
			return err
		}
	}
	return nil
}

func (s *RepaymentService) VoidRepayment(ctx context.Context, repaymentID string, reason string, userID string) (*domain.Repayment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	repayment, err := s.repaymentRepo.FindRepaymentByID(ctx, repaymentID)
	if err != nil {
		return nil, err
	}
	if repayment.IsVoided {
		return nil, fmt.Errorf("%w: repayment %s is already voided", apperrors.ErrConflict, repaymentID)
	}

	now := time.Now()
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repaymentRepo.MarkRepaymentVoided(ctx, repaymentID, reason, userID, now); err != nil {
			return err
		}
		if _, err := s.post.reverseEntries(ctx, domain.SourceRepayment, repaymentID, userID, now); err != nil {
			return err
		}
		if err := s.rollbackRepaymentState(ctx, repayment, userID); err != nil {
			return err
		}

		voidRef := domain.VoidReferencePrefix + *repayment.Reference
		loanPortion := repayment.Allocation.Interest.Add(repayment.Allocation.Principal)
		if loanPortion.IsPositive() {
			if err := s.post.appendMemberEntry(ctx, domain.MemberLedgerEntry{
				MemberID:    repayment.MemberID,
				Type:        domain.LedgerRepayment,
				Amount:      loanPortion.Neg(),
				Description: "Void: " + reason,
				Reference:   voidRef,
				SourceKind:  domain.SourceRepayment,
				SourceID:    repaymentID,
				Date:        now,
			}); err != nil {
				return err
			}
		}
		if repayment.Allocation.Fines.IsPositive() {
			if err := s.post.appendMemberEntry(ctx, domain.MemberLedgerEntry{
				MemberID:    repayment.MemberID,
				Type:        domain.LedgerFinePayment,
				Amount:      repayment.Allocation.Fines.Neg(),
				Description: "Void: " + reason,
				Reference:   voidRef,
				SourceKind:  domain.SourceRepayment,
				SourceID:    repaymentID,
				Date:        now,
			}); err != nil {
				return err
			}
		}

		memberID := repayment.MemberID
		return s.post.appendCategoryEntry(ctx, CategoryLoanRepayments, domain.CategoryIncome, domain.CategoryLedgerEntry{
			MemberID:    &memberID,
			Amount:      repayment.Amount.Neg(),
			Description: "Void: " + reason,
			Reference:   &voidRef,
			SourceKind:  domain.SourceRepayment,
			SourceID:    repaymentID,
			Date:        now,
		}, userID, now)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("failed to void repayment", slog.Any("error", err))
		}
		return nil, err
	}

	logger.Info("repayment voided", slog.String("repaymentID", repaymentID))
	return s.repaymentRepo.FindRepaymentByID(ctx, repaymentID)
}

func (s *RepaymentService) DeleteRepayment(ctx context.Context, repaymentID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	repayment, err := s.repaymentRepo.FindRepaymentByID(ctx, repaymentID)
	if err != nil {
		return err
	}

	now := time.Now()
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		// Voiding already rolled back the loan and fine state and the
		// originals stay as an audit trail; a live delete still owes
		// the rollback and strips everything.
		if repayment.IsVoided {
			if err := s.post.unpostVoid(ctx, domain.SourceRepayment, repaymentID, userID, now); err != nil {
				return err
			}
		} else {
			if err := s.rollbackRepaymentState(ctx, repayment, userID); err != nil {
				return err
			}
			if err := s.post.unpostSource(ctx, domain.SourceRepayment, repaymentID, userID, now); err != nil {
				return err
			}
		}
		return s.repaymentRepo.DeleteRepayment(ctx, repaymentID)
	})
	if err != nil {
		logger.Error("failed to delete repayment", slog.Any("error", err))
		return err
	}

	logger.Info("repayment deleted", slog.String("repaymentID", repaymentID))
	return nil
}
