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
	"github.com/saccokit/sacco-ledger/internal/utils/refgen"
)

// Category ledger names fed by withdrawals.
const (
	CategoryMemberWithdrawals = "Member Withdrawals"
	CategoryExpenses          = "Expenses"
)

type WithdrawalService struct {
	txManager      portsrepo.TxManager
	withdrawalRepo portsrepo.WithdrawalRepository
	accountSvc     portssvc.AccountSvcFacade
	post           *posting
}

func NewWithdrawalService(
	txManager portsrepo.TxManager,
	withdrawalRepo portsrepo.WithdrawalRepository,
	accountSvc portssvc.AccountSvcFacade,
	post *posting,
) *WithdrawalService {
	return &WithdrawalService{
		txManager:      txManager,
		withdrawalRepo: withdrawalRepo,
		accountSvc:     accountSvc,
		post:           post,
	}
}

func (s *WithdrawalService) counterAccount(ctx context.Context, withdrawalType domain.WithdrawalType, userID string) (*domain.Account, string, error) {
	switch withdrawalType {
	case domain.WithdrawalTypeMember:
		acc, err := s.accountSvc.EnsureAccount(ctx, domain.CodeMemberSavingsPayable, "Member Savings Payable", domain.AccountLiability, userID)
		return acc, CategoryMemberWithdrawals, err
	case domain.WithdrawalTypeExpense:
		acc, err := s.accountSvc.EnsureAccount(ctx, domain.CodeExpenseClearing, "Expense Clearing", domain.AccountGL, userID)
		return acc, CategoryExpenses, err
	}
	return nil, "", fmt.Errorf("%w: unknown withdrawal type %q", apperrors.ErrValidation, withdrawalType)
}

// validateFunds rejects withdrawals the books cannot cover: the paying
// account must hold the amount, and a member withdrawal must also fit
// inside the member's savings balance.
func (s *WithdrawalService) validateFunds(ctx context.Context, w domain.Withdrawal) (*domain.Member, error) {
	account, err := s.post.accountRepo.FindAccountByID(ctx, w.AccountID)
	if err != nil {
		return nil, err
	}
	if err := checkFinancialAccount(account); err != nil {
		return nil, err
	}
	if account.Balance.LessThan(w.Amount) {
		return nil, fmt.Errorf("%w: account %s holds %s, cannot pay out %s",
			apperrors.ErrValidation, account.Code, account.Balance, w.Amount)
	}

	if w.Type != domain.WithdrawalTypeMember {
		return nil, nil
	}
	if w.MemberID == nil {
		return nil, fmt.Errorf("%w: member withdrawals require a memberID", apperrors.ErrValidation)
	}
	member, err := s.post.memberRepo.FindMemberByID(ctx, *w.MemberID)
	if err != nil {
		return nil, err
	}
	if !member.IsActive {
		return nil, fmt.Errorf("%w: member %s is inactive", apperrors.ErrValidation, member.MemberID)
	}
	if member.Balance.LessThan(w.Amount) {
		return nil, fmt.Errorf("%w: member savings balance %s cannot cover withdrawal of %s",
			apperrors.ErrValidation, member.Balance, w.Amount)
	}
	return member, nil
}

func (s *WithdrawalService) CreateWithdrawal(ctx context.Context, req dto.CreateWithdrawalRequest, userID string) (*domain.Withdrawal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	reference := req.Reference
	if reference == nil || *reference == "" {
		ref, err := refgen.New(refgen.PrefixWithdrawal, date)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to generate reference", err)
		}
		reference = &ref
	}

	withdrawal := domain.Withdrawal{
		WithdrawalID: uuid.NewString(),
		MemberID:     req.MemberID,
		AccountID:    req.AccountID,
		Type:         req.Type,
		Amount:       req.Amount,
		Reference:    reference,
		Description:  req.Description,
		Date:         date,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		// Funds are checked inside the transaction so a concurrent
		// withdrawal cannot drain the same balance twice.
		if _, err := s.validateFunds(ctx, withdrawal); err != nil {
			return err
		}
		if err := s.withdrawalRepo.SaveWithdrawal(ctx, withdrawal); err != nil {
			return err
		}
		return s.postWithdrawal(ctx, withdrawal, userID, now)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("failed to create withdrawal", slog.Any("error", err))
		}
		return nil, err
	}

	logger.Info("withdrawal posted",
		slog.String("withdrawalID", withdrawal.WithdrawalID),
		slog.String("type", string(withdrawal.Type)),
		slog.String("amount", withdrawal.Amount.String()))
	return &withdrawal, nil
}

// postWithdrawal writes the journal pair, the member ledger row (member
// withdrawals only) and the category movement. Runs inside a transaction.
func (s *WithdrawalService) postWithdrawal(ctx context.Context, w domain.Withdrawal, userID string, now time.Time) error {
	counter, categoryName, err := s.counterAccount(ctx, w.Type, userID)
	if err != nil {
		return err
	}

	description := w.Description
	if description == "" {
		description = withdrawalLabel(w.Type)
	}
	narration := ""
	if w.MemberID != nil {
		narration = fmt.Sprintf("MemberId:%s", *w.MemberID)
	}

	entry := domain.JournalEntry{
		EntryID:         uuid.NewString(),
		Date:            w.Date,
		Reference:       w.Reference,
		Description:     description,
		Narration:       narration,
		DebitAccountID:  counter.AccountID,
		DebitAmount:     w.Amount,
		CreditAccountID: w.AccountID,
		CreditAmount:    w.Amount,
		Category:        categoryName,
		SourceKind:      domain.SourceWithdrawal,
		SourceID:        w.WithdrawalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.post.postEntries(ctx, []domain.JournalEntry{entry}, userID, now); err != nil {
		return err
	}

	if w.Type == domain.WithdrawalTypeMember {
		if err := s.post.appendMemberEntry(ctx, domain.MemberLedgerEntry{
			MemberID:    *w.MemberID,
			Type:        domain.LedgerWithdrawal,
			Amount:      w.Amount.Neg(),
			Description: description,
			Reference:   *w.Reference,
			SourceKind:  domain.SourceWithdrawal,
			SourceID:    w.WithdrawalID,
			Date:        w.Date,
		}); err != nil {
			return err
		}
	}

	return s.post.appendCategoryEntry(ctx, categoryName, domain.CategoryExpense, domain.CategoryLedgerEntry{
		MemberID:    w.MemberID,
		Amount:      w.Amount,
		Description: description,
		Reference:   w.Reference,
		SourceKind:  domain.SourceWithdrawal,
		SourceID:    w.WithdrawalID,
		Date:        w.Date,
	}, userID, now)
}

func withdrawalLabel(t domain.WithdrawalType) string {
	if t == domain.WithdrawalTypeExpense {
		return "Expense payout"
	}
	return "Member withdrawal"
}

func (s *WithdrawalService) GetWithdrawalByID(ctx context.Context, withdrawalID string) (*domain.Withdrawal, error) {
	return s.withdrawalRepo.FindWithdrawalByID(ctx, withdrawalID)
}

func (s *WithdrawalService) ListWithdrawals(ctx context.Context, memberID *string, limit int, offset int) ([]domain.Withdrawal, error) {
	return s.withdrawalRepo.ListWithdrawals(ctx, memberID, limit, offset)
}

func (s *WithdrawalService) UpdateWithdrawal(ctx context.Context, withdrawalID string, req dto.UpdateWithdrawalRequest, userID string) (*domain.Withdrawal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	withdrawal, err := s.withdrawalRepo.FindWithdrawalByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if withdrawal.IsVoided {
		return nil, fmt.Errorf("%w: withdrawal %s is voided and cannot be edited", apperrors.ErrConflict, withdrawalID)
	}

	moneyChanged := false
	if req.MemberID != nil {
		if withdrawal.MemberID == nil || *req.MemberID != *withdrawal.MemberID {
			withdrawal.MemberID = req.MemberID
			moneyChanged = true
		}
	}
	if req.AccountID != nil && *req.AccountID != withdrawal.AccountID {
		withdrawal.AccountID = *req.AccountID
		moneyChanged = true
	}
	if req.Amount != nil && !req.Amount.Equal(withdrawal.Amount) {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: withdrawal amount must be positive", apperrors.ErrValidation)
		}
		withdrawal.Amount = *req.Amount
		moneyChanged = true
	}
	if req.Date != nil && !req.Date.Equal(withdrawal.Date) {
		withdrawal.Date = *req.Date
		moneyChanged = true
	}
	if req.Description != nil {
		withdrawal.Description = *req.Description
	}

	now := time.Now()
	withdrawal.LastUpdatedAt = now
	withdrawal.LastUpdatedBy = userID

	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if moneyChanged {
			if err := s.post.unpostSource(ctx, domain.SourceWithdrawal, withdrawal.WithdrawalID, userID, now); err != nil {
				return err
			}
			if _, err := s.validateFunds(ctx, *withdrawal); err != nil {
				return err
			}
			if err := s.postWithdrawal(ctx, *withdrawal, userID, now); err != nil {
				return err
			}
		}
		return s.withdrawalRepo.UpdateWithdrawal(ctx, *withdrawal)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			logger.Error("failed to update withdrawal", slog.Any("error", err))
		}
		return nil, err
	}

	logger.Info("withdrawal updated", slog.String("withdrawalID", withdrawalID), slog.Bool("reposted", moneyChanged))
	return withdrawal, nil
}

func (s *WithdrawalService) VoidWithdrawal(ctx context.Context, withdrawalID string, reason string, userID string) (*domain.Withdrawal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	withdrawal, err := s.withdrawalRepo.FindWithdrawalByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if withdrawal.IsVoided {
		return nil, fmt.Errorf("%w: withdrawal %s is already voided", apperrors.ErrConflict, withdrawalID)
	}

	now := time.Now()
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.withdrawalRepo.MarkWithdrawalVoided(ctx, withdrawalID, reason, userID, now); err != nil {
			return err
		}
		if _, err := s.post.reverseEntries(ctx, domain.SourceWithdrawal, withdrawalID, userID, now); err != nil {
			return err
		}

		voidRef := domain.VoidReferencePrefix + *withdrawal.Reference
		if withdrawal.Type == domain.WithdrawalTypeMember {
			// Voiding a withdrawal returns the money to the member's savings.
			if err := s.post.appendMemberEntry(ctx, domain.MemberLedgerEntry{
				MemberID:    *withdrawal.MemberID,
				Type:        domain.LedgerAdjustment,
				Amount:      withdrawal.Amount,
				Description: "Void: " + reason,
				Reference:   voidRef,
				SourceKind:  domain.SourceWithdrawal,
				SourceID:    withdrawalID,
				Date:        now,
			}); err != nil {
				return err
			}
		}

		_, categoryName, err := s.counterAccount(ctx, withdrawal.Type, userID)
		if err != nil {
			return err
		}
		return s.post.appendCategoryEntry(ctx, categoryName, domain.CategoryExpense, domain.CategoryLedgerEntry{
			MemberID:    withdrawal.MemberID,
			Amount:      withdrawal.Amount.Neg(),
			Description: "Void: " + reason,
			Reference:   &voidRef,
			SourceKind:  domain.SourceWithdrawal,
			SourceID:    withdrawalID,
			Date:        now,
		}, userID, now)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("failed to void withdrawal", slog.Any("error", err))
		}
		return nil, err
	}

	logger.Info("withdrawal voided", slog.String("withdrawalID", withdrawalID))
	return s.withdrawalRepo.FindWithdrawalByID(ctx, withdrawalID)
}

func (s *WithdrawalService) DeleteWithdrawal(ctx context.Context, withdrawalID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	withdrawal, err := s.withdrawalRepo.FindWithdrawalByID(ctx, withdrawalID)
	if err != nil {
		return err
	}

	now := time.Now()
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		// A voided withdrawal keeps its original postings as an audit
		// trail; only the void-minted rows go.
		if withdrawal.IsVoided {
			if err := s.post.unpostVoid(ctx, domain.SourceWithdrawal, withdrawalID, userID, now); err != nil {
				return err
			}
		} else if err := s.post.unpostSource(ctx, domain.SourceWithdrawal, withdrawalID, userID, now); err != nil {
			return err
		}
		return s.withdrawalRepo.DeleteWithdrawal(ctx, withdrawalID)
	})
	if err != nil {
		logger.Error("failed to delete withdrawal", slog.Any("error", err))
		return err
	}

	logger.Info("withdrawal deleted", slog.String("withdrawalID", withdrawalID))
	return nil
}
