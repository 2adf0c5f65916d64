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

// Category ledger names fed by deposits.
const (
	CategoryMonthlyContribution = "Monthly Contribution"
	CategoryMemberDeposits      = "Member Deposits"
)

type DepositService struct {
	txManager   portsrepo.TxManager
	depositRepo portsrepo.DepositRepository
	accountSvc  portssvc.AccountSvcFacade
	post        *posting
}

func NewDepositService(
	txManager portsrepo.TxManager,
	depositRepo portsrepo.DepositRepository,
	accountSvc portssvc.AccountSvcFacade,
	post *posting,
) *DepositService {
	return &DepositService{
		txManager:   txManager,
		depositRepo: depositRepo,
		accountSvc:  accountSvc,
		post:        post,
	}
}

// counterAccount resolves the account a deposit credits: contributions go
// to contribution income, savings deposits to the member savings liability.
func (s *DepositService) counterAccount(ctx context.Context, depositType domain.DepositType, userID string) (*domain.Account, string, error) {
	switch depositType {
	case domain.DepositTypeContribution:
		acc, err := s.accountSvc.EnsureAccount(ctx, domain.CodeContributionReceived, "Monthly Contribution Received", domain.AccountGL, userID)
		return acc, CategoryMonthlyContribution, err
	case domain.DepositTypeDeposit:
		acc, err := s.accountSvc.EnsureAccount(ctx, domain.CodeMemberSavingsPayable, "Member Savings Payable", domain.AccountLiability, userID)
		return acc, CategoryMemberDeposits, err
	}
	return nil, "", fmt.Errorf("%w: unknown deposit type %q", apperrors.ErrValidation, depositType)
}

// checkFinancialAccount validates an account that pays or receives cash.
func checkFinancialAccount(account *domain.Account) error {
	if !account.IsActive {
		return fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, account.Code)
	}
	if !account.Type.IsFinancial() {
		return fmt.Errorf("%w: account %s is not a financial account", apperrors.ErrValidation, account.Code)
	}
	return nil
}

func (s *DepositService) CreateDeposit(ctx context.Context, req dto.CreateDepositRequest, userID string) (*domain.Deposit, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: deposit amount must be positive", apperrors.ErrValidation)
	}

	member, err := s.post.memberRepo.FindMemberByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if !member.IsActive {
		return nil, fmt.Errorf("%w: member %s is inactive", apperrors.ErrValidation, member.MemberID)
	}

	account, err := s.post.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if err := checkFinancialAccount(account); err != nil {
		return nil, err
	}

	now := time.Now()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	reference := req.Reference
	if reference == nil || *reference == "" {
		ref, err := refgen.New(refgen.PrefixDeposit, date)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to generate reference", err)
		}
		reference = &ref
	}

	deposit := domain.Deposit{
		DepositID:   uuid.NewString(),
		MemberID:    req.MemberID,
		AccountID:   req.AccountID,
		Type:        req.Type,
		Amount:      req.Amount,
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

	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.depositRepo.SaveDeposit(ctx, deposit); err != nil {
			return err
		}
		return s.postDeposit(ctx, deposit, member.Name, userID, now)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) && !errors.Is(err, apperrors.ErrValidation) {
			logger.Error("failed to create deposit", slog.Any("error", err))
		}
		return nil, err
	}

	logger.Info("deposit posted",
		slog.String("depositID", deposit.DepositID),
		slog.String("memberID", deposit.MemberID),
		slog.String("type", string(deposit.Type)),
		slog.String("amount", deposit.Amount.String()))
	return &deposit, nil
}

// postDeposit writes the journal pair, the member ledger row and the
// category movement for one deposit. Runs inside a transaction.
func (s *DepositService) postDeposit(ctx context.Context, deposit domain.Deposit, memberName string, userID string, now time.Time) error {
	counter, categoryName, err := s.counterAccount(ctx, deposit.Type, userID)
	if err != nil {
		return err
	}

	description := deposit.Description
	if description == "" {
		description = fmt.Sprintf("%s from %s", depositLabel(deposit.Type), memberName)
	}

	entry := domain.JournalEntry{
		EntryID:         uuid.NewString(),
		Date:            deposit.Date,
		Reference:       deposit.Reference,
		Description:     description,
		Narration:       fmt.Sprintf("MemberId:%s", deposit.MemberID),
		DebitAccountID:  deposit.AccountID,
		DebitAmount:     deposit.Amount,
		CreditAccountID: counter.AccountID,
		CreditAmount:    deposit.Amount,
		Category:        categoryName,
		SourceKind:      domain.SourceDeposit,
		SourceID:        deposit.DepositID,
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

	ledgerType := domain.LedgerDeposit
	if deposit.Type == domain.DepositTypeContribution {
		ledgerType = domain.LedgerContribution
	}
	if err := s.post.appendMemberEntry(ctx, domain.MemberLedgerEntry{
		MemberID:    deposit.MemberID,
		Type:        ledgerType,
		Amount:      deposit.Amount,
		Description: description,
		Reference:   *deposit.Reference,
		SourceKind:  domain.SourceDeposit,
		SourceID:    deposit.DepositID,
		Date:        deposit.Date,
	}); err != nil {
		return err
	}

	memberID := deposit.MemberID
	return s.post.appendCategoryEntry(ctx, categoryName, domain.CategoryIncome, domain.CategoryLedgerEntry{
		MemberID:    &memberID,
		Amount:      deposit.Amount,
		Description: description,
		Reference:   deposit.Reference,
		SourceKind:  domain.SourceDeposit,
		SourceID:    deposit.DepositID,
		Date:        deposit.Date,
	}, userID, now)
}

func depositLabel(t domain.DepositType) string {
	if t == domain.DepositTypeContribution {
		return "Monthly contribution"
	}
	return "Deposit"
}

func (s *DepositService) GetDepositByID(ctx context.Context, depositID string) (*domain.Deposit, error) {
	return s.depositRepo.FindDepositByID(ctx, depositID)
}

func (s *DepositService) ListDeposits(ctx context.Context, memberID *string, limit int, offset int) ([]domain.Deposit, error) {
	return s.depositRepo.ListDeposits(ctx, memberID, limit, offset)
}

func (s *DepositService) UpdateDeposit(ctx context.Context, depositID string, req dto.UpdateDepositRequest, userID string) (*domain.Deposit, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	deposit, err := s.depositRepo.FindDepositByID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit.IsVoided {
		return nil, fmt.Errorf("%w: deposit %s is voided and cannot be edited", apperrors.ErrConflict, depositID)
	}

	moneyChanged := false
	if req.MemberID != nil && *req.MemberID != deposit.MemberID {
		deposit.MemberID = *req.MemberID
		moneyChanged = true
	}
	if req.AccountID != nil && *req.AccountID != deposit.AccountID {
		deposit.AccountID = *req.AccountID
		moneyChanged = true
	}
	if req.Amount != nil && !req.Amount.Equal(deposit.Amount) {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: deposit amount must be positive", apperrors.ErrValidation)
		}
		deposit.Amount = *req.Amount
		moneyChanged = true
	}
	if req.Date != nil && !req.Date.Equal(deposit.Date) {
		deposit.Date = *req.Date
		moneyChanged = true
	}
	if req.Description != nil {
		deposit.Description = *req.Description
	}

	member, err := s.post.memberRepo.FindMemberByID(ctx, deposit.MemberID)
	if err != nil {
		return nil, err
	}
	if moneyChanged {
		if !member.IsActive {
			return nil, fmt.Errorf("%w: member %s is inactive", apperrors.ErrValidation, member.MemberID)
		}
		account, err := s.post.accountRepo.FindAccountByID(ctx, deposit.AccountID)
		if err != nil {
			return nil, err
		}
		if err := checkFinancialAccount(account); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	deposit.LastUpdatedAt = now
	deposit.LastUpdatedBy = userID

	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if moneyChanged {
			if err := s.post.unpostSource(ctx, domain.SourceDeposit, deposit.DepositID, userID, now); err != nil {
				return err
			}
			if err := s.postDeposit(ctx, *deposit, member.Name, userID, now); err != nil {
				return err
			}
		}
		return s.depositRepo.UpdateDeposit(ctx, *deposit)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			logger.Error("failed to update deposit", slog.Any("error", err))
		}
		return nil, err
	}

	logger.Info("deposit updated", slog.String("depositID", depositID), slog.Bool("reposted", moneyChanged))
	return deposit, nil
}

func (s *DepositService) VoidDeposit(ctx context.Context, depositID string, reason string, userID string) (*domain.Deposit, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	deposit, err := s.depositRepo.FindDepositByID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit.IsVoided {
		return nil, fmt.Errorf("%w: deposit %s is already voided", apperrors.ErrConflict, depositID)
	}

	now := time.Now()
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.depositRepo.MarkDepositVoided(ctx, depositID, reason, userID, now); err != nil {
			return err
		}
		if _, err := s.post.reverseEntries(ctx, domain.SourceDeposit, depositID, userID, now); err != nil {
			return err
		}

		voidRef := domain.VoidReferencePrefix + *deposit.Reference
		if err := s.post.appendMemberEntry(ctx, domain.MemberLedgerEntry{
			MemberID:    deposit.MemberID,
			Type:        domain.LedgerAdjustment,
			Amount:      deposit.Amount.Neg(),
			Description: "Void: " + reason,
			Reference:   voidRef,
			SourceKind:  domain.SourceDeposit,
			SourceID:    depositID,
			Date:        now,
		}); err != nil {
			return err
		}

		_, categoryName, err := s.counterAccount(ctx, deposit.Type, userID)
		if err != nil {
			return err
		}
		memberID := deposit.MemberID
		return s.post.appendCategoryEntry(ctx, categoryName, domain.CategoryIncome, domain.CategoryLedgerEntry{
			MemberID:    &memberID,
			Amount:      deposit.Amount.Neg(),
			Description: "Void: " + reason,
			Reference:   &voidRef,
			SourceKind:  domain.SourceDeposit,
			SourceID:    depositID,
			Date:        now,
		}, userID, now)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("failed to void deposit", slog.Any("error", err))
		}
		return nil, err
	}

	logger.Info("deposit voided", slog.String("depositID", depositID))
	return s.depositRepo.FindDepositByID(ctx, depositID)
}

func (s *DepositService) DeleteDeposit(ctx context.Context, depositID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	deposit, err := s.depositRepo.FindDepositByID(ctx, depositID)
	if err != nil {
		return err
	}

	now := time.Now()
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		// A voided deposit keeps its original postings as an audit
		// trail; only the void-minted rows go.
		if deposit.IsVoided {
			if err := s.post.unpostVoid(ctx, domain.SourceDeposit, depositID, userID, now); err != nil {
				return err
			}
		} else if err := s.post.unpostSource(ctx, domain.SourceDeposit, depositID, userID, now); err != nil {
			return err
		}
		return s.depositRepo.DeleteDeposit(ctx, depositID)
	})
	if err != nil {
		logger.Error("failed to delete deposit", slog.Any("error", err))
		return err
	}

	logger.Info("deposit deleted", slog.String("depositID", depositID))
	return nil
}
