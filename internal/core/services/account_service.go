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
	"github.com/saccokit/sacco-ledger/internal/dto"
	"github.com/saccokit/sacco-ledger/internal/middleware"
)

// ensureAccountDefaults describes the seeded chart-of-accounts rows that
// EnsureAccount can self-heal when one goes missing.
var ensureAccountDefaults = map[string]struct {
	Name string
	Type domain.AccountType
}{
	domain.CodeCashbox:              {"Cashbox", domain.AccountCash},
	domain.CodeLoansLedger:          {"Loans Ledger", domain.AccountGL},
	domain.CodeInterestReceivable:   {"Interest Receivable", domain.AccountGL},
	domain.CodeInterestIncome:       {"Interest Income", domain.AccountGL},
	domain.CodeFinesReceivable:      {"Fines Receivable", domain.AccountGL},
	domain.CodeFineIncome:           {"Fine Income", domain.AccountGL},
	domain.CodeMemberSavingsPayable: {"Member Savings Payable", domain.AccountLiability},
	domain.CodeContributionReceived: {"Monthly Contribution Received", domain.AccountGL},
	domain.CodeExpenseClearing:      {"Expense Clearing", domain.AccountGL},
}

type AccountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	journalRepo portsrepo.JournalRepositoryFacade
	currency    string
}

// NewAccountService creates the account registry service. currency is the
// cooperative's operating currency, stamped on accounts created without one.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade, currency string) *AccountService {
	return &AccountService{accountRepo: accountRepo, journalRepo: journalRepo, currency: currency}
}

func (s *AccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}

	now := time.Now()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        req.Code,
		Name:        req.Name,
		Type:        req.AccountType,
		Currency:    currency,
		Balance:     decimal.Zero,
		Description: req.Description,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("code", req.Code))
		}
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

func (s *AccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *AccountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by code", slog.String("error", err.Error()), slog.String("code", code))
		}
		return nil, err
	}
	return account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, financialOnly bool, limit int, offset int) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accounts, err := s.accountRepo.ListAccounts(ctx, financialOnly, limit, offset)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *AccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	account.LastUpdatedAt = time.Now()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, err
	}

	logger.Info("Account updated", slog.String("account_id", accountID))
	return account, nil
}

func (s *AccountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to deactivate account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return err
	}

	logger.Info("Account deactivated", slog.String("account_id", accountID))
	return nil
}

// EnsureAccount finds the account with the given code, creating it when
// missing so postings against well-known accounts are self-healing.
func (s *AccountService) EnsureAccount(ctx context.Context, code, name string, accType domain.AccountType, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if name == "" || accType == "" {
		if def, ok := ensureAccountDefaults[code]; ok {
			if name == "" {
				name = def.Name
			}
			if accType == "" {
				accType = def.Type
			}
		}
	}
	if name == "" || accType == "" {
		return nil, fmt.Errorf("%w: account %s does not exist and no defaults are known", apperrors.ErrValidation, code)
	}

	created, err := s.CreateAccount(ctx, dto.CreateAccountRequest{
		Code:        code,
		Name:        name,
		AccountType: accType,
	}, userID)
	if err != nil {
		// A concurrent posting may have created it between the lookup and
		// the insert.
		if errors.Is(err, apperrors.ErrDuplicate) {
			return s.accountRepo.FindAccountByCode(ctx, code)
		}
		return nil, err
	}

	logger.Info("Account re-created on demand", slog.String("code", code))
	return created, nil
}

// CalculateAccountBalance recomputes an account balance from the journal:
// the sum of its debits minus the sum of its credits.
func (s *AccountService) CalculateAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}
	debits, credits, err := s.journalRepo.SumDebitsAndCredits(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return debits.Sub(credits), nil
}
