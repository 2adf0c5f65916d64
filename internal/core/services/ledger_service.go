package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
	portsrepo "github.com/saccokit/sacco-ledger/internal/core/ports/repositories"
)

type LedgerService struct {
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

func NewLedgerService(journalRepo portsrepo.JournalRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) *LedgerService {
	return &LedgerService{journalRepo: journalRepo, accountRepo: accountRepo}
}

func (s *LedgerService) ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	return s.journalRepo.ListEntries(ctx, limit, nextToken)
}

// FilterEntries lists journal entries matching the filter, newest first.
func (s *LedgerService) FilterEntries(ctx context.Context, filter domain.JournalFilter, limit int, offset int) ([]domain.JournalEntry, error) {
	if filter.AccountID != nil {
		if _, err := s.accountRepo.FindAccountByID(ctx, *filter.AccountID); err != nil {
			return nil, err
		}
	}
	return s.journalRepo.FilterEntries(ctx, filter, limit, offset)
}

// GetAccountStatement replays an account's entries oldest first, carrying
// a running balance: debits increase it, credits decrease it. The running
// balance starts at zero from the first entry inside the bounds.
func (s *LedgerService) GetAccountStatement(ctx context.Context, accountID string, from, to *time.Time) ([]domain.AccountLedgerLine, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}

	entries, err := s.journalRepo.ListEntriesByAccount(ctx, accountID, from, to)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.AccountLedgerLine, 0, len(entries))
	running := decimal.Zero
	for _, e := range entries {
		line := domain.AccountLedgerLine{Entry: e}
		if e.DebitAccountID == accountID {
			line.Side = "debit"
			line.Amount = e.DebitAmount
			running = running.Add(e.DebitAmount)
		} else {
			line.Side = "credit"
			line.Amount = e.CreditAmount
			running = running.Sub(e.CreditAmount)
		}
		line.RunningBalance = running
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *LedgerService) GetSummary(ctx context.Context) (*domain.LedgerSummary, error) {
	return s.journalRepo.Summarize(ctx)
}

// GetMoneyFlow totals debits into and credits out of the financial
// accounts over the optional date bounds.
func (s *LedgerService) GetMoneyFlow(ctx context.Context, from, to *time.Time) (*domain.MoneyFlow, error) {
	moneyIn, moneyOut, err := s.journalRepo.SumMoneyFlow(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &domain.MoneyFlow{
		From:     from,
		To:       to,
		MoneyIn:  moneyIn,
		MoneyOut: moneyOut,
		Net:      moneyIn.Sub(moneyOut),
	}, nil
}

type CategoryLedgerService struct {
	categoryRepo portsrepo.CategoryLedgerRepository
}

func NewCategoryLedgerService(categoryRepo portsrepo.CategoryLedgerRepository) *CategoryLedgerService {
	return &CategoryLedgerService{categoryRepo: categoryRepo}
}

func (s *CategoryLedgerService) ListCategoryLedgers(ctx context.Context) ([]domain.CategoryLedger, error) {
	return s.categoryRepo.ListCategoryLedgers(ctx)
}

func (s *CategoryLedgerService) GetCategoryEntries(ctx context.Context, name string, limit int, offset int) ([]domain.CategoryLedgerEntry, error) {
	ledger, err := s.categoryRepo.FindCategoryLedgerByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.categoryRepo.ListCategoryEntries(ctx, ledger.CategoryLedgerID, limit, offset)
}

// GetCategorySummary folds every category ledger into income and expense
// totals over the netted balances.
func (s *CategoryLedgerService) GetCategorySummary(ctx context.Context) (*domain.CategorySummary, error) {
	ledgers, err := s.categoryRepo.ListCategoryLedgers(ctx)
	if err != nil {
		return nil, err
	}

	summary := &domain.CategorySummary{}
	for _, ledger := range ledgers {
		if ledger.Kind == domain.CategoryExpense {
			summary.TotalExpense = summary.TotalExpense.Add(ledger.Balance)
		} else {
			summary.TotalIncome = summary.TotalIncome.Add(ledger.Balance)
		}
	}
	summary.Net = summary.TotalIncome.Sub(summary.TotalExpense)
	return summary, nil
}
