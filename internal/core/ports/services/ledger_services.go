package services

import (
	"context"
	"time"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
)

// LedgerSvcFacade exposes read views over the journal.
type LedgerSvcFacade interface {
	// ListEntries pages through the journal, newest first.
	ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// FilterEntries lists entries matching the filter, newest first.
	FilterEntries(ctx context.Context, filter domain.JournalFilter, limit int, offset int) ([]domain.JournalEntry, error)

	// GetAccountStatement builds a per-account statement with running balances,
	// optionally bounded by entry date.
	GetAccountStatement(ctx context.Context, accountID string, from, to *time.Time) ([]domain.AccountLedgerLine, error)

	// GetSummary aggregates the whole journal.
	GetSummary(ctx context.Context) (*domain.LedgerSummary, error)

	// GetMoneyFlow totals movements into and out of the financial accounts.
	GetMoneyFlow(ctx context.Context, from, to *time.Time) (*domain.MoneyFlow, error)
}

// CategoryLedgerSvcFacade exposes the per-category summary books.
type CategoryLedgerSvcFacade interface {
	ListCategoryLedgers(ctx context.Context) ([]domain.CategoryLedger, error)
	GetCategoryEntries(ctx context.Context, name string, limit int, offset int) ([]domain.CategoryLedgerEntry, error)

	// GetCategorySummary nets income categories against expense categories.
	GetCategorySummary(ctx context.Context) (*domain.CategorySummary, error)
}

// ReconciliationSvcFacade checks and repairs the four books.
type ReconciliationSvcFacade interface {
	// Reconcile compares stored balances against recomputed ones and reports
	// every discrepancy without changing anything.
	Reconcile(ctx context.Context) (*domain.ReconciliationReport, error)

	// Backfill recomputes and overwrites stored balances from the journal and
	// the personal and category ledgers.
	Backfill(ctx context.Context, userID string) (*domain.ReconciliationReport, error)
}
