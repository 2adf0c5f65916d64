package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
)

// CategoryLedgerRepository persists the per-category summary books.
type CategoryLedgerRepository interface {
	// FindCategoryLedgerByName retrieves a category ledger by its display name.
	FindCategoryLedgerByName(ctx context.Context, name string) (*domain.CategoryLedger, error)

	// SaveCategoryLedger persists a new category ledger.
	SaveCategoryLedger(ctx context.Context, ledger domain.CategoryLedger) error

	// ListCategoryLedgers retrieves all category ledgers.
	ListCategoryLedgers(ctx context.Context) ([]domain.CategoryLedger, error)

	// ApplyCategoryDeltas adds totalDelta to the gross total and balanceDelta
	// to the running balance, returning the balance after the change.
	ApplyCategoryDeltas(ctx context.Context, categoryLedgerID string, totalDelta, balanceDelta decimal.Decimal, userID string) (decimal.Decimal, error)

	// SaveCategoryEntry appends one movement to a category ledger.
	SaveCategoryEntry(ctx context.Context, entry domain.CategoryLedgerEntry) error

	// ListCategoryEntries retrieves a category's movements, newest first.
	ListCategoryEntries(ctx context.Context, categoryLedgerID string, limit int, offset int) ([]domain.CategoryLedgerEntry, error)

	// FindCategoryEntriesBySource retrieves the movements one source minted.
	FindCategoryEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.CategoryLedgerEntry, error)

	// DeleteCategoryEntriesBySource removes the movements one source minted.
	DeleteCategoryEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) error

	// DeleteCategoryEntry removes a single category ledger movement.
	DeleteCategoryEntry(ctx context.Context, entryID string) error

	// SumCategoryEntries returns the signed net of a category's movements.
	SumCategoryEntries(ctx context.Context, categoryLedgerID string) (decimal.Decimal, error)

	// FindDuplicateCategoryEntries returns every redundant row: entries
	// sharing (ledger, source, amount) beyond the first occurrence.
	FindDuplicateCategoryEntries(ctx context.Context) ([]domain.CategoryLedgerEntry, error)
}
