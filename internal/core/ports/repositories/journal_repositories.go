package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
)

// JournalReader defines read operations for journal entries
type JournalReader interface {
	// FindEntryByID retrieves a single journal entry.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntriesBySource retrieves the entries that one source transaction
	// minted, in insertion order. Void reversals share the source key and are
	// returned alongside the originals.
	FindEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.JournalEntry, error)

	// FindEntryByReference retrieves an entry by its globally unique reference.
	FindEntryByReference(ctx context.Context, reference string) (*domain.JournalEntry, error)

	// ListEntries retrieves journal entries newest first with token pagination.
	ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// FilterEntries retrieves entries matching the filter, newest first,
	// with plain offset pagination.
	FilterEntries(ctx context.Context, filter domain.JournalFilter, limit int, offset int) ([]domain.JournalEntry, error)

	// ListEntriesByAccount retrieves the entries touching one account,
	// oldest first, so callers can build a running-balance statement.
	// Nil bounds mean unbounded.
	ListEntriesByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]domain.JournalEntry, error)

	// SumMoneyFlow totals debits into and credits out of the financial
	// accounts over a period.
	SumMoneyFlow(ctx context.Context, from, to *time.Time) (moneyIn, moneyOut decimal.Decimal, err error)

	// SumDebitsAndCredits recomputes one account's debit and credit totals
	// across the whole journal.
	SumDebitsAndCredits(ctx context.Context, accountID string) (debits, credits decimal.Decimal, err error)

	// Summarize aggregates entry count and grand debit/credit totals.
	Summarize(ctx context.Context) (*domain.LedgerSummary, error)
}

// JournalWriter defines write operations for journal entries
type JournalWriter interface {
	// SaveEntries persists a batch of journal entries.
	SaveEntries(ctx context.Context, entries []domain.JournalEntry) error

	// DeleteReversalEntriesBySource removes only the void-minted reversal
	// entries of a source transaction, leaving the originals intact.
	DeleteReversalEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) error

	// DeleteEntriesBySource removes every entry of a source transaction.
	DeleteEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
