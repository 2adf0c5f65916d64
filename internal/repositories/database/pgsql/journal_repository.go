package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/apperrors"
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	portsrepo "github.com/saccokit/sacco-ledger/internal/core/ports/repositories"
	"github.com/saccokit/sacco-ledger/internal/models"
	"github.com/saccokit/sacco-ledger/internal/utils/mapping"
	"github.com/saccokit/sacco-ledger/internal/utils/pagination"
)

const journalColumns = `entry_id, entry_date, reference, description, narration, debit_account_id, debit_amount, credit_account_id, credit_amount, category, source_kind, source_id, is_reversal, created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries.
func newPgxJournalRepository(db DBConn) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository{db: db}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func scanJournalEntry(row pgx.Row) (*models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.EntryDate,
		&m.Reference,
		&m.Description,
		&m.Narration,
		&m.DebitAccountID,
		&m.DebitAmount,
		&m.CreditAccountID,
		&m.CreditAmount,
		&m.Category,
		&m.SourceKind,
		&m.SourceID,
		&m.IsReversal,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxJournalRepository) queryEntries(ctx context.Context, query string, args ...any) ([]models.JournalEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		m, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		entries = append(entries, *m)
	}
	return entries, rows.Err()
}

// SaveEntries persists a batch of journal entries in one round trip.
func (r *PgxJournalRepository) SaveEntries(ctx context.Context, entries []domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	query := `
		INSERT INTO journal_entries (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	batch := &pgx.Batch{}
	for _, entry := range entries {
		m := mapping.ToModelJournalEntry(entry)
		batch.Queue(query,
			m.EntryID,
			m.EntryDate,
			m.Reference,
			m.Description,
			m.Narration,
			m.DebitAccountID,
			m.DebitAmount,
			m.CreditAccountID,
			m.CreditAmount,
			m.Category,
			m.SourceKind,
			m.SourceID,
			m.IsReversal,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}

	results := r.conn(ctx).SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: journal entry reference already used", apperrors.ErrDuplicate)
			}
			return fmt.Errorf("failed to insert journal entry: %w", err)
		}
	}
	return nil
}

// FindEntryByID retrieves a single journal entry.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE entry_id = $1;`

	m, err := scanJournalEntry(r.conn(ctx).QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}
	entry := mapping.ToDomainJournalEntry(*m)
	return &entry, nil
}

// FindEntryByReference retrieves an entry by its globally unique reference.
func (r *PgxJournalRepository) FindEntryByReference(ctx context.Context, reference string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE reference = $1;`

	m, err := scanJournalEntry(r.conn(ctx).QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal entry with reference %s: %w", reference, err)
	}
	entry := mapping.ToDomainJournalEntry(*m)
	return &entry, nil
}

// FindEntriesBySource retrieves the entries one source transaction minted,
// in insertion order.
func (r *PgxJournalRepository) FindEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.JournalEntry, error) {
	query := `
		SELECT ` + journalColumns + `
		FROM journal_entries
		WHERE source_kind = $1 AND source_id = $2
		ORDER BY created_at, entry_id;
	`
	entries, err := r.queryEntries(ctx, query, string(kind), sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal entries for %s %s: %w", kind, sourceID, err)
	}
	return mapping.ToDomainJournalEntrySlice(entries), nil
}

// ListEntries pages through the journal newest first using token pagination
// keyed on (entry_date, created_at).
func (r *PgxJournalRepository) ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + journalColumns + ` FROM journal_entries`
	args := []any{}
	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` WHERE (entry_date, created_at) < ($1, $2)`
		args = append(args, entryDate, createdAt)
	}
	query += fmt.Sprintf(` ORDER BY entry_date DESC, created_at DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1) // fetch one extra row to detect another page

	entries, err := r.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[limit-1]
		t := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		token = &t
	}
	return mapping.ToDomainJournalEntrySlice(entries), token, nil
}

// FilterEntries retrieves entries matching the filter, newest first, with
// plain offset pagination.
func (r *PgxJournalRepository) FilterEntries(ctx context.Context, filter domain.JournalFilter, limit int, offset int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + journalColumns + ` FROM journal_entries`
	args := []any{}
	clauses := []string{}
	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		clauses = append(clauses, fmt.Sprintf(`(debit_account_id = $%d OR credit_account_id = $%d)`, len(args), len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf(`category = $%d`, len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf(`entry_date >= $%d`, len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf(`entry_date <= $%d`, len(args)))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += ` WHERE ` + clause
		} else {
			query += ` AND ` + clause
		}
	}
	query += fmt.Sprintf(` ORDER BY entry_date DESC, created_at DESC LIMIT $%d OFFSET $%d;`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	entries, err := r.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to filter journal entries: %w", err)
	}
	return mapping.ToDomainJournalEntrySlice(entries), nil
}

// ListEntriesByAccount retrieves the entries touching one account, oldest
// first, so callers can build a running-balance statement.
func (r *PgxJournalRepository) ListEntriesByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]domain.JournalEntry, error) {
	query := `
		SELECT ` + journalColumns + `
		FROM journal_entries
		WHERE (debit_account_id = $1 OR credit_account_id = $1)`
	args := []any{accountID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND entry_date >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND entry_date <= $%d`, len(args))
	}
	query += ` ORDER BY entry_date, created_at, entry_id;`

	entries, err := r.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries for account %s: %w", accountID, err)
	}
	return mapping.ToDomainJournalEntrySlice(entries), nil
}

// SumMoneyFlow totals debits into and credits out of the financial accounts
// over a period. GL and liability accounts are excluded so internal
// transfers between books do not count as cash movement.
func (r *PgxJournalRepository) SumMoneyFlow(ctx context.Context, from, to *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN da.account_type IN ('cash', 'bank', 'mobileMoney', 'pettyCash') THEN je.debit_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN ca.account_type IN ('cash', 'bank', 'mobileMoney', 'pettyCash') THEN je.credit_amount ELSE 0 END), 0)
		FROM journal_entries je
		JOIN accounts da ON da.account_id = je.debit_account_id
		JOIN accounts ca ON ca.account_id = je.credit_account_id
		WHERE ($1::timestamptz IS NULL OR je.entry_date >= $1)
		  AND ($2::timestamptz IS NULL OR je.entry_date <= $2);
	`
	var moneyIn, moneyOut decimal.Decimal
	if err := r.conn(ctx).QueryRow(ctx, query, from, to).Scan(&moneyIn, &moneyOut); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum money flow: %w", err)
	}
	return moneyIn, moneyOut, nil
}

// SumDebitsAndCredits recomputes one account's debit and credit totals
// across the whole journal.
func (r *PgxJournalRepository) SumDebitsAndCredits(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE((SELECT SUM(debit_amount) FROM journal_entries WHERE debit_account_id = $1), 0),
			COALESCE((SELECT SUM(credit_amount) FROM journal_entries WHERE credit_account_id = $1), 0);
	`
	var debits, credits decimal.Decimal
	if err := r.conn(ctx).QueryRow(ctx, query, accountID).Scan(&debits, &credits); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum journal for account %s: %w", accountID, err)
	}
	return debits, credits, nil
}

// Summarize aggregates entry count, grand totals and the net position of
// the financial accounts.
func (r *PgxJournalRepository) Summarize(ctx context.Context) (*domain.LedgerSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(debit_amount), 0),
			COALESCE(SUM(credit_amount), 0),
			COALESCE((
				SELECT SUM(balance) FROM accounts
				WHERE account_type IN ('cash', 'bank', 'mobileMoney', 'pettyCash')
			), 0)
		FROM journal_entries;
	`
	var summary domain.LedgerSummary
	err := r.conn(ctx).QueryRow(ctx, query).Scan(
		&summary.EntryCount,
		&summary.TotalDebits,
		&summary.TotalCredits,
		&summary.TotalAssets,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize journal: %w", err)
	}
	return &summary, nil
}

// DeleteReversalEntriesBySource removes only the void-minted reversal
// entries of a source transaction, leaving the originals intact.
func (r *PgxJournalRepository) DeleteReversalEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) error {
	query := `DELETE FROM journal_entries WHERE source_kind = $1 AND source_id = $2 AND is_reversal;`

	if _, err := r.conn(ctx).Exec(ctx, query, string(kind), sourceID); err != nil {
		return fmt.Errorf("failed to delete reversal entries for %s %s: %w", kind, sourceID, err)
	}
	return nil
}

// DeleteEntriesBySource removes every entry of a source transaction.
func (r *PgxJournalRepository) DeleteEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) error {
	query := `DELETE FROM journal_entries WHERE source_kind = $1 AND source_id = $2;`

	if _, err := r.conn(ctx).Exec(ctx, query, string(kind), sourceID); err != nil {
		return fmt.Errorf("failed to delete journal entries for %s %s: %w", kind, sourceID, err)
	}
	return nil
}
