package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/apperrors"
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	portsrepo "github.com/saccokit/sacco-ledger/internal/core/ports/repositories"
	"github.com/saccokit/sacco-ledger/internal/models"
	"github.com/saccokit/sacco-ledger/internal/utils/mapping"
)

const categoryLedgerColumns = `category_ledger_id, name, kind, total_amount, balance, created_at, created_by, last_updated_at, last_updated_by`

const categoryEntryColumns = `entry_id, category_ledger_id, member_id, amount, description, reference, source_kind, source_id, balance_after, entry_date, created_at, created_by, last_updated_at, last_updated_by`

type PgxCategoryLedgerRepository struct {
	BaseRepository
}

// newPgxCategoryLedgerRepository creates a new repository for category
// ledgers and their entries.
func newPgxCategoryLedgerRepository(db DBConn) *PgxCategoryLedgerRepository {
	return &PgxCategoryLedgerRepository{BaseRepository{db: db}}
}

var _ portsrepo.CategoryLedgerRepository = (*PgxCategoryLedgerRepository)(nil)

func scanCategoryLedger(row pgx.Row) (*models.CategoryLedger, error) {
	var m models.CategoryLedger
	err := row.Scan(
		&m.CategoryLedgerID,
		&m.Name,
		&m.Kind,
		&m.TotalAmount,
		&m.Balance,
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

func scanCategoryEntry(row pgx.Row) (*models.CategoryLedgerEntry, error) {
	var m models.CategoryLedgerEntry
	err := row.Scan(
		&m.EntryID,
		&m.CategoryLedgerID,
		&m.MemberID,
		&m.Amount,
		&m.Description,
		&m.Reference,
		&m.SourceKind,
		&m.SourceID,
		&m.BalanceAfter,
		&m.EntryDate,
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

// FindCategoryLedgerByName retrieves a category ledger by its display name.
func (r *PgxCategoryLedgerRepository) FindCategoryLedgerByName(ctx context.Context, name string) (*domain.CategoryLedger, error) {
	query := `SELECT ` + categoryLedgerColumns + ` FROM category_ledgers WHERE name = $1;`

	m, err := scanCategoryLedger(r.conn(ctx).QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category ledger %s: %w", name, err)
	}
	ledger := mapping.ToDomainCategoryLedger(*m)
	return &ledger, nil
}

// SaveCategoryLedger inserts a new category ledger.
func (r *PgxCategoryLedgerRepository) SaveCategoryLedger(ctx context.Context, ledger domain.CategoryLedger) error {
	m := mapping.ToModelCategoryLedger(ledger)

	query := `
		INSERT INTO category_ledgers (` + categoryLedgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.conn(ctx).Exec(ctx, query,
		m.CategoryLedgerID,
		m.Name,
		m.Kind,
		m.TotalAmount,
		m.Balance,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: category ledger %s already exists", apperrors.ErrDuplicate, m.Name)
		}
		return fmt.Errorf("failed to save category ledger %s: %w", m.Name, err)
	}
	return nil
}

// ListCategoryLedgers retrieves all category ledgers ordered by name.
func (r *PgxCategoryLedgerRepository) ListCategoryLedgers(ctx context.Context) ([]domain.CategoryLedger, error) {
	query := `SELECT ` + categoryLedgerColumns + ` FROM category_ledgers ORDER BY name;`

	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list category ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []models.CategoryLedger
	for rows.Next() {
		m, err := scanCategoryLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category ledger row: %w", err)
		}
		ledgers = append(ledgers, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category ledger rows: %w", err)
	}
	return mapping.ToDomainCategoryLedgerSlice(ledgers), nil
}

// ApplyCategoryDeltas adds the deltas atomically and returns the balance
// after the change.
func (r *PgxCategoryLedgerRepository) ApplyCategoryDeltas(ctx context.Context, categoryLedgerID string, totalDelta, balanceDelta decimal.Decimal, userID string) (decimal.Decimal, error) {
	query := `
		UPDATE category_ledgers
		SET total_amount = COALESCE(total_amount, 0) + $2,
		    balance = COALESCE(balance, 0) + $3,
		    last_updated_at = NOW(), last_updated_by = $4
		WHERE category_ledger_id = $1
		RETURNING balance;
	`
	var balance decimal.Decimal
	err := r.conn(ctx).QueryRow(ctx, query, categoryLedgerID, totalDelta, balanceDelta, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to apply deltas to category ledger %s: %w", categoryLedgerID, err)
	}
	return balance, nil
}

// SaveCategoryEntry appends one movement to a category ledger.
func (r *PgxCategoryLedgerRepository) SaveCategoryEntry(ctx context.Context, entry domain.CategoryLedgerEntry) error {
	m := mapping.ToModelCategoryLedgerEntry(entry)

	query := `
		INSERT INTO category_ledger_entries (` + categoryEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.conn(ctx).Exec(ctx, query,
		m.EntryID,
		m.CategoryLedgerID,
		m.MemberID,
		m.Amount,
		m.Description,
		m.Reference,
		m.SourceKind,
		m.SourceID,
		m.BalanceAfter,
		m.EntryDate,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save category ledger entry %s: %w", m.EntryID, err)
	}
	return nil
}

// ListCategoryEntries retrieves a category's movements newest first.
func (r *PgxCategoryLedgerRepository) ListCategoryEntries(ctx context.Context, categoryLedgerID string, limit int, offset int) ([]domain.CategoryLedgerEntry, error) {
	query := `
		SELECT ` + categoryEntryColumns + `
		FROM category_ledger_entries
		WHERE category_ledger_id = $1
		ORDER BY entry_date DESC, created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.conn(ctx).Query(ctx, query, categoryLedgerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for category ledger %s: %w", categoryLedgerID, err)
	}
	defer rows.Close()

	var entries []models.CategoryLedgerEntry
	for rows.Next() {
		m, err := scanCategoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category entry row: %w", err)
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category entry rows: %w", err)
	}
	return mapping.ToDomainCategoryLedgerEntrySlice(entries), nil
}

// FindCategoryEntriesBySource retrieves the movements one source minted.
func (r *PgxCategoryLedgerRepository) FindCategoryEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.CategoryLedgerEntry, error) {
	query := `
		SELECT ` + categoryEntryColumns + `
		FROM category_ledger_entries
		WHERE source_kind = $1 AND source_id = $2
		ORDER BY entry_id;
	`
	rows, err := r.conn(ctx).Query(ctx, query, string(kind), sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find category entries for %s %s: %w", kind, sourceID, err)
	}
	defer rows.Close()

	var entries []models.CategoryLedgerEntry
	for rows.Next() {
		m, err := scanCategoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category entry row: %w", err)
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category entry rows: %w", err)
	}
	return mapping.ToDomainCategoryLedgerEntrySlice(entries), nil
}

// DeleteCategoryEntriesBySource removes the movements one source minted.
func (r *PgxCategoryLedgerRepository) DeleteCategoryEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) error {
	query := `DELETE FROM category_ledger_entries WHERE source_kind = $1 AND source_id = $2;`

	if _, err := r.conn(ctx).Exec(ctx, query, string(kind), sourceID); err != nil {
		return fmt.Errorf("failed to delete category entries for %s %s: %w", kind, sourceID, err)
	}
	return nil
}

// DeleteCategoryEntry removes a single category ledger movement.
func (r *PgxCategoryLedgerRepository) DeleteCategoryEntry(ctx context.Context, entryID string) error {
	query := `DELETE FROM category_ledger_entries WHERE entry_id = $1;`

	tag, err := r.conn(ctx).Exec(ctx, query, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete category entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindDuplicateCategoryEntries returns every redundant row: entries sharing
// (ledger, source, amount) beyond the first occurrence. A source posts one
// movement per category, so repeats indicate a double-posted transaction.
func (r *PgxCategoryLedgerRepository) FindDuplicateCategoryEntries(ctx context.Context) ([]domain.CategoryLedgerEntry, error) {
	query := `
		SELECT ` + categoryEntryColumns + `
		FROM (
			SELECT *, ROW_NUMBER() OVER (
				PARTITION BY category_ledger_id, source_kind, source_id, amount
				ORDER BY created_at, entry_id
			) AS rn
			FROM category_ledger_entries
		) ranked
		WHERE rn > 1
		ORDER BY created_at, entry_id;
	`
	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find duplicate category entries: %w", err)
	}
	defer rows.Close()

	var entries []models.CategoryLedgerEntry
	for rows.Next() {
		m, err := scanCategoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category entry row: %w", err)
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category entry rows: %w", err)
	}
	return mapping.ToDomainCategoryLedgerEntrySlice(entries), nil
}

// SumCategoryEntries returns the signed net of a category's movements.
func (r *PgxCategoryLedgerRepository) SumCategoryEntries(ctx context.Context, categoryLedgerID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM category_ledger_entries WHERE category_ledger_id = $1;`

	var net decimal.Decimal
	if err := r.conn(ctx).QueryRow(ctx, query, categoryLedgerID).Scan(&net); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum entries for category ledger %s: %w", categoryLedgerID, err)
	}
	return net, nil
}
