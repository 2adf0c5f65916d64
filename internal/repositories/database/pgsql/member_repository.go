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

const memberColumns = `member_id, name, balance, loan_balance, is_active`

const memberLedgerColumns = `entry_id, member_id, entry_type, amount, description, reference, source_kind, source_id, balance_after, entry_date`

type PgxMemberRepository struct {
	BaseRepository
}

// newPgxMemberRepository creates a new repository for member data and the
// member personal ledgers.
func newPgxMemberRepository(db DBConn) *PgxMemberRepository {
	return &PgxMemberRepository{BaseRepository{db: db}}
}

var _ portsrepo.MemberRepositoryFacade = (*PgxMemberRepository)(nil)

func scanMember(row pgx.Row) (*models.Member, error) {
	var m models.Member
	err := row.Scan(&m.MemberID, &m.Name, &m.Balance, &m.LoanBalance, &m.IsActive)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMemberLedgerEntry(row pgx.Row) (*models.MemberLedgerEntry, error) {
	var m models.MemberLedgerEntry
	err := row.Scan(
		&m.EntryID,
		&m.MemberID,
		&m.EntryType,
		&m.Amount,
		&m.Description,
		&m.Reference,
		&m.SourceKind,
		&m.SourceID,
		&m.BalanceAfter,
		&m.EntryDate,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveMember inserts a new member.
func (r *PgxMemberRepository) SaveMember(ctx context.Context, member domain.Member) error {
	m := mapping.ToModelMember(member)

	query := `INSERT INTO members (` + memberColumns + `) VALUES ($1, $2, $3, $4, $5);`
	_, err := r.conn(ctx).Exec(ctx, query, m.MemberID, m.Name, m.Balance, m.LoanBalance, m.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: member %s already exists", apperrors.ErrDuplicate, m.MemberID)
		}
		return fmt.Errorf("failed to save member %s: %w", m.MemberID, err)
	}
	return nil
}

// FindMemberByID retrieves a member by its ID.
func (r *PgxMemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE member_id = $1;`

	m, err := scanMember(r.conn(ctx).QueryRow(ctx, query, memberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find member %s: %w", memberID, err)
	}
	member := mapping.ToDomainMember(*m)
	return &member, nil
}

// ListMembers retrieves members ordered by name.
func (r *PgxMemberRepository) ListMembers(ctx context.Context, limit int, offset int) ([]domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY name LIMIT $1 OFFSET $2;`

	rows, err := r.conn(ctx).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, mapping.ToDomainMember(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}
	return members, nil
}

// ApplyMemberDeltas adds the deltas to the member's cached balances as an
// atomic SQL increment.
func (r *PgxMemberRepository) ApplyMemberDeltas(ctx context.Context, memberID string, savingsDelta, loanDelta decimal.Decimal) error {
	query := `
		UPDATE members
		SET balance = COALESCE(balance, 0) + $2, loan_balance = COALESCE(loan_balance, 0) + $3
		WHERE member_id = $1;
	`
	tag, err := r.conn(ctx).Exec(ctx, query, memberID, savingsDelta, loanDelta)
	if err != nil {
		return fmt.Errorf("failed to apply balance deltas for member %s: %w", memberID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetMemberBalances overwrites both cached balances with recomputed values.
func (r *PgxMemberRepository) SetMemberBalances(ctx context.Context, memberID string, balance, loanBalance decimal.Decimal) error {
	query := `UPDATE members SET balance = $2, loan_balance = $3 WHERE member_id = $1;`

	tag, err := r.conn(ctx).Exec(ctx, query, memberID, balance, loanBalance)
	if err != nil {
		return fmt.Errorf("failed to set balances for member %s: %w", memberID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SaveMemberLedgerEntry appends one personal ledger entry.
func (r *PgxMemberRepository) SaveMemberLedgerEntry(ctx context.Context, entry domain.MemberLedgerEntry) error {
	m := mapping.ToModelMemberLedgerEntry(entry)

	query := `
		INSERT INTO member_ledger_entries (` + memberLedgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.conn(ctx).Exec(ctx, query,
		m.EntryID,
		m.MemberID,
		m.EntryType,
		m.Amount,
		m.Description,
		m.Reference,
		m.SourceKind,
		m.SourceID,
		m.BalanceAfter,
		m.EntryDate,
	)
	if err != nil {
		return fmt.Errorf("failed to save member ledger entry %s: %w", m.EntryID, err)
	}
	return nil
}

// ListMemberLedger retrieves a member's personal ledger, newest first.
func (r *PgxMemberRepository) ListMemberLedger(ctx context.Context, memberID string, limit int, offset int) ([]domain.MemberLedgerEntry, error) {
	query := `
		SELECT ` + memberLedgerColumns + `
		FROM member_ledger_entries
		WHERE member_id = $1
		ORDER BY entry_date DESC, entry_id DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.conn(ctx).Query(ctx, query, memberID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger for member %s: %w", memberID, err)
	}
	defer rows.Close()

	var entries []models.MemberLedgerEntry
	for rows.Next() {
		m, err := scanMemberLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member ledger row: %w", err)
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member ledger rows: %w", err)
	}
	return mapping.ToDomainMemberLedgerEntrySlice(entries), nil
}

// FindLedgerEntriesBySource retrieves the entries minted by one source
// transaction, in insertion order.
func (r *PgxMemberRepository) FindLedgerEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.MemberLedgerEntry, error) {
	query := `
		SELECT ` + memberLedgerColumns + `
		FROM member_ledger_entries
		WHERE source_kind = $1 AND source_id = $2
		ORDER BY entry_id;
	`
	rows, err := r.conn(ctx).Query(ctx, query, string(kind), sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger entries for %s %s: %w", kind, sourceID, err)
	}
	defer rows.Close()

	var entries []models.MemberLedgerEntry
	for rows.Next() {
		m, err := scanMemberLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member ledger row: %w", err)
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member ledger rows: %w", err)
	}
	return mapping.ToDomainMemberLedgerEntrySlice(entries), nil
}

// SumMemberLedger returns the signed net of a member's savings movements.
// Loan repayment and fine payment rows are informational and excluded.
func (r *PgxMemberRepository) SumMemberLedger(ctx context.Context, memberID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0) FROM member_ledger_entries
		WHERE member_id = $1 AND type IN ('contribution', 'deposit', 'withdrawal', 'adjustment');`

	var net decimal.Decimal
	if err := r.conn(ctx).QueryRow(ctx, query, memberID).Scan(&net); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum ledger for member %s: %w", memberID, err)
	}
	return net, nil
}

// DeleteLedgerEntriesBySource removes the entries minted by one source
// transaction.
func (r *PgxMemberRepository) DeleteLedgerEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) error {
	query := `DELETE FROM member_ledger_entries WHERE source_kind = $1 AND source_id = $2;`

	if _, err := r.conn(ctx).Exec(ctx, query, string(kind), sourceID); err != nil {
		return fmt.Errorf("failed to delete ledger entries for %s %s: %w", kind, sourceID, err)
	}
	return nil
}

// DeleteMemberLedgerEntry removes a single personal ledger entry.
func (r *PgxMemberRepository) DeleteMemberLedgerEntry(ctx context.Context, entryID string) error {
	query := `DELETE FROM member_ledger_entries WHERE entry_id = $1;`

	tag, err := r.conn(ctx).Exec(ctx, query, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete ledger entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
