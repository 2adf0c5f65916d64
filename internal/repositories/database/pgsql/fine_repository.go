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

type PgxFineRepository struct {
	BaseRepository
}

// newPgxFineRepository creates a new repository for fines.
func newPgxFineRepository(db DBConn) *PgxFineRepository {
	return &PgxFineRepository{BaseRepository{db: db}}
}

var _ portsrepo.FineRepository = (*PgxFineRepository)(nil)

func scanFine(row pgx.Row) (*models.Fine, error) {
	var m models.Fine
	err := row.Scan(
		&m.FineID,
		&m.MemberID,
		&m.LoanID,
		&m.Amount,
		&m.PaidAmount,
		&m.Status,
		&m.Reason,
		&m.LeviedAt,
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

// SaveFine inserts a new fine.
func (r *PgxFineRepository) SaveFine(ctx context.Context, fine domain.Fine) error {
	m := mapping.ToModelFine(fine)

	query := `
		INSERT INTO fines (` + fineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.conn(ctx).Exec(ctx, query,
		m.FineID,
		m.MemberID,
		m.LoanID,
		m.Amount,
		m.PaidAmount,
		m.Status,
		m.Reason,
		m.LeviedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: fine %s already exists", apperrors.ErrDuplicate, m.FineID)
		}
		return fmt.Errorf("failed to save fine %s: %w", m.FineID, err)
	}
	return nil
}

// FindFineByID retrieves a fine by its ID.
func (r *PgxFineRepository) FindFineByID(ctx context.Context, fineID string) (*domain.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE fine_id = $1;`

	m, err := scanFine(r.conn(ctx).QueryRow(ctx, query, fineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find fine %s: %w", fineID, err)
	}
	fine := mapping.ToDomainFine(*m)
	return &fine, nil
}

// ListOutstandingFines returns a member's unpaid and partial fines in
// creation order so the waterfall settles the oldest first. Passing a loan
// narrows to fines tied to it.
func (r *PgxFineRepository) ListOutstandingFines(ctx context.Context, memberID string, loanID *string) ([]domain.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE member_id = $1 AND status IN ('unpaid', 'partial')`
	args := []any{memberID}
	if loanID != nil {
		query += ` AND loan_id = $2`
		args = append(args, *loanID)
	}
	query += ` ORDER BY created_at, fine_id;`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list outstanding fines for member %s: %w", memberID, err)
	}
	defer rows.Close()

	var fines []models.Fine
	for rows.Next() {
		m, err := scanFine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fine row: %w", err)
		}
		fines = append(fines, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fine rows: %w", err)
	}
	return mapping.ToDomainFineSlice(fines), nil
}

// ListFinesByMember retrieves all of a member's fines, newest first.
func (r *PgxFineRepository) ListFinesByMember(ctx context.Context, memberID string) ([]domain.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE member_id = $1 ORDER BY levied_at DESC;`

	rows, err := r.conn(ctx).Query(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fines for member %s: %w", memberID, err)
	}
	defer rows.Close()

	var fines []models.Fine
	for rows.Next() {
		m, err := scanFine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fine row: %w", err)
		}
		fines = append(fines, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fine rows: %w", err)
	}
	return mapping.ToDomainFineSlice(fines), nil
}

// ApplyFinePayment adds paid to the fine's paid amount and sets its status.
// A negative paid amount rolls a payment back when a repayment is voided.
func (r *PgxFineRepository) ApplyFinePayment(ctx context.Context, fineID string, paid decimal.Decimal, status domain.FineStatus, userID string) error {
	query := `
		UPDATE fines
		SET paid_amount = COALESCE(paid_amount, 0) + $2, status = $3, last_updated_at = NOW(), last_updated_by = $4
		WHERE fine_id = $1;
	`
	tag, err := r.conn(ctx).Exec(ctx, query, fineID, paid, string(status), userID)
	if err != nil {
		return fmt.Errorf("failed to apply payment to fine %s: %w", fineID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
