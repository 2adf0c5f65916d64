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

const loanColumns = `loan_id, member_id, principal, interest_rate, interest_type, duration_months, total_interest, total_payable, repaid_amount, status, disbursed_at, created_at, created_by, last_updated_at, last_updated_by`

const fineColumns = `fine_id, member_id, loan_id, amount, paid_amount, status, reason, levied_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxLoanRepository struct {
	BaseRepository
}

// newPgxLoanRepository creates a new repository for loans.
func newPgxLoanRepository(db DBConn) *PgxLoanRepository {
	return &PgxLoanRepository{BaseRepository{db: db}}
}

var _ portsrepo.LoanRepository = (*PgxLoanRepository)(nil)

func scanLoan(row pgx.Row) (*models.Loan, error) {
	var m models.Loan
	err := row.Scan(
		&m.LoanID,
		&m.MemberID,
		&m.Principal,
		&m.InterestRate,
		&m.InterestType,
		&m.DurationMonths,
		&m.TotalInterest,
		&m.TotalPayable,
		&m.RepaidAmount,
		&m.Status,
		&m.DisbursedAt,
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

// SaveLoan inserts a new loan.
func (r *PgxLoanRepository) SaveLoan(ctx context.Context, loan domain.Loan) error {
	m := mapping.ToModelLoan(loan)

	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.conn(ctx).Exec(ctx, query,
		m.LoanID,
		m.MemberID,
		m.Principal,
		m.InterestRate,
		m.InterestType,
		m.DurationMonths,
		m.TotalInterest,
		m.TotalPayable,
		m.RepaidAmount,
		m.Status,
		m.DisbursedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: loan %s already exists", apperrors.ErrDuplicate, m.LoanID)
		}
		return fmt.Errorf("failed to save loan %s: %w", m.LoanID, err)
	}
	return nil
}

func (r *PgxLoanRepository) findLoan(ctx context.Context, loanID string, forUpdate bool) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE loan_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	query += `;`

	m, err := scanLoan(r.conn(ctx).QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	loan := mapping.ToDomainLoan(*m)
	return &loan, nil
}

// FindLoanByID retrieves a loan by its ID.
func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	return r.findLoan(ctx, loanID, false)
}

// FindLoanByIDForUpdate retrieves a loan and locks its row inside the
// ambient transaction.
func (r *PgxLoanRepository) FindLoanByIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	return r.findLoan(ctx, loanID, true)
}

// ListLoansByMember retrieves a member's loans newest first.
func (r *PgxLoanRepository) ListLoansByMember(ctx context.Context, memberID string) ([]domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE member_id = $1 ORDER BY disbursed_at DESC;`

	rows, err := r.conn(ctx).Query(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans for member %s: %w", memberID, err)
	}
	defer rows.Close()

	var loans []models.Loan
	for rows.Next() {
		m, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		loans = append(loans, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loan rows: %w", err)
	}
	return mapping.ToDomainLoanSlice(loans), nil
}

// ApplyRepaidDelta adjusts the loan's cumulative repaid amount and status
// atomically.
func (r *PgxLoanRepository) ApplyRepaidDelta(ctx context.Context, loanID string, delta decimal.Decimal, status domain.LoanStatus, userID string) error {
	query := `
		UPDATE loans
		SET repaid_amount = COALESCE(repaid_amount, 0) + $2, status = $3, last_updated_at = NOW(), last_updated_by = $4
		WHERE loan_id = $1;
	`
	tag, err := r.conn(ctx).Exec(ctx, query, loanID, delta, string(status), userID)
	if err != nil {
		return fmt.Errorf("failed to apply repaid delta for loan %s: %w", loanID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
